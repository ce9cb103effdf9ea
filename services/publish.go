package services

import (
	"context"
	"time"

	"github.com/yeremiapane/cafe-venue/events"
	"github.com/yeremiapane/cafe-venue/utils"
)

const publishTimeout = time.Second

func publish(ctx context.Context, pub events.Publisher, event events.Event) {
	if pub == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := pub.Publish(ctx, event); err != nil {
		utils.ErrorLogger.WithField("event", event.Name).Printf("publish failed: %v", err)
	}
}
