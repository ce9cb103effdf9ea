package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/cafe-venue/events"
	"github.com/yeremiapane/cafe-venue/repository"
	"github.com/yeremiapane/cafe-venue/utils"
)

// DeliveryScheduler promotes due orders from pending to delivered.
type DeliveryScheduler struct {
	*monitor
	store     repository.Store
	notifier  *Notifier
	clock     Clock
	publisher events.Publisher
}

func (s *DeliveryScheduler) Start(loop *Loop) {
	s.start(loop, func(ctx context.Context) {
		if _, err := s.Tick(ctx); err != nil {
			utils.ErrorLogger.Printf("Order delivery failed: %v", err)
		}
	})
}

func (s *DeliveryScheduler) Stop() { s.stop() }

// Tick delivers every order due by now. An order is only processed after its
// status flip succeeds, so it is never delivered twice.
func (s *DeliveryScheduler) Tick(ctx context.Context) (int, error) {
	now := s.clock()
	due, err := s.store.GetPendingOrders(ctx, now.UnixMilli())
	if err != nil {
		return 0, err
	}

	delivered := 0
	for _, order := range due {
		claimed, err := s.store.UpdateOrderStatusToDelivered(ctx, order.ID)
		if err != nil {
			return delivered, err
		}
		if !claimed {
			continue
		}
		delivered++
		utils.InfoLogger.WithFields(logrus.Fields{
			"order":  order.ID,
			"client": order.ClientID,
		}).Debug("Order delivered")

		if order.ClientID != "" {
			if err := s.notifier.PushOrders(ctx, order.ClientID); err != nil {
				return delivered, err
			}
		}
		publish(ctx, s.publisher, events.Event{
			Name:       events.OrderDelivered,
			UserID:     order.UserID,
			OrderID:    order.ID,
			OccurredAt: now,
		})
	}
	return delivered, nil
}
