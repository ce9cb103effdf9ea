// Package events publishes venue activity to an external feed. Publishing is
// best effort: failures are logged by the caller and never affect venue state.
package events

import (
	"context"
	"time"
)

const (
	SeatChosen     = "seat.chosen"
	SeatLeft       = "seat.left"
	OrderPlaced    = "order.placed"
	OrderDelivered = "order.delivered"
	OrderConsumed  = "order.consumed"
	BalanceAccrued = "balance.accrued"
)

type Event struct {
	Name       string    `json:"name"`
	UserID     uint      `json:"user_id,omitempty"`
	SeatID     string    `json:"seat_id,omitempty"`
	OrderID    uint      `json:"order_id,omitempty"`
	ItemKey    string    `json:"item_key,omitempty"`
	Amount     int64     `json:"amount,omitempty"`
	Balance    int64     `json:"balance,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
