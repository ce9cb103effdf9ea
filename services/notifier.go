package services

import (
	"context"
	"fmt"

	"github.com/yeremiapane/cafe-venue/hub"
	"github.com/yeremiapane/cafe-venue/models"
	"github.com/yeremiapane/cafe-venue/protocol"
	"github.com/yeremiapane/cafe-venue/repository"
)

// Notifier turns state into outbound events on top of the registry's
// broadcast and unicast primitives.
type Notifier struct {
	registry *hub.Registry
	store    repository.Store
	menu     models.Menu
}

func NewNotifier(registry *hub.Registry, store repository.Store, menu models.Menu) *Notifier {
	return &Notifier{registry: registry, store: store, menu: menu}
}

func (n *Notifier) BroadcastSeats(seats protocol.SeatMap) {
	n.registry.Broadcast(protocol.NewSeatsUpdated(seats))
}

// SendSnapshot writes the seat map and menu straight to socket, bound or not.
func (n *Notifier) SendSnapshot(socket hub.Socket, seats protocol.SeatMap) {
	hub.Send(socket, protocol.NewSeatsUpdated(seats))
	hub.Send(socket, protocol.NewMenuUpdated(n.menu))
}

// PushOrders sends clientID the full order list of the user it represents.
func (n *Notifier) PushOrders(ctx context.Context, clientID string) error {
	if _, ok := n.registry.Lookup(clientID); !ok {
		return nil
	}
	orders, err := n.store.GetOrdersByClientID(ctx, clientID)
	if err != nil {
		return fmt.Errorf("push orders: %w", err)
	}
	n.registry.Unicast(clientID, protocol.NewOrdersUpdated(orders))
	return nil
}

func (n *Notifier) PushBalance(clientID string, userID uint, balance int64) {
	n.registry.Unicast(clientID, protocol.NewBalanceUpdated(userID, balance))
}

func (n *Notifier) BroadcastBalance(userID uint, balance int64) {
	n.registry.Broadcast(protocol.NewBalanceUpdated(userID, balance))
}
