package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/cafe-venue/events"
	"github.com/yeremiapane/cafe-venue/models"
	"github.com/yeremiapane/cafe-venue/repository"
	"github.com/yeremiapane/cafe-venue/utils"
)

// OrderService places, consumes and forfeits orders.
type OrderService struct {
	store     repository.Store
	menu      models.Menu
	notifier  *Notifier
	clock     Clock
	jitter    Jitter
	maxJitter time.Duration
	publisher events.Publisher
}

// PlaceOrder debits the item's price and queues a pending order due after the
// preparation time plus random kitchen variance. The debit also resets the
// user's lastEarned.
func (s *OrderService) PlaceOrder(ctx context.Context, clientID, itemKey string) (Result, error) {
	log := utils.InfoLogger.WithFields(logrus.Fields{"client": clientID, "item": itemKey})

	item, ok := s.menu.Lookup(itemKey)
	if !ok {
		log.Warn("Invalid menu item")
		return rejected(ReasonUnknownItem), nil
	}
	user, err := resolveUser(ctx, s.store, clientID)
	if err != nil {
		return Result{}, err
	}
	if user == nil {
		return rejected(ReasonUnbound), nil
	}
	if user.Balance < item.Price {
		log.Debug("Insufficient balance")
		return rejected(ReasonInsufficientBalance), nil
	}

	// spending restarts the accrual cooldown
	now := s.clock()
	earned := now.UnixMilli()
	balance, err := s.store.UpdateUserBalance(ctx, user.ID, -item.Price, &earned)
	if errors.Is(err, repository.ErrInsufficientBalance) {
		return rejected(ReasonInsufficientBalance), nil
	}
	if err != nil {
		return Result{}, err
	}
	s.notifier.BroadcastBalance(user.ID, balance)

	eta := time.Duration(item.PreparationTime)*time.Millisecond + s.jitter(s.maxJitter)
	order := &models.Order{
		UserID:      user.ID,
		ItemKey:     item.ID,
		Price:       item.Price,
		DeliveredAt: now.Add(eta).UnixMilli(),
		Status:      models.OrderStatusPending,
		Capacity:    item.Capacity,
	}
	if err := s.store.CreateOrder(ctx, order); err != nil {
		return Result{}, err
	}
	log.WithField("order", order.ID).Debugf("Order received, ready in %s", eta)

	if err := s.notifier.PushOrders(ctx, clientID); err != nil {
		return accepted(), err
	}
	publish(ctx, s.publisher, events.Event{
		Name:       events.OrderPlaced,
		UserID:     user.ID,
		OrderID:    order.ID,
		ItemKey:    item.ID,
		Amount:     item.Price,
		Balance:    balance,
		OccurredAt: now,
	})
	return accepted(), nil
}

// DrinkItem consumes one unit of an order; the last unit deletes it.
func (s *OrderService) DrinkItem(ctx context.Context, clientID string, orderID uint) (Result, error) {
	order, err := s.store.GetOrderByID(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		// already consumed or forfeited; the client still gets a fresh list
		return rejected(ReasonOrderNotFound), s.notifier.PushOrders(ctx, clientID)
	}
	if err != nil {
		return Result{}, err
	}

	log := utils.InfoLogger.WithFields(logrus.Fields{"client": clientID, "order": orderID})
	capacity := order.Capacity - 1
	if capacity <= 0 {
		if err := s.store.DeleteOrder(ctx, orderID); err != nil {
			return Result{}, err
		}
		log.Debug("Order removed")
		publish(ctx, s.publisher, events.Event{
			Name:       events.OrderConsumed,
			UserID:     order.UserID,
			OrderID:    order.ID,
			ItemKey:    order.ItemKey,
			OccurredAt: s.clock(),
		})
	} else {
		if err := s.store.UpdateOrderCapacity(ctx, orderID, capacity); err != nil {
			return Result{}, err
		}
		log.Debugf("Order updated, %d left", capacity)
	}

	if err := s.notifier.PushOrders(ctx, clientID); err != nil {
		return accepted(), err
	}
	return accepted(), nil
}

// Forfeit deletes every order of the user clientID represents.
func (s *OrderService) Forfeit(ctx context.Context, clientID string) (int64, error) {
	return s.store.DeleteOrdersByClientID(ctx, clientID)
}
