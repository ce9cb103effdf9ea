package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/cafe-venue/cache"
	"github.com/yeremiapane/cafe-venue/hub"
	"github.com/yeremiapane/cafe-venue/models"
	"github.com/yeremiapane/cafe-venue/repository"
	"github.com/yeremiapane/cafe-venue/utils"
)

// resolveUser returns the user clientID currently represents, or nil.
func resolveUser(ctx context.Context, store repository.Store, clientID string) (*models.User, error) {
	if clientID == "" {
		return nil, nil
	}
	user, err := store.GetUserByClientID(ctx, clientID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve client %s: %w", clientID, err)
	}
	return user, nil
}

// SessionService binds client identifiers to sockets and runs the
// disconnect cascade.
type SessionService struct {
	store    repository.Store
	registry *hub.Registry
	seats    cache.SeatCache
	notifier *Notifier
	seatSvc  *SeatService
	orderSvc *OrderService
}

// Connect binds clientID to socket and resends every piece of state the
// client may have lost: seat map and menu always, orders and balance when the
// identifier already represents a user. An empty clientID leaves the socket
// unbound but still gets the snapshot.
func (s *SessionService) Connect(ctx context.Context, clientID string, socket hub.Socket) (Result, error) {
	seats, err := s.seats.Snapshot(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("connect: seat snapshot: %w", err)
	}

	if clientID == "" {
		s.notifier.SendSnapshot(socket, seats)
		return rejected(ReasonUnbound), nil
	}

	if evicted := s.registry.Bind(clientID, socket); evicted != nil {
		utils.InfoLogger.WithFields(logrus.Fields{
			"client": clientID,
			"old":    evicted.ID(),
			"new":    socket.ID(),
		}).Info("Client reconnected, previous socket evicted")
	}
	s.notifier.SendSnapshot(socket, seats)

	user, err := resolveUser(ctx, s.store, clientID)
	if err != nil || user == nil {
		return accepted(), err
	}
	if err := s.notifier.PushOrders(ctx, clientID); err != nil {
		return accepted(), err
	}
	s.notifier.PushBalance(clientID, user.ID, user.Balance)
	return accepted(), nil
}

// Authorize admits a message from socket on behalf of clientID only while that
// socket is the one bound to it. Evicted and unbound sockets act for nobody.
func (s *SessionService) Authorize(clientID string, socket hub.Socket) Result {
	if clientID == "" {
		return rejected(ReasonUnbound)
	}
	current, ok := s.registry.Lookup(clientID)
	if !ok {
		return rejected(ReasonUnbound)
	}
	if current != socket {
		return rejected(ReasonStaleSocket)
	}
	return accepted()
}

// Release drops the binding without touching any state, used when a socket
// switches to another identifier.
func (s *SessionService) Release(clientID string, socket hub.Socket) {
	if clientID != "" {
		s.registry.Unbind(clientID, socket)
	}
}

// Disconnect runs when socket closes. Only the socket currently bound to
// clientID triggers the cascade: the user's orders are forfeited and its seat
// vacated. A socket already replaced by a reconnect changes nothing.
func (s *SessionService) Disconnect(ctx context.Context, clientID string, socket hub.Socket) (Result, error) {
	if clientID == "" {
		return rejected(ReasonUnbound), nil
	}
	if !s.registry.Unbind(clientID, socket) {
		return rejected(ReasonStaleSocket), nil
	}

	forfeited, err := s.orderSvc.Forfeit(ctx, clientID)
	if err != nil {
		return Result{}, err
	}
	if _, err := s.seatSvc.LeaveSeat(ctx, clientID); err != nil {
		return Result{}, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"client":    clientID,
		"forfeited": forfeited,
	}).Debug("Client disconnected")
	return accepted(), nil
}
