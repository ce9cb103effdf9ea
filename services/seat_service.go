package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/cafe-venue/cache"
	"github.com/yeremiapane/cafe-venue/events"
	"github.com/yeremiapane/cafe-venue/repository"
	"github.com/yeremiapane/cafe-venue/utils"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9]{3,30}$`)

func ValidUsername(name string) bool {
	return usernamePattern.MatchString(name)
}

// SeatService owns seat occupancy: free -> occupied -> free, one seat per user.
type SeatService struct {
	store     repository.Store
	seats     cache.SeatCache
	notifier  *Notifier
	clock     Clock
	publisher events.Publisher
}

// ChooseSeat seats username at seatID for clientID. Seats held by the chosen
// user, and by whichever user the client represented before, are released in
// the same transaction that occupies the new one.
func (s *SeatService) ChooseSeat(ctx context.Context, clientID, seatID, username string) (Result, error) {
	log := utils.InfoLogger.WithFields(logrus.Fields{"client": clientID, "seat": seatID, "username": username})

	if clientID == "" {
		return rejected(ReasonUnbound), nil
	}
	seat, err := s.store.GetSeat(ctx, seatID)
	if errors.Is(err, repository.ErrNotFound) {
		return rejected(ReasonUnknownSeat), nil
	}
	if err != nil {
		return Result{}, err
	}
	if seat.Occupied {
		log.Debug("Seat is already occupied")
		return rejected(ReasonSeatOccupied), nil
	}
	if !ValidUsername(username) {
		log.Debug("Invalid username")
		return rejected(ReasonInvalidUsername), nil
	}

	previous, err := resolveUser(ctx, s.store, clientID)
	if err != nil {
		return Result{}, err
	}

	now := s.clock()
	user, err := s.store.GetUserByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		user, err = s.store.CreateUser(ctx, username, now.UnixMilli())
	}
	if err != nil {
		return Result{}, err
	}

	if err := s.store.UpdateUserClientID(ctx, user.ID, clientID); err != nil {
		return Result{}, err
	}

	release := []uint{user.ID}
	if previous != nil && previous.ID != user.ID {
		release = append(release, previous.ID)
	}
	err = s.store.ReassignSeat(ctx, seatID, user.ID, now.UnixMilli(), release)
	if errors.Is(err, repository.ErrSeatTaken) {
		return rejected(ReasonSeatOccupied), nil
	}
	if err != nil {
		return Result{}, err
	}
	log.Debug("Seat chosen")

	if err := s.broadcast(ctx); err != nil {
		return accepted(), err
	}
	if err := s.notifier.PushOrders(ctx, clientID); err != nil {
		return accepted(), err
	}
	s.notifier.PushBalance(clientID, user.ID, user.Balance)

	publish(ctx, s.publisher, events.Event{
		Name:       events.SeatChosen,
		UserID:     user.ID,
		SeatID:     seatID,
		OccurredAt: now,
	})
	return accepted(), nil
}

// LeaveSeat vacates the seat held by the user clientID represents.
func (s *SeatService) LeaveSeat(ctx context.Context, clientID string) (Result, error) {
	user, err := resolveUser(ctx, s.store, clientID)
	if err != nil {
		return Result{}, err
	}
	if user == nil {
		utils.InfoLogger.WithField("client", clientID).Debug("No user found for client")
		return rejected(ReasonUnbound), nil
	}

	freed, err := s.store.FreeSeatsByUser(ctx, user.ID)
	if err != nil {
		return Result{}, err
	}
	if len(freed) == 0 {
		return rejected(ReasonNoSeat), nil
	}
	utils.InfoLogger.WithFields(logrus.Fields{"client": clientID, "seats": freed}).Debug("Seat left")

	if err := s.broadcast(ctx); err != nil {
		return accepted(), err
	}
	for _, id := range freed {
		publish(ctx, s.publisher, events.Event{
			Name:       events.SeatLeft,
			UserID:     user.ID,
			SeatID:     id,
			OccurredAt: s.clock(),
		})
	}
	return accepted(), nil
}

func (s *SeatService) broadcast(ctx context.Context) error {
	seats, err := s.seats.Rebuild(ctx)
	if err != nil {
		return fmt.Errorf("rebuild seat cache: %w", err)
	}
	s.notifier.BroadcastSeats(seats)
	return nil
}
