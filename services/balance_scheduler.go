package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/cafe-venue/cache"
	"github.com/yeremiapane/cafe-venue/events"
	"github.com/yeremiapane/cafe-venue/repository"
	"github.com/yeremiapane/cafe-venue/utils"
)

// AccrualPolicy -> who earns, when and how much
type AccrualPolicy struct {
	OpenHour  int
	CloseHour int
	Cooldown  time.Duration
	Reward    int64
}

// DefaultAccrualPolicy -> 50 every 20 minutes between 07:00 and 19:00
func DefaultAccrualPolicy() AccrualPolicy {
	return AccrualPolicy{OpenHour: 7, CloseHour: 19, Cooldown: 20 * time.Minute, Reward: 50}
}

// Open reports whether t falls in [OpenHour, CloseHour) local time.
func (p AccrualPolicy) Open(t time.Time) bool {
	h := t.Hour()
	return h >= p.OpenHour && h < p.CloseHour
}

// BalanceScheduler credits seated users once per cooldown during opening hours.
type BalanceScheduler struct {
	*monitor
	store     repository.Store
	seats     cache.SeatCache
	notifier  *Notifier
	policy    AccrualPolicy
	clock     Clock
	publisher events.Publisher
}

func (s *BalanceScheduler) Start(loop *Loop) {
	s.start(loop, func(ctx context.Context) {
		if _, err := s.Tick(ctx); err != nil {
			utils.ErrorLogger.Printf("Balance accrual failed: %v", err)
		}
	})
}

func (s *BalanceScheduler) Stop() { s.stop() }

// Tick runs one accrual pass and returns the number of users credited.
// Users without a live socket are credited all the same; only the push is lost.
func (s *BalanceScheduler) Tick(ctx context.Context) (int, error) {
	now := s.clock()
	if !s.policy.Open(now) {
		return 0, nil
	}

	seats, err := s.seats.Snapshot(ctx)
	if err != nil {
		return 0, err
	}

	credited := 0
	for seatID, view := range seats {
		if !view.Occupied || view.User.ID == nil {
			continue
		}
		user, err := s.store.GetUserByID(ctx, *view.User.ID)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return credited, err
		}
		if now.UnixMilli()-user.LastEarned < s.policy.Cooldown.Milliseconds() {
			continue
		}

		earned := now.UnixMilli()
		balance, err := s.store.UpdateUserBalance(ctx, user.ID, s.policy.Reward, &earned)
		if err != nil {
			return credited, err
		}
		credited++
		utils.InfoLogger.WithFields(logrus.Fields{
			"user":    user.ID,
			"seat":    seatID,
			"balance": balance,
		}).Debug("Balance accrued")

		clientID, err := s.store.GetClientIDByUserID(ctx, user.ID)
		if err == nil {
			s.notifier.PushBalance(clientID, user.ID, balance)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return credited, err
		}

		publish(ctx, s.publisher, events.Event{
			Name:       events.BalanceAccrued,
			UserID:     user.ID,
			SeatID:     seatID,
			Amount:     s.policy.Reward,
			Balance:    balance,
			OccurredAt: now,
		})
	}
	return credited, nil
}
