package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yeremiapane/cafe-venue/models"
)

type GormStore struct {
	db *gorm.DB
}

var _ Store = (*GormStore)(nil)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

/*
========================================
 USERS & SESSIONS
========================================
*/

func (s *GormStore) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *GormStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// GetUserByClientID -> user currently represented by the session row of clientID
func (s *GormStore) GetUserByClientID(ctx context.Context, clientID string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Joins("JOIN sessions ON sessions.user_id = users.id").
		Where("sessions.client_id = ?", clientID).
		First(&user).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *GormStore) CreateUser(ctx context.Context, username string, lastEarned int64) (*models.User, error) {
	user := models.User{
		Username:   username,
		Balance:    0,
		LastEarned: lastEarned,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user %q: %w", username, err)
	}
	return &user, nil
}

// UpdateUserClientID points clientID at userID and drops any other session still
// pointing at the same user.
func (s *GormStore) UpdateUserClientID(ctx context.Context, userID uint, clientID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND client_id <> ?", userID, clientID).
			Delete(&models.Session{}).Error; err != nil {
			return fmt.Errorf("drop stale sessions: %w", err)
		}

		now := time.Now()
		session := models.Session{
			ClientID:  clientID,
			UserID:    &userID,
			BoundAt:   now,
			UpdatedAt: now,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "client_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"user_id", "bound_at", "updated_at"}),
		}).Create(&session).Error
		if err != nil {
			return fmt.Errorf("bind session %s: %w", clientID, err)
		}
		return nil
	})
}

// UpdateUserBalance adds delta (negative for debits) and returns the new balance.
// The guard lives in the UPDATE itself so a balance never drops below zero.
func (s *GormStore) UpdateUserBalance(ctx context.Context, userID uint, delta int64, lastEarned *int64) (int64, error) {
	var balance int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"balance": gorm.Expr("balance + ?", delta),
		}
		if lastEarned != nil {
			updates["last_earned"] = *lastEarned
		}

		res := tx.Model(&models.User{}).
			Where("id = ? AND balance + ? >= 0", userID, delta).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}

		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return notFound(err)
		}
		// mysql reports changed rows, not matched ones, so zero rows alone
		// does not mean the guard failed
		if res.RowsAffected == 0 && user.Balance+delta < 0 {
			return ErrInsufficientBalance
		}
		balance = user.Balance
		return nil
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

func (s *GormStore) GetClientIDByUserID(ctx context.Context, userID uint) (string, error) {
	var session models.Session
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&session).Error; err != nil {
		return "", notFound(err)
	}
	return session.ClientID, nil
}

/*
========================================
 ORDERS
========================================
*/

const ordersOfClient = "user_id = (SELECT user_id FROM sessions WHERE client_id = ?)"

func (s *GormStore) GetOrdersByClientID(ctx context.Context, clientID string) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.db.WithContext(ctx).
		Where(ordersOfClient, clientID).
		Order("id asc").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("orders of client %s: %w", clientID, err)
	}
	return orders, nil
}

func (s *GormStore) GetOrderByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).First(&order, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &order, nil
}

func (s *GormStore) CreateOrder(ctx context.Context, order *models.Order) error {
	if order.Status == "" {
		order.Status = models.OrderStatusPending
	}
	if err := s.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func (s *GormStore) UpdateOrderCapacity(ctx context.Context, id uint, capacity int) error {
	res := s.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("capacity", capacity)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) DeleteOrder(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.Order{}, id).Error
}

func (s *GormStore) DeleteOrdersByClientID(ctx context.Context, clientID string) (int64, error) {
	res := s.db.WithContext(ctx).Where(ordersOfClient, clientID).Delete(&models.Order{})
	return res.RowsAffected, res.Error
}

// UpdateOrderStatusToDelivered claims a pending order. It reports false when the
// order was already delivered or deleted, so a second caller never reprocesses it.
func (s *GormStore) UpdateOrderStatusToDelivered(ctx context.Context, id uint) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, models.OrderStatusPending).
		Update("status", models.OrderStatusDelivered)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *GormStore) GetPendingOrders(ctx context.Context, now int64) ([]models.PendingOrder, error) {
	var rows []struct {
		ID       uint
		UserID   uint
		ClientID *string
	}
	err := s.db.WithContext(ctx).
		Table("orders").
		Select("orders.id, orders.user_id, sessions.client_id").
		Joins("LEFT JOIN sessions ON sessions.user_id = orders.user_id").
		Where("orders.status = ? AND orders.delivered_at <= ?", models.OrderStatusPending, now).
		Order("orders.delivered_at asc").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("pending orders: %w", err)
	}

	pending := make([]models.PendingOrder, 0, len(rows))
	for _, r := range rows {
		p := models.PendingOrder{ID: r.ID, UserID: r.UserID}
		if r.ClientID != nil {
			p.ClientID = *r.ClientID
		}
		pending = append(pending, p)
	}
	return pending, nil
}

/*
========================================
 SEATS
========================================
*/

var freeSeat = map[string]interface{}{
	"occupied": false,
	"time":     nil,
	"user_id":  nil,
}

// SeedSeats inserts the roster once; existing rows are left untouched.
func (s *GormStore) SeedSeats(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	seats := make([]models.Seat, 0, len(ids))
	for _, id := range ids {
		seats = append(seats, models.Seat{ID: id})
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&seats).Error
}

func (s *GormStore) ListSeats(ctx context.Context) ([]models.Seat, error) {
	var seats []models.Seat
	if err := s.db.WithContext(ctx).Order("id asc").Find(&seats).Error; err != nil {
		return nil, fmt.Errorf("list seats: %w", err)
	}
	return seats, nil
}

func (s *GormStore) GetSeat(ctx context.Context, id string) (*models.Seat, error) {
	var seat models.Seat
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&seat).Error; err != nil {
		return nil, notFound(err)
	}
	return &seat, nil
}

// ReassignSeat frees every seat held by the users in release and occupies seatID
// for userID in the same transaction. ErrSeatTaken rolls the whole thing back.
func (s *GormStore) ReassignSeat(ctx context.Context, seatID string, userID uint, at int64, release []uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(release) > 0 {
			if err := tx.Model(&models.Seat{}).
				Where("user_id IN ?", release).
				Updates(freeSeat).Error; err != nil {
				return fmt.Errorf("free previous seats: %w", err)
			}
		}

		res := tx.Model(&models.Seat{}).
			Where("id = ? AND occupied = ?", seatID, false).
			Updates(map[string]interface{}{
				"occupied": true,
				"time":     at,
				"user_id":  userID,
			})
		if res.Error != nil {
			return fmt.Errorf("occupy seat %s: %w", seatID, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrSeatTaken
		}
		return nil
	})
}

// FreeSeatsByUser vacates whatever the user holds and returns the freed seat ids.
func (s *GormStore) FreeSeatsByUser(ctx context.Context, userID uint) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Seat{}).Where("user_id = ?", userID).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		return tx.Model(&models.Seat{}).Where("id IN ?", ids).Updates(freeSeat).Error
	})
	if err != nil {
		return nil, fmt.Errorf("free seats of user %d: %w", userID, err)
	}
	return ids, nil
}
