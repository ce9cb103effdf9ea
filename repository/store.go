package repository

import (
	"context"

	"github.com/yeremiapane/cafe-venue/models"
)

// Store is the CRUD contract over users, sessions, seats and orders.
// No call spans another; callers sequence multi-step invariants themselves,
// except ReassignSeat which frees and occupies in one transaction.
type Store interface {
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByClientID(ctx context.Context, clientID string) (*models.User, error)
	CreateUser(ctx context.Context, username string, lastEarned int64) (*models.User, error)
	UpdateUserClientID(ctx context.Context, userID uint, clientID string) error
	UpdateUserBalance(ctx context.Context, userID uint, delta int64, lastEarned *int64) (int64, error)
	GetClientIDByUserID(ctx context.Context, userID uint) (string, error)

	GetOrdersByClientID(ctx context.Context, clientID string) ([]models.Order, error)
	GetOrderByID(ctx context.Context, id uint) (*models.Order, error)
	CreateOrder(ctx context.Context, order *models.Order) error
	UpdateOrderCapacity(ctx context.Context, id uint, capacity int) error
	DeleteOrder(ctx context.Context, id uint) error
	DeleteOrdersByClientID(ctx context.Context, clientID string) (int64, error)
	UpdateOrderStatusToDelivered(ctx context.Context, id uint) (bool, error)
	GetPendingOrders(ctx context.Context, now int64) ([]models.PendingOrder, error)

	SeedSeats(ctx context.Context, ids []string) error
	ListSeats(ctx context.Context) ([]models.Seat, error)
	GetSeat(ctx context.Context, id string) (*models.Seat, error)
	ReassignSeat(ctx context.Context, seatID string, userID uint, at int64, release []uint) error
	FreeSeatsByUser(ctx context.Context, userID uint) ([]string, error)
}
