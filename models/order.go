package models

import "time"

const (
	OrderStatusPending   = "pending"
	OrderStatusDelivered = "delivered"
)

type Order struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"userId"`
	ItemKey     string    `gorm:"type:varchar(50);not null" json:"itemKey"`
	Price       int64     `gorm:"not null" json:"price"`
	DeliveredAt int64     `gorm:"not null;index" json:"deliveredAt"` // unix millis
	Status      string    `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Capacity    int       `gorm:"not null" json:"capacity"`
	CreatedAt   time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"not null" json:"updatedAt"`
}

// PendingOrder is a due order joined with the client currently bound to its owner.
type PendingOrder struct {
	ID       uint
	UserID   uint
	ClientID string
}
