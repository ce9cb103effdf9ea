package models

import "time"

// User is created the first time a username picks a seat and is never deleted.
type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Username   string    `gorm:"type:varchar(30);uniqueIndex;not null" json:"username"`
	Balance    int64     `gorm:"not null;default:0" json:"balance"`
	LastEarned int64     `gorm:"not null" json:"lastEarned"` // unix millis
	CreatedAt  time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"not null" json:"updatedAt"`
}
