package models

import "time"

// Session binds a client supplied identifier to the user it currently represents.
// UserID is resolved by lookup; a user is referenced by at most one session.
type Session struct {
	ClientID  string    `gorm:"primaryKey;type:varchar(128)" json:"clientId"`
	UserID    *uint     `gorm:"uniqueIndex" json:"userId"`
	BoundAt   time.Time `gorm:"not null" json:"boundAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}
