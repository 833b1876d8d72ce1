package store

import (
	"time"
)

type User struct {
	ID               uint   `gorm:"primaryKey"`
	Username         string `gorm:"uniqueIndex;not null"`
	Email            string `gorm:"uniqueIndex;not null"`
	PasswordHash     string `gorm:"not null"`
	FailedLoginCount int    `gorm:"not null;default:0"`
	LockedUntil      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (User) TableName() string {
	return "users"
}

// ResetToken holds only the SHA-256 of the issued token value; the raw
// token is returned to the requester once and never stored.
type ResetToken struct {
	ID         uint   `gorm:"primaryKey"`
	UserID     uint   `gorm:"index;not null"`
	TokenHash  string `gorm:"uniqueIndex;not null"`
	IssuedAt   time.Time
	ExpiresAt  time.Time `gorm:"not null"`
	ConsumedAt *time.Time
}

func (ResetToken) TableName() string {
	return "reset_tokens"
}

type Session struct {
	Token      string `gorm:"primaryKey"`
	UserID     uint   `gorm:"index;not null"`
	CreatedAt  time.Time
	LastSeenAt time.Time `gorm:"not null"`
}

func (Session) TableName() string {
	return "sessions"
}
