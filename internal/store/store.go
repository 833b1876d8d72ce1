package store

import (
	"errors"
	"time"
)

var (
	ErrNotFound    = errors.New("record not found")
	ErrDuplicate   = errors.New("record already exists")
	ErrUnavailable = errors.New("storage unavailable")
)

// Users is the credential store consumed by the security core. All
// mutations are single-record and atomic at the adapter level.
type Users interface {
	Create(user *User) error
	ByID(id uint) (*User, error)
	ByUsername(username string) (*User, error)
	ByEmail(email string) (*User, error)
	UpdatePasswordHash(id uint, hash string) error
	UpdateLockout(id uint, failedCount int, lockedUntil *time.Time) error
}

type ResetTokens interface {
	Put(token *ResetToken) error
	ByHash(hash string) (*ResetToken, error)
	MarkConsumed(id uint, at time.Time) error
	DeleteForUser(userID uint) error
	DeleteExpired(before time.Time) error
}

type Sessions interface {
	Put(session *Session) error
	Get(token string) (*Session, error)
	UpdateLastSeen(token string, at time.Time) error
	Delete(token string) error
	DeleteExpired(before time.Time) error
}

// Store bundles the three record kinds behind one handle.
type Store interface {
	Users() Users
	ResetTokens() ResetTokens
	Sessions() Sessions
}
