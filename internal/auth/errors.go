package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/evanhrs/budgetapp/internal/password"
	"github.com/evanhrs/budgetapp/internal/resettoken"
	"github.com/evanhrs/budgetapp/internal/session"
	"github.com/evanhrs/budgetapp/internal/store"
)

var (
	// ErrInvalidCredentials covers both unknown identifiers and wrong
	// passwords; callers must not be able to tell which.
	ErrInvalidCredentials = errors.New("invalid username/email or password")

	ErrUserExists      = errors.New("username or email already registered")
	ErrInvalidUsername = errors.New("invalid username")
	ErrInvalidEmail    = errors.New("invalid email address")

	// Aliases so callers can match the full taxonomy at the facade
	// boundary without importing every internal package.
	ErrTokenInvalid       = resettoken.ErrInvalid
	ErrTokenExpired       = resettoken.ErrExpired
	ErrTokenAlreadyUsed   = resettoken.ErrAlreadyUsed
	ErrSessionInvalid     = session.ErrInvalid
	ErrSessionExpired     = session.ErrExpired
	ErrStorageUnavailable = store.ErrUnavailable
)

// WeakPasswordError reports the first violated strength rule.
type WeakPasswordError = password.WeakError

// LockedOutError tells the caller how long the cooldown has left.
type LockedOutError struct {
	RetryAfter time.Duration
}

func (e *LockedOutError) Error() string {
	return fmt.Sprintf("account is locked, retry in %s", e.RetryAfter.Round(time.Second))
}
