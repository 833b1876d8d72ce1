package resettoken

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/evanhrs/budgetapp/internal/clock"
	"github.com/evanhrs/budgetapp/internal/store"
)

var (
	ErrInvalid     = errors.New("reset token is invalid")
	ErrExpired     = errors.New("reset token has expired")
	ErrAlreadyUsed = errors.New("reset token was already used")
)

const tokenBytes = 32

// Manager issues and redeems single-use password-reset tokens. Only the
// SHA-256 of a token is persisted; the raw value exists once, in the
// Issue return.
type Manager struct {
	tokens store.ResetTokens
	clk    clock.Clock
	log    *zap.Logger
	ttl    time.Duration
}

func NewManager(tokens store.ResetTokens, clk clock.Clock, log *zap.Logger, ttl time.Duration) *Manager {
	return &Manager{
		tokens: tokens,
		clk:    clk,
		log:    log,
		ttl:    ttl,
	}
}

// NewValue generates a URL-safe token with 256 bits of entropy. It is
// exported so the facade can mint decoy tokens of identical shape for
// unknown identifiers.
func NewValue() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashValue(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Issue mints a fresh token for the user and invalidates any prior
// outstanding token, so at most one token is active per account.
func (m *Manager) Issue(userID uint) (string, error) {
	value, err := NewValue()
	if err != nil {
		return "", err
	}

	if err := m.tokens.DeleteForUser(userID); err != nil {
		return "", fmt.Errorf("invalidating prior tokens: %w", err)
	}

	now := m.clk.Now()
	record := &store.ResetToken{
		UserID:    userID,
		TokenHash: hashValue(value),
		IssuedAt:  now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.tokens.Put(record); err != nil {
		return "", fmt.Errorf("storing token: %w", err)
	}

	m.log.Info("reset token issued", zap.Uint("user_id", userID))
	return value, nil
}

func (m *Manager) lookup(token string) (*store.ResetToken, error) {
	hash := hashValue(token)
	record, err := m.tokens.ByHash(hash)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalid
		}
		return nil, err
	}

	// The index lookup already matched on the digest; the explicit
	// constant-time compare keeps equality free of short-circuit timing.
	if subtle.ConstantTimeCompare([]byte(record.TokenHash), []byte(hash)) != 1 {
		return nil, ErrInvalid
	}

	if record.ConsumedAt != nil {
		return nil, ErrAlreadyUsed
	}
	if !m.clk.Now().Before(record.ExpiresAt) {
		return nil, ErrExpired
	}
	return record, nil
}

// Peek checks validity without consuming, so a caller can confirm a
// token before collecting the new password.
func (m *Manager) Peek(token string) (uint, error) {
	record, err := m.lookup(token)
	if err != nil {
		return 0, err
	}
	return record.UserID, nil
}

// Consume marks the token used and returns the owning user. A consumed
// token stays invalid forever; retries see ErrAlreadyUsed.
func (m *Manager) Consume(token string) (uint, error) {
	record, err := m.lookup(token)
	if err != nil {
		return 0, err
	}

	if err := m.tokens.MarkConsumed(record.ID, m.clk.Now()); err != nil {
		return 0, fmt.Errorf("consuming token: %w", err)
	}

	m.log.Info("reset token consumed", zap.Uint("user_id", record.UserID))
	return record.UserID, nil
}

// SweepExpired garbage-collects expired token rows. Liveness never
// depends on the sweep; lookup checks expiry on every access.
func (m *Manager) SweepExpired() error {
	return m.tokens.DeleteExpired(m.clk.Now())
}
