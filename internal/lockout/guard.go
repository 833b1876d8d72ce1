package lockout

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/evanhrs/budgetapp/internal/clock"
	"github.com/evanhrs/budgetapp/internal/store"
)

// Outcome of a login attempt against the lockout state machine.
type Outcome int

const (
	// Allowed means the credential check passed and the account is usable.
	Allowed Outcome = iota
	// Rejected means the credential check failed; the counter was advanced.
	Rejected
	// Locked means the account is in its cooldown window; the attempt
	// was refused before any credential check mattered.
	Locked
)

// Result pairs an Outcome with the remaining cooldown when locked.
type Result struct {
	Outcome    Outcome
	RetryAfter time.Duration
}

// Status is the lockout state derived from a stored credential record
// at a given instant. Evaluate is the single source of truth for it.
type Status struct {
	Locked      bool
	RetryAfter  time.Duration
	FailedCount int
}

// Evaluate computes lockout state from the stored counter and
// timestamp. It is pure: no clock reads, no mutation. A lock whose
// window has lapsed reads as unlocked with a zeroed counter.
func Evaluate(user *store.User, now time.Time) Status {
	if user.LockedUntil != nil {
		if now.Before(*user.LockedUntil) {
			return Status{
				Locked:      true,
				RetryAfter:  user.LockedUntil.Sub(now),
				FailedCount: user.FailedLoginCount,
			}
		}
		// Lapsed lock; next transition resets the counter.
		return Status{FailedCount: 0}
	}
	return Status{FailedCount: user.FailedLoginCount}
}

const stripes = 64

// Guard enforces the per-account lockout state machine. The
// increment-and-compare on the stored counter is serialized per user so
// concurrent attempts cannot both slip past the threshold.
type Guard struct {
	users     store.Users
	clk       clock.Clock
	log       *zap.Logger
	threshold int
	cooldown  time.Duration
	locks     [stripes]sync.Mutex
}

func NewGuard(users store.Users, clk clock.Clock, log *zap.Logger, threshold int, cooldown time.Duration) *Guard {
	return &Guard{
		users:     users,
		clk:       clk,
		log:       log,
		threshold: threshold,
		cooldown:  cooldown,
	}
}

func (g *Guard) stripe(userID uint) *sync.Mutex {
	return &g.locks[userID%stripes]
}

// Check reports the current lockout status without recording anything.
func (g *Guard) Check(userID uint) (Status, error) {
	user, err := g.users.ByID(userID)
	if err != nil {
		return Status{}, err
	}
	return Evaluate(user, g.clk.Now()), nil
}

// CheckAndRecord applies one login attempt to the state machine. The
// caller passes the credential verdict; the guard decides whether the
// attempt counts, advances the counter, and flips the lock when the
// threshold is reached. While locked, attempts are refused without
// touching the counter.
func (g *Guard) CheckAndRecord(userID uint, credentialOK bool) (Result, error) {
	mu := g.stripe(userID)
	mu.Lock()
	defer mu.Unlock()

	// Re-read inside the critical section so two concurrent attempts
	// cannot act on the same stale counter.
	user, err := g.users.ByID(userID)
	if err != nil {
		return Result{}, err
	}

	now := g.clk.Now()
	status := Evaluate(user, now)

	if status.Locked {
		return Result{Outcome: Locked, RetryAfter: status.RetryAfter}, nil
	}

	if credentialOK {
		if err := g.users.UpdateLockout(userID, 0, nil); err != nil {
			return Result{}, fmt.Errorf("resetting failed attempts: %w", err)
		}
		return Result{Outcome: Allowed}, nil
	}

	count := status.FailedCount + 1
	if count >= g.threshold {
		until := now.Add(g.cooldown)
		if err := g.users.UpdateLockout(userID, g.threshold, &until); err != nil {
			return Result{}, fmt.Errorf("locking account: %w", err)
		}
		g.log.Warn("account locked after repeated failures",
			zap.Uint("user_id", userID),
			zap.Time("locked_until", until))
		return Result{Outcome: Rejected}, nil
	}

	if err := g.users.UpdateLockout(userID, count, nil); err != nil {
		return Result{}, fmt.Errorf("recording failed attempt: %w", err)
	}
	return Result{Outcome: Rejected}, nil
}

// Reset clears the counter and any lock, used on successful password
// reset and by the emergency unlock path.
func (g *Guard) Reset(userID uint) error {
	mu := g.stripe(userID)
	mu.Lock()
	defer mu.Unlock()

	return g.users.UpdateLockout(userID, 0, nil)
}
