package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/evanhrs/budgetapp/internal/clock"
	"github.com/evanhrs/budgetapp/internal/lockout"
	"github.com/evanhrs/budgetapp/internal/password"
	"github.com/evanhrs/budgetapp/internal/resettoken"
	"github.com/evanhrs/budgetapp/internal/session"
	"github.com/evanhrs/budgetapp/internal/store"
)

const (
	testThreshold = 5
	testCooldown  = 15 * time.Minute
	testTokenTTL  = 30 * time.Minute
	testIdle      = 30 * time.Minute
	testAbsolute  = 8 * time.Hour

	testPassword = "Sunny1Day!"
)

type testEnv struct {
	svc   *Service
	users store.Users
	clk   *clock.Fake
}

func newTestEnv(t *testing.T) *testEnv {
	st := store.NewMemory()
	clk := clock.NewFake(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	hasher := password.NewHasher(bcrypt.MinCost)
	guard := lockout.NewGuard(st.Users(), clk, log, testThreshold, testCooldown)
	tokens := resettoken.NewManager(st.ResetTokens(), clk, log, testTokenTTL)
	sessions := session.NewManager(st.Sessions(), clk, log, testIdle, testAbsolute)

	svc := NewService(st.Users(), hasher, password.DefaultPolicy(), guard, tokens, sessions, log)
	return &testEnv{svc: svc, users: st.Users(), clk: clk}
}

// registerUser creates the standing fixture account.
func (e *testEnv) registerUser(t *testing.T) *store.User {
	user, err := e.svc.Register("testuser", "test@example.com", testPassword)
	require.NoError(t, err)
	return user
}
