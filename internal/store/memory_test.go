package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryUsers(t *testing.T) {
	users := NewMemory().Users()

	user := &User{Username: "alice", Email: "alice@example.com", PasswordHash: "h"}
	require.NoError(t, users.Create(user))
	assert.NotZero(t, user.ID)

	t.Run("duplicate username", func(t *testing.T) {
		err := users.Create(&User{Username: "alice", Email: "other@example.com", PasswordHash: "h"})
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("duplicate email", func(t *testing.T) {
		err := users.Create(&User{Username: "bob", Email: "alice@example.com", PasswordHash: "h"})
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("lookups", func(t *testing.T) {
		byName, err := users.ByUsername("alice")
		require.NoError(t, err)
		byMail, err := users.ByEmail("alice@example.com")
		require.NoError(t, err)
		byID, err := users.ByID(user.ID)
		require.NoError(t, err)
		assert.Equal(t, byName.ID, byMail.ID)
		assert.Equal(t, byName.ID, byID.ID)

		_, err = users.ByUsername("nobody")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("returned records do not alias storage", func(t *testing.T) {
		got, err := users.ByID(user.ID)
		require.NoError(t, err)
		got.PasswordHash = "tampered"

		again, err := users.ByID(user.ID)
		require.NoError(t, err)
		assert.Equal(t, "h", again.PasswordHash)
	})

	t.Run("updates persist", func(t *testing.T) {
		until := time.Now().Add(time.Hour)
		require.NoError(t, users.UpdateLockout(user.ID, 3, &until))
		require.NoError(t, users.UpdatePasswordHash(user.ID, "h2"))

		got, err := users.ByID(user.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, got.FailedLoginCount)
		require.NotNil(t, got.LockedUntil)
		assert.Equal(t, "h2", got.PasswordHash)

		require.NoError(t, users.UpdateLockout(user.ID, 0, nil))
		got, err = users.ByID(user.ID)
		require.NoError(t, err)
		assert.Nil(t, got.LockedUntil)
	})

	t.Run("updating unknown user", func(t *testing.T) {
		assert.ErrorIs(t, users.UpdatePasswordHash(999, "h"), ErrNotFound)
		assert.ErrorIs(t, users.UpdateLockout(999, 0, nil), ErrNotFound)
	})
}

func TestMemoryResetTokens(t *testing.T) {
	tokens := NewMemory().ResetTokens()
	now := time.Now()

	tok := &ResetToken{UserID: 1, TokenHash: "abc", IssuedAt: now, ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, tokens.Put(tok))

	t.Run("duplicate hash", func(t *testing.T) {
		err := tokens.Put(&ResetToken{UserID: 2, TokenHash: "abc", ExpiresAt: now})
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("lookup and consume", func(t *testing.T) {
		got, err := tokens.ByHash("abc")
		require.NoError(t, err)
		assert.Nil(t, got.ConsumedAt)

		require.NoError(t, tokens.MarkConsumed(got.ID, now))
		got, err = tokens.ByHash("abc")
		require.NoError(t, err)
		assert.NotNil(t, got.ConsumedAt)
	})

	t.Run("delete for user", func(t *testing.T) {
		require.NoError(t, tokens.DeleteForUser(1))
		_, err := tokens.ByHash("abc")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete expired", func(t *testing.T) {
		require.NoError(t, tokens.Put(&ResetToken{UserID: 3, TokenHash: "old", ExpiresAt: now.Add(-time.Minute)}))
		require.NoError(t, tokens.Put(&ResetToken{UserID: 3, TokenHash: "live", ExpiresAt: now.Add(time.Hour)}))

		require.NoError(t, tokens.DeleteExpired(now))

		_, err := tokens.ByHash("old")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = tokens.ByHash("live")
		assert.NoError(t, err)
	})
}

func TestMemorySessions(t *testing.T) {
	sessions := NewMemory().Sessions()
	now := time.Now()

	require.NoError(t, sessions.Put(&Session{Token: "s1", UserID: 1, CreatedAt: now, LastSeenAt: now}))

	t.Run("duplicate token", func(t *testing.T) {
		err := sessions.Put(&Session{Token: "s1", UserID: 2, CreatedAt: now, LastSeenAt: now})
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("get and touch", func(t *testing.T) {
		got, err := sessions.Get("s1")
		require.NoError(t, err)
		assert.Equal(t, uint(1), got.UserID)

		later := now.Add(time.Minute)
		require.NoError(t, sessions.UpdateLastSeen("s1", later))
		got, err = sessions.Get("s1")
		require.NoError(t, err)
		assert.Equal(t, later, got.LastSeenAt)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, sessions.Delete("s1"))
		_, err := sessions.Get("s1")
		assert.ErrorIs(t, err, ErrNotFound)
		// Deleting again is a no-op.
		assert.NoError(t, sessions.Delete("s1"))
	})

	t.Run("delete expired", func(t *testing.T) {
		require.NoError(t, sessions.Put(&Session{Token: "stale", UserID: 1, CreatedAt: now, LastSeenAt: now.Add(-time.Hour)}))
		require.NoError(t, sessions.Put(&Session{Token: "fresh", UserID: 1, CreatedAt: now, LastSeenAt: now}))

		require.NoError(t, sessions.DeleteExpired(now.Add(-time.Minute)))

		_, err := sessions.Get("stale")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = sessions.Get("fresh")
		assert.NoError(t, err)
	})
}
