package auth

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/evanhrs/budgetapp/internal/lockout"
	"github.com/evanhrs/budgetapp/internal/password"
	"github.com/evanhrs/budgetapp/internal/resettoken"
	"github.com/evanhrs/budgetapp/internal/session"
	"github.com/evanhrs/budgetapp/internal/store"
)

// Service is the facade the presentation layer calls. Everything else
// in the security core sits behind it, except the emergency unlock
// path, which is deliberately a separate entry point.
type Service struct {
	users    store.Users
	hasher   *password.Hasher
	policy   password.Policy
	guard    *lockout.Guard
	tokens   *resettoken.Manager
	sessions *session.Manager
	log      *zap.Logger
}

func NewService(
	users store.Users,
	hasher *password.Hasher,
	policy password.Policy,
	guard *lockout.Guard,
	tokens *resettoken.Manager,
	sessions *session.Manager,
	log *zap.Logger,
) *Service {
	return &Service{
		users:    users,
		hasher:   hasher,
		policy:   policy,
		guard:    guard,
		tokens:   tokens,
		sessions: sessions,
		log:      log,
	}
}

// resolve finds a user by username first, then by email.
func (s *Service) resolve(identifier string) (*store.User, error) {
	user, err := s.users.ByUsername(identifier)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	return s.users.ByEmail(identifier)
}

// Register creates an account. Supplementary to the login flows: the
// finance data layer needs owned accounts to isolate records by.
func (s *Service) Register(username, email, plaintext string) (*store.User, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := s.policy.Validate(plaintext); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &store.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	s.log.Info("user registered", zap.Uint("user_id", user.ID))
	return user, nil
}

// Login authenticates an identifier/password pair. A locked account is
// refused before the stored hash is ever consulted. Unknown identifier
// and wrong password are indistinguishable to the caller, in outcome
// and in timing.
func (s *Service) Login(identifier, plaintext string) (*store.Session, error) {
	user, err := s.resolve(identifier)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.hasher.DummyVerify()
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	status, err := s.guard.Check(user.ID)
	if err != nil {
		return nil, err
	}
	if status.Locked {
		return nil, &LockedOutError{RetryAfter: status.RetryAfter}
	}

	ok := s.hasher.Verify(plaintext, user.PasswordHash)
	result, err := s.guard.CheckAndRecord(user.ID, ok)
	if err != nil {
		return nil, err
	}

	switch result.Outcome {
	case lockout.Locked:
		// Lock engaged between the check above and the record; the
		// guard is authoritative.
		return nil, &LockedOutError{RetryAfter: result.RetryAfter}
	case lockout.Rejected:
		return nil, ErrInvalidCredentials
	}

	sess, err := s.sessions.Create(user.ID)
	if err != nil {
		return nil, err
	}

	s.log.Info("login succeeded", zap.Uint("user_id", user.ID))
	return sess, nil
}

// RequestPasswordReset always returns a token-shaped value, even for
// unknown identifiers, so the response shape never reveals whether an
// account exists. The decoy is never stored and can never be redeemed.
func (s *Service) RequestPasswordReset(identifier string) (string, error) {
	user, err := s.resolve(identifier)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return resettoken.NewValue()
		}
		return "", err
	}
	return s.tokens.Issue(user.ID)
}

// PeekResetToken checks a token without consuming it, so the caller can
// confirm it before collecting the new password.
func (s *Service) PeekResetToken(token string) error {
	_, err := s.tokens.Peek(token)
	return err
}

// CompletePasswordReset redeems the token and installs the new
// password. A weak password leaves the token pending; on success the
// token is consumed, the hash replaced, and any lockout cleared.
func (s *Service) CompletePasswordReset(token, newPassword string) error {
	if err := s.policy.Validate(newPassword); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	userID, err := s.tokens.Consume(token)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePasswordHash(userID, hash); err != nil {
		return err
	}
	if err := s.guard.Reset(userID); err != nil {
		return err
	}

	s.log.Info("password reset completed", zap.Uint("user_id", userID))
	return nil
}

// ChangePassword replaces the password of a live session's user after
// re-verifying the current one. The new password must differ.
func (s *Service) ChangePassword(sessionID, current, newPassword string) error {
	userID, err := s.sessions.Validate(sessionID)
	if err != nil {
		return err
	}

	user, err := s.users.ByID(userID)
	if err != nil {
		return err
	}

	if !s.hasher.Verify(current, user.PasswordHash) {
		return ErrInvalidCredentials
	}
	if err := s.policy.Validate(newPassword); err != nil {
		return err
	}
	if s.hasher.Verify(newPassword, user.PasswordHash) {
		return &WeakPasswordError{Reason: "must differ from the current password"}
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	if err := s.users.UpdatePasswordHash(userID, hash); err != nil {
		return err
	}

	s.log.Info("password changed", zap.Uint("user_id", userID))
	return nil
}

// Refresh validates a session and extends its idle window. Called on
// every authenticated action.
func (s *Service) Refresh(sessionID string) (uint, error) {
	userID, err := s.sessions.Validate(sessionID)
	if err != nil {
		return 0, err
	}
	if err := s.sessions.Touch(sessionID); err != nil {
		return 0, err
	}
	return userID, nil
}

// Logout revokes the session. Unknown ids are a no-op.
func (s *Service) Logout(sessionID string) error {
	return s.sessions.Revoke(sessionID)
}
