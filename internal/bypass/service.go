package bypass

import (
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/evanhrs/budgetapp/internal/clock"
	"github.com/evanhrs/budgetapp/internal/lockout"
	"github.com/evanhrs/budgetapp/internal/store"
)

var (
	// ErrDenied covers every refusal: bad proof, disabled capability,
	// unknown target. A caller learns nothing beyond "denied".
	ErrDenied = errors.New("emergency unlock denied")
)

// Service is the administrative path that clears lockout state outside
// the normal credential and token flows. It is deliberately a separate
// entry point with its own proof requirement so it cannot be reached
// through the login state machine.
type Service struct {
	users store.Users
	guard *lockout.Guard
	audit *AuditLog
	clk   clock.Clock
	log   *zap.Logger

	// bcrypt hash of the administrative secret; empty disables the
	// capability outright.
	secretHash string
}

func NewService(users store.Users, guard *lockout.Guard, audit *AuditLog, clk clock.Clock, log *zap.Logger, secretHash string) *Service {
	return &Service{
		users:      users,
		guard:      guard,
		audit:      audit,
		clk:        clk,
		log:        log,
		secretHash: secretHash,
	}
}

func (s *Service) proofValid(proof string) bool {
	if s.secretHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(s.secretHash), []byte(proof)) == nil
}

// ForceUnlock clears the failed-attempt counter and any lock on the
// target account. The proof is the administrative secret, never the
// target user's own credentials. Every invocation, granted or denied,
// lands in the audit log.
func (s *Service) ForceUnlock(actor, targetIdentifier, proof string) (AuditRecord, error) {
	user, lookupErr := s.users.ByUsername(targetIdentifier)
	if lookupErr != nil && errors.Is(lookupErr, store.ErrNotFound) {
		user, lookupErr = s.users.ByEmail(targetIdentifier)
	}

	if !s.proofValid(proof) {
		var target uint
		if user != nil {
			target = user.ID
		}
		record := s.audit.append(actor, target, false, s.clk.Now())
		s.log.Warn("emergency unlock denied",
			zap.String("actor", actor),
			zap.String("audit_id", record.ID))
		return record, ErrDenied
	}

	if lookupErr != nil {
		if errors.Is(lookupErr, store.ErrNotFound) {
			record := s.audit.append(actor, 0, false, s.clk.Now())
			return record, ErrDenied
		}
		return AuditRecord{}, lookupErr
	}

	if err := s.guard.Reset(user.ID); err != nil {
		return AuditRecord{}, err
	}

	record := s.audit.append(actor, user.ID, true, s.clk.Now())
	s.log.Info("emergency unlock granted",
		zap.String("actor", actor),
		zap.Uint("target_user_id", user.ID),
		zap.String("audit_id", record.ID))
	return record, nil
}
