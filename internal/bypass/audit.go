package bypass

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// AuditRecord captures one emergency-unlock invocation: who acted, on
// which account, and when. Denied attempts are recorded too.
type AuditRecord struct {
	ID           string
	Actor        string
	TargetUserID uint
	Granted      bool
	At           time.Time
}

// AuditLog is an append-only in-process record of bypass invocations.
// Callers drain Records to feed whatever durable audit sink they run.
type AuditLog struct {
	mu      sync.RWMutex
	records []AuditRecord
}

func NewAuditLog() *AuditLog {
	return &AuditLog{}
}

func (l *AuditLog) append(actor string, target uint, granted bool, at time.Time) AuditRecord {
	record := AuditRecord{
		ID:           uuid.NewString(),
		Actor:        actor,
		TargetUserID: target,
		Granted:      granted,
		At:           at,
	}

	l.mu.Lock()
	l.records = append(l.records, record)
	l.mu.Unlock()

	return record
}

// Records returns a copy of all recorded invocations in order.
func (l *AuditLog) Records() []AuditRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]AuditRecord, len(l.records))
	copy(out, l.records)
	return out
}
