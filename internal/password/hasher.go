package password

import (
	"golang.org/x/crypto/bcrypt"
)

// Hasher wraps bcrypt with a configurable cost. The cost is tuned so a
// single verification takes tens of milliseconds on commodity hardware.
type Hasher struct {
	cost int
}

func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

func (h *Hasher) Hash(plaintext string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	return string(bytes), err
}

// Verify reports whether plaintext matches hash. A malformed hash is
// indistinguishable from a mismatch: both return false.
func (h *Hasher) Verify(plaintext, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	return err == nil
}

// DummyVerify burns the same CPU as a real verification so callers can
// level response timing for unknown accounts.
func (h *Hasher) DummyVerify() {
	hash, err := bcrypt.GenerateFromPassword([]byte("dummy"), h.cost)
	if err != nil {
		return
	}
	_ = bcrypt.CompareHashAndPassword(hash, []byte("mismatch"))
}
