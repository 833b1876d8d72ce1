package password

import (
	"fmt"
	"strings"
	"unicode"
)

const specialChars = `!@#$%^&*(),.?":{}|<>`

// WeakError names the first strength rule a candidate password violates.
type WeakError struct {
	Reason string
}

func (e *WeakError) Error() string {
	return fmt.Sprintf("weak password: %s", e.Reason)
}

// Policy checks password strength. It is a pure function of the
// candidate string and is independent of hashing.
type Policy struct {
	MinLength int
	MaxLength int
}

func DefaultPolicy() Policy {
	return Policy{MinLength: 8, MaxLength: 128}
}

// Validate enforces the rule set: MinLength..MaxLength characters with
// at least one uppercase letter, one lowercase letter, one digit and
// one special character.
func (p Policy) Validate(plaintext string) error {
	if plaintext == "" {
		return &WeakError{Reason: "password is required"}
	}
	if len(plaintext) < p.MinLength {
		return &WeakError{Reason: fmt.Sprintf("must be at least %d characters long", p.MinLength)}
	}
	if len(plaintext) > p.MaxLength {
		return &WeakError{Reason: fmt.Sprintf("must be no more than %d characters long", p.MaxLength)}
	}

	var upper, lower, digit, special bool
	for _, r := range plaintext {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(specialChars, r):
			special = true
		}
	}

	switch {
	case !upper:
		return &WeakError{Reason: "must contain at least one uppercase letter"}
	case !lower:
		return &WeakError{Reason: "must contain at least one lowercase letter"}
	case !digit:
		return &WeakError{Reason: "must contain at least one number"}
	case !special:
		return &WeakError{Reason: "must contain at least one special character"}
	}

	return nil
}
