package auth

import (
	"net/mail"
	"regexp"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// validateUsername enforces 3..20 characters from [A-Za-z0-9_].
func validateUsername(username string) error {
	if len(username) < 3 || len(username) > 20 {
		return ErrInvalidUsername
	}
	if !usernamePattern.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail
	}
	return nil
}
