// Package validators contains input validators shared by the auth endpoints
package validators

import (
	"errors"
	"net/mail"
	"strings"
)

var (
	ErrEmailEmpty   = errors.New("no email address provided")
	ErrEmailInvalid = errors.New("invalid email address provided")
)

func EmailValidator(e string) error {
	if e == "" {
		return ErrEmailEmpty
	}

	addr, err := mail.ParseAddress(e)
	if err != nil {
		return ErrEmailInvalid
	}

	// Reject "Name <a@b.com>" forms, only a bare address is a login id
	if addr.Address != e {
		return ErrEmailInvalid
	}

	return nil
}

// NormalizeEmail case-folds an address for storage and lookup. Emails are
// unique case-insensitively.
func NormalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
