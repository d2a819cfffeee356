// Package validation holds the field checks and date codec applied at the
// HTTP boundary.
package validation

import (
	"fmt"
	"net/mail"
	"strings"
)

// FieldError describes one invalid input field.
type FieldError struct {
	Field string `json:"field"`
	Err   string `json:"error"`
}

// FieldErrors collects every problem found in one payload.
type FieldErrors []FieldError

// Add records a failure for field.
func (fe *FieldErrors) Add(field, format string, args ...any) {
	*fe = append(*fe, FieldError{Field: field, Err: fmt.Sprintf(format, args...)})
}

// Err returns nil when nothing was recorded.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

func (fe FieldErrors) Error() string {
	parts := make([]string, len(fe))
	for i, e := range fe {
		parts[i] = e.Field + ": " + e.Err
	}
	return strings.Join(parts, "; ")
}

// Required reports whether s has non-blank content.
func Required(s string) bool {
	return strings.TrimSpace(s) != ""
}

// Email reports whether s is a bare address such as a@b.test.
func Email(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
