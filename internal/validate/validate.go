// Package validate collects per-field input errors so a write operation can
// report every problem at once instead of stopping at the first.
package validate

import (
	"errors"
	"net/mail"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrInvalidInput is matched by errors.Is on any non-empty Errors.
var ErrInvalidInput = errors.New("invalid input")

// Errors maps a field name to the first problem found with it.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (e Errors) Is(target error) bool {
	return target == ErrInvalidInput
}

// Add records msg for field unless the field already has a message.
func (e Errors) Add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

// Check adds msg for field when ok is false.
func (e Errors) Check(ok bool, field, msg string) {
	if !ok {
		e.Add(field, msg)
	}
}

// Err returns nil when nothing was recorded.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Field builds a single-field error.
func Field(field, msg string) Errors {
	return Errors{field: msg}
}

var (
	phonePrefixRe = regexp.MustCompile(`^\+\d+$`)
	phoneNumberRe = regexp.MustCompile(`^\d{5,15}$`)
)

func Length(s string, min, max int) bool {
	n := utf8.RuneCountInString(s)
	return n >= min && (max <= 0 || n <= max)
}

func Email(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func PhonePrefix(s string) bool {
	return phonePrefixRe.MatchString(s)
}

func PhoneNumber(s string) bool {
	return phoneNumberRe.MatchString(s)
}

// Password requires at least 8 characters, one uppercase letter and one digit.
func Password(s string) bool {
	if utf8.RuneCountInString(s) < 8 {
		return false
	}
	var upper, digit bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && digit
}

func OneOf(s string, allowed ...string) bool {
	for _, a := range allowed {
		if s == a {
			return true
		}
	}
	return false
}
