// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"devconnect/internal/models"
)

// Validator collects field failures so a request can report all of them at once.
type Validator struct {
	fields []models.FieldError
}

// Add records a failure for param.
func (v *Validator) Add(param, msg string) {
	v.fields = append(v.fields, models.FieldError{Msg: msg, Param: param})
}

// Required fails when value is empty after trimming.
func (v *Validator) Required(param, value, msg string) {
	if strings.TrimSpace(value) == "" {
		v.Add(param, msg)
	}
}

// RequiredTime fails when t is the zero time.
func (v *Validator) RequiredTime(param string, t time.Time, msg string) {
	if t.IsZero() {
		v.Add(param, msg)
	}
}

// Email fails when value is not a bare address such as "a@b.io".
func (v *Validator) Email(param, value, msg string) {
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != strings.TrimSpace(value) || !strings.Contains(addr.Address, ".") {
		v.Add(param, msg)
	}
}

// Check records msg when ok is false.
func (v *Validator) Check(ok bool, param, msg string) {
	if !ok {
		v.Add(param, msg)
	}
}

// Valid reports whether no failures were recorded.
func (v *Validator) Valid() bool {
	return len(v.fields) == 0
}

// Err returns a VALIDATION_ERROR carrying every recorded failure, or nil.
func (v *Validator) Err() error {
	if v.Valid() {
		return nil
	}
	return models.NewValidationError(v.fields[0].Msg, v.fields...)
}

// dateLayouts are tried in order by ParseDate.
var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// ParseDate accepts an RFC 3339 timestamp or a plain YYYY-MM-DD date. An empty
// string yields the zero time without error.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
