package validation

import (
	"errors"
	"testing"
	"time"

	"devconnect/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_CollectsAllFailures(t *testing.T) {
	t.Parallel()
	var v Validator
	v.Required("status", " ", "Status is required")
	v.Required("skills", "", "Skills is required")
	v.Required("company", "acme", "Company is required")

	err := v.Err()
	require.Error(t, err)

	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, models.CodeValidation, appErr.Code)
	assert.Equal(t, []models.FieldError{
		{Msg: "Status is required", Param: "status"},
		{Msg: "Skills is required", Param: "skills"},
	}, appErr.Fields)
}

func TestValidator_NoFailures(t *testing.T) {
	t.Parallel()
	var v Validator
	v.Required("text", "hello", "Text is required")
	v.RequiredTime("from", time.Now(), "From date is required")
	assert.True(t, v.Valid())
	assert.NoError(t, v.Err())
}

func TestValidator_Email(t *testing.T) {
	t.Parallel()
	tests := []struct {
		email string
		valid bool
	}{
		{"dev@example.com", true},
		{"first.last@sub.example.io", true},
		{"", false},
		{"not-an-email", false},
		{"Dev <dev@example.com>", false},
		{"dev@localhost", false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.email, func(t *testing.T) {
			t.Parallel()
			var v Validator
			v.Email("email", tt.email, "Please include a valid email")
			assert.Equal(t, tt.valid, v.Valid())
		})
	}
}

func TestParseDate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		in      string
		want    time.Time
		wantErr bool
	}{
		{"empty", "", time.Time{}, false},
		{"date only", "2019-06-01", time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC), false},
		{"rfc3339", "2019-06-01T10:30:00Z", time.Date(2019, 6, 1, 10, 30, 0, 0, time.UTC), false},
		{"offset normalized", "2019-06-01T12:30:00+02:00", time.Date(2019, 6, 1, 10, 30, 0, 0, time.UTC), false},
		{"garbage", "June first", time.Time{}, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseDate(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}
}
