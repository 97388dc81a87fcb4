package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidationError("Status is required"), fiber.StatusBadRequest},
		{"conflict", NewConflictError(ReasonAlreadyLiked, "Post already liked"), fiber.StatusBadRequest},
		{"unauthorized", NewAuthError(ReasonNotAuthorized, "User not authorized"), fiber.StatusUnauthorized},
		{"not found", NewNotFoundError("No post found"), fiber.StatusNotFound},
		{"profile missing", NewProfileMissingError("There is no profile for this user"), fiber.StatusBadRequest},
		{"upstream", NewUpstreamError("No GitHub profile found", errors.New("502")), fiber.StatusNotFound},
		{"wrapped", fmt.Errorf("ctx: %w", NewNotFoundError("x")), fiber.StatusNotFound},
		{"plain", errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestAppError_Is(t *testing.T) {
	t.Parallel()
	err := NewAuthError(ReasonInvalidToken, "Token is not valid")
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.NotErrorIs(t, err, ErrMissingToken)
	assert.ErrorIs(t, NewNotFoundError("Comment does not exist"), ErrNotFound)
	assert.ErrorIs(t, NewProfileMissingError("Profile not found"), ErrNotFound)
	assert.NotErrorIs(t, NewNotFoundError("No post found"), ErrNoProfile)
}

func TestRespondWithError(t *testing.T) {
	t.Parallel()
	app := fiber.New()
	app.Get("/validation", func(c *fiber.Ctx) error {
		return RespondWithError(c, fiber.StatusBadRequest, NewValidationError("invalid",
			FieldError{Msg: "Status is required", Param: "status"},
			FieldError{Msg: "Skills is required", Param: "skills"},
		))
	})
	app.Get("/internal", func(c *fiber.Ctx) error {
		return RespondWithError(c, fiber.StatusInternalServerError, NewInternalError(errors.New("dsn leaked")))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/validation", nil))
	require.NoError(t, err)
	var v ValidationErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	require.Len(t, v.Errors, 2)
	assert.Equal(t, "status", v.Errors[0].Param)

	resp, err = app.Test(httptest.NewRequest("GET", "/internal", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.NotContains(t, string(body), "dsn leaked")
	assert.Contains(t, string(body), "Server Error")
}
