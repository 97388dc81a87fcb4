package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes carried by AppError.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeUpstream     = "UPSTREAM_ERROR"
	CodeInternal     = "INTERNAL_ERROR"
)

// Reasons refine UNAUTHORIZED and CONFLICT errors.
const (
	ReasonMissingToken  = "MissingToken"
	ReasonInvalidToken  = "InvalidToken"
	ReasonNotAuthorized = "NotAuthorized"
	ReasonAlreadyLiked  = "AlreadyLiked"
	ReasonNotLiked      = "NotLiked"
	// ReasonNoProfile marks a profile lookup miss, which the web client
	// expects as 400 rather than 404.
	ReasonNoProfile     = "NoProfile"
)

// FieldError describes one failed input rule.
type FieldError struct {
	Msg   string `json:"msg"`
	Param string `json:"param,omitempty"`
}

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Msg  string `json:"msg"`
	Code string `json:"code,omitempty"`
}

// ValidationErrorResponse is returned for VALIDATION_ERROR failures.
type ValidationErrorResponse struct {
	Errors []FieldError `json:"errors"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Reason  string
	Message string
	Fields  []FieldError
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches on code and reason so callers can compare against the sentinels below.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && (t.Reason == "" || e.Reason == t.Reason)
}

// Sentinels for errors.Is checks.
var (
	ErrMissingToken  = &AppError{Code: CodeUnauthorized, Reason: ReasonMissingToken}
	ErrInvalidToken  = &AppError{Code: CodeUnauthorized, Reason: ReasonInvalidToken}
	ErrNotAuthorized = &AppError{Code: CodeUnauthorized, Reason: ReasonNotAuthorized}
	ErrAlreadyLiked  = &AppError{Code: CodeConflict, Reason: ReasonAlreadyLiked}
	ErrNotLiked      = &AppError{Code: CodeConflict, Reason: ReasonNotLiked}
	ErrNotFound      = &AppError{Code: CodeNotFound}
	ErrNoProfile     = &AppError{Code: CodeNotFound, Reason: ReasonNoProfile}
	ErrValidation    = &AppError{Code: CodeValidation}
)

// Predefined error constructors
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: message,
	}
}

// NewProfileMissingError reports a profile lookup miss.
func NewProfileMissingError(message string) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Reason:  ReasonNoProfile,
		Message: message,
	}
}

func NewValidationError(message string, fields ...FieldError) *AppError {
	if len(fields) == 0 {
		fields = []FieldError{{Msg: message}}
	}
	return &AppError{
		Code:    CodeValidation,
		Message: message,
		Fields:  fields,
	}
}

func NewAuthError(reason, message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Reason:  reason,
		Message: message,
	}
}

func NewConflictError(reason, message string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Reason:  reason,
		Message: message,
	}
}

func NewUpstreamError(message string, err error) *AppError {
	return &AppError{
		Code:    CodeUpstream,
		Message: message,
		Err:     err,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Server Error",
		Err:     err,
	}
}

// StatusFor maps an error onto the HTTP status used for it.
func StatusFor(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case CodeValidation, CodeConflict:
		return fiber.StatusBadRequest
	case CodeUnauthorized:
		return fiber.StatusUnauthorized
	case CodeNotFound:
		if appErr.Reason == ReasonNoProfile {
			return fiber.StatusBadRequest
		}
		return fiber.StatusNotFound
	case CodeUpstream:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// RespondWithError creates a standardized error response. Internal errors never
// expose their cause to the caller.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return c.Status(status).JSON(ErrorResponse{Msg: "Server Error", Code: CodeInternal})
	}

	if appErr.Code == CodeValidation {
		return c.Status(status).JSON(ValidationErrorResponse{Errors: appErr.Fields})
	}

	msg := appErr.Message
	if appErr.Code == CodeInternal {
		msg = "Server Error"
	}
	return c.Status(status).JSON(ErrorResponse{Msg: msg, Code: appErr.Code})
}
