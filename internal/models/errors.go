package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes carried by AppError.
const (
	// CodeValidation is returned for caller-correctable input problems,
	// such as publishing a post with required fields missing.
	CodeValidation = "VALIDATION_ERROR"
	// CodeNotFound covers both "no such resource" and "resource owned by
	// someone else". The two are intentionally indistinguishable so the API
	// never leaks the existence of other authors' drafts.
	CodeNotFound = "NOT_FOUND"
	// CodeConflictIgnored marks a toggle race resolved by treating the
	// uniqueness-constraint rejection as the already-desired state.
	CodeConflictIgnored = "CONFLICT_IGNORED"
	// CodeStore marks a transient persistence failure not attributable to
	// caller input (pool exhaustion, query failure).
	CodeStore = "STORE_ERROR"
)

// ErrorResponse represents a standardized API error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// AppError is the application error type; Code drives propagation policy.
type AppError struct {
	Code    string
	Message string
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

// NewValidationError returns a caller-correctable validation error.
func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

// NewNotFoundError returns the merged not-found/forbidden error for a
// resource. The message names only the resource kind, never the reason.
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewConflictIgnoredError wraps a uniqueness-constraint rejection that the
// toggle layer resolves as "edge already in the desired state".
func NewConflictIgnoredError(err error) *AppError {
	return &AppError{
		Code:    CodeConflictIgnored,
		Message: "conflicting concurrent update ignored",
		Err:     err,
	}
}

// NewStoreError wraps a transient persistence failure.
func NewStoreError(err error) *AppError {
	return &AppError{
		Code:    CodeStore,
		Message: "storage unavailable",
		Err:     err,
	}
}

// HasCode reports whether err is an AppError carrying the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// httpStatus maps an error code to the HTTP status used when no explicit
// status was chosen by the handler.
func httpStatus(code string) int {
	switch code {
	case CodeValidation:
		return fiber.StatusBadRequest
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeStore:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// RespondWithError writes a standardized error response. AppError codes pick
// their own status; anything else is an internal error.
func RespondWithError(c *fiber.Ctx, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return c.Status(httpStatus(appErr.Code)).JSON(ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error: "internal server error",
	})
}
