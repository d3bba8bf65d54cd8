package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jortega/routesketch/internal/core/domain"
	"github.com/jortega/routesketch/internal/pkg/metrics"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // Error code: bad_request, not_found, editor_busy, etc.
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, 400, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, 404, "not_found", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, 500, "internal_error", msg)
}

// errConflict returns a 409 error with a specific code.
func errConflict(c *fiber.Ctx, code, msg string) error {
	return newError(c, 409, code, msg)
}

// domainError maps editor errors onto HTTP responses. Busy and consistency
// rejections are conflicts: the request was well-formed, the model just
// cannot take it right now.
func domainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrEditorBusy):
		metrics.GesturesRejectedBusy.Inc()
		return errConflict(c, "editor_busy", "another edit is in progress")
	case errors.Is(err, domain.ErrMarkerNotFound),
		errors.Is(err, domain.ErrLineNotFound):
		return errNotFound(c, err.Error())
	case errors.Is(err, domain.ErrInconsistentRoute):
		return errConflict(c, "inconsistent_route", err.Error())
	case errors.Is(err, domain.ErrEditSessionActive):
		return errConflict(c, "edit_session_active", "a bulk-edit session is already open")
	case errors.Is(err, domain.ErrNoEditSession):
		return errConflict(c, "no_edit_session", "no bulk-edit session is open")
	case errors.Is(err, domain.ErrGapNotClosed):
		return errConflict(c, "gap_not_closed", "the drawn section has not reached the finish marker")
	default:
		return errInternal(c, err.Error())
	}
}
