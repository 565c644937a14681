package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/braidhq/braid/pkg/memory"
)

// ErrorBody is the structured error payload carried by every failure response.
type ErrorBody struct {
	Error     ErrorDetail `json:"error"`
	RequestID string      `json:"request_id"`
	Timestamp string      `json:"timestamp"`
}

// ErrorDetail describes the failure itself.
type ErrorDetail struct {
	Type    string         `json:"type"`
	Message string         `json:"message"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details"`
}

// statusForKind maps engine error kinds to HTTP statuses.
func statusForKind(kind memory.Kind) int {
	switch kind {
	case memory.KindValidation:
		return fiber.StatusBadRequest
	case memory.KindUnauthorized:
		return fiber.StatusUnauthorized
	case memory.KindRateLimited:
		return fiber.StatusTooManyRequests
	case memory.KindUnavailable, memory.KindStorage:
		return fiber.StatusServiceUnavailable
	case memory.KindNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// writeError renders the structured error envelope for a kinded failure.
func writeError(c *fiber.Ctx, kind memory.Kind, code, message string) error {
	return writeErrorDetails(c, kind, code, message, map[string]any{})
}

func writeErrorDetails(c *fiber.Ctx, kind memory.Kind, code, message string, details map[string]any) error {
	rid, _ := c.Locals(requestid.ConfigDefault.ContextKey).(string)

	return c.Status(statusForKind(kind)).JSON(ErrorBody{
		Error: ErrorDetail{
			Type:    string(kind),
			Message: message,
			Code:    code,
			Details: details,
		},
		RequestID: rid,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// writeEngineError maps an engine error to the envelope, preserving its kind
// and code when present.
func writeEngineError(c *fiber.Ctx, err error) error {
	kind := memory.KindOf(err)

	code := "internal_error"
	message := "an unexpected error occurred"
	var engineErr *memory.Error
	if errors.As(err, &engineErr) {
		code = engineErr.Code
		message = engineErr.Message
	}

	return writeError(c, kind, code, message)
}
