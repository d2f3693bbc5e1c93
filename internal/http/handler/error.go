package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"docintake/internal/gateway"
	"docintake/internal/http/middleware"
	"docintake/internal/registry"
	"docintake/internal/service"
	"docintake/internal/session"
	"docintake/internal/storage"
	"docintake/internal/validation"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "BACKEND_ERROR")
// - message: human-readable safe message
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// writeServiceError maps pipeline errors to a status and code. Upload
// failures carry their operator-facing reason as the message; backend
// failures surface the backend's own text when it sent one.
func writeServiceError(c *fiber.Ctx, err error) error {
	var serr *session.Error
	isSession := errors.As(err, &serr)
	message := func(fallback string) string {
		if isSession && serr.Reason != "" {
			return serr.Reason
		}
		return fallback
	}

	var (
		reqErr    *service.RequestError
		transport *gateway.TransportError
		malformed *gateway.MalformedResponseError
	)

	switch {
	case errors.Is(err, session.ErrSlotBusy):
		return writeError(c, fiber.StatusConflict, "SLOT_BUSY", "an upload is already in progress for this slot")
	case errors.Is(err, validation.ErrInvalidFileType):
		return writeError(c, fiber.StatusBadRequest, "INVALID_FILE_TYPE", message(session.ReasonInvalidFileType))
	case errors.Is(err, validation.ErrFileTooLarge):
		return writeError(c, fiber.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", message(session.ReasonFileTooLarge))
	case errors.Is(err, service.ErrIDRequired):
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "candidate id is required")
	case errors.Is(err, service.ErrInvalidDocumentType):
		return writeError(c, fiber.StatusBadRequest, "INVALID_DOCUMENT_TYPE", service.ErrInvalidDocumentType.Error())
	case errors.Is(err, registry.ErrConfirmationRequired):
		return writeError(c, fiber.StatusPreconditionFailed, "CONFIRMATION_REQUIRED", "removal must be confirmed with confirm=true")
	case errors.Is(err, service.ErrNotFound), errors.Is(err, gateway.ErrNotFound), errors.Is(err, registry.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "resource not found")
	case errors.Is(err, service.ErrNotArchived), errors.Is(err, storage.ErrDisabled):
		return writeError(c, fiber.StatusNotFound, "NOT_ARCHIVED", "document original is not archived")
	case errors.As(err, &reqErr):
		return writeError(c, fiber.StatusBadGateway, "BACKEND_ERROR", reqErr.Message)
	case errors.As(err, &transport), errors.As(err, &malformed):
		return writeError(c, fiber.StatusBadGateway, "BACKEND_ERROR", message(gateway.Message(err, "backend request failed")))
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "FILE_TOO_LARGE", "request body too large")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
