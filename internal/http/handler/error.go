package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"attendapi/internal/http/middleware"
	"attendapi/internal/imageutil"
	"attendapi/internal/qrcode"
	"attendapi/internal/roster"
	"attendapi/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Fields  []fieldError `json:"fields,omitempty"`
}

// importFailurePayload is the error body of an import that stopped part way.
// Report counts what was already written.
type importFailurePayload struct {
	errorPayload
	Report *service.ImportReport `json:"report"`
}

// fieldError describes one rejected request field.
type fieldError struct {
	Field   string `json:"field"`
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
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return writeErrorFields(c, status, code, message, nil)
}

func writeErrorFields(c *fiber.Ctx, status int, code, message string, fields []fieldError) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
			Fields:  fields,
		},
	}
	return c.Status(status).JSON(res)
}

type errorMapping struct {
	err    error
	status int
	code   string
}

// serviceErrors maps domain sentinels to responses. The sentinel text is the client message.
var serviceErrors = []errorMapping{
	{qrcode.ErrMalformed, fiber.StatusBadRequest, "INVALID_CODE"},
	{qrcode.ErrExpired, fiber.StatusGone, "CODE_EXPIRED"},
	{qrcode.ErrNotYetValid, fiber.StatusBadRequest, "CODE_NOT_YET_VALID"},
	{service.ErrCodeUnknown, fiber.StatusBadRequest, "CODE_UNKNOWN"},
	{service.ErrWrongClass, fiber.StatusForbidden, "WRONG_CLASS"},
	{service.ErrNotBound, fiber.StatusConflict, "NOT_BOUND"},
	{service.ErrAlreadyCheckedIn, fiber.StatusConflict, "ALREADY_CHECKED_IN"},
	{imageutil.ErrNotImage, fiber.StatusBadRequest, "INVALID_PHOTO"},
	{service.ErrInvalidCredentials, fiber.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{service.ErrPasswordTooShort, fiber.StatusBadRequest, "PASSWORD_TOO_SHORT"},
	{service.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{service.ErrUserNotFound, fiber.StatusNotFound, "USER_NOT_FOUND"},
	{service.ErrUserExists, fiber.StatusConflict, "USER_EXISTS"},
	{service.ErrInvalidRole, fiber.StatusBadRequest, "INVALID_ROLE"},
	{service.ErrClassNotFound, fiber.StatusNotFound, "CLASS_NOT_FOUND"},
	{service.ErrClassExists, fiber.StatusConflict, "CLASS_EXISTS"},
	{service.ErrVerificationMismatch, fiber.StatusBadRequest, "VERIFICATION_MISMATCH"},
	{service.ErrAlreadyBound, fiber.StatusConflict, "ALREADY_BOUND"},
	{service.ErrCourseNotFound, fiber.StatusNotFound, "COURSE_NOT_FOUND"},
	{service.ErrNotATeacher, fiber.StatusBadRequest, "NOT_A_TEACHER"},
	{service.ErrAttendanceNotFound, fiber.StatusNotFound, "ATTENDANCE_NOT_FOUND"},
	{service.ErrNoPhoto, fiber.StatusNotFound, "NO_PHOTO"},
	{service.ErrInvalidDate, fiber.StatusBadRequest, "INVALID_DATE"},
	{service.ErrIDRequired, fiber.StatusBadRequest, "ID_REQUIRED"},
	{service.ErrReaderNil, fiber.StatusBadRequest, "FILE_REQUIRED"},
	{roster.ErrUnknownFormat, fiber.StatusBadRequest, "INVALID_FORMAT"},
}

// writeServiceError translates a service error. Unknown errors become a 500 and
// are handed to the access log instead of the client.
func writeServiceError(c *fiber.Ctx, err error) error {
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			return writeError(c, m.status, m.code, m.err.Error())
		}
	}
	c.Locals(middleware.ErrorLocalKey, err.Error())
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var e *fiber.Error
		if errors.As(err, &e) {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			return writeError(c, status, "UNAUTHORIZED", e.Message)
		case fiber.StatusForbidden:
			return writeError(c, status, "FORBIDDEN", e.Message)
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "PAYLOAD_TOO_LARGE", "request body too large")
		default:
			c.Locals(middleware.ErrorLocalKey, err.Error())
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
