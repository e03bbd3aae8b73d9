package response

import (
	"errors"

	"ecocommute-backend/internal/domain"

	"github.com/gofiber/fiber/v2"
)

// SuccessBody is the standardized success JSON shape.
type SuccessBody struct {
	Status   string      `json:"status"`
	Message  string      `json:"message"`
	Data     interface{} `json:"data"`
	Metadata interface{} `json:"metadata,omitempty"`
}

// ErrorBody is the standardized error JSON shape.
type ErrorBody struct {
	Status string      `json:"status"`
	Error  ErrorDetail `json:"error"`
}

// ErrorDetail is the nested error object.
type ErrorDetail struct {
	Message    string      `json:"message"`
	StatusCode int         `json:"statusCode"`
	Details    interface{} `json:"details,omitempty"`
}

const statusSuccess = "success"
const statusError = "error"

func send(c *fiber.Ctx, code int, message string, data, metadata interface{}) error {
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	return c.Status(code).JSON(SuccessBody{
		Status:   statusSuccess,
		Message:  message,
		Data:     data,
		Metadata: metadata,
	})
}

// Success sends a 200 OK response with the standard success format.
func Success(c *fiber.Ctx, message string, data interface{}, metadata interface{}) error {
	return send(c, fiber.StatusOK, message, data, metadata)
}

// SuccessCreated sends a 201 Created response with the standard success format.
func SuccessCreated(c *fiber.Ctx, message string, data interface{}, metadata interface{}) error {
	return send(c, fiber.StatusCreated, message, data, metadata)
}

// Error sends a response with the standard error format.
func Error(c *fiber.Ctx, message string, statusCode int, details interface{}) error {
	if details == nil {
		details = map[string]interface{}{}
	}
	return c.Status(statusCode).JSON(ErrorBody{
		Status: statusError,
		Error: ErrorDetail{
			Message:    message,
			StatusCode: statusCode,
			Details:    details,
		},
	})
}

// Unauthorized sends 401 with the same shape as other errors.
func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, message, fiber.StatusUnauthorized, nil)
}

// Forbidden sends 403 with the standard error format.
func Forbidden(c *fiber.Ctx, message string) error {
	return Error(c, message, fiber.StatusForbidden, nil)
}

// Conflicts that the public API reports as bad requests.
var badRequestConflicts = []error{
	domain.ErrSelfFulfillment,
	domain.ErrDuplicateRequest,
	domain.ErrUsernameTaken,
	domain.ErrCompanyExists,
}

// StatusFor maps a domain error to its HTTP status. ok is false for errors that
// carry no domain kind.
func StatusFor(err error) (code int, ok bool) {
	for _, e := range badRequestConflicts {
		if errors.Is(err, e) {
			return fiber.StatusBadRequest, true
		}
	}
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInsufficientCredits):
		return fiber.StatusBadRequest, true
	case errors.Is(err, domain.ErrUnauthenticated):
		return fiber.StatusUnauthorized, true
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, true
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, true
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, true
	case errors.Is(err, domain.ErrUnavailable):
		return fiber.StatusNotImplemented, true
	}
	return fiber.StatusInternalServerError, false
}

// FromError writes a domain error with its mapped status. Anything else is returned
// unchanged so the app error handler logs it and answers 500.
func FromError(c *fiber.Ctx, err error) error {
	code, ok := StatusFor(err)
	if !ok {
		return err
	}
	return Error(c, err.Error(), code, nil)
}
