package middleware

import (
	"errors"
	"time"

	healthsvc "ecocommute-backend/internal/application/health"
	"ecocommute-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// NewErrorHandler is the app-wide error handler. Domain errors keep their mapped
// status; *fiber.Error keeps its code; anything else is logged, pushed to the health
// error log, and answered with a generic 500.
func NewErrorHandler(health *healthsvc.Service) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if code, ok := response.StatusFor(err); ok {
			return response.Error(c, err.Error(), code, nil)
		}

		code := fiber.StatusInternalServerError
		message := "Internal Server Error"
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		}

		if code >= fiber.StatusInternalServerError {
			traceID := GetTraceID(c)
			log.Error().Err(err).Str("trace_id", traceID).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
			if lerr := health.LogError(c.UserContext(), healthsvc.ErrorEntry{
				Time:    time.Now().UTC(),
				TraceID: traceID,
				Method:  c.Method(),
				Path:    c.OriginalURL(),
				Status:  code,
				Message: err.Error(),
			}); lerr != nil {
				log.Warn().Err(lerr).Msg("error log push failed")
			}
		}
		return response.Error(c, message, code, nil)
	}
}
