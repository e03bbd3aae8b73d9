package middleware

import (
	"errors"
	"strconv"
	"time"

	"ecocommute-backend/internal/infrastructure/metrics"
	"ecocommute-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// RouteLogger logs each request exit with status, duration and trace ID, and feeds
// the HTTP metrics when m is non-nil.
func RouteLogger(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		traceID := GetTraceID(c)
		if traceID == "" {
			traceID = "no-trace-id"
		}
		start := time.Now()
		log.Debug().Str("trace_id", traceID).Str("method", c.Method()).Str("path", c.Path()).Msg("Entering request")

		err := c.Next()

		elapsed := time.Since(start)
		status := c.Response().StatusCode()
		if err != nil {
			status = errorStatus(err)
		}
		log.Info().
			Str("trace_id", traceID).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Int64("ms", elapsed.Milliseconds()).
			Msg("Exiting request")

		if m != nil {
			route := c.Route().Path
			m.HTTPRequests.WithLabelValues(route, c.Method(), strconv.Itoa(status)).Inc()
			m.HTTPDuration.WithLabelValues(route, c.Method()).Observe(elapsed.Seconds())
		}
		return err
	}
}

// errorStatus is the status the error handler will answer with for err.
func errorStatus(err error) int {
	if code, ok := response.StatusFor(err); ok {
		return code
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}
