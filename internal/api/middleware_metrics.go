package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// RequestMetrics records one counter and latency sample per request, keyed
// by the matched route pattern rather than the raw path.
func (handler *Handler) RequestMetrics(c *fiber.Ctx) error {
	started := time.Now()
	chainErr := c.Next()

	status := c.Response().StatusCode()
	if chainErr != nil {
		status = fiber.StatusInternalServerError
		if fiberErr, ok := chainErr.(*fiber.Error); ok {
			status = fiberErr.Code
		}
	}

	route := c.Path()
	if matched := c.Route(); matched != nil && matched.Path != "" {
		route = matched.Path
	}
	handler.metrics.RecordHTTPRequest(c.UserContext(), c.Method(), route, status, time.Since(started))
	return chainErr
}
