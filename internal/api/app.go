package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
	"github.com/terraincognita07/medtrack/internal/logging"
)

const multipartOverhead = 1 << 20

type AppOptions struct {
	Logger       zerolog.Logger
	EnableCSRF   bool
	CookieSecure bool
	// BodyLimit defaults to the photo limit plus room for form fields.
	BodyLimit int
}

// NewApp assembles the fiber application with the middleware stack and
// every route registered.
func NewApp(handler *Handler, options AppOptions) *fiber.App {
	bodyLimit := options.BodyLimit
	if bodyLimit <= 0 {
		bodyLimit = int(handler.photoMaxBytes) + multipartOverhead
	}

	app := fiber.New(fiber.Config{
		AppName:               "medtrack",
		DisableStartupMessage: true,
		BodyLimit:             bodyLimit,
		ErrorHandler:          jsonErrorHandler(options.Logger),
	})

	app.Use(recover.New())
	app.Use(logging.RequestLogger(options.Logger))
	app.Use(handler.RequestMetrics)
	app.Use(compress.New(compress.Config{
		Next: isEventStreamRequest,
	}))
	if options.EnableCSRF {
		app.Use(csrf.New(csrfMiddlewareConfig(options.CookieSecure)))
	}

	RegisterRoutes(app, handler)
	app.Use(handler.NotFound)
	return app
}

func csrfMiddlewareConfig(cookieSecure bool) csrf.Config {
	return csrf.Config{
		KeyLookup:      "header:X-CSRF-Token",
		CookieName:     csrfCookieName,
		CookieSameSite: "Lax",
		CookieHTTPOnly: true,
		CookieSecure:   cookieSecure,
		ContextKey:     "csrf",
		ErrorHandler: func(c *fiber.Ctx, _ error) error {
			return apiError(c, fiber.StatusForbidden, "invalid csrf token")
		},
	}
}

func isEventStreamRequest(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Path(), "/api/events")
}

func jsonErrorHandler(logger zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := "internal server error"

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			status = fiberErr.Code
			message = fiberErr.Message
		}
		if status >= fiber.StatusInternalServerError {
			logger.Error().Err(err).Str("path", c.Path()).Msg("unhandled request error")
		}
		return apiError(c, status, message)
	}
}
