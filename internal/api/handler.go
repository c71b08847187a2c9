// Package api exposes the medtrack JSON API and the dashboard event stream
// over fiber.
package api

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/terraincognita07/medtrack/internal/realtime"
	"github.com/terraincognita07/medtrack/internal/services"
	"github.com/terraincognita07/medtrack/internal/storage"
	"github.com/terraincognita07/medtrack/internal/telemetry"
)

const (
	defaultAuthTokenTTL  = services.DefaultSessionTTL
	rememberAuthTokenTTL = 30 * 24 * time.Hour

	defaultHeartbeatInterval = 25 * time.Second
)

// Metrics is the subset of telemetry the HTTP layer records.
type Metrics interface {
	RecordHTTPRequest(ctx context.Context, method string, route string, statusCode int, duration time.Duration)
	RecordAuthFailure(ctx context.Context, reason string)
	StreamOpened(ctx context.Context)
	StreamClosed(ctx context.Context)
}

type MetricsSource interface {
	Snapshot(ctx context.Context) ([]telemetry.Point, error)
}

type Dependencies struct {
	Auth          *services.AuthService
	Intakes       *services.IntakeService
	Links         *services.LinkService
	Summaries     *services.SummaryService
	Photos        storage.PhotoStore
	Hub           *realtime.Hub
	Metrics       Metrics
	MetricsSource MetricsSource
}

type Options struct {
	SecretKey         string
	CookieSecure      bool
	PhotoMaxBytes     int64
	Logger            zerolog.Logger
	HeartbeatInterval time.Duration
	Now               func() time.Time
}

type Handler struct {
	auth          *services.AuthService
	intakes       *services.IntakeService
	links         *services.LinkService
	summaries     *services.SummaryService
	photos        storage.PhotoStore
	hub           *realtime.Hub
	metrics       Metrics
	metricsSource MetricsSource

	secretKey         []byte
	cookieSecure      bool
	photoMaxBytes     int64
	heartbeatInterval time.Duration
	logger            zerolog.Logger
	loginLimiter      *attemptLimiter
	now               func() time.Time

	streamsDone  chan struct{}
	closeStreams sync.Once
}

func NewHandler(deps Dependencies, options Options) (*Handler, error) {
	if options.SecretKey == "" {
		return nil, errors.New("secret key is required")
	}
	if deps.Auth == nil || deps.Intakes == nil || deps.Links == nil || deps.Summaries == nil {
		return nil, errors.New("auth, intake, link and summary services are required")
	}
	if deps.Photos == nil || deps.Hub == nil {
		return nil, errors.New("photo store and realtime hub are required")
	}
	if deps.Metrics == nil {
		deps.Metrics = noopMetrics{}
	}
	if options.HeartbeatInterval <= 0 {
		options.HeartbeatInterval = defaultHeartbeatInterval
	}
	if options.Now == nil {
		options.Now = time.Now
	}

	return &Handler{
		auth:              deps.Auth,
		intakes:           deps.Intakes,
		links:             deps.Links,
		summaries:         deps.Summaries,
		photos:            deps.Photos,
		hub:               deps.Hub,
		metrics:           deps.Metrics,
		metricsSource:     deps.MetricsSource,
		secretKey:         []byte(options.SecretKey),
		cookieSecure:      options.CookieSecure,
		photoMaxBytes:     options.PhotoMaxBytes,
		heartbeatInterval: options.HeartbeatInterval,
		logger:            options.Logger,
		loginLimiter:      newAttemptLimiter(loginAttemptLimit, loginAttemptWindow),
		now:               options.Now,
		streamsDone:       make(chan struct{}),
	}, nil
}

// CloseStreams ends every open event stream so server shutdown is not held
// up by long-lived connections.
func (handler *Handler) CloseStreams() {
	handler.closeStreams.Do(func() {
		close(handler.streamsDone)
	})
}

type noopMetrics struct{}

func (noopMetrics) RecordHTTPRequest(context.Context, string, string, int, time.Duration) {}
func (noopMetrics) RecordAuthFailure(context.Context, string) {}
func (noopMetrics) StreamOpened(context.Context) {}
func (noopMetrics) StreamClosed(context.Context) {}
