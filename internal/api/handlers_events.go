package api

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/medtrack/internal/models"
	"github.com/terraincognita07/medtrack/internal/realtime"
	"github.com/terraincognita07/medtrack/internal/services"
	"github.com/valyala/fasthttp"
)

const (
	eventDashboard = "dashboard"
	eventError     = "error"
)

// Events streams DashboardView frames for one patient. Every change signal
// triggers a full refetch; the signal itself carries no data.
func (handler *Handler) Events(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	patientID := user.ID
	if raw := c.Query("patient"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || parsed == 0 {
			return apiError(c, fiber.StatusBadRequest, "invalid patient id")
		}
		patientID = uint(parsed)
	}

	// Authorise and build the first frame before committing to a stream so
	// failures still get a regular status code.
	subscription, initial, err := handler.openDashboardStream(c.UserContext(), user, patientID)
	if err != nil {
		return handler.respondServiceError(c, err, "failed to load dashboard")
	}

	viewer := *user

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		ctx := context.Background()
		handler.metrics.StreamOpened(ctx)
		defer handler.metrics.StreamClosed(ctx)
		defer subscription.Close()

		handler.streamDashboard(ctx, w, &viewer, patientID, initial, subscription.C)
	}))
	return nil
}

// openDashboardStream subscribes to the patient's topic before reading the
// first view. A change committed while that view is built still leaves a
// signal pending, so the stream cannot start out stale.
func (handler *Handler) openDashboardStream(ctx context.Context, viewer *models.User, patientID uint) (*realtime.Subscription, services.DashboardView, error) {
	subscription := handler.hub.Subscribe(realtime.PatientTopic(patientID))

	initial, err := handler.summaries.BuildDashboard(ctx, viewer, patientID, handler.now())
	if err != nil {
		subscription.Close()
		return nil, services.DashboardView{}, err
	}
	return subscription, initial, nil
}

func (handler *Handler) streamDashboard(ctx context.Context, w *bufio.Writer, viewer *models.User, patientID uint, initial services.DashboardView, signals <-chan struct{}) {
	logger := handler.logger.With().Uint("patient_id", patientID).Uint("viewer_id", viewer.ID).Logger()

	if err := writeEvent(w, eventDashboard, initial); err != nil {
		return
	}

	heartbeat := time.NewTicker(handler.heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-handler.streamsDone:
			return
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			if _, err := w.WriteString(": keepalive\n\n"); err != nil {
				return
			}
			if err := w.Flush(); err != nil {
				return
			}
		case <-signals:
			view, err := handler.summaries.BuildDashboard(ctx, viewer, patientID, handler.now())
			if err != nil {
				// Access may have been revoked or the store may be down; either
				// way the client has to reconnect.
				logger.Warn().Err(err).Msg("refresh dashboard stream")
				_ = writeEvent(w, eventError, fiber.Map{"error": "dashboard unavailable"})
				return
			}
			if err := writeEvent(w, eventDashboard, view); err != nil {
				return
			}
		}
	}
}

func writeEvent(w *bufio.Writer, name string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data); err != nil {
		return err
	}
	return w.Flush()
}
