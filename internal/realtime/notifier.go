package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const publishTimeout = 5 * time.Second

// Notifier signals the local hub right away and forwards the change to the
// broker in the background, so writers never wait on the network.
type Notifier struct {
	hub       *Hub
	publisher EventPublisher
	logger    zerolog.Logger
	inflight  sync.WaitGroup
}

// NewNotifier accepts a nil publisher for single-instance deployments.
func NewNotifier(hub *Hub, publisher EventPublisher, logger zerolog.Logger) *Notifier {
	return &Notifier{
		hub:       hub,
		publisher: publisher,
		logger:    logger.With().Str("component", "notifier").Logger(),
	}
}

func (notifier *Notifier) NotifyIntakeChanged(_ context.Context, patientID uint, date string, isTaken bool) {
	notifier.hub.Publish(PatientTopic(patientID))
	if notifier.publisher == nil {
		return
	}

	event := IntakeChangedEvent{
		BaseEvent: NewBaseEvent(EventIntakeChanged),
		Data: IntakeChangedData{
			PatientID: patientID,
			Date:      date,
			IsTaken:   isTaken,
		},
	}

	notifier.inflight.Add(1)
	go func() {
		defer notifier.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := notifier.publisher.Publish(ctx, EventIntakeChanged, event); err != nil {
			notifier.logger.Warn().Err(err).Uint("patient_id", patientID).Msg("publish intake change")
		}
	}()
}

// Wait blocks until background publishes have finished.
func (notifier *Notifier) Wait() {
	notifier.inflight.Wait()
}
