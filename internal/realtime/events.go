package realtime

import (
	"time"

	"github.com/google/uuid"
)

const (
	ExchangeName = "medtrack.events"
	ExchangeType = "topic"

	EventIntakeChanged = "intake.changed"

	serviceName = "medtrack"
)

type BaseEvent struct {
	EventType   string    `json:"event_type"`
	EventID     string    `json:"event_id"`
	Timestamp   time.Time `json:"timestamp"`
	ServiceName string    `json:"service_name"`
}

func NewBaseEvent(eventType string) BaseEvent {
	return BaseEvent{
		EventType:   eventType,
		EventID:     uuid.NewString(),
		Timestamp:   time.Now().UTC(),
		ServiceName: serviceName,
	}
}

type IntakeChangedEvent struct {
	BaseEvent
	Data IntakeChangedData `json:"data"`
}

type IntakeChangedData struct {
	PatientID uint   `json:"patient_id"`
	Date      string `json:"date"`
	IsTaken   bool   `json:"is_taken"`
}
