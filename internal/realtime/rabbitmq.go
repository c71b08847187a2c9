package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
	Close() error
}

// RabbitMQ holds one broker connection shared by the publisher and the
// consumer of this instance.
type RabbitMQ struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	exchange   string
	instanceID string
	logger     zerolog.Logger
}

var _ EventPublisher = (*RabbitMQ)(nil)

func DialRabbitMQ(rawURL string, instanceID string, logger zerolog.Logger) (*RabbitMQ, error) {
	logger = logger.With().Str("component", "rabbitmq").Logger()
	logger.Info().Str("url", redactURL(rawURL)).Msg("connecting to broker")

	conn, err := amqp.Dial(rawURL)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := channel.ExchangeDeclare(
		ExchangeName,
		ExchangeType,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &RabbitMQ{
		conn:       conn,
		channel:    channel,
		exchange:   ExchangeName,
		instanceID: instanceID,
		logger:     logger,
	}, nil
}

func (broker *RabbitMQ) Publish(ctx context.Context, routingKey string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	messageID := ""
	if base, ok := event.(IntakeChangedEvent); ok {
		messageID = base.EventID
	}

	if err := broker.channel.PublishWithContext(ctx, broker.exchange, routingKey, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
		Timestamp:   time.Now().UTC(),
		MessageId:   messageID,
		AppId:       broker.instanceID,
	}); err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	return nil
}

// Consume binds an exclusive queue to the intake routing key and forwards
// changes made by other instances to hub until ctx is cancelled.
func (broker *RabbitMQ) Consume(ctx context.Context, hub *Hub) error {
	queue, err := broker.channel.QueueDeclare(
		"",    // server-named
		false, // durable
		true,  // auto-delete
		true,  // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := broker.channel.QueueBind(queue.Name, EventIntakeChanged, broker.exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	deliveries, err := broker.channel.ConsumeWithContext(ctx, queue.Name, "", true, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume queue: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case delivery, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			if err := forwardDelivery(hub, broker.instanceID, delivery.AppId, delivery.Body); err != nil {
				broker.logger.Warn().Err(err).Msg("dropping malformed intake event")
			}
		}
	}
}

func (broker *RabbitMQ) Close() error {
	if broker.channel != nil {
		if err := broker.channel.Close(); err != nil {
			broker.logger.Warn().Err(err).Msg("close rabbitmq channel")
		}
	}
	if broker.conn != nil {
		return broker.conn.Close()
	}
	return nil
}

// forwardDelivery turns a broker message into a local hub signal. Messages
// published by this instance were already delivered locally and are skipped.
func forwardDelivery(hub *Hub, instanceID string, appID string, body []byte) error {
	if appID != "" && appID == instanceID {
		return nil
	}
	var event IntakeChangedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("decode intake event: %w", err)
	}
	if event.EventType != EventIntakeChanged || event.Data.PatientID == 0 {
		return fmt.Errorf("unexpected event %q for patient %d", event.EventType, event.Data.PatientID)
	}
	hub.Publish(PatientTopic(event.Data.PatientID))
	return nil
}

func redactURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "amqp://***"
	}
	return parsed.Redacted()
}
