// Package events publishes booking lifecycle notifications to a Kafka
// topic. Publishing is best-effort: a failed publish is logged and
// dropped, it never fails the booking operation that triggered it.
package events

import (
	"context"
	"encoding/json"
	"time"

	"ribobook/pkg/kafka"
	"ribobook/pkg/logger"
	"ribobook/pkg/model"
)

type EventType string

const (
	EventCreated       EventType = "booking.created"
	EventStatusChanged EventType = "booking.status_changed"
	EventDeleted       EventType = "booking.deleted"
)

type Event struct {
	Type      EventType      `json:"type"`
	BookingID string         `json:"booking_id"`
	Booking   *model.Booking `json:"booking,omitempty"`
	Status    model.Status   `json:"status,omitempty"`
	At        time.Time      `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event)
	Close() error
}

type noopPublisher struct{}

func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, Event) {}
func (noopPublisher) Close() error                   { return nil }

type kafkaPublisher struct {
	producer *kafka.Producer
	log      *logger.Logger
}

func NewKafkaPublisher(brokers []string, topic string, log *logger.Logger) (Publisher, error) {
	producer, err := kafka.NewProducer(brokers, topic)
	if err != nil {
		return nil, err
	}
	log.Info("Booking event publisher initialized", "topic", topic)
	return &kafkaPublisher{
		producer: producer,
		log:      log,
	}, nil
}

func (p *kafkaPublisher) Publish(ctx context.Context, event Event) {
	if event.At.IsZero() {
		event.At = time.Now()
	}

	value, err := json.Marshal(event)
	if err != nil {
		p.log.Error("Failed to encode booking event", "type", event.Type, "error", err)
		return
	}

	msg := kafka.Message{
		Key:       event.BookingID,
		Value:     value,
		Timestamp: event.At,
		Headers:   map[string]string{"event_type": string(event.Type)},
	}
	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Error("Failed to publish booking event",
			"type", event.Type,
			"booking_id", event.BookingID,
			"error", err,
		)
	}
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}
