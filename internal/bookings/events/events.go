package events

import (
	"context"
	"time"

	"roombook/pkg/kafka"
	"roombook/pkg/model"
)

type Type string

const (
	ReservationCreated   Type = "reservation.created"
	ReservationModified  Type = "reservation.modified"
	ReservationCancelled Type = "reservation.cancelled"

	schemaVersion = "1"
)

// Event describes one committed ledger mutation. Previous is set for
// modifications only.
type Event struct {
	Type        Type               `json:"type"`
	Reservation model.Reservation  `json:"reservation"`
	Previous    *model.Reservation `json:"previous,omitempty"`
	OccurredAt  time.Time          `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type noopPublisher struct{}

// NewNoopPublisher returns a publisher that drops every event. It is used
// when no brokers are configured.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(ctx context.Context, event Event) error { return nil }
func (noopPublisher) Close() error                                    { return nil }

type messageProducer interface {
	Publish(ctx context.Context, msg kafka.Message) error
	Close() error
}

type kafkaPublisher struct {
	producer messageProducer
	source   string
}

// NewKafkaPublisher publishes events through producer, keyed by reservation
// ID so that events of one reservation land on one partition.
func NewKafkaPublisher(producer messageProducer, source string) Publisher {
	return &kafkaPublisher{producer: producer, source: source}
}

func (p *kafkaPublisher) Publish(ctx context.Context, event Event) error {
	msg := kafka.NewMessage(event.OccurredAt).
		WithKey(event.Reservation.ID).
		WithValue(event).
		WithEventType(string(event.Type)).
		WithSource(p.source).
		WithSchemaVersion(schemaVersion).
		Build()
	return p.producer.Publish(ctx, msg)
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}
