// Package events carries booking lifecycle notifications from the HTTP and
// CLI adapters to log sinks and the Kafka event stream. The lifecycle service
// itself never emits events; adapters call an Observer after a successful
// operation.
package events

import (
	"context"
	"time"

	"github.com/Domenick1991/aircargo/internal/domain"
	"github.com/sirupsen/logrus"
)

const (
	TypeBookingCreated   = "BOOKING_CREATED"
	TypeBookingDeparted  = "BOOKING_DEPARTED"
	TypeBookingArrived   = "BOOKING_ARRIVED"
	TypeBookingCancelled = "BOOKING_CANCELLED"
)

type BookingEvent struct {
	Type        string    `json:"type"`
	BookingID   string    `json:"booking_id"`
	RefID       string    `json:"ref_id"`
	Status      string    `json:"status"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	Pieces      int       `json:"pieces"`
	WeightKg    int       `json:"weight_kg"`
	FlightRef   string    `json:"flight_ref,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func NewBookingEvent(eventType string, b *domain.Booking) BookingEvent {
	e := BookingEvent{
		Type:        eventType,
		BookingID:   b.ID,
		RefID:       b.RefID,
		Status:      string(b.Status),
		Origin:      b.Origin,
		Destination: b.Destination,
		Pieces:      b.Pieces,
		WeightKg:    b.WeightKg,
		OccurredAt:  b.UpdatedAt,
	}
	if last, ok := b.LastEvent(); ok {
		e.FlightRef = last.FlightRef
	}
	return e
}

type Observer interface {
	Observe(ctx context.Context, event BookingEvent)
}

// Observers fans an event out to every observer in order.
type Observers []Observer

func (o Observers) Observe(ctx context.Context, event BookingEvent) {
	for _, observer := range o {
		observer.Observe(ctx, event)
	}
}

type LogObserver struct {
	log logrus.FieldLogger
}

func NewLogObserver(log logrus.FieldLogger) *LogObserver {
	return &LogObserver{log: log}
}

func (o *LogObserver) Observe(_ context.Context, event BookingEvent) {
	o.log.WithFields(Fields(event)).Info(event.Type)
}

type Publisher interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// KafkaObserver publishes events keyed by ref id. A failed publish is logged
// and otherwise ignored; the booking change it describes is already stored.
type KafkaObserver struct {
	publisher Publisher
	topic     string
	log       logrus.FieldLogger
}

func NewKafkaObserver(publisher Publisher, topic string, log logrus.FieldLogger) *KafkaObserver {
	return &KafkaObserver{publisher: publisher, topic: topic, log: log}
}

func (o *KafkaObserver) Observe(ctx context.Context, event BookingEvent) {
	if o.publisher == nil || o.topic == "" {
		return
	}
	if err := o.publisher.Publish(ctx, o.topic, event.RefID, event); err != nil {
		o.log.WithFields(Fields(event)).WithError(err).Warn("Failed to publish booking event")
	}
}

func Fields(event BookingEvent) logrus.Fields {
	fields := logrus.Fields{
		"event":       event.Type,
		"booking_id":  event.BookingID,
		"ref_id":      event.RefID,
		"status":      event.Status,
		"origin":      event.Origin,
		"destination": event.Destination,
	}
	if event.FlightRef != "" {
		fields["flight_ref"] = event.FlightRef
	}
	return fields
}
