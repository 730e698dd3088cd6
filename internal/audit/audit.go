// Package audit turns booking lifecycle events read from Kafka into audit
// log lines.
package audit

import (
	"context"
	"encoding/json"

	"github.com/Domenick1991/aircargo/internal/events"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type Recorder struct {
	log logrus.FieldLogger
}

func NewRecorder(log logrus.FieldLogger) *Recorder {
	return &Recorder{log: log}
}

// Handle never fails: a message that cannot be decoded is logged and skipped
// so one bad record does not stall the consumer group.
func (r *Recorder) Handle(_ context.Context, msg kafka.Message) error {
	var event events.BookingEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		r.log.WithFields(logrus.Fields{
			"partition": msg.Partition,
			"offset":    msg.Offset,
		}).WithError(err).Warn("skipping undecodable booking event")
		return nil
	}
	if !known(event.Type) {
		r.log.WithField("event", event.Type).Warn("skipping unknown booking event")
		return nil
	}

	r.log.WithFields(events.Fields(event)).
		WithField("occurred_at", event.OccurredAt).
		WithField("offset", msg.Offset).
		Info("booking audit")
	return nil
}

func known(eventType string) bool {
	switch eventType {
	case events.TypeBookingCreated, events.TypeBookingDeparted, events.TypeBookingArrived, events.TypeBookingCancelled:
		return true
	}
	return false
}
