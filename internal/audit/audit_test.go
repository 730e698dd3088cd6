package audit

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Domenick1991/aircargo/internal/events"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func message(t *testing.T, event events.BookingEvent) kafka.Message {
	t.Helper()
	data, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Key: []byte(event.RefID), Value: data, Offset: 7}
}

func TestRecorder_Handle(t *testing.T) {
	log, hook := test.NewNullLogger()
	recorder := NewRecorder(log)

	err := recorder.Handle(context.Background(), message(t, events.BookingEvent{
		Type:       events.TypeBookingDeparted,
		BookingID:  "b-1",
		RefID:      "BOOK-20260301-000001",
		Status:     "DEPARTED",
		FlightRef:  "F100",
		OccurredAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}))

	require.NoError(t, err)
	require.Len(t, hook.Entries, 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "booking audit", entry.Message)
	assert.Equal(t, events.TypeBookingDeparted, entry.Data["event"])
	assert.Equal(t, "F100", entry.Data["flight_ref"])
	assert.Equal(t, int64(7), entry.Data["offset"])
}

func TestRecorder_SkipsBadMessages(t *testing.T) {
	log, hook := test.NewNullLogger()
	recorder := NewRecorder(log)

	require.NoError(t, recorder.Handle(context.Background(), kafka.Message{Value: []byte("{")}))
	require.NoError(t, recorder.Handle(context.Background(), message(t, events.BookingEvent{Type: "BOOKING_DELIVERED"})))

	require.Len(t, hook.Entries, 2)
	for _, entry := range hook.Entries {
		assert.Equal(t, logrus.WarnLevel, entry.Level)
	}
}
