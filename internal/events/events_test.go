package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/aircargo/internal/domain"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

func departedBooking() *domain.Booking {
	t0 := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	return &domain.Booking{
		ID:          "b-1",
		RefID:       "BOOK-20260301-000001",
		Origin:      "DEL",
		Destination: "BLR",
		Pieces:      2,
		WeightKg:    30,
		Status:      domain.BookingStatusDeparted,
		Timeline: []domain.TimelineEvent{
			{Event: domain.BookingStatusBooked, Timestamp: t0},
			{Event: domain.BookingStatusDeparted, Timestamp: t0.Add(time.Hour), FlightRef: "F100"},
		},
		CreatedAt: t0,
		UpdatedAt: t0.Add(time.Hour),
	}
}

func TestNewBookingEvent(t *testing.T) {
	b := departedBooking()

	e := NewBookingEvent(TypeBookingDeparted, b)

	assert.Equal(t, BookingEvent{
		Type:        TypeBookingDeparted,
		BookingID:   "b-1",
		RefID:       "BOOK-20260301-000001",
		Status:      "DEPARTED",
		Origin:      "DEL",
		Destination: "BLR",
		Pieces:      2,
		WeightKg:    30,
		FlightRef:   "F100",
		OccurredAt:  b.UpdatedAt,
	}, e)
}

func TestLogObserver(t *testing.T) {
	log, hook := test.NewNullLogger()
	observer := NewLogObserver(log)

	observer.Observe(context.Background(), NewBookingEvent(TypeBookingDeparted, departedBooking()))

	require.Len(t, hook.Entries, 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, TypeBookingDeparted, entry.Message)
	assert.Equal(t, "BOOK-20260301-000001", entry.Data["ref_id"])
	assert.Equal(t, "F100", entry.Data["flight_ref"])
}

func TestKafkaObserver_Publishes(t *testing.T) {
	log, hook := test.NewNullLogger()
	publisher := &MockPublisher{}
	observer := NewKafkaObserver(publisher, "booking-events", log)
	ctx := context.Background()
	event := NewBookingEvent(TypeBookingCreated, departedBooking())

	publisher.On("Publish", ctx, "booking-events", "BOOK-20260301-000001", event).Return(nil).Once()

	observer.Observe(ctx, event)

	publisher.AssertExpectations(t)
	assert.Empty(t, hook.Entries)
}

func TestKafkaObserver_PublishFailureIsLogged(t *testing.T) {
	log, hook := test.NewNullLogger()
	publisher := &MockPublisher{}
	observer := NewKafkaObserver(publisher, "booking-events", log)
	ctx := context.Background()
	event := NewBookingEvent(TypeBookingArrived, departedBooking())

	publisher.On("Publish", ctx, "booking-events", event.RefID, event).Return(errors.New("broker down")).Once()

	observer.Observe(ctx, event)

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.EqualError(t, hook.LastEntry().Data[logrus.ErrorKey].(error), "broker down")
}

func TestKafkaObserver_NoTopic(t *testing.T) {
	log, _ := test.NewNullLogger()
	publisher := &MockPublisher{}
	observer := NewKafkaObserver(publisher, "", log)

	observer.Observe(context.Background(), NewBookingEvent(TypeBookingCreated, departedBooking()))

	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

type recordingObserver struct {
	seen []string
}

func (r *recordingObserver) Observe(_ context.Context, event BookingEvent) {
	r.seen = append(r.seen, event.Type)
}

func TestObservers_FanOut(t *testing.T) {
	a, b := &recordingObserver{}, &recordingObserver{}
	observers := Observers{a, b}

	observers.Observe(context.Background(), BookingEvent{Type: TypeBookingCancelled})

	assert.Equal(t, []string{TypeBookingCancelled}, a.seen)
	assert.Equal(t, []string{TypeBookingCancelled}, b.seen)
}
