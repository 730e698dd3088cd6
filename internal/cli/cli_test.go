package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/aircargo/internal/domain"
	"github.com/Domenick1991/aircargo/internal/events"
	"github.com/Domenick1991/aircargo/internal/refid"
	"github.com/Domenick1991/aircargo/internal/repository"
	"github.com/Domenick1991/aircargo/internal/service/booking"
	"github.com/Domenick1991/aircargo/internal/service/flights"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	seen []events.BookingEvent
}

func (r *recordingObserver) Observe(_ context.Context, event events.BookingEvent) {
	r.seen = append(r.seen, event)
}

func at(hour, minute int) time.Time {
	return time.Date(2026, 3, 1, hour, minute, 0, 0, time.UTC)
}

func newTestOpener(observer events.Observer) Opener {
	flightRepo := repository.NewMemoryFlightRepository(
		domain.Flight{ID: "F100", FlightNumber: "AI101", Airline: "AI", Origin: "DEL", Destination: "HYD", DepartureTime: at(8, 0), ArrivalTime: at(10, 30)},
		domain.Flight{ID: "F200", FlightNumber: "AI202", Airline: "AI", Origin: "HYD", Destination: "BLR", DepartureTime: at(14, 0), ArrivalTime: at(15, 30)},
	)
	bookingRepo := repository.NewMemoryBookingRepository()
	clock := func() time.Time { return at(7, 0) }
	svc := &Services{
		Bookings: booking.NewBookingService(bookingRepo, flightRepo, refid.NewStoreAllocator(bookingRepo), booking.WithClock(clock)),
		Flights:  flights.NewFlightService(flightRepo, 2),
		Observer: observer,
	}
	return func(context.Context, string) (*Services, error) {
		return svc, nil
	}
}

func run(t *testing.T, open Opener, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommandWithOpener(open)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"routes", "create", "history", "depart", "arrive", "cancel"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	_, err := run(t, newTestOpener(nil), "history", "x", "--format", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestCreateDepartHistory(t *testing.T) {
	observer := &recordingObserver{}
	open := newTestOpener(observer)

	out, err := run(t, open, "create", "--origin", "del", "--destination", "blr", "--pieces", "2", "--weight", "40", "--flight", "F100", "--format", "json")
	require.NoError(t, err)

	var created domain.Booking
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	assert.Equal(t, "BOOK-20260301-000001", created.RefID)
	assert.Equal(t, "DEL", created.Origin)

	_, err = run(t, open, "depart", created.RefID, "--flight", "F100")
	require.NoError(t, err)

	out, err = run(t, open, "history", created.RefID)
	require.NoError(t, err)
	assert.Contains(t, out, "DEPARTED")
	assert.Contains(t, out, "DEL -> BLR")

	require.Len(t, observer.seen, 2)
	assert.Equal(t, events.TypeBookingCreated, observer.seen[0].Type)
	assert.Equal(t, events.TypeBookingDeparted, observer.seen[1].Type)
	assert.Equal(t, "F100", observer.seen[1].FlightRef)
}

func TestCancelAfterArriveFails(t *testing.T) {
	open := newTestOpener(nil)

	out, err := run(t, open, "create", "--origin", "DEL", "--destination", "BLR", "--format", "json")
	require.NoError(t, err)
	var created domain.Booking
	require.NoError(t, json.Unmarshal([]byte(out), &created))

	_, err = run(t, open, "arrive", created.ID)
	require.NoError(t, err)

	_, err = run(t, open, "cancel", created.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestRoutes(t *testing.T) {
	out, err := run(t, newTestOpener(nil), "routes", "--origin", "DEL", "--destination", "BLR", "--date", "2026-03-01")
	require.NoError(t, err)
	assert.Contains(t, out, "DIRECT (0)")
	assert.Contains(t, out, "TRANSIT (1)")
	assert.Contains(t, out, "via HYD")
	assert.Contains(t, out, "layover 210m")
}

func TestRoutes_BadDate(t *testing.T) {
	_, err := run(t, newTestOpener(nil), "routes", "--origin", "DEL", "--destination", "BLR", "--date", "03/01/2026")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --date")
}

func TestOpenerError(t *testing.T) {
	boom := errors.New("no config")
	open := func(context.Context, string) (*Services, error) { return nil, boom }

	_, err := run(t, open, "history", "BOOK-20260301-000001")
	assert.ErrorIs(t, err, boom)
}
