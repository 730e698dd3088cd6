package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/aircargo/internal/domain"
)

// ErrNoMatch is returned by ConditionalUpdate when the stored status is no
// longer one of the expected statuses.
var ErrNoMatch = errors.New("conditional update matched no booking")

type FlightRepository interface {
	// FindByRoute returns flights from origin to destination departing within
	// [from, to], ordered by departure time.
	FindByRoute(ctx context.Context, origin, destination string, from, to time.Time) ([]domain.Flight, error)
	// FindDepartures returns flights leaving origin within [from, to] for any
	// destination except excludeDestination, ordered by departure time.
	FindDepartures(ctx context.Context, origin, excludeDestination string, from, to time.Time) ([]domain.Flight, error)
	GetByID(ctx context.Context, id string) (*domain.Flight, error)
	Exists(ctx context.Context, id string) (bool, error)
}

// StatusUpdate is applied atomically by ConditionalUpdate. Event is nil when
// the timeline already ends with the new status.
type StatusUpdate struct {
	Status    domain.BookingStatus
	Event     *domain.TimelineEvent
	UpdatedAt time.Time
}

type BookingRepository interface {
	Insert(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	// ConditionalUpdate applies update only if the stored status is still one
	// of expected, and returns ErrNoMatch otherwise.
	ConditionalUpdate(ctx context.Context, id string, expected []domain.BookingStatus, update StatusUpdate) (*domain.Booking, error)
	FindByID(ctx context.Context, id string) (*domain.Booking, error)
	FindByRefID(ctx context.Context, refID string) (*domain.Booking, error)
	// LatestRefID returns the lexicographically greatest ref id starting with
	// prefix, or "" when there is none.
	LatestRefID(ctx context.Context, prefix string) (string, error)
}

func statusStrings(statuses []domain.BookingStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
