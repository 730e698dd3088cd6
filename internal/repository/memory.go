package repository

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Domenick1991/aircargo/internal/domain"
)

// MemoryFlightRepository is an in-process flight catalog used by the memory
// storage driver and by tests.
type MemoryFlightRepository struct {
	mu      sync.RWMutex
	flights []domain.Flight
}

func NewMemoryFlightRepository(flights ...domain.Flight) *MemoryFlightRepository {
	r := &MemoryFlightRepository{}
	r.Add(flights...)
	return r
}

func (r *MemoryFlightRepository) Add(flights ...domain.Flight) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flights = append(r.flights, flights...)
	slices.SortStableFunc(r.flights, func(a, b domain.Flight) int {
		return a.DepartureTime.Compare(b.DepartureTime)
	})
}

func (r *MemoryFlightRepository) FindByRoute(_ context.Context, origin, destination string, from, to time.Time) ([]domain.Flight, error) {
	return r.filter(func(f domain.Flight) bool {
		return f.Origin == origin && f.Destination == destination && within(f.DepartureTime, from, to)
	}), nil
}

func (r *MemoryFlightRepository) FindDepartures(_ context.Context, origin, excludeDestination string, from, to time.Time) ([]domain.Flight, error) {
	return r.filter(func(f domain.Flight) bool {
		return f.Origin == origin && f.Destination != excludeDestination && within(f.DepartureTime, from, to)
	}), nil
}

func (r *MemoryFlightRepository) GetByID(_ context.Context, id string) (*domain.Flight, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, f := range r.flights {
		if f.ID == id {
			return &f, nil
		}
	}
	return nil, domain.ErrFlightNotFound
}

func (r *MemoryFlightRepository) Exists(ctx context.Context, id string) (bool, error) {
	_, err := r.GetByID(ctx, id)
	return err == nil, nil
}

func (r *MemoryFlightRepository) filter(match func(domain.Flight) bool) []domain.Flight {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Flight, 0)
	for _, f := range r.flights {
		if match(f) {
			out = append(out, f)
		}
	}
	return out
}

func within(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}

// MemoryBookingRepository keeps bookings in a map. ConditionalUpdate holds the
// write lock across the status check and the write, which gives it the same
// compare-and-swap semantics as the database backends.
type MemoryBookingRepository struct {
	mu       sync.RWMutex
	bookings map[string]*domain.Booking
	refIDs   map[string]string
}

func NewMemoryBookingRepository() *MemoryBookingRepository {
	return &MemoryBookingRepository{
		bookings: make(map[string]*domain.Booking),
		refIDs:   make(map[string]string),
	}
}

func (r *MemoryBookingRepository) Insert(_ context.Context, booking *domain.Booking) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.refIDs[booking.RefID]; ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateRefID, booking.RefID)
	}
	if _, ok := r.bookings[booking.ID]; ok {
		return nil, fmt.Errorf("booking %s already exists", booking.ID)
	}

	stored := cloneBooking(booking)
	if stored.Flights == nil {
		stored.Flights = []string{}
	}
	r.bookings[stored.ID] = stored
	r.refIDs[stored.RefID] = stored.ID
	return cloneBooking(stored), nil
}

func (r *MemoryBookingRepository) ConditionalUpdate(_ context.Context, id string, expected []domain.BookingStatus, update StatusUpdate) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok || !slices.Contains(expected, b.Status) {
		return nil, ErrNoMatch
	}
	b.Status = update.Status
	b.UpdatedAt = update.UpdatedAt
	if update.Event != nil {
		b.Timeline = append(b.Timeline, *update.Event)
	}
	return cloneBooking(b), nil
}

func (r *MemoryBookingRepository) FindByID(_ context.Context, id string) (*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneBooking(b), nil
}

func (r *MemoryBookingRepository) FindByRefID(ctx context.Context, refID string) (*domain.Booking, error) {
	r.mu.RLock()
	id, ok := r.refIDs[refID]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *MemoryBookingRepository) LatestRefID(_ context.Context, prefix string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	latest := ""
	for refID := range r.refIDs {
		if strings.HasPrefix(refID, prefix) && refID > latest {
			latest = refID
		}
	}
	return latest, nil
}

func cloneBooking(b *domain.Booking) *domain.Booking {
	c := *b
	c.Flights = slices.Clone(b.Flights)
	c.Timeline = slices.Clone(b.Timeline)
	return &c
}

var (
	_ FlightRepository  = (*MemoryFlightRepository)(nil)
	_ BookingRepository = (*MemoryBookingRepository)(nil)
)
