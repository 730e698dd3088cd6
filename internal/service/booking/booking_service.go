package booking

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Domenick1991/aircargo/internal/domain"
	"github.com/Domenick1991/aircargo/internal/refid"
	"github.com/Domenick1991/aircargo/internal/repository"
	"github.com/google/uuid"
)

var (
	departFrom = []domain.BookingStatus{domain.BookingStatusBooked}
	arriveFrom = []domain.BookingStatus{domain.BookingStatusDeparted, domain.BookingStatusBooked}
	cancelFrom = []domain.BookingStatus{domain.BookingStatusBooked, domain.BookingStatusDeparted}
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	Transition(ctx context.Context, idOrRefID string, target domain.BookingStatus, allowed []domain.BookingStatus, flightRef string) (*domain.Booking, error)
	Depart(ctx context.Context, idOrRefID, flightRef string) (*domain.Booking, error)
	Arrive(ctx context.Context, idOrRefID, flightRef string) (*domain.Booking, error)
	Cancel(ctx context.Context, idOrRefID string) (*domain.Booking, error)
	History(ctx context.Context, idOrRefID string) (*domain.Booking, error)
}

type CreateBookingInput struct {
	Origin      string   `json:"origin" validate:"required,alpha,min=3,max=4"`
	Destination string   `json:"destination" validate:"required,alpha,min=3,max=4,nefield=Origin"`
	Pieces      int      `json:"pieces" validate:"min=1"`
	WeightKg    int      `json:"weight_kg" validate:"min=0"`
	FlightRefs  []string `json:"flight_refs" validate:"dive,required"`
}

type BookingService struct {
	bookings  repository.BookingRepository
	flights   repository.FlightRepository
	refIDs    refid.Allocator
	validator *Validator
	now       func() time.Time
	newID     func() string
}

type BookingServiceOption func(*BookingService)

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func WithIDGenerator(newID func() string) BookingServiceOption {
	return func(s *BookingService) {
		s.newID = newID
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	flights repository.FlightRepository,
	refIDs refid.Allocator,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:  bookings,
		flights:   flights,
		refIDs:    refIDs,
		validator: NewValidator(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	input.Origin = domain.NormalizeAirport(input.Origin)
	input.Destination = domain.NormalizeAirport(input.Destination)
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}
	if err := s.checkFlights(ctx, input.FlightRefs); err != nil {
		return nil, err
	}

	now := s.clock()
	refID, err := s.refIDs.Allocate(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("allocate ref id: %w", err)
	}

	flights := slices.Clone(input.FlightRefs)
	if flights == nil {
		flights = []string{}
	}

	booking := &domain.Booking{
		ID:          s.newID(),
		RefID:       refID,
		Origin:      input.Origin,
		Destination: input.Destination,
		Pieces:      input.Pieces,
		WeightKg:    input.WeightKg,
		Status:      domain.BookingStatusBooked,
		Flights:     flights,
		Timeline:    []domain.TimelineEvent{{Event: domain.BookingStatusBooked, Timestamp: now}},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	stored, err := s.bookings.Insert(ctx, booking)
	if err != nil {
		return nil, fmt.Errorf("insert booking: %w", err)
	}
	return stored, nil
}

// Transition moves the booking to target if its current status is one of
// allowed. The write is conditional on the status still being in allowed, so
// when two callers race on the same booking only one of them succeeds and the
// other gets domain.ErrConcurrencyConflict.
func (s *BookingService) Transition(ctx context.Context, idOrRefID string, target domain.BookingStatus, allowed []domain.BookingStatus, flightRef string) (*domain.Booking, error) {
	if !target.Valid() || len(allowed) == 0 {
		return nil, fmt.Errorf("%w: target %q with %d allowed source statuses", domain.ErrValidation, target, len(allowed))
	}
	current, err := s.resolve(ctx, idOrRefID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, current, target, allowed, flightRef)
}

func (s *BookingService) Depart(ctx context.Context, idOrRefID, flightRef string) (*domain.Booking, error) {
	return s.Transition(ctx, idOrRefID, domain.BookingStatusDeparted, departFrom, flightRef)
}

// Arrive also accepts BOOKED bookings, for shipments whose departure was never
// reported.
func (s *BookingService) Arrive(ctx context.Context, idOrRefID, flightRef string) (*domain.Booking, error) {
	return s.Transition(ctx, idOrRefID, domain.BookingStatusArrived, arriveFrom, flightRef)
}

func (s *BookingService) Cancel(ctx context.Context, idOrRefID string) (*domain.Booking, error) {
	current, err := s.resolve(ctx, idOrRefID)
	if err != nil {
		return nil, err
	}
	if current.Status == domain.BookingStatusArrived {
		return nil, fmt.Errorf("%w: booking %s has already arrived", domain.ErrInvalidTransition, current.RefID)
	}
	return s.transition(ctx, current, domain.BookingStatusCancelled, cancelFrom, "")
}

func (s *BookingService) History(ctx context.Context, idOrRefID string) (*domain.Booking, error) {
	b, err := s.resolve(ctx, idOrRefID)
	if err != nil {
		return nil, err
	}
	b.Timeline = b.SortedTimeline()
	return b, nil
}

func (s *BookingService) transition(ctx context.Context, current *domain.Booking, target domain.BookingStatus, allowed []domain.BookingStatus, flightRef string) (*domain.Booking, error) {
	if !slices.Contains(allowed, current.Status) || !domain.CanTransition(current.Status, target) {
		return nil, fmt.Errorf("%w: booking %s cannot move from %s to %s", domain.ErrInvalidTransition, current.RefID, current.Status, target)
	}
	if flightRef != "" {
		if err := s.checkFlights(ctx, []string{flightRef}); err != nil {
			return nil, err
		}
	}

	now := s.clock()
	update := repository.StatusUpdate{Status: target, UpdatedAt: now}
	last, ok := current.LastEvent()
	if !ok || last.Event != target {
		if ok && now.Before(last.Timestamp) {
			now = last.Timestamp
		}
		update.Event = &domain.TimelineEvent{Event: target, Timestamp: now, FlightRef: flightRef}
	}

	updated, err := s.bookings.ConditionalUpdate(ctx, current.ID, allowed, update)
	if err != nil {
		if errors.Is(err, repository.ErrNoMatch) {
			return nil, fmt.Errorf("%w: booking %s left %s before it could move to %s", domain.ErrConcurrencyConflict, current.RefID, current.Status, target)
		}
		return nil, fmt.Errorf("update booking %s: %w", current.RefID, err)
	}
	return updated, nil
}

// resolve looks the booking up by store id first and by ref id second.
func (s *BookingService) resolve(ctx context.Context, idOrRefID string) (*domain.Booking, error) {
	key := strings.TrimSpace(idOrRefID)
	if key == "" {
		return nil, ValidationErrors{{Field: "id", Message: "is required"}}
	}

	b, err := s.bookings.FindByID(ctx, key)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	b, err = s.bookings.FindByRefID(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, key)
		}
		return nil, err
	}
	return b, nil
}

func (s *BookingService) checkFlights(ctx context.Context, refs []string) error {
	for _, ref := range refs {
		ok, err := s.flights.Exists(ctx, ref)
		if err != nil {
			return fmt.Errorf("check flight %s: %w", ref, err)
		}
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrInvalidFlightReference, ref)
		}
	}
	return nil
}

// clock returns the current time in UTC at millisecond precision, which is
// what every storage backend round-trips.
func (s *BookingService) clock() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

var _ BookingUseCase = (*BookingService)(nil)
