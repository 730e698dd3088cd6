package flights

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/Domenick1991/aircargo/internal/domain"
	"github.com/Domenick1991/aircargo/internal/repository"
	"golang.org/x/sync/errgroup"
)

type FlightUseCase interface {
	FindRoutes(ctx context.Context, origin, destination string, date time.Time) (*domain.RouteResult, error)
	GetByID(ctx context.Context, id string) (*domain.Flight, error)
}

type FlightService struct {
	repo repository.FlightRepository
	// maxParallel caps concurrent second-leg queries; zero means no cap.
	maxParallel int
}

func NewFlightService(repo repository.FlightRepository, maxParallel int) *FlightService {
	return &FlightService{repo: repo, maxParallel: maxParallel}
}

// FindRoutes returns the direct flights from origin to destination departing
// on date, and every one-stop itinerary whose first leg departs on date and
// whose second leg departs after the first lands but no later than the end of
// the following day. Transit routes are ordered by total duration.
func (s *FlightService) FindRoutes(ctx context.Context, origin, destination string, date time.Time) (*domain.RouteResult, error) {
	origin = domain.NormalizeAirport(origin)
	destination = domain.NormalizeAirport(destination)
	if origin == "" || destination == "" {
		return nil, fmt.Errorf("%w: origin and destination are required", domain.ErrValidation)
	}

	from, to := domain.DayWindow(date)
	result := &domain.RouteResult{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		direct, err := s.directRoutes(gctx, origin, destination, from, to)
		result.Direct = direct
		return err
	})
	g.Go(func() error {
		transit, err := s.transitRoutes(gctx, origin, destination, from, to)
		result.Transit = transit
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *FlightService) GetByID(ctx context.Context, id string) (*domain.Flight, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *FlightService) directRoutes(ctx context.Context, origin, destination string, from, to time.Time) ([]domain.DirectRoute, error) {
	flights, err := s.repo.FindByRoute(ctx, origin, destination, from, to)
	if err != nil {
		return nil, fmt.Errorf("find direct flights %s-%s: %w", origin, destination, err)
	}

	routes := make([]domain.DirectRoute, 0, len(flights))
	for _, f := range flights {
		routes = append(routes, domain.DirectRoute{Flight: f, TotalDuration: f.Duration()})
	}
	return routes, nil
}

func (s *FlightService) transitRoutes(ctx context.Context, origin, destination string, from, to time.Time) ([]domain.TransitRoute, error) {
	firstLegs, err := s.repo.FindDepartures(ctx, origin, destination, from, to)
	if err != nil {
		return nil, fmt.Errorf("find departures from %s: %w", origin, err)
	}
	if len(firstLegs) == 0 {
		return []domain.TransitRoute{}, nil
	}

	// One slot per first leg keeps the merge in first-leg order, which the
	// stable sort below relies on for ties.
	perLeg := make([][]domain.TransitRoute, len(firstLegs))

	g, gctx := errgroup.WithContext(ctx)
	if s.maxParallel > 0 {
		g.SetLimit(s.maxParallel)
	}
	for i, first := range firstLegs {
		g.Go(func() error {
			latest := domain.EndOfDay(first.ArrivalTime.AddDate(0, 0, 1))
			seconds, err := s.repo.FindByRoute(gctx, first.Destination, destination, first.ArrivalTime, latest)
			if err != nil {
				return fmt.Errorf("find connections %s-%s: %w", first.Destination, destination, err)
			}
			routes := make([]domain.TransitRoute, 0, len(seconds))
			for _, second := range seconds {
				routes = append(routes, domain.NewTransitRoute(first, second))
			}
			perLeg[i] = routes
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	transit := slices.Concat(perLeg...)
	if transit == nil {
		transit = []domain.TransitRoute{}
	}
	slices.SortStableFunc(transit, func(a, b domain.TransitRoute) int {
		return cmp.Compare(a.TotalDuration, b.TotalDuration)
	})
	return transit, nil
}

var _ FlightUseCase = (*FlightService)(nil)
