package flights

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/aircargo/internal/domain"
	"github.com/Domenick1991/aircargo/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockFlightRepository struct {
	mock.Mock
}

func (m *MockFlightRepository) FindByRoute(ctx context.Context, origin, destination string, from, to time.Time) ([]domain.Flight, error) {
	args := m.Called(ctx, origin, destination, from, to)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) FindDepartures(ctx context.Context, origin, excludeDestination string, from, to time.Time) ([]domain.Flight, error) {
	args := m.Called(ctx, origin, excludeDestination, from, to)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) GetByID(ctx context.Context, id string) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

var day = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func at(dayOffset int, hour, minute int) time.Time {
	return day.AddDate(0, 0, dayOffset).Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func flight(id, origin, destination string, dep, arr time.Time) domain.Flight {
	return domain.Flight{
		ID:            id,
		FlightNumber:  "AI" + id,
		Airline:       "Air India",
		Origin:        origin,
		Destination:   destination,
		DepartureTime: dep,
		ArrivalTime:   arr,
	}
}

func transitIDs(routes []domain.TransitRoute) [][2]string {
	out := make([][2]string, 0, len(routes))
	for _, r := range routes {
		out = append(out, [2]string{r.FirstLeg.ID, r.SecondLeg.ID})
	}
	return out
}

func TestFlightService_FindRoutes_TransitInclusion(t *testing.T) {
	repo := repository.NewMemoryFlightRepository(
		flight("1", "DEL", "HYD", at(0, 8, 0), at(0, 10, 30)),
		flight("2", "HYD", "BLR", at(0, 14, 0), at(0, 15, 30)),
	)
	service := NewFlightService(repo, 4)

	result, err := service.FindRoutes(context.Background(), "del", "blr", day.Add(13*time.Hour))

	require.NoError(t, err)
	assert.Empty(t, result.Direct)
	require.Len(t, result.Transit, 1)
	route := result.Transit[0]
	assert.Equal(t, "HYD", route.TransitCity)
	assert.Equal(t, 210, route.LayoverDuration)
	assert.Equal(t, 450, route.TotalDuration)
}

func TestFlightService_FindRoutes_SecondLegBeforeArrivalExcluded(t *testing.T) {
	repo := repository.NewMemoryFlightRepository(
		flight("1", "DEL", "HYD", at(0, 8, 0), at(0, 10, 30)),
		flight("2", "HYD", "BLR", at(0, 14, 0), at(0, 15, 30)),
		flight("3", "HYD", "BLR", at(0, 9, 0), at(0, 10, 30)),
	)
	service := NewFlightService(repo, 4)

	result, err := service.FindRoutes(context.Background(), "DEL", "BLR", day)

	require.NoError(t, err)
	assert.Equal(t, [][2]string{{"1", "2"}}, transitIDs(result.Transit))
}

func TestFlightService_FindRoutes_NextDayWindow(t *testing.T) {
	repo := repository.NewMemoryFlightRepository(
		flight("1", "DEL", "HYD", at(0, 20, 0), at(0, 22, 0)),
		// Departs exactly at first-leg arrival.
		flight("2", "HYD", "BLR", at(0, 22, 0), at(0, 23, 0)),
		// Last millisecond of the next day is still eligible.
		flight("3", "HYD", "BLR", at(1, 23, 0).Add(59*time.Minute+59*time.Second+999*time.Millisecond), at(2, 1, 0)),
		// Two days later is not.
		flight("4", "HYD", "BLR", at(2, 0, 0), at(2, 1, 30)),
	)
	service := NewFlightService(repo, 0)

	result, err := service.FindRoutes(context.Background(), "DEL", "BLR", day)

	require.NoError(t, err)
	assert.Equal(t, [][2]string{{"1", "2"}, {"1", "3"}}, transitIDs(result.Transit))
}

func TestFlightService_FindRoutes_FirstLegMustDepartThatDay(t *testing.T) {
	repo := repository.NewMemoryFlightRepository(
		flight("1", "DEL", "HYD", at(1, 0, 30), at(1, 2, 0)),
		flight("2", "HYD", "BLR", at(1, 4, 0), at(1, 5, 0)),
	)
	service := NewFlightService(repo, 4)

	result, err := service.FindRoutes(context.Background(), "DEL", "BLR", day)

	require.NoError(t, err)
	assert.Empty(t, result.Transit)
}

func TestFlightService_FindRoutes_DirectAndTransitDisjoint(t *testing.T) {
	repo := repository.NewMemoryFlightRepository(
		flight("1", "DEL", "BLR", at(0, 7, 0), at(0, 9, 45)),
		flight("2", "DEL", "HYD", at(0, 8, 0), at(0, 10, 30)),
		flight("3", "HYD", "BLR", at(0, 14, 0), at(0, 15, 30)),
		flight("4", "BLR", "HYD", at(0, 11, 0), at(0, 12, 0)),
	)
	service := NewFlightService(repo, 4)

	result, err := service.FindRoutes(context.Background(), "DEL", "BLR", day)

	require.NoError(t, err)
	require.Len(t, result.Direct, 1)
	assert.Equal(t, "1", result.Direct[0].Flight.ID)
	assert.Equal(t, 165, result.Direct[0].TotalDuration)
	assert.Equal(t, [][2]string{{"2", "3"}}, transitIDs(result.Transit))
	for _, r := range result.Transit {
		assert.NotEqual(t, "BLR", r.FirstLeg.Destination)
	}
}

func TestFlightService_FindRoutes_RankedByTotalDuration(t *testing.T) {
	repo := repository.NewMemoryFlightRepository(
		flight("1", "DEL", "HYD", at(0, 6, 0), at(0, 8, 0)),
		flight("2", "DEL", "BOM", at(0, 7, 0), at(0, 9, 0)),
		flight("3", "HYD", "BLR", at(0, 18, 0), at(0, 19, 0)), // 780 via HYD
		flight("4", "BOM", "BLR", at(0, 10, 0), at(0, 11, 30)), // 270 via BOM
		flight("5", "HYD", "BLR", at(0, 9, 0), at(0, 10, 0)),  // 240 via HYD
	)
	service := NewFlightService(repo, 1)

	result, err := service.FindRoutes(context.Background(), "DEL", "BLR", day)

	require.NoError(t, err)
	assert.Equal(t, [][2]string{{"1", "5"}, {"2", "4"}, {"1", "3"}}, transitIDs(result.Transit))
	for i := 1; i < len(result.Transit); i++ {
		assert.LessOrEqual(t, result.Transit[i-1].TotalDuration, result.Transit[i].TotalDuration)
	}
}

func TestFlightService_FindRoutes_TiesKeepEncounterOrder(t *testing.T) {
	repo := repository.NewMemoryFlightRepository(
		flight("1", "DEL", "HYD", at(0, 6, 0), at(0, 8, 0)),
		flight("2", "DEL", "BOM", at(0, 7, 0), at(0, 9, 0)),
		flight("3", "HYD", "BLR", at(0, 9, 0), at(0, 10, 0)),
		flight("4", "BOM", "BLR", at(0, 10, 0), at(0, 11, 0)),
	)
	service := NewFlightService(repo, 4)

	result, err := service.FindRoutes(context.Background(), "DEL", "BLR", day)

	require.NoError(t, err)
	assert.Equal(t, [][2]string{{"1", "3"}, {"2", "4"}}, transitIDs(result.Transit))
}

func TestFlightService_FindRoutes_SameTransitCityNotDeduplicated(t *testing.T) {
	repo := repository.NewMemoryFlightRepository(
		flight("1", "DEL", "HYD", at(0, 6, 0), at(0, 8, 0)),
		flight("2", "DEL", "HYD", at(0, 7, 0), at(0, 9, 0)),
		flight("3", "HYD", "BLR", at(0, 12, 0), at(0, 13, 0)),
	)
	service := NewFlightService(repo, 4)

	result, err := service.FindRoutes(context.Background(), "DEL", "BLR", day)

	require.NoError(t, err)
	assert.Equal(t, [][2]string{{"2", "3"}, {"1", "3"}}, transitIDs(result.Transit))
}

func TestFlightService_FindRoutes_RoundsMinutes(t *testing.T) {
	repo := repository.NewMemoryFlightRepository(
		flight("1", "DEL", "BLR", at(0, 7, 0), at(0, 9, 0).Add(30*time.Second)),
		flight("2", "DEL", "BLR", at(0, 8, 0), at(0, 10, 0).Add(29*time.Second)),
	)
	service := NewFlightService(repo, 4)

	result, err := service.FindRoutes(context.Background(), "DEL", "BLR", day)

	require.NoError(t, err)
	require.Len(t, result.Direct, 2)
	assert.Equal(t, 121, result.Direct[0].TotalDuration)
	assert.Equal(t, 120, result.Direct[1].TotalDuration)
}

func TestFlightService_FindRoutes_NoFirstLegsSkipsSecondLegQuery(t *testing.T) {
	repo := &MockFlightRepository{}
	service := NewFlightService(repo, 4)
	ctx := context.Background()
	from, to := domain.DayWindow(day)

	repo.On("FindByRoute", mock.Anything, "DEL", "BLR", from, to).Return([]domain.Flight{}, nil).Once()
	repo.On("FindDepartures", mock.Anything, "DEL", "BLR", from, to).Return([]domain.Flight{}, nil).Once()

	result, err := service.FindRoutes(ctx, "DEL", "BLR", day)

	require.NoError(t, err)
	assert.NotNil(t, result.Direct)
	assert.NotNil(t, result.Transit)
	assert.Empty(t, result.Transit)
	repo.AssertExpectations(t)
	repo.AssertNumberOfCalls(t, "FindByRoute", 1)
}

func TestFlightService_FindRoutes_RepositoryError(t *testing.T) {
	repo := &MockFlightRepository{}
	service := NewFlightService(repo, 4)
	from, to := domain.DayWindow(day)

	first := flight("1", "DEL", "HYD", at(0, 8, 0), at(0, 10, 0))
	repo.On("FindByRoute", mock.Anything, "DEL", "BLR", from, to).Return([]domain.Flight{}, nil).Once()
	repo.On("FindDepartures", mock.Anything, "DEL", "BLR", from, to).Return([]domain.Flight{first}, nil).Once()
	repo.On("FindByRoute", mock.Anything, "HYD", "BLR", first.ArrivalTime, domain.EndOfDay(at(1, 0, 0))).
		Return([]domain.Flight(nil), errors.New("catalog timeout")).Once()

	_, err := service.FindRoutes(context.Background(), "DEL", "BLR", day)

	assert.ErrorContains(t, err, "catalog timeout")
}

func TestFlightService_FindRoutes_Validation(t *testing.T) {
	service := NewFlightService(&MockFlightRepository{}, 4)

	_, err := service.FindRoutes(context.Background(), " ", "BLR", day)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestFlightService_GetByID(t *testing.T) {
	repo := &MockFlightRepository{}
	service := NewFlightService(repo, 4)
	ctx := context.Background()

	f := flight("1", "DEL", "HYD", at(0, 8, 0), at(0, 10, 0))
	repo.On("GetByID", ctx, "1").Return(&f, nil).Once()
	repo.On("GetByID", ctx, "9").Return(nil, domain.ErrFlightNotFound).Once()

	got, err := service.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, &f, got)

	_, err = service.GetByID(ctx, "9")
	assert.ErrorIs(t, err, domain.ErrFlightNotFound)
}
