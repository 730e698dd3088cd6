package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Domenick1991/aircargo/config"
	"github.com/Domenick1991/aircargo/internal/counter"
	"github.com/Domenick1991/aircargo/internal/domain"
	"github.com/Domenick1991/aircargo/internal/refid"
	"github.com/Domenick1991/aircargo/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/yaml.v3"
)

// Storage bundles the repositories selected by storage.driver together with
// the ref id allocator.
type Storage struct {
	Flights  repository.FlightRepository
	Bookings repository.BookingRepository
	RefIDs   refid.Allocator

	closers []func() error
}

// Close releases every connection opened by OpenStorage.
func (s *Storage) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func OpenStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	s := &Storage{}

	var err error
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		err = s.openPostgres(ctx, cfg)
	case config.DriverMongo:
		err = s.openMongo(ctx, cfg)
	case config.DriverMemory:
		err = s.openMemory(cfg)
	default:
		err = fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	if err := s.openAllocator(ctx, cfg); err != nil {
		_ = s.Close()
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"driver":          cfg.Storage.Driver,
		"ref_id_sequence": cfg.Booking.RefIDSequence,
	}).Info("storage ready")
	return s, nil
}

func (s *Storage) openPostgres(ctx context.Context, cfg *config.Config) error {
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	s.closers = append(s.closers, func() error {
		pool.Close()
		return nil
	})

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	if cfg.Storage.EnsureSchema {
		if err := repository.EnsureSchema(ctx, pool); err != nil {
			return err
		}
	}

	s.Flights = repository.NewFlightRepository(pool)
	s.Bookings = repository.NewBookingRepository(pool)
	return nil
}

func (s *Storage) openMongo(ctx context.Context, cfg *config.Config) error {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.Mongo.ConnectTimeout())
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	s.closers = append(s.closers, func() error {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return client.Disconnect(disconnectCtx)
	})

	if err := client.Ping(connectCtx, nil); err != nil {
		return fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(cfg.Mongo.Database)
	if cfg.Storage.EnsureSchema {
		if err := repository.EnsureMongoIndexes(ctx, db); err != nil {
			return err
		}
	}

	s.Flights = repository.NewMongoFlightRepository(db, cfg.Mongo.ReadTimeout())
	s.Bookings = repository.NewMongoBookingRepository(db, cfg.Mongo.ReadTimeout(), cfg.Mongo.WriteTimeout())
	return nil
}

func (s *Storage) openMemory(cfg *config.Config) error {
	flights := repository.NewMemoryFlightRepository()
	if cfg.Storage.FlightsFile != "" {
		seed, err := LoadFlights(cfg.Storage.FlightsFile)
		if err != nil {
			return err
		}
		flights.Add(seed...)
	}
	s.Flights = flights
	s.Bookings = repository.NewMemoryBookingRepository()
	return nil
}

func (s *Storage) openAllocator(ctx context.Context, cfg *config.Config) error {
	if cfg.Booking.RefIDSequence != config.SequenceRedis {
		s.RefIDs = refid.NewStoreAllocator(s.Bookings)
		return nil
	}

	ttl := time.Duration(cfg.Booking.SequenceTTLHours) * time.Hour
	redisCounter := counter.NewRedisCounter(cfg.Redis, ttl)
	s.closers = append(s.closers, redisCounter.Close)
	if err := redisCounter.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	s.RefIDs = refid.NewCounterAllocator(s.Bookings, redisCounter)
	return nil
}

type flightSeed struct {
	ID            string    `yaml:"id"`
	FlightNumber  string    `yaml:"flight_number"`
	Airline       string    `yaml:"airline"`
	Origin        string    `yaml:"origin"`
	Destination   string    `yaml:"destination"`
	DepartureTime time.Time `yaml:"departure_time"`
	ArrivalTime   time.Time `yaml:"arrival_time"`
}

// LoadFlights reads a YAML list of flights. Times must be RFC 3339.
func LoadFlights(path string) ([]domain.Flight, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read flights file: %w", err)
	}

	var seeds []flightSeed
	if err := yaml.Unmarshal(data, &seeds); err != nil {
		return nil, fmt.Errorf("failed to parse flights file: %w", err)
	}

	flights := make([]domain.Flight, 0, len(seeds))
	for i, f := range seeds {
		if f.ID == "" || f.Origin == "" || f.Destination == "" {
			return nil, fmt.Errorf("flight #%d: id, origin and destination are required", i+1)
		}
		if !f.ArrivalTime.After(f.DepartureTime) {
			return nil, fmt.Errorf("flight %s: arrival must be after departure", f.ID)
		}
		flights = append(flights, domain.Flight{
			ID:            f.ID,
			FlightNumber:  f.FlightNumber,
			Airline:       f.Airline,
			Origin:        domain.NormalizeAirport(f.Origin),
			Destination:   domain.NormalizeAirport(f.Destination),
			DepartureTime: f.DepartureTime.UTC(),
			ArrivalTime:   f.ArrivalTime.UTC(),
		})
	}
	return flights, nil
}
