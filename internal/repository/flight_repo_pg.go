package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/aircargo/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const flightColumns = `id, flight_number, airline, origin, destination, departure_time, arrival_time`

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

func (r *PGFlightRepository) FindByRoute(ctx context.Context, origin, destination string, from, to time.Time) ([]domain.Flight, error) {
	return r.query(ctx, `SELECT `+flightColumns+` FROM flights
		WHERE origin=$1 AND destination=$2 AND departure_time >= $3 AND departure_time <= $4
		ORDER BY departure_time`, origin, destination, from, to)
}

func (r *PGFlightRepository) FindDepartures(ctx context.Context, origin, excludeDestination string, from, to time.Time) ([]domain.Flight, error) {
	return r.query(ctx, `SELECT `+flightColumns+` FROM flights
		WHERE origin=$1 AND destination<>$2 AND departure_time >= $3 AND departure_time <= $4
		ORDER BY departure_time`, origin, excludeDestination, from, to)
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id string) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1`, id)
	f, err := scanFlight(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrFlightNotFound
		}
		return nil, err
	}
	return f, nil
}

func (r *PGFlightRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM flights WHERE id=$1)`, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PGFlightRepository) query(ctx context.Context, sql string, args ...any) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

func scanFlight(row pgx.Row) (*domain.Flight, error) {
	var f domain.Flight
	if err := row.Scan(&f.ID, &f.FlightNumber, &f.Airline, &f.Origin, &f.Destination, &f.DepartureTime, &f.ArrivalTime); err != nil {
		return nil, err
	}
	f.DepartureTime = f.DepartureTime.UTC()
	f.ArrivalTime = f.ArrivalTime.UTC()
	return &f, nil
}

var _ FlightRepository = (*PGFlightRepository)(nil)
