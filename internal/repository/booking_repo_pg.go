package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Domenick1991/aircargo/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	bookingColumns = `id, ref_id, origin, destination, pieces, weight_kg, status, flights, timeline, created_at, updated_at`

	uniqueViolation = "23505"
)

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

func (r *PGBookingRepository) Insert(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	timeline, err := json.Marshal(booking.Timeline)
	if err != nil {
		return nil, fmt.Errorf("marshal timeline: %w", err)
	}
	flights := booking.Flights
	if flights == nil {
		flights = []string{}
	}

	row := r.db.QueryRow(ctx, `INSERT INTO bookings (`+bookingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb, $10, $11)
		RETURNING `+bookingColumns,
		booking.ID, booking.RefID, booking.Origin, booking.Destination, booking.Pieces, booking.WeightKg,
		booking.Status, flights, string(timeline), booking.CreatedAt, booking.UpdatedAt)

	stored, err := scanBooking(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateRefID, booking.RefID)
		}
		return nil, err
	}
	return stored, nil
}

func (r *PGBookingRepository) ConditionalUpdate(ctx context.Context, id string, expected []domain.BookingStatus, update StatusUpdate) (*domain.Booking, error) {
	appended := []domain.TimelineEvent{}
	if update.Event != nil {
		appended = append(appended, *update.Event)
	}
	event, err := json.Marshal(appended)
	if err != nil {
		return nil, fmt.Errorf("marshal timeline event: %w", err)
	}

	row := r.db.QueryRow(ctx, `UPDATE bookings
		SET status=$1, updated_at=$2, timeline = timeline || $3::jsonb
		WHERE id=$4 AND status = ANY($5)
		RETURNING `+bookingColumns,
		update.Status, update.UpdatedAt, string(event), id, statusStrings(expected))

	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoMatch
		}
		return nil, err
	}
	return b, nil
}

func (r *PGBookingRepository) FindByID(ctx context.Context, id string) (*domain.Booking, error) {
	return r.findOne(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id)
}

func (r *PGBookingRepository) FindByRefID(ctx context.Context, refID string) (*domain.Booking, error) {
	return r.findOne(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE ref_id=$1`, refID)
}

func (r *PGBookingRepository) LatestRefID(ctx context.Context, prefix string) (string, error) {
	var refID string
	err := r.db.QueryRow(ctx, `SELECT ref_id FROM bookings WHERE ref_id LIKE $1
		ORDER BY ref_id COLLATE "C" DESC LIMIT 1`, prefix+"%").Scan(&refID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return refID, nil
}

func (r *PGBookingRepository) findOne(ctx context.Context, sql string, arg string) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, sql, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var (
		b        domain.Booking
		timeline []byte
	)
	if err := row.Scan(&b.ID, &b.RefID, &b.Origin, &b.Destination, &b.Pieces, &b.WeightKg,
		&b.Status, &b.Flights, &timeline, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(timeline, &b.Timeline); err != nil {
		return nil, fmt.Errorf("decode timeline: %w", err)
	}
	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()
	return &b, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
