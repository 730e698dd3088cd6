package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS flights (
	id             TEXT PRIMARY KEY,
	flight_number  TEXT NOT NULL,
	airline        TEXT NOT NULL,
	origin         TEXT NOT NULL,
	destination    TEXT NOT NULL,
	departure_time TIMESTAMPTZ NOT NULL,
	arrival_time   TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS flights_route_departure_idx
	ON flights (origin, destination, departure_time);

CREATE TABLE IF NOT EXISTS bookings (
	id          TEXT PRIMARY KEY,
	ref_id      TEXT NOT NULL UNIQUE,
	origin      TEXT NOT NULL,
	destination TEXT NOT NULL,
	pieces      INTEGER NOT NULL CHECK (pieces >= 1),
	weight_kg   INTEGER NOT NULL CHECK (weight_kg >= 0),
	status      TEXT NOT NULL,
	flights     TEXT[] NOT NULL DEFAULT '{}',
	timeline    JSONB NOT NULL DEFAULT '[]',
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);
`

// EnsureSchema creates the flights and bookings tables and their indexes if
// they do not exist yet.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
