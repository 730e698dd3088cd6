package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	FlightsCollection  = "flights"
	BookingsCollection = "bookings"
)

// EnsureMongoIndexes creates the unique ref_id index on bookings and the
// route lookup index on flights.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(BookingsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "ref_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("ref_id_unique"),
	})
	if err != nil {
		return fmt.Errorf("create bookings index: %w", err)
	}

	_, err = db.Collection(FlightsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "origin", Value: 1},
			{Key: "destination", Value: 1},
			{Key: "departure_time", Value: 1},
		},
		Options: options.Index().SetName("route_departure"),
	})
	if err != nil {
		return fmt.Errorf("create flights index: %w", err)
	}
	return nil
}

// withTimeout bounds ctx by timeout unless ctx already expires sooner.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}
	return context.WithTimeout(ctx, timeout)
}
