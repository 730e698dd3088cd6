package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/aircargo/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoFlightRepository struct {
	collection *mongo.Collection
	timeout    time.Duration
}

func NewMongoFlightRepository(db *mongo.Database, timeout time.Duration) FlightRepository {
	return &MongoFlightRepository{
		collection: db.Collection(FlightsCollection),
		timeout:    timeout,
	}
}

func (r *MongoFlightRepository) FindByRoute(ctx context.Context, origin, destination string, from, to time.Time) ([]domain.Flight, error) {
	return r.find(ctx, routeFilter(origin, destination, from, to))
}

func (r *MongoFlightRepository) FindDepartures(ctx context.Context, origin, excludeDestination string, from, to time.Time) ([]domain.Flight, error) {
	return r.find(ctx, departuresFilter(origin, excludeDestination, from, to))
}

func (r *MongoFlightRepository) GetByID(ctx context.Context, id string) (*domain.Flight, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var f domain.Flight
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&f); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrFlightNotFound
		}
		return nil, fmt.Errorf("failed to find flight: %w", err)
	}
	return &f, nil
}

func (r *MongoFlightRepository) Exists(ctx context.Context, id string) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to count flights: %w", err)
	}
	return n > 0, nil
}

func (r *MongoFlightRepository) find(ctx context.Context, filter bson.M) ([]domain.Flight, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "departure_time", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find flights: %w", err)
	}
	defer cursor.Close(ctx)

	flights := make([]domain.Flight, 0)
	if err := cursor.All(ctx, &flights); err != nil {
		return nil, fmt.Errorf("failed to decode flights: %w", err)
	}
	return flights, nil
}

func departureWindow(from, to time.Time) bson.M {
	return bson.M{"$gte": from, "$lte": to}
}

func routeFilter(origin, destination string, from, to time.Time) bson.M {
	return bson.M{
		"origin":         origin,
		"destination":    destination,
		"departure_time": departureWindow(from, to),
	}
}

func departuresFilter(origin, excludeDestination string, from, to time.Time) bson.M {
	return bson.M{
		"origin":         origin,
		"destination":    bson.M{"$ne": excludeDestination},
		"departure_time": departureWindow(from, to),
	}
}

var _ FlightRepository = (*MongoFlightRepository)(nil)
