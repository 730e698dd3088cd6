package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/Domenick1991/aircargo/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoBookingRepository struct {
	collection   *mongo.Collection
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func NewMongoBookingRepository(db *mongo.Database, readTimeout, writeTimeout time.Duration) BookingRepository {
	return &MongoBookingRepository{
		collection:   db.Collection(BookingsCollection),
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

func (r *MongoBookingRepository) Insert(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.writeTimeout)
	defer cancel()

	stored := *booking
	if stored.Flights == nil {
		stored.Flights = []string{}
	}
	if _, err := r.collection.InsertOne(ctx, &stored); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateRefID, booking.RefID)
		}
		return nil, fmt.Errorf("failed to insert booking: %w", err)
	}
	return &stored, nil
}

func (r *MongoBookingRepository) ConditionalUpdate(ctx context.Context, id string, expected []domain.BookingStatus, update StatusUpdate) (*domain.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.writeTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var b domain.Booking
	err := r.collection.FindOneAndUpdate(ctx, guardFilter(id, expected), statusUpdateDoc(update), opts).Decode(&b)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNoMatch
		}
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}
	return &b, nil
}

func (r *MongoBookingRepository) FindByID(ctx context.Context, id string) (*domain.Booking, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoBookingRepository) FindByRefID(ctx context.Context, refID string) (*domain.Booking, error) {
	return r.findOne(ctx, bson.M{"ref_id": refID})
}

func (r *MongoBookingRepository) LatestRefID(ctx context.Context, prefix string) (string, error) {
	ctx, cancel := withTimeout(ctx, r.readTimeout)
	defer cancel()

	opts := options.FindOne().
		SetSort(bson.D{{Key: "ref_id", Value: -1}}).
		SetProjection(bson.M{"ref_id": 1})

	var doc struct {
		RefID string `bson:"ref_id"`
	}
	err := r.collection.FindOne(ctx, refPrefixFilter(prefix), opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", nil
		}
		return "", fmt.Errorf("failed to find latest ref id: %w", err)
	}
	return doc.RefID, nil
}

func (r *MongoBookingRepository) findOne(ctx context.Context, filter bson.M) (*domain.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.readTimeout)
	defer cancel()

	var b domain.Booking
	if err := r.collection.FindOne(ctx, filter).Decode(&b); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return &b, nil
}

func guardFilter(id string, expected []domain.BookingStatus) bson.M {
	return bson.M{
		"_id":    id,
		"status": bson.M{"$in": statusStrings(expected)},
	}
}

func statusUpdateDoc(update StatusUpdate) bson.M {
	doc := bson.M{
		"$set": bson.M{
			"status":     update.Status,
			"updated_at": update.UpdatedAt,
		},
	}
	if update.Event != nil {
		doc["$push"] = bson.M{"timeline": *update.Event}
	}
	return doc
}

func refPrefixFilter(prefix string) bson.M {
	return bson.M{"ref_id": bson.M{"$regex": "^" + regexp.QuoteMeta(prefix)}}
}

var _ BookingRepository = (*MongoBookingRepository)(nil)
