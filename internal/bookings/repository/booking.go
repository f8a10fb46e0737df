package repository

import (
	"context"
	"fmt"
	"time"

	bookingserrors "ribobook/internal/bookings/errors"
	"ribobook/pkg/config"
	"ribobook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "Bookings"

// BookingRepository is the write-through path to the backing collection
// plus its change feed. The in-memory mirror lives in the store, not here.
type BookingRepository interface {
	Insert(ctx context.Context, booking *model.Booking) error
	SetStatus(ctx context.Context, id string, status model.Status) error
	Delete(ctx context.Context, id string) error
	// FetchAll returns the full collection ordered by timestamp descending.
	FetchAll(ctx context.Context) ([]model.Booking, error)
	// Watch emits one signal per remote mutation until ctx is done. The
	// returned channel is closed when the subscription ends.
	Watch(ctx context.Context) (<-chan struct{}, error)
}

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

// bookingDoc is the persisted shape; the _id is a real ObjectID while the
// domain model carries its hex form.
type bookingDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Batch     string             `bson:"batch,omitempty"`
	Mobile    string             `bson:"mobile"`
	Email     string             `bson:"email"`
	Date      string             `bson:"date"`
	Time      string             `bson:"time"`
	Status    model.Status       `bson:"status,omitempty"`
	Timestamp time.Time          `bson:"timestamp"`
	CreatedAt string             `bson:"created_at,omitempty"`
}

func toDoc(b *model.Booking) bookingDoc {
	return bookingDoc{
		Name:      b.Name,
		Batch:     b.Batch,
		Mobile:    b.Mobile,
		Email:     b.Email,
		Date:      b.Date,
		Time:      b.Time,
		Status:    b.Status,
		Timestamp: b.Timestamp,
		CreatedAt: b.CreatedAt,
	}
}

func (d bookingDoc) toModel() model.Booking {
	return model.Booking{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Batch:     d.Batch,
		Mobile:    d.Mobile,
		Email:     d.Email,
		Date:      d.Date,
		Time:      d.Time,
		Status:    d.Status,
		Timestamp: d.Timestamp,
		CreatedAt: d.CreatedAt,
	}
}

func (r *mongoBookingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoBookingRepository) Insert(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	doc := toDoc(booking)
	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) SetStatus(ctx context.Context, id string, status model.Status) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if result.MatchedCount == 0 {
		return bookingserrors.ErrNotFound
	}
	return nil
}

func (r *mongoBookingRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	if result.DeletedCount == 0 {
		return bookingserrors.ErrNotFound
	}
	return nil
}

func (r *mongoBookingRepository) FetchAll(ctx context.Context) ([]model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []bookingDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	bookings := make([]model.Booking, 0, len(docs))
	for _, d := range docs {
		bookings = append(bookings, d.toModel())
	}
	return bookings, nil
}

func (r *mongoBookingRepository) Watch(ctx context.Context) (<-chan struct{}, error) {
	stream, err := r.collection.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return nil, fmt.Errorf("failed to open change stream: %w", err)
	}

	events := make(chan struct{}, 1)
	go func() {
		defer close(events)
		defer stream.Close(context.Background())

		for stream.Next(ctx) {
			// Coalesce: one pending signal is enough, the consumer
			// re-reads the whole collection anyway.
			select {
			case events <- struct{}{}:
			default:
			}
		}
	}()

	return events, nil
}
