// Package audit stores the console's audit trail in the audit_logs
// collection.
package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is where events are stored.
const Collection = "audit_logs"

// DefaultLimit applies when a query sets no Limit.
const DefaultLimit = 100

// QueryFilter narrows a query. Zero fields do not filter. The time range is
// inclusive at both ends.
type QueryFilter struct {
	UserID    *primitive.ObjectID
	ActorID   *primitive.ObjectID
	Category  string
	EventType string
	StartTime *time.Time
	EndTime   *time.Time
	Limit     int64
	Offset    int64
}

func (f QueryFilter) match() bson.M {
	m := bson.M{}
	if f.UserID != nil {
		m["user_id"] = *f.UserID
	}
	if f.ActorID != nil {
		m["actor_id"] = *f.ActorID
	}
	if f.Category != "" {
		m["category"] = f.Category
	}
	if f.EventType != "" {
		m["event_type"] = f.EventType
	}
	span := bson.M{}
	if f.StartTime != nil {
		span["$gte"] = *f.StartTime
	}
	if f.EndTime != nil {
		span["$lte"] = *f.EndTime
	}
	if len(span) > 0 {
		m["created_at"] = span
	}
	return m
}

// Store reads and writes audit events.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// Log inserts e, stamping an id and time when unset.
func (s *Store) Log(ctx context.Context, e Event) error {
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, e)
	return err
}

// Query returns matching events, newest first.
func (s *Store) Query(ctx context.Context, f QueryFilter) ([]Event, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(f.Offset).
		SetLimit(limit)

	cur, err := s.c.Find(ctx, f.match(), opts)
	if err != nil {
		return nil, err
	}
	var out []Event
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountByFilter counts matching events, ignoring Limit and Offset.
func (s *Store) CountByFilter(ctx context.Context, f QueryFilter) (int64, error) {
	return s.c.CountDocuments(ctx, f.match())
}

// GetByUser returns the latest events that concern profile id, whether the
// profile acted or was acted on.
func (s *Store) GetByUser(ctx context.Context, id primitive.ObjectID, limit int64) ([]Event, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{"$or": bson.A{bson.M{"user_id": id}, bson.M{"actor_id": id}}}, opts)
	if err != nil {
		return nil, err
	}
	var out []Event
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteOlderThan removes events created before cutoff.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"created_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
