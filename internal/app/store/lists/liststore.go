// internal/app/store/lists/liststore.go
package liststore

import (
	"context"
	"time"

	"github.com/dalemusser/stratareview/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the daily video lists collection name.
const Collection = "daily_video_lists"

// RecentLimit is how many lists the profile detail view shows.
const RecentLimit = 30

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// Create inserts a daily list.
func (s *Store) Create(ctx context.Context, l models.DailyVideoList) (models.DailyVideoList, error) {
	if l.ID.IsZero() {
		l.ID = primitive.NewObjectID()
	}
	now := time.Now()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, l); err != nil {
		return models.DailyVideoList{}, err
	}
	return l, nil
}

// Totals holds the list counters used by the dashboard.
type Totals struct {
	Total     int64 `bson:"total"`
	Completed int64 `bson:"completed"`
}

// CountTotals returns the number of lists and how many of them are completed.
func (s *Store) CountTotals(ctx context.Context) (Totals, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": 1},
			"completed": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{"$is_completed", true}}, 1, 0},
			}},
		}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return Totals{}, err
	}
	defer cur.Close(ctx)

	var rows []Totals
	if err := cur.All(ctx, &rows); err != nil {
		return Totals{}, err
	}
	if len(rows) == 0 {
		return Totals{}, nil
	}
	return rows[0], nil
}

// RecentForUser returns a profile's most recent lists, newest first.
func (s *Store) RecentForUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.DailyVideoList, error) {
	if limit <= 0 {
		limit = RecentLimit
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.DailyVideoList
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
