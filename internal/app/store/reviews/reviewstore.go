// internal/app/store/reviews/reviewstore.go
package reviewstore

import (
	"context"
	"time"

	"github.com/dalemusser/stratareview/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the reviews collection name.
const Collection = "reviews"

// RecentLimit is how many reviews the profile detail view shows.
const RecentLimit = 50

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// Create inserts a review.
func (s *Store) Create(ctx context.Context, r models.Review) (models.Review, error) {
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	if _, err := s.c.InsertOne(ctx, r); err != nil {
		return models.Review{}, err
	}
	return r, nil
}

// Count returns the number of reviews matching the given filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}

// CountCompletedSince returns the number of reviews completed at or after since.
func (s *Store) CountCompletedSince(ctx context.Context, since time.Time) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"completed_at": bson.M{"$gte": since}})
}

var chartProjection = bson.M{"user_id": 1, "video_id": 1, "rating": 1, "earning_amount": 1, "completed_at": 1}

// CompletedSince returns the reviews completed at or after since.
func (s *Store) CompletedSince(ctx context.Context, since time.Time) ([]models.Review, error) {
	opts := options.Find().SetProjection(chartProjection)
	return s.find(ctx, bson.M{"completed_at": bson.M{"$gte": since}}, opts)
}

// Rated returns every review that carries a rating.
func (s *Store) Rated(ctx context.Context) ([]models.Review, error) {
	opts := options.Find().SetProjection(chartProjection)
	return s.find(ctx, bson.M{"rating": bson.M{"$ne": nil}}, opts)
}

func (s *Store) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Review, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Review
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ReviewWithVideo is a review joined with the video it was written for.
// Video is nil when the video has since been deleted.
type ReviewWithVideo struct {
	models.Review `bson:",inline"`
	Video         *models.Video `bson:"video,omitempty"`
}

// RecentForUser returns a profile's most recent reviews, newest first,
// joined with their videos.
func (s *Store) RecentForUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]ReviewWithVideo, error) {
	if limit <= 0 {
		limit = RecentLimit
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": userID}}},
		{{Key: "$sort", Value: bson.D{{Key: "completed_at", Value: -1}, {Key: "created_at", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "videos",
			"localField":   "video_id",
			"foreignField": "_id",
			"as":           "video",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$video", "preserveNullAndEmptyArrays": true}}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []ReviewWithVideo
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
