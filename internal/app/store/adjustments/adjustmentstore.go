// internal/app/store/adjustments/adjustmentstore.go
package adjustmentstore

import (
	"context"
	"time"

	"github.com/dalemusser/stratareview/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the balance adjustments collection name.
const Collection = "balance_adjustments"

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// Insert appends an adjustment. ctx may be a transaction session context.
func (s *Store) Insert(ctx context.Context, a models.BalanceAdjustment) (models.BalanceAdjustment, error) {
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	if _, err := s.c.InsertOne(ctx, a); err != nil {
		return models.BalanceAdjustment{}, err
	}
	return a, nil
}

// ForUser returns a profile's adjustments, newest first.
func (s *Store) ForUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.BalanceAdjustment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.BalanceAdjustment
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
