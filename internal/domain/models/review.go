// internal/domain/models/review.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review is one completed (or in-progress) review of a video by a user.
// Rating is nil until the user submits it; CompletedAt is nil for reviews
// that were started but never finished.
type Review struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"user_id" json:"user_id"`
	VideoID       primitive.ObjectID `bson:"video_id" json:"video_id"`
	Rating        *int               `bson:"rating,omitempty" json:"rating,omitempty"`
	EarningAmount float64            `bson:"earning_amount" json:"earning_amount"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	CompletedAt   *time.Time         `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
}

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)
