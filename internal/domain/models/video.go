// internal/domain/models/video.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultEarningAmount is what a review of a new video pays unless the
// operator sets something else.
const DefaultEarningAmount = 5.0

// Video is a catalog entry users are asked to review.
// YouTubeURL is always stored in canonical watch?v= form.
type Video struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title         string             `bson:"title" json:"title"`
	TitleCI       string             `bson:"title_ci" json:"-"` // folded for search
	YouTubeID     string             `bson:"youtube_id" json:"youtube_id"`
	YouTubeURL    string             `bson:"youtube_url" json:"youtube_url"`
	ThumbnailURL  string             `bson:"thumbnail_url" json:"thumbnail_url"`
	Duration      int                `bson:"duration" json:"duration"` // seconds, 0 if unknown
	EarningAmount float64            `bson:"earning_amount" json:"earning_amount"`
	IsActive      bool               `bson:"is_active" json:"is_active"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}
