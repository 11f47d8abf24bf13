// internal/domain/models/dailylist.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DailyVideoList is the set of videos a user is assigned for one day.
// ListDate is the calendar day in YYYY-MM-DD form.
type DailyVideoList struct {
	ID                primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID            primitive.ObjectID   `bson:"user_id" json:"user_id"`
	ListDate          string               `bson:"list_date" json:"list_date"`
	VideoIDs          []primitive.ObjectID `bson:"video_ids" json:"video_ids"`
	CurrentVideoIndex int                  `bson:"current_video_index" json:"current_video_index"`
	VideosCompleted   int                  `bson:"videos_completed" json:"videos_completed"`
	IsCompleted       bool                 `bson:"is_completed" json:"is_completed"`
	CreatedAt         time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time            `bson:"updated_at" json:"updated_at"`
}
