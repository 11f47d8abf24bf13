// internal/testutil/fixtures.go
package testutil

import (
	"testing"
	"time"

	"github.com/dalemusser/stratareview/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures inserts domain documents directly, bypassing store normalization,
// so tests can shape data the way the reviewer app writes it.
type Fixtures struct {
	t  *testing.T
	db *mongo.Database
}

// NewFixtures returns a fixture helper bound to db.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{t: t, db: db}
}

func (f *Fixtures) insert(coll string, doc any) {
	f.t.Helper()
	ctx, cancel := TestContext()
	defer cancel()
	if _, err := f.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("insert into %s: %v", coll, err)
	}
}

// Profile inserts a reviewer profile. Zero CreatedAt defaults to now.
func (f *Fixtures) Profile(email string, balance float64, createdAt time.Time) models.Profile {
	f.t.Helper()
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	p := models.Profile{
		ID:        primitive.NewObjectID(),
		Email:     &email,
		Balance:   &balance,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	f.insert("profiles", p)
	return p
}

// Operator inserts an admin profile with the given bcrypt hash.
func (f *Fixtures) Operator(email, passwordHash string) models.Profile {
	f.t.Helper()
	now := time.Now()
	zero := 0.0
	p := models.Profile{
		ID:           primitive.NewObjectID(),
		Email:        &email,
		Balance:      &zero,
		IsAdmin:      true,
		PasswordHash: &passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.insert("profiles", p)
	return p
}

// Video inserts an active video.
func (f *Fixtures) Video(title, youtubeID string) models.Video {
	f.t.Helper()
	now := time.Now()
	v := models.Video{
		ID:            primitive.NewObjectID(),
		Title:         title,
		TitleCI:       title,
		YouTubeID:     youtubeID,
		YouTubeURL:    "https://www.youtube.com/watch?v=" + youtubeID,
		EarningAmount: models.DefaultEarningAmount,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	f.insert("videos", v)
	return v
}

// Review inserts a completed review. rating 0 leaves the review unrated.
func (f *Fixtures) Review(userID, videoID primitive.ObjectID, rating int, earning float64, completedAt time.Time) models.Review {
	f.t.Helper()
	r := models.Review{
		ID:            primitive.NewObjectID(),
		UserID:        userID,
		VideoID:       videoID,
		EarningAmount: earning,
		CreatedAt:     completedAt,
		CompletedAt:   &completedAt,
	}
	if rating > 0 {
		r.Rating = &rating
	}
	f.insert("reviews", r)
	return r
}

// List inserts a daily video list for listDate (YYYY-MM-DD).
func (f *Fixtures) List(userID primitive.ObjectID, listDate string, completed bool) models.DailyVideoList {
	f.t.Helper()
	now := time.Now()
	l := models.DailyVideoList{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		ListDate:    listDate,
		IsCompleted: completed,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.insert("daily_video_lists", l)
	return l
}
