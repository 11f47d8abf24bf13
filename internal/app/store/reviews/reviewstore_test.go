package reviewstore

import (
	"testing"
	"time"

	"github.com/dalemusser/stratareview/internal/domain/models"
	"github.com/dalemusser/stratareview/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func intPtr(i int) *int             { return &i }
func timePtr(t time.Time) *time.Time { return &t }

func TestStore_Windows(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now()
	user := primitive.NewObjectID()
	video := primitive.NewObjectID()

	fixtures := []models.Review{
		{UserID: user, VideoID: video, Rating: intPtr(5), CompletedAt: timePtr(now.Add(-time.Hour))},
		{UserID: user, VideoID: video, Rating: intPtr(3), CompletedAt: timePtr(now.AddDate(0, 0, -10))},
		{UserID: user, VideoID: video, CompletedAt: timePtr(now.AddDate(0, 0, -2))},
		{UserID: user, VideoID: video},
	}
	for _, r := range fixtures {
		if _, err := store.Create(ctx, r); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	if n, _ := store.CountCompletedSince(ctx, now.AddDate(0, 0, -1)); n != 1 {
		t.Errorf("CountCompletedSince(1d) = %d, want 1", n)
	}

	week, err := store.CompletedSince(ctx, now.AddDate(0, 0, -7))
	if err != nil {
		t.Fatalf("CompletedSince() error = %v", err)
	}
	if len(week) != 2 {
		t.Errorf("CompletedSince(7d) len = %d, want 2", len(week))
	}

	rated, err := store.Rated(ctx)
	if err != nil {
		t.Fatalf("Rated() error = %v", err)
	}
	if len(rated) != 2 {
		t.Errorf("Rated() len = %d, want 2", len(rated))
	}
}

func TestStore_RecentForUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	videoID := primitive.NewObjectID()
	if _, err := db.Collection("videos").InsertOne(ctx, models.Video{ID: videoID, Title: "Joined"}); err != nil {
		t.Fatalf("insert video: %v", err)
	}

	user := primitive.NewObjectID()
	other := primitive.NewObjectID()
	now := time.Now()
	for i := 0; i < 3; i++ {
		_, err := store.Create(ctx, models.Review{
			UserID:      user,
			VideoID:     videoID,
			CompletedAt: timePtr(now.Add(-time.Duration(i) * time.Hour)),
		})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	if _, err := store.Create(ctx, models.Review{UserID: user, VideoID: primitive.NewObjectID(), CompletedAt: timePtr(now.AddDate(0, 0, -5))}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := store.Create(ctx, models.Review{UserID: other, VideoID: videoID}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := store.RecentForUser(ctx, user, 0)
	if err != nil {
		t.Fatalf("RecentForUser() error = %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("RecentForUser() len = %d, want 4", len(got))
	}
	if got[0].Video == nil || got[0].Video.Title != "Joined" {
		t.Errorf("first review video = %+v, want joined title", got[0].Video)
	}
	if got[3].Video != nil {
		t.Errorf("review of deleted video should have nil Video, got %+v", got[3].Video)
	}
	for i := 1; i < len(got); i++ {
		if got[i].CompletedAt.After(*got[i-1].CompletedAt) {
			t.Fatalf("RecentForUser() not newest first at %d", i)
		}
	}

	limited, _ := store.RecentForUser(ctx, user, 2)
	if len(limited) != 2 {
		t.Errorf("RecentForUser(limit 2) len = %d", len(limited))
	}
}
