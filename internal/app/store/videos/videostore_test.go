package videostore

import (
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/stratareview/internal/domain/models"
	"github.com/dalemusser/stratareview/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Video{
		Title:         "  Unboxing  ",
		YouTubeID:     "abc",
		EarningAmount: models.DefaultEarningAmount,
		IsActive:      true,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.Title != "Unboxing" || created.TitleCI == "" {
		t.Errorf("Create() title = %q / %q", created.Title, created.TitleCI)
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.EarningAmount != 5.0 || !got.IsActive {
		t.Errorf("GetByID() = %+v", got)
	}

	if _, err := store.GetByID(ctx, primitive.NewObjectID()); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID(missing) error = %v, want ErrNotFound", err)
	}
}

func TestStore_UpdateAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	v, err := store.Create(ctx, models.Video{Title: "Old", IsActive: true})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	err = store.Update(ctx, v.ID, VideoUpdate{Title: "New", YouTubeID: "xyz", EarningAmount: 7.5})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	got, _ := store.GetByID(ctx, v.ID)
	if got.Title != "New" || got.YouTubeID != "xyz" || got.EarningAmount != 7.5 || got.IsActive {
		t.Errorf("after Update() = %+v", got)
	}

	if err := store.SetActive(ctx, v.ID, true); err != nil {
		t.Fatalf("SetActive() error = %v", err)
	}
	if n, _ := store.CountActive(ctx); n != 1 {
		t.Errorf("CountActive() = %d, want 1", n)
	}

	if err := store.Update(ctx, primitive.NewObjectID(), VideoUpdate{Title: "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}

	n, err := store.Delete(ctx, v.ID)
	if err != nil || n != 1 {
		t.Errorf("Delete() = %d, %v", n, err)
	}
}

func TestStore_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 11; i++ {
		_, err := store.Create(ctx, models.Video{
			Title:     "Cooking " + string(rune('A'+i)),
			IsActive:  i%2 == 0,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	travel, err := store.Create(ctx, models.Video{Title: "Travel", YouTubeID: "trv00000001"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	active := true
	tests := []struct {
		name      string
		filter    ListFilter
		wantTotal int64
		wantLen   int
	}{
		{"first page", ListFilter{Page: 1}, 12, 10},
		{"second page", ListFilter{Page: 2}, 12, 2},
		{"search", ListFilter{Search: "cook"}, 11, 10},
		{"active only", ListFilter{Active: &active}, 6, 6},
		{"youtube id", ListFilter{Search: "trv00000001"}, 1, 1},
		{"video id", ListFilter{Search: travel.ID.Hex()}, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total, err := store.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if total != tt.wantTotal || len(got) != tt.wantLen {
				t.Errorf("List() = %d items of %d, want %d of %d", len(got), total, tt.wantLen, tt.wantTotal)
			}
		})
	}

	titles, err := store.Titles(ctx)
	if err != nil {
		t.Fatalf("Titles() error = %v", err)
	}
	if len(titles) != 12 {
		t.Errorf("Titles() len = %d, want 12", len(titles))
	}
}
