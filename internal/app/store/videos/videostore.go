// internal/app/store/videos/videostore.go
package videostore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/stratareview/internal/app/store/storeutil"
	"github.com/dalemusser/stratareview/internal/app/system/normalize"
	"github.com/dalemusser/stratareview/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the videos collection name.
const Collection = "videos"

// DefaultPageSize is the number of videos shown per page in the console.
const DefaultPageSize = 10

// ErrNotFound is returned when no video matches.
var ErrNotFound = errors.New("video not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// GetByID loads a video by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Video, error) {
	var v models.Video
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&v); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

// Create inserts a new video.
func (s *Store) Create(ctx context.Context, v models.Video) (models.Video, error) {
	if v.ID.IsZero() {
		v.ID = primitive.NewObjectID()
	}
	v.Title = normalize.Name(v.Title)
	v.TitleCI = text.Fold(v.Title)

	now := time.Now()
	if v.CreatedAt.IsZero() {
		v.CreatedAt = now
	}
	v.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, v); err != nil {
		return models.Video{}, err
	}
	return v, nil
}

// VideoUpdate holds the editable fields of a video.
type VideoUpdate struct {
	Title         string
	YouTubeID     string
	YouTubeURL    string
	ThumbnailURL  string
	EarningAmount float64
	IsActive      bool
}

// Update replaces the editable fields of a video.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd VideoUpdate) error {
	title := normalize.Name(upd.Title)
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"title":          title,
		"title_ci":       text.Fold(title),
		"youtube_id":     upd.YouTubeID,
		"youtube_url":    upd.YouTubeURL,
		"thumbnail_url":  upd.ThumbnailURL,
		"earning_amount": upd.EarningAmount,
		"is_active":      upd.IsActive,
		"updated_at":     time.Now(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetActive toggles whether a video is offered to reviewers.
func (s *Store) SetActive(ctx context.Context, id primitive.ObjectID, active bool) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"is_active":  active,
		"updated_at": time.Now(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a video. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListFilter narrows the console video list.
type ListFilter struct {
	Search   string // substring of the title, exact YouTube id or exact video id
	Active   *bool  // nil for all
	Page     int64  // 1-based
	PageSize int64
}

func (f ListFilter) filter() bson.M {
	filter := bson.M{}
	if f.Active != nil {
		filter["is_active"] = *f.Active
	}
	q := normalize.QueryParam(f.Search)
	if q == "" {
		return filter
	}
	filter["$or"] = storeutil.WithIDMatch(bson.A{
		storeutil.Contains("title_ci", text.Fold(q)),
		bson.M{"youtube_id": q},
	}, q)
	return filter
}

// List returns one page of videos, newest first, with the total match count.
func (s *Store) List(ctx context.Context, f ListFilter) ([]models.Video, int64, error) {
	if f.PageSize <= 0 {
		f.PageSize = DefaultPageSize
	}
	filter := f.filter()

	total, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := storeutil.NewestFirst(f.PageSize, f.Page)
	out, err := s.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Titles returns every video's id and title, for chart labels.
func (s *Store) Titles(ctx context.Context) ([]models.Video, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1, "title": 1})
	return s.Find(ctx, bson.M{}, opts)
}

// Find returns videos matching the given filter with optional find options.
func (s *Store) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Video, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Video
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the number of videos matching the given filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}

// CountActive returns the number of videos currently offered to reviewers.
func (s *Store) CountActive(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"is_active": true})
}
