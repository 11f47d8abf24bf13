// internal/app/store/profiles/profilestore.go
package profilestore

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a profile
//   - Email: What an operator types to sign in (stored lowercase)

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/stratareview/internal/app/store/storeutil"
	"github.com/dalemusser/stratareview/internal/app/system/normalize"
	"github.com/dalemusser/stratareview/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the profiles collection name.
const Collection = "profiles"

// DefaultPageSize is the number of profiles shown per page in the console.
const DefaultPageSize = 10

var (
	// ErrDuplicateEmail is returned when a profile with the same email already exists.
	ErrDuplicateEmail = errors.New("a profile with this email already exists")
	// ErrNotFound is returned when no profile matches.
	ErrNotFound = errors.New("profile not found")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// GetByID loads a profile by ObjectID. Returns ErrNotFound if missing.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Profile, error) {
	var p models.Profile
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// GetByEmail looks up a profile by email (case-insensitive).
// Returns ErrNotFound if missing.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var p models.Profile
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Create inserts a new profile after normalizing fields.
func (s *Store) Create(ctx context.Context, p models.Profile) (models.Profile, error) {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.Email != nil && *p.Email != "" {
		email := normalize.Email(*p.Email)
		p.Email = &email
	}
	if p.DisplayName != nil {
		name := normalize.Name(*p.DisplayName)
		folded := text.Fold(name)
		p.DisplayName = &name
		p.DisplayNameCI = &folded
	}
	if p.Balance == nil {
		zero := 0.0
		p.Balance = &zero
	}

	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Profile{}, ErrDuplicateEmail
		}
		return models.Profile{}, err
	}
	return p, nil
}

// ListFilter narrows the console profile list.
type ListFilter struct {
	Search   string // substring of email, display name or exact id
	Status   string // "", "active", "blocked" or "admin"
	Page     int64  // 1-based
	PageSize int64
}

// Filter builds the Mongo filter for a ListFilter.
//
// The status filters are not a partition: "blocked" includes blocked
// admins and "active" excludes both admins and blocked profiles.
func (f ListFilter) Filter() bson.M {
	filter := bson.M{}
	switch normalize.Status(f.Status) {
	case models.StatusAdmin:
		filter["is_admin"] = true
	case models.StatusBlocked:
		filter["is_blocked"] = true
	case models.StatusActive:
		filter["is_admin"] = false
		filter["is_blocked"] = false
	}

	q := normalize.QueryParam(f.Search)
	if q == "" {
		return filter
	}
	filter["$or"] = storeutil.WithIDMatch(bson.A{
		storeutil.Contains("email", normalize.Email(q)),
		storeutil.Contains("display_name_ci", text.Fold(q)),
	}, q)
	return filter
}

// List returns one page of profiles, newest first, together with the total
// number of matching profiles.
func (s *Store) List(ctx context.Context, f ListFilter) ([]models.Profile, int64, error) {
	if f.PageSize <= 0 {
		f.PageSize = DefaultPageSize
	}
	filter := f.Filter()

	total, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := storeutil.NewestFirst(f.PageSize, f.Page).
		SetProjection(bson.M{"password_hash": 0})
	out, err := s.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Find returns profiles matching the given filter with optional find options.
func (s *Store) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Profile, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Profile
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the number of profiles matching the given filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}

// StatusCounts holds the profile counters used by the dashboard.
type StatusCounts struct {
	Total   int64 `bson:"total"`
	Active  int64 `bson:"active"`
	Blocked int64 `bson:"blocked"`
	Admins  int64 `bson:"admins"`

	// BlockedNonAdmin counts blocked profiles that are not admins.
	BlockedNonAdmin int64 `bson:"blocked_non_admin"`
}

// CountByStatus returns all profile counters in a single aggregation.
// Active means neither admin nor blocked.
func (s *Store) CountByStatus(ctx context.Context) (StatusCounts, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": 1},
			"blocked": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{"$is_blocked", true}}, 1, 0},
			}},
			"admins": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{"$is_admin", true}}, 1, 0},
			}},
			"blocked_non_admin": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$and": bson.A{
					bson.M{"$eq": bson.A{"$is_blocked", true}},
					bson.M{"$ne": bson.A{"$is_admin", true}},
				}}, 1, 0},
			}},
			"active": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$and": bson.A{
					bson.M{"$ne": bson.A{"$is_blocked", true}},
					bson.M{"$ne": bson.A{"$is_admin", true}},
				}}, 1, 0},
			}},
		}}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return StatusCounts{}, err
	}
	defer cur.Close(ctx)

	var rows []StatusCounts
	if err := cur.All(ctx, &rows); err != nil {
		return StatusCounts{}, err
	}
	if len(rows) == 0 {
		return StatusCounts{}, nil
	}
	return rows[0], nil
}

// Balances returns every profile's balance. Missing balances come back nil.
func (s *Store) Balances(ctx context.Context) ([]*float64, error) {
	opts := options.Find().SetProjection(bson.M{"balance": 1})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*float64
	for cur.Next(ctx) {
		var row struct {
			Balance *float64 `bson:"balance"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		out = append(out, row.Balance)
	}
	return out, cur.Err()
}

// CreatedSince returns the profiles created at or after since, oldest first.
// Only the fields needed for growth and status charts are loaded.
func (s *Store) CreatedSince(ctx context.Context, since time.Time) ([]models.Profile, error) {
	opts := options.Find().
		SetSort(bson.M{"created_at": 1}).
		SetProjection(bson.M{"_id": 1, "created_at": 1, "balance": 1, "is_admin": 1, "is_blocked": 1})
	return s.Find(ctx, bson.M{"created_at": bson.M{"$gte": since}}, opts)
}

// SetBlocked sets the blocked flag on a profile.
func (s *Store) SetBlocked(ctx context.Context, id primitive.ObjectID, blocked bool) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"is_blocked": blocked,
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

// SetPassword stores a new password hash. requireChange marks the password
// as temporary so the owner must replace it at next sign-in.
func (s *Store) SetPassword(ctx context.Context, id primitive.ObjectID, passwordHash string, requireChange bool) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"password_hash":            passwordHash,
		"requires_password_change": requireChange,
		"updated_at":               time.Now(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetBalance overwrites a profile's balance.
func (s *Store) SetBalance(ctx context.Context, id primitive.ObjectID, balance float64) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"balance":    balance,
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

// SetAdmin grants or revokes operator access.
func (s *Store) SetAdmin(ctx context.Context, id primitive.ObjectID, isAdmin bool) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"is_admin":   isAdmin,
		"updated_at": time.Now(),
	}})
	return err
}

// CountAdmins returns the number of operators that are not blocked.
func (s *Store) CountAdmins(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"is_admin": true, "is_blocked": false})
}
