// internal/app/store/ratelimit/store.go
package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/stratareview/internal/app/system/normalize"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Attempt tracks failed sign-in attempts for one email.
type Attempt struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"`         // lowercase
	AttemptCount int                `bson:"attempt_count"` // failures in the current window
	WindowStart  time.Time          `bson:"window_start"`
	LockedUntil  *time.Time         `bson:"locked_until"`
	LastAttempt  time.Time          `bson:"last_attempt"` // TTL cleanup key
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

// Config controls when an email gets locked out.
type Config struct {
	MaxAttempts int
	Window      time.Duration
	Lockout     time.Duration
}

// Store manages sign-in rate limiting.
type Store struct {
	c   *mongo.Collection
	cfg Config
}

// New creates a rate limit Store. Zero config values fall back to
// 5 attempts in 15 minutes with a 15 minute lockout.
func New(db *mongo.Database, cfg Config) *Store {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.Window <= 0 {
		cfg.Window = 15 * time.Minute
	}
	if cfg.Lockout <= 0 {
		cfg.Lockout = 15 * time.Minute
	}
	return &Store{c: db.Collection("rate_limits"), cfg: cfg}
}

func (s *Store) load(ctx context.Context, email string) (*Attempt, error) {
	var a Attempt
	err := s.c.FindOne(ctx, bson.M{"email": email}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CheckAllowed reports whether a sign-in for email may proceed.
// remaining is -1 while locked. Lookup errors fail open.
func (s *Store) CheckAllowed(ctx context.Context, email string) (allowed bool, remaining int, lockedUntil *time.Time) {
	now := time.Now()
	a, err := s.load(ctx, normalize.Email(email))
	if err != nil || a == nil {
		return true, s.cfg.MaxAttempts, nil
	}

	if a.LockedUntil != nil && now.Before(*a.LockedUntil) {
		return false, -1, a.LockedUntil
	}
	if now.After(a.WindowStart.Add(s.cfg.Window)) {
		return true, s.cfg.MaxAttempts, nil
	}

	remaining = s.cfg.MaxAttempts - a.AttemptCount
	if remaining <= 0 {
		return false, 0, nil
	}
	return true, remaining, nil
}

// RecordFailure counts a failed sign-in and reports whether it triggered
// a lockout.
func (s *Store) RecordFailure(ctx context.Context, email string) (lockedOut bool, lockedUntil *time.Time, err error) {
	email = normalize.Email(email)
	now := time.Now()

	a, err := s.load(ctx, email)
	if err != nil {
		return false, nil, err
	}
	if a == nil {
		a = &Attempt{ID: primitive.NewObjectID(), Email: email, WindowStart: now, CreatedAt: now}
	}

	if now.After(a.WindowStart.Add(s.cfg.Window)) {
		a.AttemptCount = 0
		a.WindowStart = now
		a.LockedUntil = nil
	}
	a.AttemptCount++
	a.LastAttempt = now
	a.UpdatedAt = now

	if a.AttemptCount >= s.cfg.MaxAttempts {
		until := now.Add(s.cfg.Lockout)
		a.LockedUntil = &until
		lockedOut = true
		lockedUntil = &until
	}

	_, err = s.c.UpdateOne(ctx,
		bson.M{"_id": a.ID},
		bson.M{
			"$set": bson.M{
				"email":         a.Email,
				"attempt_count": a.AttemptCount,
				"window_start":  a.WindowStart,
				"locked_until":  a.LockedUntil,
				"last_attempt":  a.LastAttempt,
				"updated_at":    a.UpdatedAt,
			},
			"$setOnInsert": bson.M{"created_at": a.CreatedAt},
		},
		options.Update().SetUpsert(true),
	)
	return lockedOut, lockedUntil, err
}

// ClearOnSuccess forgets past failures after a successful sign-in.
func (s *Store) ClearOnSuccess(ctx context.Context, email string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"email": normalize.Email(email)})
	return err
}

// GetAttempt returns the current record for an email, or nil.
func (s *Store) GetAttempt(ctx context.Context, email string) (*Attempt, error) {
	return s.load(ctx, normalize.Email(email))
}

// PruneStale deletes records whose last attempt is older than cutoff and
// that are not locked.
func (s *Store) PruneStale(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{
		"last_attempt": bson.M{"$lt": cutoff},
		"$or": bson.A{
			bson.M{"locked_until": nil},
			bson.M{"locked_until": bson.M{"$lt": time.Now()}},
		},
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
