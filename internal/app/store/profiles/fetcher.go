// internal/app/store/profiles/fetcher.go
package profilestore

import (
	"context"
	"errors"

	"github.com/dalemusser/stratareview/internal/app/system/auth"
	"github.com/dalemusser/stratareview/internal/app/system/timeouts"
	"github.com/dalemusser/stratareview/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// sessionFields is all LoadSessionUser needs from a profile.
var sessionFields = bson.D{
	{Key: "email", Value: 1},
	{Key: "display_name", Value: 1},
	{Key: "is_admin", Value: 1},
	{Key: "is_blocked", Value: 1},
	{Key: "requires_password_change", Value: 1},
}

// Fetcher reloads the signed-in profile on each request. It satisfies
// auth.UserFetcher.
type Fetcher struct {
	store  *Store
	logger *zap.Logger
}

func NewFetcher(db *mongo.Database, logger *zap.Logger) *Fetcher {
	return &Fetcher{store: New(db), logger: logger}
}

// FetchUser returns nil for a malformed id, a missing or blocked profile, or
// a lookup error.
func (f *Fetcher) FetchUser(ctx context.Context, userID string) *auth.SessionUser {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	var p models.Profile
	err = f.store.c.FindOne(ctx, bson.M{"_id": oid}, options.FindOne().SetProjection(sessionFields)).Decode(&p)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil
	case err != nil:
		f.logger.Warn("session profile lookup failed", zap.String("user_id", userID), zap.Error(err))
		return nil
	case p.IsBlocked:
		return nil
	}
	return sessionUser(p)
}

func sessionUser(p models.Profile) *auth.SessionUser {
	return &auth.SessionUser{
		ID:                 p.ID.Hex(),
		Name:               deref(p.DisplayName),
		Email:              deref(p.Email),
		IsAdmin:            p.IsAdmin,
		MustChangePassword: p.RequiresPasswordChange,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
