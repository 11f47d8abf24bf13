// internal/app/system/seeding/seeding.go
package seeding

import (
	"context"
	"errors"

	profilestore "github.com/dalemusser/stratareview/internal/app/store/profiles"
	"github.com/dalemusser/stratareview/internal/app/system/authutil"
	"github.com/dalemusser/stratareview/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Admin describes the bootstrap operator account.
type Admin struct {
	Email    string
	Name     string
	Password string
}

// SeedAll seeds default data if not already present.
func SeedAll(ctx context.Context, db *mongo.Database, admin Admin, logger *zap.Logger) error {
	return seedAdmin(ctx, db, admin, logger)
}

// seedAdmin creates the bootstrap operator when no operator exists yet. An
// existing reviewer profile with the same email is promoted instead. The
// seeded password must be changed at first sign-in.
func seedAdmin(ctx context.Context, db *mongo.Database, admin Admin, logger *zap.Logger) error {
	if admin.Email == "" || admin.Password == "" {
		return nil
	}
	store := profilestore.New(db)

	n, err := store.CountAdmins(ctx)
	if err != nil {
		logger.Error("failed to count operators", zap.Error(err))
		return err
	}
	if n > 0 {
		return nil
	}

	hash, err := authutil.HashPassword(admin.Password)
	if err != nil {
		return err
	}

	existing, err := store.GetByEmail(ctx, admin.Email)
	switch {
	case err == nil:
		if err := store.SetAdmin(ctx, existing.ID, true); err != nil {
			return err
		}
		if err := store.SetPassword(ctx, existing.ID, hash, true); err != nil {
			return err
		}
		logger.Info("promoted existing profile to operator", zap.String("email", admin.Email))
		return nil
	case !errors.Is(err, profilestore.ErrNotFound):
		return err
	}

	name := admin.Name
	if name == "" {
		name = "Administrator"
	}
	email := admin.Email
	if _, err := store.Create(ctx, models.Profile{
		Email:                  &email,
		DisplayName:            &name,
		IsAdmin:                true,
		PasswordHash:           &hash,
		RequiresPasswordChange: true,
	}); err != nil {
		logger.Error("failed to seed operator", zap.String("email", admin.Email), zap.Error(err))
		return err
	}
	logger.Info("seeded operator account", zap.String("email", admin.Email))
	return nil
}
