package seeding

import (
	"testing"

	profilestore "github.com/dalemusser/stratareview/internal/app/store/profiles"
	"github.com/dalemusser/stratareview/internal/app/system/authutil"
	"github.com/dalemusser/stratareview/internal/domain/models"
	"github.com/dalemusser/stratareview/internal/testutil"
	"go.uber.org/zap"
)

func TestSeedAll_CreatesOperator(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := Admin{Email: "Ops@Example.com", Password: "s3cret-pass"}
	if err := SeedAll(ctx, db, admin, zap.NewNop()); err != nil {
		t.Fatalf("SeedAll() error = %v", err)
	}
	// idempotent
	if err := SeedAll(ctx, db, admin, zap.NewNop()); err != nil {
		t.Fatalf("second SeedAll() error = %v", err)
	}

	store := profilestore.New(db)
	n, err := store.CountAdmins(ctx)
	if err != nil {
		t.Fatalf("CountAdmins() error = %v", err)
	}
	if n != 1 {
		t.Fatalf("CountAdmins() = %d, want 1", n)
	}

	p, err := store.GetByEmail(ctx, "ops@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if !p.RequiresPasswordChange {
		t.Error("seeded operator should have to change password")
	}
	if p.PasswordHash == nil || !authutil.CheckPassword("s3cret-pass", *p.PasswordHash) {
		t.Error("seeded password does not verify")
	}
}

func TestSeedAll_PromotesExistingProfile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := profilestore.New(db)
	email := "lead@example.com"
	existing, err := store.Create(ctx, models.Profile{Email: &email})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := SeedAll(ctx, db, Admin{Email: email, Password: "another-pass"}, zap.NewNop()); err != nil {
		t.Fatalf("SeedAll() error = %v", err)
	}

	p, err := store.GetByID(ctx, existing.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if !p.IsAdmin {
		t.Error("existing profile was not promoted")
	}
}

func TestSeedAll_SkipsWithoutCredentials(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := SeedAll(ctx, db, Admin{Email: "x@example.com"}, zap.NewNop()); err != nil {
		t.Fatalf("SeedAll() error = %v", err)
	}
	n, _ := profilestore.New(db).CountAdmins(ctx)
	if n != 0 {
		t.Errorf("CountAdmins() = %d, want 0", n)
	}
}
