package profilestore

import (
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/stratareview/internal/domain/models"
	"github.com/dalemusser/stratareview/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func strPtr(s string) *string    { return &s }
func floatPtr(f float64) *float64 { return &f }

func mustCreate(t *testing.T, s *Store, p models.Profile) models.Profile {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	created, err := s.Create(ctx, p)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return created
}

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)

	created := mustCreate(t, store, models.Profile{
		Email:       strPtr("  Ana@Example.COM "),
		DisplayName: strPtr(" Ána Souza "),
	})

	if created.ID.IsZero() {
		t.Error("Create() did not assign ID")
	}
	if *created.Email != "ana@example.com" {
		t.Errorf("Email = %q, want lowercase trimmed", *created.Email)
	}
	if *created.DisplayName != "Ána Souza" {
		t.Errorf("DisplayName = %q, want trimmed", *created.DisplayName)
	}
	if created.DisplayNameCI == nil || *created.DisplayNameCI == "" {
		t.Error("Create() did not set DisplayNameCI")
	}
	if created.Balance == nil || *created.Balance != 0 {
		t.Errorf("Balance = %v, want 0", created.Balance)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("Create() did not set timestamps")
	}
}

func TestStore_Create_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mustCreate(t, store, models.Profile{Email: strPtr("dup@example.com")})
	_, err := store.Create(ctx, models.Profile{Email: strPtr("DUP@example.com")})
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("Create() error = %v, want ErrDuplicateEmail", err)
	}
}

func TestStore_GetByEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created := mustCreate(t, store, models.Profile{Email: strPtr("bo@example.com")})

	got, err := store.GetByEmail(ctx, "BO@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("GetByEmail() ID = %v, want %v", got.ID, created.ID)
	}

	if _, err := store.GetByEmail(ctx, "missing@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByEmail(missing) error = %v, want ErrNotFound", err)
	}
	if _, err := store.GetByID(ctx, primitive.NewObjectID()); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID(missing) error = %v, want ErrNotFound", err)
	}
}

func TestStore_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Now().Add(-time.Hour)
	mustCreate(t, store, models.Profile{Email: strPtr("admin@example.com"), IsAdmin: true, CreatedAt: base})
	mustCreate(t, store, models.Profile{Email: strPtr("blocked@example.com"), IsBlocked: true, CreatedAt: base.Add(time.Minute)})
	mustCreate(t, store, models.Profile{Email: strPtr("both@example.com"), IsAdmin: true, IsBlocked: true, CreatedAt: base.Add(2 * time.Minute)})
	for i := 0; i < 12; i++ {
		mustCreate(t, store, models.Profile{
			Email:     strPtr(primitive.NewObjectID().Hex() + "@reviewers.test"),
			CreatedAt: base.Add(time.Duration(10+i) * time.Minute),
		})
	}

	tests := []struct {
		name      string
		filter    ListFilter
		wantTotal int64
		wantLen   int
	}{
		{"all first page", ListFilter{Page: 1}, 15, 10},
		{"all second page", ListFilter{Page: 2}, 15, 5},
		{"active", ListFilter{Status: "active", Page: 1}, 12, 10},
		{"blocked includes blocked admin", ListFilter{Status: "blocked"}, 2, 2},
		{"admin includes blocked admin", ListFilter{Status: "admin"}, 2, 2},
		{"search email", ListFilter{Search: "reviewers.test"}, 12, 10},
		{"search no match", ListFilter{Search: "nobody"}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total, err := store.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if total != tt.wantTotal {
				t.Errorf("total = %d, want %d", total, tt.wantTotal)
			}
			if len(got) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(got), tt.wantLen)
			}
			for _, p := range got {
				if p.PasswordHash != nil {
					t.Error("List() should not load password hashes")
				}
			}
		})
	}

	// Newest first.
	got, _, _ := store.List(ctx, ListFilter{Page: 1})
	for i := 1; i < len(got); i++ {
		if got[i].CreatedAt.After(got[i-1].CreatedAt) {
			t.Fatalf("List() not sorted newest first at %d", i)
		}
	}
}

func TestStore_CountByStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	empty, err := store.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("CountByStatus() error = %v", err)
	}
	if empty != (StatusCounts{}) {
		t.Errorf("CountByStatus() on empty = %+v", empty)
	}

	mustCreate(t, store, models.Profile{Email: strPtr("a@x.test")})
	mustCreate(t, store, models.Profile{Email: strPtr("b@x.test")})
	mustCreate(t, store, models.Profile{Email: strPtr("c@x.test"), IsBlocked: true})
	mustCreate(t, store, models.Profile{Email: strPtr("d@x.test"), IsAdmin: true})
	mustCreate(t, store, models.Profile{Email: strPtr("e@x.test"), IsAdmin: true, IsBlocked: true})

	got, err := store.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("CountByStatus() error = %v", err)
	}
	want := StatusCounts{Total: 5, Active: 2, Blocked: 2, Admins: 2, BlockedNonAdmin: 1}
	if got != want {
		t.Errorf("CountByStatus() = %+v, want %+v", got, want)
	}
}

func TestStore_BalancesAndSetters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := mustCreate(t, store, models.Profile{Email: strPtr("e@x.test"), Balance: floatPtr(12.5)})
	mustCreate(t, store, models.Profile{Email: strPtr("f@x.test")})

	balances, err := store.Balances(ctx)
	if err != nil {
		t.Fatalf("Balances() error = %v", err)
	}
	var sum float64
	for _, b := range balances {
		if b != nil {
			sum += *b
		}
	}
	if len(balances) != 2 || sum != 12.5 {
		t.Errorf("Balances() = %d values summing %v, want 2 summing 12.5", len(balances), sum)
	}

	if err := store.SetBalance(ctx, p.ID, 20); err != nil {
		t.Fatalf("SetBalance() error = %v", err)
	}
	if err := store.SetBlocked(ctx, p.ID, true); err != nil {
		t.Fatalf("SetBlocked() error = %v", err)
	}
	if err := store.SetPassword(ctx, p.ID, "hash", true); err != nil {
		t.Fatalf("SetPassword() error = %v", err)
	}

	got, err := store.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.BalanceValue() != 20 || !got.IsBlocked || !got.RequiresPasswordChange {
		t.Errorf("profile after updates = %+v", got)
	}

	if err := store.SetBlocked(ctx, primitive.NewObjectID(), true); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetBlocked(missing) error = %v, want ErrNotFound", err)
	}
}

func TestStore_CreatedSince(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now()
	mustCreate(t, store, models.Profile{Email: strPtr("old@x.test"), CreatedAt: now.AddDate(0, 0, -40)})
	mustCreate(t, store, models.Profile{Email: strPtr("new@x.test"), CreatedAt: now.AddDate(0, 0, -2)})

	got, err := store.CreatedSince(ctx, now.AddDate(0, 0, -30))
	if err != nil {
		t.Fatalf("CreatedSince() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("CreatedSince() len = %d, want 1", len(got))
	}
	if got[0].Email != nil {
		t.Error("CreatedSince() should project away email")
	}
}

func TestFetcher_FetchUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := mustCreate(t, store, models.Profile{
		Email:                  strPtr("ops@example.com"),
		DisplayName:            strPtr("Ops"),
		IsAdmin:                true,
		RequiresPasswordChange: true,
	})
	blocked := mustCreate(t, store, models.Profile{Email: strPtr("gone@example.com"), IsBlocked: true})

	f := NewFetcher(db, zap.NewNop())

	su := f.FetchUser(ctx, admin.ID.Hex())
	if su == nil {
		t.Fatal("FetchUser() = nil for active admin")
	}
	if !su.IsAdmin || su.Email != "ops@example.com" || su.Name != "Ops" || !su.MustChangePassword {
		t.Errorf("FetchUser() = %+v", su)
	}

	if f.FetchUser(ctx, blocked.ID.Hex()) != nil {
		t.Error("FetchUser() should return nil for blocked profile")
	}
	if f.FetchUser(ctx, "not-an-id") != nil {
		t.Error("FetchUser() should return nil for malformed id")
	}
	if f.FetchUser(ctx, primitive.NewObjectID().Hex()) != nil {
		t.Error("FetchUser() should return nil for missing profile")
	}
}
