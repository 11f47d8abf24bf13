package ratelimit

import (
	"testing"
	"time"

	"github.com/dalemusser/stratareview/internal/testutil"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	return New(testutil.SetupTestDB(t), Config{MaxAttempts: 5, Window: 15 * time.Minute, Lockout: 30 * time.Minute})
}

func TestNew_Defaults(t *testing.T) {
	store := New(testutil.SetupTestDB(t), Config{})
	if store.cfg.MaxAttempts != 5 || store.cfg.Window != 15*time.Minute || store.cfg.Lockout != 15*time.Minute {
		t.Errorf("New() defaults = %+v", store.cfg)
	}
}

func TestStore_CheckAllowed_NoRecord(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	allowed, remaining, lockedUntil := store.CheckAllowed(ctx, "newuser@example.com")
	if !allowed || remaining != 5 || lockedUntil != nil {
		t.Errorf("CheckAllowed() = (%v, %d, %v), want (true, 5, nil)", allowed, remaining, lockedUntil)
	}
}

func TestStore_CheckAllowed_CaseInsensitive(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, _, err := store.RecordFailure(ctx, "test@example.com"); err != nil {
		t.Fatalf("RecordFailure() error = %v", err)
	}

	allowed, remaining, _ := store.CheckAllowed(ctx, "  TEST@EXAMPLE.COM ")
	if !allowed || remaining != 4 {
		t.Errorf("CheckAllowed() = (%v, %d), want (true, 4)", allowed, remaining)
	}
}

func TestStore_RecordFailure_TriggersLockout(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	email := "lock@example.com"
	for i := 1; i <= 4; i++ {
		locked, _, err := store.RecordFailure(ctx, email)
		if err != nil {
			t.Fatalf("RecordFailure() error = %v", err)
		}
		if locked {
			t.Fatalf("RecordFailure() locked after %d attempts", i)
		}
	}

	locked, until, err := store.RecordFailure(ctx, email)
	if err != nil {
		t.Fatalf("RecordFailure() error = %v", err)
	}
	if !locked || until == nil {
		t.Fatal("fifth failure should lock")
	}

	allowed, remaining, lockedUntil := store.CheckAllowed(ctx, email)
	if allowed || remaining != -1 || lockedUntil == nil {
		t.Errorf("CheckAllowed() while locked = (%v, %d, %v)", allowed, remaining, lockedUntil)
	}
}

func TestStore_ClearOnSuccess(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	email := "clear@example.com"
	store.RecordFailure(ctx, email)
	store.RecordFailure(ctx, email)

	if err := store.ClearOnSuccess(ctx, email); err != nil {
		t.Fatalf("ClearOnSuccess() error = %v", err)
	}
	a, err := store.GetAttempt(ctx, email)
	if err != nil {
		t.Fatalf("GetAttempt() error = %v", err)
	}
	if a != nil {
		t.Errorf("GetAttempt() after clear = %+v, want nil", a)
	}
}

func TestStore_WindowExpiry_ResetsCounter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db, Config{MaxAttempts: 3, Window: 50 * time.Millisecond, Lockout: time.Minute})
	ctx, cancel := testutil.TestContext()
	defer cancel()

	email := "window@example.com"
	store.RecordFailure(ctx, email)
	store.RecordFailure(ctx, email)
	time.Sleep(100 * time.Millisecond)

	locked, _, _ := store.RecordFailure(ctx, email)
	if locked {
		t.Error("failure after window expiry should start a new window")
	}
	a, _ := store.GetAttempt(ctx, email)
	if a == nil || a.AttemptCount != 1 {
		t.Errorf("GetAttempt() = %+v, want count 1", a)
	}
}

func TestStore_PruneStale(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store.RecordFailure(ctx, "stale@example.com")

	n, err := store.PruneStale(ctx, time.Now().Add(-time.Hour))
	if err != nil || n != 0 {
		t.Errorf("PruneStale(past) = %d, %v; want 0", n, err)
	}
	n, err = store.PruneStale(ctx, time.Now().Add(time.Second))
	if err != nil || n != 1 {
		t.Errorf("PruneStale(future) = %d, %v; want 1", n, err)
	}
}
