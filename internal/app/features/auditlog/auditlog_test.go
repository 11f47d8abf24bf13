package auditlog

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	errorsfeature "github.com/dalemusser/stratareview/internal/app/features/errors"
	"github.com/dalemusser/stratareview/internal/app/store/audit"
	"github.com/dalemusser/stratareview/internal/app/system/auth"
	"github.com/dalemusser/stratareview/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newRouter(t *testing.T, db *mongo.Database) http.Handler {
	t.Helper()
	testutil.MustBootTemplates(t)
	sm, err := auth.NewSessionManager("0123456789abcdef0123456789abcdef", "", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager() error = %v", err)
	}
	return Routes(NewHandler(db, errorsfeature.NewErrorLogger(zap.NewNop()), zap.NewNop()), sm)
}

func seedEvents(t *testing.T, db *mongo.Database) (operatorID, reviewerID primitive.ObjectID) {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	op := fx.Operator("ops@example.com", "x")
	rev := fx.Profile("ann@example.com", 10, time.Now())
	store := audit.New(db)

	events := []audit.Event{
		{Category: audit.CategoryAuth, EventType: audit.EventLoginSuccess, UserID: &op.ID, Success: true, IP: "10.0.0.1"},
		{Category: audit.CategoryAuth, EventType: audit.EventLoginFailedWrongPassword, Success: false, FailureReason: "wrong password",
			Details: map[string]string{"email": "intruder@example.com"}},
		{Category: audit.CategoryAdmin, EventType: audit.EventBalanceAdjusted, ActorID: &op.ID, UserID: &rev.ID, Success: true,
			Details: map[string]string{"amount": "2.50", "reason": "welcome bonus"}},
		{Category: audit.CategoryCatalog, EventType: audit.EventVideoCreated, ActorID: &op.ID, Success: true,
			Details: map[string]string{"title": "Street food tour"}},
	}
	for _, e := range events {
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log() error = %v", err)
		}
	}
	return op.ID, rev.ID
}

func TestList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	router := newRouter(t, db)
	seedEvents(t, db)
	today := time.Now().UTC().Format(dateLayout)

	tests := []struct {
		name    string
		target  string
		want    []string
		notWant []string
	}{
		{"all", "/", []string{"Login success", "Balance adjusted", "Video created", "welcome bonus", "ann@example.com"}, nil},
		{"by category", "/?category=admin", []string{"Balance adjusted"}, []string{"Video created", "Login success"}},
		{"by event type", "/?event_type=login_failed_wrong_password", []string{"intruder@example.com", "wrong password"}, []string{"welcome bonus"}},
		{"unknown category ignored", "/?category=bogus", []string{"Login success", "Video created"}, nil},
		{"event type outside category ignored", "/?category=catalog&event_type=login_success", []string{"Street food tour"}, []string{"welcome bonus"}},
		{"today", "/?start_date=" + today + "&end_date=" + today, []string{"Video created"}, nil},
		{"before any event", "/?end_date=2000-01-01", []string{"No audit events match."}, []string{"Street food tour"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, testutil.NewAuthenticatedRequest(http.MethodGet, tt.target, testutil.AdminUser()))
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			body := rec.Body.String()
			for _, s := range tt.want {
				if !strings.Contains(body, s) {
					t.Errorf("body missing %q", s)
				}
			}
			for _, s := range tt.notWant {
				if strings.Contains(body, s) {
					t.Errorf("body unexpectedly contains %q", s)
				}
			}
		})
	}
}

func TestList_RequiresOperator(t *testing.T) {
	db := testutil.SetupTestDB(t)
	router := newRouter(t, db)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/", testutil.ReviewerUser()))
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestToRow(t *testing.T) {
	op := primitive.NewObjectID()
	target := primitive.NewObjectID()
	emails := map[primitive.ObjectID]string{op: "ops@example.com"}

	r := toRow(audit.Event{
		CreatedAt: time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC),
		Category:  audit.CategoryAdmin,
		EventType: audit.EventUserBlocked,
		ActorID:   &op,
		UserID:    &target,
		Success:   true,
		Details:   map[string]string{"z": "1", "a": "2"},
	}, emails)

	if r.When != "2026-03-04 05:06:07" || r.Event != "User blocked" {
		t.Errorf("row = %+v", r)
	}
	if r.Actor != "ops@example.com" || r.Subject != target.Hex() {
		t.Errorf("actor/subject = %q/%q", r.Actor, r.Subject)
	}
	if len(r.Details) != 2 || r.Details[0].Key != "a" {
		t.Errorf("details not sorted: %+v", r.Details)
	}

	signIn := toRow(audit.Event{Category: audit.CategoryAuth, EventType: audit.EventLogout, UserID: &op}, emails)
	if signIn.Actor != "ops@example.com" || signIn.ActorID != op.Hex() {
		t.Errorf("sign-in actor = %q/%q", signIn.Actor, signIn.ActorID)
	}
}

func TestEventTypesFor(t *testing.T) {
	if got := len(eventTypesFor("")); got != 17 {
		t.Errorf("all event types = %d, want 17", got)
	}
	if got := eventTypesFor(audit.CategoryCatalog); len(got) != 5 {
		t.Errorf("catalog event types = %v", got)
	}
	if got := eventTypesFor("bogus"); got != nil {
		t.Errorf("bogus = %v, want nil", got)
	}
}
