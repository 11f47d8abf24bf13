package login

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/stratareview/internal/app/store/audit"
	"github.com/dalemusser/stratareview/internal/app/system/auditlog"
	"github.com/dalemusser/stratareview/internal/app/system/auth"
	"github.com/dalemusser/stratareview/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestLogout(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := audit.New(db)
	h := newTestHandler(t, db, nil)
	h.auditLogger = auditlog.New(store, zap.NewNop(), auditlog.Config{})

	id := primitive.NewObjectID()
	op := &auth.SessionUser{ID: id.Hex(), Email: "ops@example.com", IsAdmin: true}

	tests := []struct {
		name   string
		method string
		user   *auth.SessionUser
	}{
		{"post", http.MethodPost, op},
		{"get from nav link", http.MethodGet, op},
		{"nobody signed in", http.MethodPost, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/logout", nil)
			if tt.user != nil {
				req = auth.WithTestUser(req, tt.user)
			}
			rec := httptest.NewRecorder()
			h.Logout(rec, req)

			if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
				t.Errorf("got %d %q, want 303 /login", rec.Code, rec.Header().Get("Location"))
			}
		})
	}

	got, err := store.GetByUser(ctx, id, 10)
	if err != nil {
		t.Fatalf("GetByUser() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("logged %d events, want 2", len(got))
	}
	for _, e := range got {
		if e.EventType != audit.EventLogout {
			t.Errorf("event type = %q, want %q", e.EventType, audit.EventLogout)
		}
	}
}

func TestLogout_WithoutAuditLogger(t *testing.T) {
	h := newTestHandler(t, testutil.SetupTestDB(t), nil)

	rec := httptest.NewRecorder()
	h.Logout(rec, testutil.NewAuthenticatedRequest(http.MethodPost, "/logout", testutil.AdminUser()))
	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want 303", rec.Code)
	}
}
