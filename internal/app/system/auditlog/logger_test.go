package auditlog

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/stratareview/internal/app/store/audit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed(cfg Config) (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.InfoLevel)
	return New(nil, zap.New(core), cfg), logs
}

func TestLog_Destinations(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		category string
		wantLogs int
	}{
		{"auth all", Config{Auth: DestAll}, audit.CategoryAuth, 1},
		{"auth log", Config{Auth: DestLog}, audit.CategoryAuth, 1},
		{"auth db only", Config{Auth: DestDB}, audit.CategoryAuth, 0},
		{"auth off", Config{Auth: DestOff}, audit.CategoryAuth, 0},
		{"admin off", Config{Admin: DestOff}, audit.CategoryAdmin, 0},
		{"catalog follows admin", Config{Admin: DestOff}, audit.CategoryCatalog, 0},
		{"empty defaults to all", Config{}, audit.CategoryAdmin, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, logs := observed(tt.cfg)
			l.Log(context.Background(), audit.Event{Category: tt.category, EventType: "x", Success: true})
			if logs.Len() != tt.wantLogs {
				t.Errorf("zap entries = %d, want %d", logs.Len(), tt.wantLogs)
			}
		})
	}
}

func TestLog_NilLogger(t *testing.T) {
	var l *Logger
	l.Log(context.Background(), audit.Event{Category: audit.CategoryAuth})
	l.Logout(context.Background(), httptest.NewRequest("POST", "/logout", nil), "bad")
}

func TestAdminAction_Fields(t *testing.T) {
	l, logs := observed(Config{Admin: DestLog})
	actor := primitive.NewObjectID()
	target := primitive.NewObjectID()

	req := httptest.NewRequest("POST", "/users/x/actions", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	l.AdminAction(context.Background(), req, actor, target, audit.EventUserBlocked, map[string]string{"blocked": "true"})

	if logs.Len() != 1 {
		t.Fatalf("zap entries = %d, want 1", logs.Len())
	}
	fields := logs.All()[0].ContextMap()
	if fields["actor_id"] != actor.Hex() || fields["user_id"] != target.Hex() {
		t.Errorf("ids = %v / %v", fields["actor_id"], fields["user_id"])
	}
	if fields["ip"] != "203.0.113.9" {
		t.Errorf("ip = %v, want first forwarded address", fields["ip"])
	}
	if fields["detail_blocked"] != "true" {
		t.Errorf("detail_blocked = %v", fields["detail_blocked"])
	}
}

func TestLoginFailed_Warns(t *testing.T) {
	l, logs := observed(Config{})
	l.LoginFailed(context.Background(), nil, nil, audit.EventLoginFailedNotAdmin, "bo@example.com", "not an operator")

	if logs.Len() != 1 {
		t.Fatalf("zap entries = %d, want 1", logs.Len())
	}
	if logs.All()[0].Level != zapcore.WarnLevel {
		t.Errorf("level = %v, want warn", logs.All()[0].Level)
	}
}

func TestNew_UnknownDestinationFallsBackToAll(t *testing.T) {
	l, logs := observed(Config{Auth: "everywhere"})
	if logs.Len() != 1 {
		t.Fatalf("config warnings = %d, want 1", logs.Len())
	}
	l.Log(context.Background(), audit.Event{Category: audit.CategoryAuth, EventType: "x", Success: true})
	if logs.Len() != 2 {
		t.Errorf("zap entries = %d, want the event logged", logs.Len())
	}
}

func TestWithRequest_CarriesClient(t *testing.T) {
	l, logs := observed(Config{Admin: DestLog})
	req := httptest.NewRequest("POST", "/users/x/actions", nil)
	req.RemoteAddr = "192.0.2.7:5555"

	ctx := WithRequest(context.Background(), req)
	l.AdminAction(ctx, nil, primitive.NewObjectID(), primitive.NewObjectID(), audit.EventPasswordReset, nil)

	if got := logs.All()[0].ContextMap()["ip"]; got != "192.0.2.7" {
		t.Errorf("ip = %v, want 192.0.2.7", got)
	}
}
