// Package auditlog records security and operator events to the audit_logs
// collection and to zap, per category.
package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/stratareview/internal/app/store/audit"
	"github.com/dalemusser/stratareview/internal/app/system/network"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Destination settings accepted in Config.
const (
	DestAll = "all"
	DestDB  = "db"
	DestLog = "log"
	DestOff = "off"
)

// Config picks a destination per category. Empty means DestAll.
type Config struct {
	Auth  string // sign-in, sign-out, password changes
	Admin string // profile actions and catalog changes
}

type sink uint8

const (
	toDB sink = 1 << iota
	toLog
)

func parseSink(setting string) (sink, bool) {
	switch setting {
	case "", DestAll:
		return toDB | toLog, true
	case DestDB:
		return toDB, true
	case DestLog:
		return toLog, true
	case DestOff:
		return 0, true
	}
	return toDB | toLog, false
}

// Logger fans events out to the store and zap. A nil *Logger discards
// everything.
type Logger struct {
	store *audit.Store
	zap   *zap.Logger
	sinks map[string]sink
}

// New builds a Logger. store may be nil, in which case events only reach zap.
// Unknown destination values fall back to DestAll.
func New(store *audit.Store, zapLog *zap.Logger, cfg Config) *Logger {
	auth, ok := parseSink(cfg.Auth)
	if !ok {
		zapLog.Warn("unknown audit destination, using all", zap.String("auth", cfg.Auth))
	}
	admin, ok := parseSink(cfg.Admin)
	if !ok {
		zapLog.Warn("unknown audit destination, using all", zap.String("admin", cfg.Admin))
	}
	return &Logger{
		store: store,
		zap:   zapLog,
		sinks: map[string]sink{
			audit.CategoryAuth:    auth,
			audit.CategoryAdmin:   admin,
			audit.CategoryCatalog: admin,
		},
	}
}

// Log writes e to the destinations configured for its category. Store
// failures are logged and otherwise ignored.
func (l *Logger) Log(ctx context.Context, e audit.Event) {
	if l == nil {
		return
	}
	s, ok := l.sinks[e.Category]
	if !ok {
		s = toDB | toLog
	}
	if s&toLog != 0 {
		level := zapcore.InfoLevel
		if !e.Success {
			level = zapcore.WarnLevel
		}
		l.zap.Log(level, "audit event", fieldsOf(e)...)
	}
	if s&toDB != 0 && l.store != nil {
		if err := l.store.Log(ctx, e); err != nil {
			l.zap.Error("audit event not stored", zap.String("event_type", e.EventType), zap.Error(err))
		}
	}
}

func fieldsOf(e audit.Event) []zap.Field {
	f := make([]zap.Field, 0, 8+len(e.Details))
	f = append(f,
		zap.Bool("audit", true),
		zap.String("category", e.Category),
		zap.String("event_type", e.EventType),
		zap.Bool("success", e.Success),
		zap.String("ip", e.IP),
	)
	if e.UserID != nil {
		f = append(f, zap.String("user_id", e.UserID.Hex()))
	}
	if e.ActorID != nil {
		f = append(f, zap.String("actor_id", e.ActorID.Hex()))
	}
	if e.FailureReason != "" {
		f = append(f, zap.String("failure_reason", e.FailureReason))
	}
	for k, v := range e.Details {
		f = append(f, zap.String("detail_"+k, v))
	}
	return f
}

type client struct{ ip, agent string }

type clientKey struct{}

// WithRequest stores the client address and user agent of r in ctx, for
// events logged by code that never sees the request.
func WithRequest(ctx context.Context, r *http.Request) context.Context {
	return context.WithValue(ctx, clientKey{}, client{ip: network.ClientIP(r), agent: r.UserAgent()})
}

// newEvent stamps the client from r, or from ctx when r is nil.
func newEvent(ctx context.Context, r *http.Request, category, eventType string, success bool) audit.Event {
	e := audit.Event{Category: category, EventType: eventType, Success: success}
	c, _ := ctx.Value(clientKey{}).(client)
	if r != nil {
		c = client{ip: network.ClientIP(r), agent: r.UserAgent()}
	}
	e.IP, e.UserAgent = c.ip, c.agent
	return e
}

func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	e := newEvent(ctx, r, audit.CategoryAuth, audit.EventLoginSuccess, true)
	e.UserID = &userID
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

// LoginFailed records a rejected sign-in. userID is nil when no profile
// matched the email.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, userID *primitive.ObjectID, eventType, email, reason string) {
	e := newEvent(ctx, r, audit.CategoryAuth, eventType, false)
	e.UserID = userID
	e.FailureReason = reason
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

// Logout takes the hex id held in the session. A malformed id is logged
// without a user.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userID string) {
	e := newEvent(ctx, r, audit.CategoryAuth, audit.EventLogout, true)
	if oid, err := primitive.ObjectIDFromHex(userID); err == nil {
		e.UserID = &oid
	}
	l.Log(ctx, e)
}

func (l *Logger) PasswordChanged(ctx context.Context, r *http.Request, userID primitive.ObjectID, wasTemporary bool) {
	e := newEvent(ctx, r, audit.CategoryAuth, audit.EventPasswordChanged, true)
	e.UserID = &userID
	e.Details = map[string]string{"was_temporary": strconv.FormatBool(wasTemporary)}
	l.Log(ctx, e)
}

// AdminAction records an operator action on a profile. r may be nil.
func (l *Logger) AdminAction(ctx context.Context, r *http.Request, actorID, targetID primitive.ObjectID, eventType string, details map[string]string) {
	e := newEvent(ctx, r, audit.CategoryAdmin, eventType, true)
	e.ActorID = &actorID
	e.UserID = &targetID
	e.Details = details
	l.Log(ctx, e)
}

// CatalogChange records an operator edit to the video catalog.
func (l *Logger) CatalogChange(ctx context.Context, r *http.Request, actorID primitive.ObjectID, eventType string, videoID primitive.ObjectID, title string) {
	e := newEvent(ctx, r, audit.CategoryCatalog, eventType, true)
	e.ActorID = &actorID
	e.Details = map[string]string{"video_id": videoID.Hex(), "title": title}
	l.Log(ctx, e)
}
