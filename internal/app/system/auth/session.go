// Package auth keeps the operator's sign-in in a signed cookie and guards
// console routes.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultSessionName is the cookie name when none is configured.
const DefaultSessionName = "stratareview-session"

// ChangePasswordPath is the only console page an operator holding a
// temporary password may open.
const ChangePasswordPath = "/login/change-password"

// Session values.
const (
	keySignedIn = "signed_in"
	keyUserID   = "user_id"
	keyEmail    = "email"
	keyAdmin    = "is_admin"
	keySince    = "since"
)

// SessionConfigError reports an unusable session key.
type SessionConfigError struct {
	Message string
}

func (e *SessionConfigError) Error() string { return e.Message }

// UserFetcher reloads a signed-in profile. It returns nil for a profile that
// no longer exists or is blocked, which ends the session.
type UserFetcher interface {
	FetchUser(ctx context.Context, userID string) *SessionUser
}

// SessionManager owns the cookie store and the middleware built on it.
type SessionManager struct {
	store   *sessions.CookieStore
	name    string
	fetcher UserFetcher
	logger  *zap.Logger
}

// NewSessionManager builds the cookie store. With secure set (production)
// a key shorter than 32 bytes or one that looks like a placeholder is an
// error; otherwise it is logged.
func NewSessionManager(key, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if key == "" {
		return nil, &SessionConfigError{Message: "session key is empty; provide at least 32 random characters"}
	}
	if weakKey(key) {
		if secure {
			return nil, &SessionConfigError{Message: "session key is too weak for production; provide at least 32 random characters"}
		}
		logger.Warn("weak session key, acceptable in development only", zap.Int("length", len(key)))
	}
	if name == "" {
		name = DefaultSessionName
	}

	store := sessions.NewCookieStore([]byte(key))
	store.Options = &sessions.Options{
		Path:     "/",
		Domain:   domain,
		MaxAge:   int(maxAge / time.Second),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	logger.Info("sessions ready", zap.String("cookie", name), zap.Bool("secure", secure))

	return &SessionManager{store: store, name: name, logger: logger}, nil
}

// SessionName is the cookie name.
func (sm *SessionManager) SessionName() string { return sm.name }

// SetUserFetcher makes LoadSessionUser reload the profile on every request.
func (sm *SessionManager) SetUserFetcher(f UserFetcher) { sm.fetcher = f }

// CreateSession signs the operator in, replacing whatever the cookie held.
func (sm *SessionManager) CreateSession(w http.ResponseWriter, r *http.Request, userID primitive.ObjectID, email string, isAdmin bool) error {
	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		sess, _ = sm.store.New(r, sm.name)
	}
	for k := range sess.Values {
		delete(sess.Values, k)
	}
	sess.Values[keySignedIn] = true
	sess.Values[keyUserID] = userID.Hex()
	sess.Values[keyEmail] = email
	sess.Values[keyAdmin] = isAdmin
	sess.Values[keySince] = time.Now().Unix()
	return sess.Save(r, w)
}

// DestroySession clears the cookie.
func (sm *SessionManager) DestroySession(w http.ResponseWriter, r *http.Request) {
	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		return
	}
	for k := range sess.Values {
		delete(sess.Values, k)
	}
	sess.Options.MaxAge = -1
	_ = sess.Save(r, w)
}

// weakKey flags short keys and keys built from placeholder words.
func weakKey(key string) bool {
	if len(key) < 32 {
		return true
	}
	lower := strings.ToLower(key)
	for _, w := range []string{"change-me", "changeme", "dev-only", "placeholder", "default", "example", "insecure", "secret123", "password"} {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// cookieProblem classifies a failed cookie decode. Expired and corrupt
// cookies are routine; a bad MAC may be tampering.
func cookieProblem(err error) (reason string, level zapcore.Level) {
	var sc securecookie.Error
	if !errors.As(err, &sc) || !sc.IsDecode() {
		return "store", zapcore.ErrorLevel
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "expired timestamp"):
		return "expired", zapcore.DebugLevel
	case strings.Contains(msg, "mac"), strings.Contains(msg, "hash"):
		return "mac_invalid", zapcore.WarnLevel
	case strings.Contains(msg, "decrypt"):
		return "decrypt_failed", zapcore.InfoLevel
	}
	return "decode_failed", zapcore.InfoLevel
}
