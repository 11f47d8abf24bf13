// internal/app/system/auth/middleware.go
package auth

import (
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// LoadSessionUser attaches the signed-in operator to the request. With a
// UserFetcher set the profile is reloaded each time, so blocking an operator
// or revoking admin ends their access on the next request.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := sm.store.Get(r, sm.name)
		if err != nil {
			reason, level := cookieProblem(err)
			sm.logger.Log(level, "session cookie rejected",
				zap.String("reason", reason),
				zap.String("path", r.URL.Path),
				zap.Error(err))
		}

		signedIn, _ := sess.Values[keySignedIn].(bool)
		id, _ := sess.Values[keyUserID].(string)
		if !signedIn || id == "" {
			next.ServeHTTP(w, r)
			return
		}

		if sm.fetcher == nil {
			email, _ := sess.Values[keyEmail].(string)
			admin, _ := sess.Values[keyAdmin].(bool)
			next.ServeHTTP(w, withUser(r, &SessionUser{ID: id, Email: email, IsAdmin: admin}))
			return
		}

		u := sm.fetcher.FetchUser(r.Context(), id)
		if u == nil {
			sm.logger.Info("ending session of missing or blocked profile", zap.String("user_id", id))
			sm.DestroySession(w, r)
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, withUser(r, u))
	})
}

// RequireSignedIn sends anonymous requests to the sign-in page.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			toLogin(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin admits operators only. An operator holding a temporary
// password is sent to ChangePasswordPath.
func (sm *SessionManager) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := CurrentUser(r)
		switch {
		case !ok:
			toLogin(w, r)
		case !u.IsAdmin:
			sm.logger.Warn("console access denied", zap.String("user_id", u.ID), zap.String("path", r.URL.Path))
			deny(w, r, "/forbidden", http.StatusForbidden)
		case u.MustChangePassword && r.URL.Path != ChangePasswordPath:
			deny(w, r, ChangePasswordPath, http.StatusForbidden)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

func toLogin(w http.ResponseWriter, r *http.Request) {
	deny(w, r, "/login?return="+url.QueryEscape(r.URL.RequestURI()), http.StatusUnauthorized)
}

// deny redirects pages and htmx swaps to target. Other clients get status.
func deny(w http.ResponseWriter, r *http.Request, target string, status int) {
	switch {
	case r.Header.Get("HX-Request") == "true":
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(status)
	case strings.Contains(r.Header.Get("Accept"), "text/html"):
		http.Redirect(w, r, target, http.StatusSeeOther)
	default:
		http.Error(w, strings.ToLower(http.StatusText(status)), status)
	}
}
