// internal/app/system/auth/user.go
package auth

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionUser is the operator behind a request.
type SessionUser struct {
	ID                 string // profile _id, hex
	Name               string
	Email              string
	IsAdmin            bool
	MustChangePassword bool
}

// UserID parses ID. A malformed id yields NilObjectID.
func (u *SessionUser) UserID() primitive.ObjectID {
	oid, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		return primitive.NilObjectID
	}
	return oid
}

// Principal is u as the actor of an admin action.
func (u *SessionUser) Principal() Principal {
	return Principal{ID: u.UserID(), Email: u.Email, IsAdmin: u.IsAdmin}
}

// DisplayName is Name, or Email when the profile has no name.
func (u *SessionUser) DisplayName() string {
	if u.Name == "" {
		return u.Email
	}
	return u.Name
}

// Principal is the identity an action runs as. It is passed explicitly so
// actions can run outside a request.
type Principal struct {
	ID      primitive.ObjectID
	Email   string
	IsAdmin bool
}

// Valid reports whether p names a profile.
func (p Principal) Valid() bool { return !p.ID.IsZero() }

type userKey struct{}

// CurrentUser returns the operator LoadSessionUser attached to r.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(userKey{}).(*SessionUser)
	return u, ok && u != nil
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userKey{}, u))
}

// WithTestUser attaches u to r without a cookie.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request { return withUser(r, u) }
