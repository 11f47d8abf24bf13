// Package authz answers who is acting on a console request.
package authz

import (
	"net/http"

	"github.com/dalemusser/stratareview/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the display name, profile id and operator flag of the
// signed-in user. ok is false when nobody is signed in or the session holds a
// malformed id.
func UserCtx(r *http.Request) (name string, userID primitive.ObjectID, isAdmin bool, ok bool) {
	p, ok := Principal(r)
	if !ok {
		return "", primitive.NilObjectID, false, false
	}
	u, _ := auth.CurrentUser(r)
	return u.DisplayName(), p.ID, p.IsAdmin, true
}

// Principal is the actor for admin actions started by r.
func Principal(r *http.Request) (auth.Principal, bool) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return auth.Principal{}, false
	}
	p := u.Principal()
	return p, p.Valid()
}
