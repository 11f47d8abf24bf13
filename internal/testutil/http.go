// internal/testutil/http.go
package testutil

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/dalemusser/stratareview/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestUser is the session identity a request is made as.
type TestUser struct {
	ID      string
	Name    string
	Email   string
	IsAdmin bool
}

// AdminUser is a fresh operator.
func AdminUser() TestUser {
	return TestUser{ID: primitive.NewObjectID().Hex(), Name: "Ops Tester", Email: "ops@test.example", IsAdmin: true}
}

// ReviewerUser is a fresh signed-in profile without operator access.
func ReviewerUser() TestUser {
	return TestUser{ID: primitive.NewObjectID().Hex(), Name: "Review Tester", Email: "reviewer@test.example"}
}

// Principal is the identity handlers pass to admin actions for u.
func (u TestUser) Principal() auth.Principal {
	oid, _ := primitive.ObjectIDFromHex(u.ID)
	return auth.Principal{ID: oid, Email: u.Email, IsAdmin: u.IsAdmin}
}

// WithUser puts u in r's context the way the session middleware would.
func WithUser(r *http.Request, u TestUser) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{ID: u.ID, Name: u.Name, Email: u.Email, IsAdmin: u.IsAdmin})
}

// NewAuthenticatedRequest is a body-less request made as u.
func NewAuthenticatedRequest(method, target string, u TestUser) *http.Request {
	return WithUser(httptest.NewRequest(method, target, nil), u)
}

// NewFormRequest is an urlencoded POST. A nil user posts anonymously.
func NewFormRequest(target string, form url.Values, u *TestUser) *http.Request {
	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if u != nil {
		r = WithUser(r, *u)
	}
	return WithCSRFToken(r)
}
