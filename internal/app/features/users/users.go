// internal/app/features/users/users.go
package users

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) of a profile
//   - Email: what the user signs in with; shown in the list and detail pages

import (
	"net/http"

	errorsfeature "github.com/dalemusser/stratareview/internal/app/features/errors"
	adjustmentstore "github.com/dalemusser/stratareview/internal/app/store/adjustments"
	"github.com/dalemusser/stratareview/internal/app/store/audit"
	liststore "github.com/dalemusser/stratareview/internal/app/store/lists"
	profilestore "github.com/dalemusser/stratareview/internal/app/store/profiles"
	reviewstore "github.com/dalemusser/stratareview/internal/app/store/reviews"
	"github.com/dalemusser/stratareview/internal/app/system/adminactions"
	"github.com/dalemusser/stratareview/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// AdjustmentHistoryLimit is how many balance adjustments the detail page lists.
const AdjustmentHistoryLimit = 20

// ActivityLimit is how many audit events the detail page lists.
const ActivityLimit = 15

// Handler provides the user management pages.
type Handler struct {
	profiles    *profilestore.Store
	reviews     *reviewstore.Store
	lists       *liststore.Store
	adjustments *adjustmentstore.Store
	audit       *audit.Store
	actions     adminactions.Invoker
	errHandler  *errorsfeature.Handler
	errLog      *errorsfeature.ErrorLogger
	logger      *zap.Logger
}

// NewHandler creates a new users Handler. Every change to a profile goes
// through actions.
func NewHandler(
	db *mongo.Database,
	actions adminactions.Invoker,
	errLog *errorsfeature.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		profiles:    profilestore.New(db),
		reviews:     reviewstore.New(db),
		lists:       liststore.New(db),
		adjustments: adjustmentstore.New(db),
		audit:       audit.New(db),
		actions:     actions,
		errHandler:  errorsfeature.NewHandler(),
		errLog:      errLog,
		logger:      logger,
	}
}

// Routes returns a chi.Router with user routes mounted.
func Routes(h *Handler, sessionMgr *auth.SessionManager) http.Handler {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireAdmin)

	r.Get("/", h.list)
	r.Get("/{id}", h.detail)
	r.Post("/{id}/balance", h.adjustBalance)
	r.Post("/{id}/block", h.toggleBlock)
	r.Post("/{id}/reset-password", h.resetPassword)

	return r
}
