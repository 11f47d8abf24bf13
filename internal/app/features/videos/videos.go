// internal/app/features/videos/videos.go
package videos

import (
	"context"
	"net/http"

	errorsfeature "github.com/dalemusser/stratareview/internal/app/features/errors"
	videostore "github.com/dalemusser/stratareview/internal/app/store/videos"
	"github.com/dalemusser/stratareview/internal/app/system/auditlog"
	"github.com/dalemusser/stratareview/internal/app/system/auth"
	"github.com/dalemusser/stratareview/internal/app/system/authz"
	"github.com/dalemusser/stratareview/internal/app/system/events"
	"github.com/dalemusser/stratareview/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Invalidator drops cached data a catalog change makes stale.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Handler provides the video catalog pages.
type Handler struct {
	videos      *videostore.Store
	auditLogger *auditlog.Logger
	publisher   events.Publisher
	cache       Invalidator
	errHandler  *errorsfeature.Handler
	errLog      *errorsfeature.ErrorLogger
	logger      *zap.Logger
}

// NewHandler creates a new videos Handler. publisher and cache may be nil.
func NewHandler(
	db *mongo.Database,
	auditLogger *auditlog.Logger,
	publisher events.Publisher,
	cache Invalidator,
	errLog *errorsfeature.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Handler{
		videos:      videostore.New(db),
		auditLogger: auditLogger,
		publisher:   publisher,
		cache:       cache,
		errHandler:  errorsfeature.NewHandler(),
		errLog:      errLog,
		logger:      logger,
	}
}

// Routes returns a chi.Router with video routes mounted.
func Routes(h *Handler, sessionMgr *auth.SessionManager) http.Handler {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireAdmin)

	r.Get("/", h.list)
	r.Get("/new", h.showNew)
	r.Post("/", h.create)
	r.Get("/{id}/edit", h.showEdit)
	r.Post("/{id}", h.update)
	r.Post("/{id}/active", h.toggleActive)
	r.Post("/{id}/delete", h.delete)

	return r
}

// changed records a catalog mutation: audit entry, published event and
// cache invalidation. Failures are logged and never undo the change.
func (h *Handler) changed(ctx context.Context, r *http.Request, eventType string, v models.Video) {
	p, _ := authz.Principal(r)
	actor := p.ID

	h.auditLogger.CatalogChange(ctx, r, actor, eventType, v.ID, v.Title)

	data := map[string]string{
		"change":     eventType,
		"title":      v.Title,
		"youtube_id": v.YouTubeID,
	}
	if err := h.publisher.Publish(ctx, events.NewEvent(events.TypeVideoChanged, actor.Hex(), v.ID.Hex(), data)); err != nil {
		h.logger.Warn("catalog event not published", zap.String("video_id", v.ID.Hex()), zap.Error(err))
	}
	if h.cache != nil {
		if err := h.cache.Invalidate(ctx); err != nil {
			h.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
		}
	}
}
