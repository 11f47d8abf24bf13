// Package health serves liveness, readiness and dependency status probes.
package health

import (
	"context"
	"net/http"

	"github.com/dalemusser/stratareview/internal/app/system/jsonutil"
	"github.com/dalemusser/stratareview/internal/app/system/tasks"
	"github.com/dalemusser/stratareview/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Service states.
const (
	StateOK          = "ok"
	StateDegraded    = "degraded"
	StateUnavailable = "unavailable"
	StateDisabled    = "disabled"
)

// Pinger is an optional backend, such as the Redis dashboard cache.
type Pinger interface {
	Ping(ctx context.Context) error
}

// JobReporter exposes background job state.
type JobReporter interface {
	Status() []tasks.JobStatus
}

// Handler serves the probes. cache and jobs may be nil.
type Handler struct {
	mongoClient *mongo.Client
	cache       Pinger
	jobs        JobReporter
	logger      *zap.Logger
}

func NewHandler(mongoClient *mongo.Client, cache Pinger, jobs JobReporter, logger *zap.Logger) *Handler {
	return &Handler{mongoClient: mongoClient, cache: cache, jobs: jobs, logger: logger}
}

// Response is the /health body.
type Response struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services,omitempty"`
	Jobs     []tasks.JobStatus `json:"jobs,omitempty"`
}

func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.Check)
	r.Get("/ready", h.Ready)
	r.Get("/live", h.Live)
	return r
}

// MountRootEndpoints adds the orchestrator probe aliases to r.
func MountRootEndpoints(r chi.Router, h *Handler) {
	r.Get("/ready", h.Ready)
	r.Get("/readyz", h.Ready)
	r.Get("/livez", h.Live)
}

func (h *Handler) pingMongo(ctx context.Context) error {
	return h.mongoClient.Ping(ctx, readpref.Primary())
}

// Check pings MongoDB and Redis concurrently. Only MongoDB failing makes the
// service unavailable; a Redis outage slows the dashboard and is reported as
// degraded.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	var mongoErr, cacheErr error
	var g errgroup.Group
	g.Go(func() error { mongoErr = h.pingMongo(ctx); return nil })
	if h.cache != nil {
		g.Go(func() error { cacheErr = h.cache.Ping(ctx); return nil })
	}
	_ = g.Wait()

	resp := Response{
		Status:   StateOK,
		Services: map[string]string{"mongodb": StateOK, "redis": StateOK},
	}
	if h.cache == nil {
		resp.Services["redis"] = StateDisabled
	} else if cacheErr != nil {
		h.logger.Warn("health: redis ping failed", zap.Error(cacheErr))
		resp.Services["redis"] = StateUnavailable
		resp.Status = StateDegraded
	}
	if mongoErr != nil {
		h.logger.Warn("health: mongodb ping failed", zap.Error(mongoErr))
		resp.Services["mongodb"] = StateUnavailable
		resp.Status = StateUnavailable
	}
	if h.jobs != nil {
		resp.Jobs = h.jobs.Status()
	}

	code := http.StatusOK
	if resp.Status == StateUnavailable {
		code = http.StatusServiceUnavailable
	}
	jsonutil.JSON(w, code, resp)
}

// Ready succeeds once MongoDB answers.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	if err := h.pingMongo(ctx); err != nil {
		h.logger.Warn("not ready", zap.Error(err))
		jsonutil.JSON(w, http.StatusServiceUnavailable, Response{Status: "not ready"})
		return
	}
	jsonutil.OK(w, Response{Status: "ready"})
}

// Live succeeds while the process serves requests.
func (h *Handler) Live(w http.ResponseWriter, _ *http.Request) {
	jsonutil.OK(w, Response{Status: "alive"})
}
