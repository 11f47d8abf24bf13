// Package dashboard serves the analytics overview, as a page and as JSON.
package dashboard

import (
	"net/http"

	errorsfeature "github.com/dalemusser/stratareview/internal/app/features/errors"
	"github.com/dalemusser/stratareview/internal/app/system/analytics"
	"github.com/dalemusser/stratareview/internal/app/system/auth"
	"github.com/dalemusser/stratareview/internal/app/system/jsonutil"
	"github.com/dalemusser/stratareview/internal/app/system/timeouts"
	"github.com/dalemusser/stratareview/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	loader *Loader
	pages  *errorsfeature.Handler
	errLog *errorsfeature.ErrorLogger
	logger *zap.Logger
}

func NewHandler(loader *Loader, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{loader: loader, pages: errorsfeature.NewHandler(), errLog: errLog, logger: logger}
}

// Routes mounts the page at / and its data at /data.json. Both accept
// ?window=7d|30d|90d|all.
func Routes(h *Handler, sessionMgr *auth.SessionManager) http.Handler {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireAdmin)
	r.Get("/", h.serve(h.page, h.pages.ServiceUnavailable))
	r.Get("/data.json", h.serve(h.data, unavailableJSON))
	return r
}

type view func(w http.ResponseWriter, r *http.Request, d analytics.Dashboard)

// serve loads the dashboard for the requested window and hands it to v.
// A load failure is logged and answered by fail.
func (h *Handler) serve(v view, fail http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		window := analytics.ParseWindow(query.Get(r, "window"))

		ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.logger, "dashboard")
		defer cancel()

		d, err := h.loader.Get(ctx, window)
		if err != nil {
			h.errLog.Log(r, "dashboard load failed", err, zap.String("window", string(window)))
			fail(w, r)
			return
		}
		v(w, r, d)
	}
}

func (h *Handler) page(w http.ResponseWriter, r *http.Request, d analytics.Dashboard) {
	templates.Render(w, r, "dashboard/show", newDashboardVM(viewdata.NewBaseVM(r, "Dashboard", "/"), d))
}

func (h *Handler) data(w http.ResponseWriter, _ *http.Request, d analytics.Dashboard) {
	jsonutil.OK(w, d)
}

func unavailableJSON(w http.ResponseWriter, _ *http.Request) {
	jsonutil.Error(w, http.StatusServiceUnavailable, "dashboard unavailable")
}
