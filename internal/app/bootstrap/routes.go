// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	auditlogfeature "github.com/dalemusser/stratareview/internal/app/features/auditlog"
	dashboardfeature "github.com/dalemusser/stratareview/internal/app/features/dashboard"
	errorsfeature "github.com/dalemusser/stratareview/internal/app/features/errors"
	healthfeature "github.com/dalemusser/stratareview/internal/app/features/health"
	loginfeature "github.com/dalemusser/stratareview/internal/app/features/login"
	usersfeature "github.com/dalemusser/stratareview/internal/app/features/users"
	videosfeature "github.com/dalemusser/stratareview/internal/app/features/videos"
	appresources "github.com/dalemusser/stratareview/internal/app/resources"
	"github.com/dalemusser/stratareview/internal/app/store/audit"
	profilestore "github.com/dalemusser/stratareview/internal/app/store/profiles"
	"github.com/dalemusser/stratareview/internal/app/store/ratelimit"
	"github.com/dalemusser/stratareview/internal/app/system/adminactions"
	"github.com/dalemusser/stratareview/internal/app/system/auditlog"
	"github.com/dalemusser/stratareview/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// probePaths skip CSRF checks. Load balancers and orchestrators call them.
var probePaths = map[string]bool{
	"/health":       true,
	"/health/ready": true,
	"/health/live":  true,
	"/ready":        true,
	"/readyz":       true,
	"/livez":        true,
}

// BuildHandler assembles the console router. Sign-in, the error pages, the
// health probes and the static assets are public; everything else requires
// an operator.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	secure := coreCfg.Env == "prod"

	sessionMgr, err := newSessions(appCfg, deps, secure, logger)
	if err != nil {
		return nil, err
	}

	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	errLog := errorsfeature.NewErrorLogger(logger)
	auditLogger := auditlog.New(audit.New(deps.MongoDatabase), logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})

	r := chi.NewRouter()
	r.Use(
		chimw.Timeout(30*time.Second),
		middleware.CORSFromConfig(coreCfg),
		middleware.SecurityHeadersFromConfig(coreCfg),
		sessionMgr.LoadSessionUser,
		csrfMiddleware(appCfg, secure, logger),
	)

	mountHealth(r, deps, logger)
	r.Handle("/assets/*", appresources.AssetsHandler("/assets"))

	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)
	r.NotFound(errorsHandler.NotFound)

	var limiter *ratelimit.Store
	if appCfg.RateLimitEnabled {
		limiter = ratelimit.New(deps.MongoDatabase, rateLimitConfig(appCfg))
	}
	login := loginfeature.NewHandler(deps.MongoDatabase, sessionMgr, errLog, auditLogger, limiter, logger)
	r.Mount("/login", loginfeature.Routes(login))
	r.Get("/logout", login.Logout)
	r.Post("/logout", login.Logout)

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/dashboard", http.StatusSeeOther)
	})

	actions := adminactions.New(deps.MongoDatabase, logger,
		adminactions.WithAudit(auditLogger),
		adminactions.WithPublisher(deps.Publisher),
		adminactions.WithCache(deps.Cache),
		adminactions.WithTempPassword(appCfg.TempPassword),
	)

	r.Mount("/dashboard", dashboardfeature.Routes(
		dashboardfeature.NewHandler(newDashboardLoader(deps, logger), errLog, logger), sessionMgr))
	r.Mount("/users", usersfeature.Routes(
		usersfeature.NewHandler(deps.MongoDatabase, actions, errLog, logger), sessionMgr))
	r.Mount("/videos", videosfeature.Routes(
		videosfeature.NewHandler(deps.MongoDatabase, auditLogger, deps.Publisher, deps.Cache, errLog, logger), sessionMgr))
	r.Mount("/audit", auditlogfeature.Routes(
		auditlogfeature.NewHandler(deps.MongoDatabase, errLog, logger), sessionMgr))

	return r, nil
}

// newSessions builds the cookie session manager. Profiles are reloaded on
// every request so blocks and demotions apply at once.
func newSessions(appCfg AppConfig, deps DBDeps, secure bool, logger *zap.Logger) (*auth.SessionManager, error) {
	sm, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}
	sm.SetUserFetcher(profilestore.NewFetcher(deps.MongoDatabase, logger))
	return sm, nil
}

// csrfMiddleware guards every form post. Health probes pass unchecked.
func csrfMiddleware(appCfg AppConfig, secure bool, logger *zap.Logger) func(http.Handler) http.Handler {
	opts := []csrf.Option{
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.CookieName("stratareview_csrf"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			logger.Warn("csrf check failed",
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.NamedError("reason", csrf.FailureReason(req)))
			http.Error(w, "Forbidden: the form expired, reload the page and try again", http.StatusForbidden)
		})),
	}
	if appCfg.SessionDomain != "" {
		opts = append(opts, csrf.Domain(appCfg.SessionDomain))
	}
	if !secure {
		opts = append(opts, csrf.TrustedOrigins([]string{"localhost:8080", "127.0.0.1:8080"}))
	}
	protect := csrf.Protect([]byte(appCfg.CSRFKey), opts...)

	return func(next http.Handler) http.Handler {
		guarded := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if probePaths[req.URL.Path] {
				next.ServeHTTP(w, req)
				return
			}
			guarded.ServeHTTP(w, req)
		})
	}
}

// mountHealth exposes /health/* and the root probe aliases. Redis and the
// job runner are reported only when present.
func mountHealth(r chi.Router, deps DBDeps, logger *zap.Logger) {
	var cache healthfeature.Pinger
	if deps.Cache.Enabled() {
		cache = deps.Cache
	}
	var jobs healthfeature.JobReporter
	if taskRunner != nil {
		jobs = taskRunner
	}
	h := healthfeature.NewHandler(deps.MongoClient, cache, jobs, logger)
	r.Mount("/health", healthfeature.Routes(h))
	healthfeature.MountRootEndpoints(r, h)
}
