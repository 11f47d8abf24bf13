// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	dashboardfeature "github.com/dalemusser/stratareview/internal/app/features/dashboard"
	"github.com/dalemusser/stratareview/internal/app/resources"
	"github.com/dalemusser/stratareview/internal/app/store/audit"
	"github.com/dalemusser/stratareview/internal/app/store/ratelimit"
	"github.com/dalemusser/stratareview/internal/app/system/tasks"
	"github.com/dalemusser/stratareview/internal/app/system/timeouts"
	"github.com/dalemusser/stratareview/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs once after DB connections and schema setup are complete,
// but before the HTTP handler is built.
//
// Returning a non-nil error aborts startup.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()
	viewdata.Init(appCfg.SiteName)
	timeouts.Configure(timeouts.Config{
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
	})
	t := timeouts.Current()
	logger.Info("request timeouts",
		zap.Duration("ping", t.Ping),
		zap.Duration("short", t.Short),
		zap.Duration("medium", t.Medium),
		zap.Duration("long", t.Long))

	loader := newDashboardLoader(deps, logger)
	if deps.Cache.Enabled() {
		if err := loader.Warm(ctx); err != nil {
			logger.Warn("initial dashboard warm failed", zap.Error(err))
		}
	}

	startTaskRunner(appCfg, deps, loader, logger)
	return nil
}

func newDashboardLoader(deps DBDeps, logger *zap.Logger) *dashboardfeature.Loader {
	return dashboardfeature.NewLoader(deps.MongoDatabase, deps.Cache, logger)
}

// taskRunner is the global task runner instance, used by the health
// endpoint and for graceful shutdown.
var taskRunner *tasks.Runner

func startTaskRunner(appCfg AppConfig, deps DBDeps, loader *dashboardfeature.Loader, logger *zap.Logger) {
	taskRunner = tasks.New(logger)

	if appCfg.RateLimitEnabled {
		rl := ratelimit.New(deps.MongoDatabase, rateLimitConfig(appCfg))
		taskRunner.Register(tasks.RateLimitPruneJob(rl, appCfg.RateLimitLoginWindow+appCfg.RateLimitLoginLockout, logger))
	}
	taskRunner.Register(tasks.AuditRetentionJob(audit.New(deps.MongoDatabase), appCfg.AuditRetention, logger))
	if deps.Cache.Enabled() && appCfg.DashboardWarmInterval > 0 {
		taskRunner.Register(tasks.DashboardWarmJob(appCfg.DashboardWarmInterval, loader.Warm))
	}

	taskRunner.Start()
}

func rateLimitConfig(appCfg AppConfig) ratelimit.Config {
	return ratelimit.Config{
		MaxAttempts: appCfg.RateLimitLoginAttempts,
		Window:      appCfg.RateLimitLoginWindow,
		Lockout:     appCfg.RateLimitLoginLockout,
	}
}
