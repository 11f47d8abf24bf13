// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"github.com/dalemusser/stratareview/internal/app/store/audit"
	"github.com/dalemusser/stratareview/internal/app/store/ratelimit"
	"go.uber.org/zap"
)

// purgeJob deletes records older than keep on every run. A non-positive keep
// disables the deletion.
func purgeJob(name string, every, timeout, keep time.Duration, what string, del func(context.Context, time.Time) (int64, error), logger *zap.Logger) Job {
	return Job{
		Name:     name,
		Interval: every,
		Timeout:  timeout,
		Run: func(ctx context.Context) error {
			if keep <= 0 {
				return nil
			}
			n, err := del(ctx, time.Now().Add(-keep))
			if err != nil {
				return err
			}
			if n > 0 {
				logger.Info("purged "+what, zap.Int64("deleted", n), zap.Duration("older_than", keep))
			}
			return nil
		},
	}
}

// RateLimitPruneJob removes login attempt records idle longer than
// staleAfter. MongoDB's TTL index covers this too; the job is for
// deployments without TTL support.
func RateLimitPruneJob(store *ratelimit.Store, staleAfter time.Duration, logger *zap.Logger) Job {
	return purgeJob("ratelimit-prune", time.Hour, time.Minute, staleAfter, "stale login attempts", store.PruneStale, logger)
}

// AuditRetentionJob deletes audit events older than retention. Zero keeps
// them forever.
func AuditRetentionJob(store *audit.Store, retention time.Duration, logger *zap.Logger) Job {
	return purgeJob("audit-retention", 24*time.Hour, 5*time.Minute, retention, "expired audit events", store.DeleteOlderThan, logger)
}

// DashboardWarmJob rebuilds the cached dashboards before they expire.
func DashboardWarmJob(interval time.Duration, warm func(ctx context.Context) error) Job {
	return Job{Name: "dashboard-warm", Interval: interval, Timeout: 30 * time.Second, Run: warm}
}
