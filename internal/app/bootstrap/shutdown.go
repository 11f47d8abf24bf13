// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown runs after the HTTP server has drained. Jobs stop first, then the
// event writer is flushed, then the cache and MongoDB connections close.
// Every step runs even when an earlier one fails.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	steps := []struct {
		name string
		run  func() error
	}{
		{"task runner", func() error {
			if taskRunner == nil {
				return nil
			}
			return taskRunner.Stop(ctx)
		}},
		{"event publisher", func() error {
			if deps.Publisher == nil {
				return nil
			}
			return deps.Publisher.Close()
		}},
		{"dashboard cache", deps.Cache.Close},
		{"mongo client", func() error {
			if deps.MongoClient == nil {
				return nil
			}
			return deps.MongoClient.Disconnect(ctx)
		}},
	}

	var errs []error
	for _, s := range steps {
		if err := s.run(); err != nil {
			logger.Error("shutdown step failed", zap.String("step", s.name), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
			continue
		}
		logger.Debug("shutdown step done", zap.String("step", s.name))
	}
	return errors.Join(errs...)
}
