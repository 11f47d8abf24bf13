// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/stratareview/internal/app/system/dashcache"
	"github.com/dalemusser/stratareview/internal/app/system/events"
	"github.com/dalemusser/stratareview/internal/app/system/indexes"
	"github.com/dalemusser/stratareview/internal/app/system/seeding"
	"github.com/dalemusser/stratareview/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ConnectDB opens MongoDB, which is required, then the optional Redis
// dashboard cache and Kafka event writer. A failure after MongoDB is up
// disconnects it again.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	client, err := connectMongo(ctx, appCfg, logger)
	if err != nil {
		return DBDeps{}, err
	}

	cache, err := dashcache.Connect(ctx, dashcache.Config{
		Addr:     appCfg.RedisAddr,
		Password: appCfg.RedisPassword,
		DB:       appCfg.RedisDB,
		TTL:      appCfg.DashboardCacheTTL,
	}, logger)
	if err != nil {
		_ = client.Disconnect(ctx)
		return DBDeps{}, fmt.Errorf("dashboard cache: %w", err)
	}
	logger.Info("dashboard cache",
		zap.Bool("enabled", cache.Enabled()),
		zap.String("addr", appCfg.RedisAddr),
		zap.Duration("ttl", appCfg.DashboardCacheTTL))

	publisher := events.New(events.Config{
		Brokers:      appCfg.KafkaBrokers,
		Topic:        appCfg.KafkaTopic,
		WriteTimeout: appCfg.KafkaWriteTimeout,
	}, logger)
	logger.Info("operator events",
		zap.Bool("enabled", len(appCfg.KafkaBrokers) > 0),
		zap.Strings("brokers", appCfg.KafkaBrokers),
		zap.String("topic", appCfg.KafkaTopic))

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
		Cache:         cache,
		Publisher:     publisher,
	}, nil
}

func connectMongo(ctx context.Context, appCfg AppConfig, logger *zap.Logger) (*mongo.Client, error) {
	pool := wafflemongo.DefaultPoolConfig()
	if n := appCfg.MongoMaxPoolSize; n > 0 {
		pool.MaxPoolSize = n
	}
	if n := appCfg.MongoMinPoolSize; n > 0 {
		pool.MinPoolSize = n
	}
	client, err := wafflemongo.ConnectWithPool(ctx, appCfg.MongoURI, appCfg.MongoDatabase, pool)
	if err != nil {
		return nil, fmt.Errorf("mongodb: %w", err)
	}
	logger.Info("mongodb connected",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("pool_max", pool.MaxPoolSize),
		zap.Uint64("pool_min", pool.MinPoolSize))
	return client, nil
}

// EnsureSchema applies collection validators, then indexes, then seeds the
// bootstrap operator. Validators go first because they create the
// collections the indexes are built on.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	admin := seeding.Admin{
		Email:    appCfg.SeedAdminEmail,
		Name:     appCfg.SeedAdminName,
		Password: appCfg.SeedAdminPassword,
	}
	if admin.Password == "" {
		admin.Password = appCfg.TempPassword
	}

	steps := []struct {
		name string
		run  func() error
	}{
		{"validators", func() error { return validators.EnsureAll(ctx, db) }},
		{"indexes", func() error { return indexes.EnsureAll(ctx, db) }},
		{"seed", func() error { return seeding.SeedAll(ctx, db, admin, logger) }},
	}
	for _, s := range steps {
		if err := s.run(); err != nil {
			logger.Error("schema step failed", zap.String("step", s.name), zap.Error(err))
			return fmt.Errorf("%s: %w", s.name, err)
		}
		logger.Info("schema step done", zap.String("step", s.name))
	}
	return nil
}
