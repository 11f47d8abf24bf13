// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/stratareview/internal/app/system/adminactions"
	"github.com/dalemusser/stratareview/internal/app/system/auditlog"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// EnvVarPrefix is the prefix for environment variables.
const EnvVarPrefix = "STRATAREVIEW"

// appConfigKeys are loaded from config files (mongo_uri), environment
// variables (STRATAREVIEW_MONGO_URI) and flags (--mongo_uri).
var appConfigKeys = []config.AppKey{
	{Name: "site_name", Default: "StrataReview Admin", Desc: "Name shown in the console header"},

	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "stratareview", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "stratareview-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "12h", Desc: "Session cookie max age (e.g., 12h, 30m)"},
	{Name: "csrf_key", Default: "dev-only-csrf-key-please-change-0123456789", Desc: "CSRF token signing key (32+ chars in production)"},

	// Sign-in rate limiting
	{Name: "rate_limit_enabled", Default: true, Desc: "Lock out an email after repeated failed sign-ins"},
	{Name: "rate_limit_login_attempts", Default: 5, Desc: "Failed sign-ins before lockout"},
	{Name: "rate_limit_login_window", Default: "15m", Desc: "Window for counting failed sign-ins"},
	{Name: "rate_limit_login_lockout", Default: "15m", Desc: "Lockout duration"},

	// Audit logging
	{Name: "audit_log_auth", Default: auditlog.DestAll, Desc: "Sign-in events: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: auditlog.DestAll, Desc: "Operator actions and catalog changes: 'all', 'db', 'log', or 'off'"},
	{Name: "audit_retention", Default: "2160h", Desc: "Delete audit events older than this (0 keeps them forever)"},

	// Operator actions
	{Name: "temp_password", Default: adminactions.DefaultTempPassword, Desc: "Password set by the reset-password action"},
	{Name: "seed_admin_email", Default: "", Desc: "Email of the operator to create when none exists"},
	{Name: "seed_admin_name", Default: "Admin", Desc: "Display name of the seeded operator"},
	{Name: "seed_admin_password", Default: "", Desc: "Initial password of the seeded operator (changed at first sign-in)"},

	// Dashboard cache (Redis)
	{Name: "redis_addr", Default: "", Desc: "Redis host:port for the dashboard cache (blank disables caching)"},
	{Name: "redis_password", Default: "", Desc: "Redis password"},
	{Name: "redis_db", Default: 0, Desc: "Redis database number"},
	{Name: "dashboard_cache_ttl", Default: "5m", Desc: "How long a computed dashboard is served from cache"},
	{Name: "dashboard_warm_interval", Default: "4m", Desc: "How often the background job rebuilds cached dashboards"},

	// Admin action events (Kafka)
	{Name: "kafka_brokers", Default: "", Desc: "Comma-separated Kafka brokers (blank disables publishing)"},
	{Name: "kafka_topic", Default: "stratareview.admin-actions", Desc: "Topic for operator action events"},
	{Name: "kafka_write_timeout", Default: "5s", Desc: "Timeout for one event write"},

	// Handler timeouts
	{Name: "timeout_short", Default: "5s", Desc: "Timeout for single-document reads and writes"},
	{Name: "timeout_medium", Default: "10s", Desc: "Timeout for list pages, the dashboard and operator actions"},
	{Name: "timeout_long", Default: "30s", Desc: "Timeout for background jobs"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// Precedence is flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, EnvVarPrefix, appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		SiteName: appValues.String("site_name"),

		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 12*time.Hour),
		CSRFKey:       appValues.String("csrf_key"),

		RateLimitEnabled:       appValues.Bool("rate_limit_enabled"),
		RateLimitLoginAttempts: appValues.Int("rate_limit_login_attempts"),
		RateLimitLoginWindow:   appValues.Duration("rate_limit_login_window", 15*time.Minute),
		RateLimitLoginLockout:  appValues.Duration("rate_limit_login_lockout", 15*time.Minute),

		AuditLogAuth:   appValues.String("audit_log_auth"),
		AuditLogAdmin:  appValues.String("audit_log_admin"),
		AuditRetention: appValues.Duration("audit_retention", 90*24*time.Hour),

		TempPassword:      appValues.String("temp_password"),
		SeedAdminEmail:    appValues.String("seed_admin_email"),
		SeedAdminName:     appValues.String("seed_admin_name"),
		SeedAdminPassword: appValues.String("seed_admin_password"),

		RedisAddr:             appValues.String("redis_addr"),
		RedisPassword:         appValues.String("redis_password"),
		RedisDB:               appValues.Int("redis_db"),
		DashboardCacheTTL:     appValues.Duration("dashboard_cache_ttl", 5*time.Minute),
		DashboardWarmInterval: appValues.Duration("dashboard_warm_interval", 4*time.Minute),

		KafkaBrokers:      splitList(appValues.String("kafka_brokers")),
		KafkaTopic:        appValues.String("kafka_topic"),
		KafkaWriteTimeout: appValues.Duration("kafka_write_timeout", 5*time.Second),

		TimeoutShort:  appValues.Duration("timeout_short", 5*time.Second),
		TimeoutMedium: appValues.Duration("timeout_medium", 10*time.Second),
		TimeoutLong:   appValues.Duration("timeout_long", 30*time.Second),
	}

	return coreCfg, appCfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ValidateConfig rejects settings the console cannot start with.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	for name, v := range map[string]string{"audit_log_auth": appCfg.AuditLogAuth, "audit_log_admin": appCfg.AuditLogAdmin} {
		switch v {
		case "", auditlog.DestAll, auditlog.DestDB, auditlog.DestLog, auditlog.DestOff:
		default:
			return fmt.Errorf("%s: unknown destination %q", name, v)
		}
	}
	if appCfg.RateLimitEnabled && appCfg.RateLimitLoginAttempts <= 0 {
		return fmt.Errorf("rate_limit_login_attempts must be positive, got %d", appCfg.RateLimitLoginAttempts)
	}
	if appCfg.SeedAdminEmail != "" && appCfg.SeedAdminPassword == "" {
		logger.Warn("seed_admin_email set without seed_admin_password; the temporary password will be used",
			zap.String("email", appCfg.SeedAdminEmail))
	}
	if coreCfg != nil && coreCfg.Env == "prod" && appCfg.TempPassword == adminactions.DefaultTempPassword {
		logger.Warn("temp_password is the built-in default; set STRATAREVIEW_TEMP_PASSWORD in production")
	}
	return nil
}
