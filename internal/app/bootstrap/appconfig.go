// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig covers ports, TLS, logging and CORS. Everything the
// console itself needs lives here and is passed to every lifecycle hook.
type AppConfig struct {
	SiteName string // Shown in the console header

	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies
	SessionName   string        // Cookie name for sessions
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Maximum session cookie lifetime
	CSRFKey       string        // Secret key for CSRF token signing

	// Sign-in rate limiting
	RateLimitEnabled       bool
	RateLimitLoginAttempts int
	RateLimitLoginWindow   time.Duration
	RateLimitLoginLockout  time.Duration

	// Audit logging: "all" (MongoDB + zap), "db", "log" or "off"
	AuditLogAuth   string
	AuditLogAdmin  string
	AuditRetention time.Duration // 0 keeps events forever

	// Operator actions and the bootstrap operator
	TempPassword      string // Set by reset-password; must be changed at next sign-in
	SeedAdminEmail    string
	SeedAdminName     string
	SeedAdminPassword string

	// Dashboard cache; RedisAddr empty disables it
	RedisAddr             string
	RedisPassword         string
	RedisDB               int
	DashboardCacheTTL     time.Duration
	DashboardWarmInterval time.Duration

	// Admin action events; no brokers disables publishing
	KafkaBrokers      []string
	KafkaTopic        string
	KafkaWriteTimeout time.Duration

	// Handler timeouts (see system/timeouts)
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
}
