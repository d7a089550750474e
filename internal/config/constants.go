package config

import "time"

// Database connection pool settings
const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 5 * time.Minute
)

// HTTP server timeouts
const (
	ServerRequestTimeout  = 180 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Database ping timeout for health checks
const DBPingTimeout = 5 * time.Second

// Session display defaults
const (
	DefaultSessionTitle = "New Task"
	SessionTitleMaxLen  = 50
)

// Background job intervals
const (
	IntegritySweepInterval = 10 * time.Minute
	IntegritySweepBatch    = 100
)

// Default rate limiting
const DefaultRateLimitPerMin = 60
