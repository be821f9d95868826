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
	ServerRequestTimeout  = 60 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Database ping timeout for health checks
const DBPingTimeout = 5 * time.Second

// Background sweep of stale pairing codes
const SweepJobInterval = 5 * time.Minute

// Outbound push gateway call timeout
const PushTimeout = 5 * time.Second

// Rate limiting for the public API, per IP
const (
	APIRateLimitPerWindow = 60
	APIRateLimitWindow    = time.Minute
)
