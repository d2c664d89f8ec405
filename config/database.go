package config

import "time"

// DBConfig contains PostgreSQL configuration for the auth audit log.
type DBConfig struct {
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     int    `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"campushub"`
	Password string `env:"PASSWORD" envDefault:"campushub"`
	Name     string `env:"NAME"     envDefault:"campushub"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
	// RunMigrationsOnStart controls whether the application automatically applies migrations during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
	// Enabled controls whether the audit log is wired at all. The audit
	// trail is best effort; the auth flow works without it.
	Enabled bool `env:"ENABLED" envDefault:"true"`
}

// RedisConfig contains Redis configuration for the opaque session store
// and the profile cache.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
}

// CacheConfig contains profile cache configuration (Redis-based).
type CacheConfig struct {
	// ProfileTTL is the TTL for cached profile snapshots.
	ProfileTTL time.Duration `env:"CACHE_PROFILE_TTL" envDefault:"15m"`
}
