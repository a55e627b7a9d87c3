package config

import "time"

// DBConfig contains PostgreSQL database configuration.
type DBConfig struct {
	Host     string `env:"HOST"                    envDefault:"localhost"`
	Port     int    `env:"PORT"                    envDefault:"5432"`
	User     string `env:"USER"                    envDefault:"eventbridge"`
	Password string `env:"PASSWORD"                envDefault:"eventbridge"`
	Name     string `env:"NAME"                    envDefault:"eventbridge"`
	SSLMode  string `env:"SSL_MODE"                envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
	// RunMigrationsOnStart controls whether the application automatically applies migrations during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// RedisConfig contains Redis configuration.
type RedisConfig struct {
	URI      string `env:"URI"      envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`
	// Enabled toggles the Redis-backed view-name cache. The broker runs
	// without it; every dispatch then hits Postgres for name resolution.
	Enabled bool `env:"ENABLED"  envDefault:"false"`
}

// CacheConfig contains cache configuration for dispatcher lookups.
type CacheConfig struct {
	// ViewNameTTL bounds how long a resolved view name may be served from
	// cache after the registry row changes.
	ViewNameTTL time.Duration `env:"CACHE_VIEW_NAME_TTL" envDefault:"10m"`
}

// Sanitize applies guardrails to cache configuration values.
func (c *CacheConfig) Sanitize() {
	if c.ViewNameTTL <= 0 {
		c.ViewNameTTL = 10 * time.Minute
	}
}
