// Package config loads service configuration from environment variables
// (with an optional .env file for local development) so main stays lean.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration for the service.
type Config struct {
	Addr        string `mapstructure:"FINBANK_ADDR"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	RedisURL    string `mapstructure:"REDIS_URL"`

	JWTSigningKey string        `mapstructure:"JWT_SIGNING_KEY"`
	JWTTTL        time.Duration `mapstructure:"JWT_TTL"`

	AccountCacheTTL time.Duration `mapstructure:"ACCOUNT_CACHE_TTL"`

	// Fixed-window limit applied to the unauthenticated endpoints, per
	// client IP. Zero disables throttling.
	LoginRateLimit  int           `mapstructure:"LOGIN_RATE_LIMIT"`
	LoginRateWindow time.Duration `mapstructure:"LOGIN_RATE_WINDOW"`

	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
}

// Load reads configuration from the environment. A missing .env file is not
// an error; explicit environment variables always win.
func Load(path string) (Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("FINBANK_ADDR", ":8080")
	v.SetDefault("JWT_TTL", time.Hour)
	v.SetDefault("ACCOUNT_CACHE_TTL", 5*time.Minute)
	v.SetDefault("LOGIN_RATE_LIMIT", 10)
	v.SetDefault("LOGIN_RATE_WINDOW", time.Minute)
	v.SetDefault("SHUTDOWN_TIMEOUT", 10*time.Second)
	// Development default; must be overridden in production.
	v.SetDefault("JWT_SIGNING_KEY", "dev-secret-key-change-in-production")

	for _, key := range []string{
		"FINBANK_ADDR",
		"DATABASE_URL",
		"REDIS_URL",
		"JWT_SIGNING_KEY",
		"JWT_TTL",
		"ACCOUNT_CACHE_TTL",
		"LOGIN_RATE_LIMIT",
		"LOGIN_RATE_WINDOW",
		"SHUTDOWN_TIMEOUT",
	} {
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
