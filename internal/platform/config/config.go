// Copyright (c) 2026 LMS. All rights reserved.
// Author: Nikhilrai1

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. A local '.env' file is
loaded first when present, real environment variables always win.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, token service) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// # Configuration Schema

// Config holds all runtime configuration for the LMS API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8000"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// TrustProxyHeaders takes the client address from X-Real-IP or
	// X-Forwarded-For. Enable only behind a proxy that sets them.
	TrustProxyHeaders bool `env:"TRUST_PROXY_HEADERS" envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// DatabaseRetryDelay is the fixed pause between failed connection attempts.
	DatabaseRetryDelay time.Duration `env:"DATABASE_RETRY_DELAY" envDefault:"5s"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis)
	RedisURL      string `env:"REDIS_URL,required"`
	RedisPoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"10"`
	RedisMinIdle  int    `env:"REDIS_MIN_IDLE"  envDefault:"2"`

	// Token signing secrets, one per token kind
	ActivationSecret   string `env:"ACTIVATION_SECRET,required,notEmpty"`
	AccessTokenSecret  string `env:"ACCESS_TOKEN_SECRET,required,notEmpty"`
	RefreshTokenSecret string `env:"REFRESH_TOKEN_SECRET,required,notEmpty"`

	// Token lifetimes. Access is counted in minutes and refresh in days.
	ActivationTokenExpiry time.Duration `env:"ACTIVATION_TOKEN_EXPIRY" envDefault:"5m"`
	AccessTokenExpiry     int           `env:"ACCESS_TOKEN_EXPIRY"     envDefault:"5"`
	RefreshTokenExpiry    int           `env:"REFRESH_TOKEN_EXPIRY"    envDefault:"3"`

	// Outbound mail (SMTP)
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT"     envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM"     envDefault:"no-reply@lms.local"`

	// Object Storage for avatars and thumbnails (S3-compatible)
	S3Bucket    string `env:"S3_BUCKET"`
	S3Region    string `env:"S3_REGION"     envDefault:"auto"`
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
	S3PublicURL string `env:"S3_PUBLIC_URL"`

	// Social sign-in. Disabled unless all three are set.
	SocialIssuer    string `env:"SOCIAL_AUTH_ISSUER"`
	SocialAudience  string `env:"SOCIAL_AUTH_AUDIENCE"`
	SocialPublicKey string `env:"SOCIAL_AUTH_PUBLIC_KEY"`

	// Cross-Origin Resource Sharing
	Origins []string `env:"ORIGIN" envSeparator:"," envDefault:"http://localhost:3000"`
}

// # Configuration Loading

// Load reads an optional '.env' file and parses environment variables into a [Config].
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to read .env file: %w", err)
	}

	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.AccessTokenExpiry <= 0 {
		return errors.New("ACCESS_TOKEN_EXPIRY must be a positive number of minutes")
	}
	if c.RefreshTokenExpiry <= 0 {
		return errors.New("REFRESH_TOKEN_EXPIRY must be a positive number of days")
	}
	if c.ActivationTokenExpiry <= 0 {
		return errors.New("ACTIVATION_TOKEN_EXPIRY must be a positive duration")
	}
	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AccessTTL is the access-token window.
func (c *Config) AccessTTL() time.Duration {
	return time.Duration(c.AccessTokenExpiry) * time.Minute
}

// RefreshTTL is the refresh-token window. It also bounds session lifetime.
func (c *Config) RefreshTTL() time.Duration {
	return time.Duration(c.RefreshTokenExpiry) * 24 * time.Hour
}

// MailEnabled reports whether an SMTP relay is configured.
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != ""
}

// SocialAuthEnabled reports whether an identity provider is configured.
func (c *Config) SocialAuthEnabled() bool {
	return c.SocialIssuer != "" && c.SocialAudience != "" && c.SocialPublicKey != ""
}

// ImageHostEnabled reports whether an object store is configured.
func (c *Config) ImageHostEnabled() bool {
	return c.S3Bucket != ""
}
