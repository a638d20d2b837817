// Package config loads application configuration from an optional YAML
// file with environment variable overrides. Environment keys use the ZEN_
// prefix and underscores as separators: ZEN_SERVER_PORT overrides
// server.port.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/zenapp/zen/pkg/security"
)

// Config is the application configuration.
type Config struct {
	Server   Server  `koanf:"server"`
	Database string  `koanf:"database"`
	Redis    string  `koanf:"redis"`
	Secret   string  `koanf:"secret"`
	Sentry   Sentry  `koanf:"sentry"`
	Session  Session `koanf:"session"`
	Mail     Mail    `koanf:"mail"`
}

// Server configures the HTTP listener.
type Server struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Sentry configures error reporting.
type Sentry struct {
	DSN         string `koanf:"dsn"`
	Environment string `koanf:"environment"`
}

// Session configures session housekeeping.
type Session struct {
	CleanupSchedule string `koanf:"cleanup_schedule"`
}

// Mail configures outgoing email.
type Mail struct {
	ResendAPIKey string `koanf:"resend_api_key"`
	From         string `koanf:"from"`
	ReplyTo      string `koanf:"reply_to"`
}

func defaults() *Config {
	return &Config{
		Server: Server{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Sentry:  Sentry{Environment: "production"},
		Session: Session{CleanupSchedule: "@every 1h"},
	}
}

// Load reads the configuration. A missing file is not an error; defaults
// and environment variables still apply.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := defaults()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("config: load %s: %w", path, err)
			}
		}
	}

	err := k.Load(env.Provider("ZEN_", ".", func(key string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(key, "ZEN_")), "_", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid server port %d", c.Server.Port)
	}
	if c.Secret != "" && len(c.Secret) < security.MinSecretLength {
		return errors.New("config: secret is too short")
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
