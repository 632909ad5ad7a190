// Package config holds all caselens configuration. It is loaded once at
// process start and passed by reference into the components that need it;
// business logic never reads configuration globally.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all caselens configuration.
type Config struct {
	Server  Server  `yaml:"server"`
	Engine  Engine  `yaml:"engine"`
	Audit   Audit   `yaml:"audit"`
	Logging Logging `yaml:"logging"`
}

// Server configures the HTTP analysis endpoint.
type Server struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Engine configures the reasoning-engine provider.
type Engine struct {
	Provider string `yaml:"provider"` // openai, gemini
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
	Timeout  string `yaml:"timeout"`
}

// Audit configures the audit record store.
type Audit struct {
	Driver  string `yaml:"driver"` // sqlite, postgres
	Path    string `yaml:"path"`   // sqlite database file
	DSN     string `yaml:"dsn"`    // postgres connection string
	Timeout string `yaml:"timeout"`
}

// Logging configures the zap logger built in cmd.
type Logging struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: Server{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
		},
		Engine: Engine{
			Provider: "openai",
			Model:    "gpt-4o-mini",
			BaseURL:  "https://api.openai.com/v1",
			Timeout:  "60s",
		},
		Audit: Audit{
			Driver:  "sqlite",
			Path:    "caselens.db",
			Timeout: "5s",
		},
		Logging: Logging{Level: "info"},
	}
}

// Load reads the yaml config at path, layered over the defaults, then applies
// environment overrides and validates. A missing file is not an error; the
// defaults plus environment are used.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv resolves secrets from the environment. The config file can carry
// the key too, but the environment wins so deployments never need credentials
// on disk.
func (c *Config) applyEnv() {
	if v := os.Getenv("CASELENS_API_KEY"); v != "" {
		c.Engine.APIKey = v
	} else if c.Engine.APIKey == "" {
		switch c.Engine.Provider {
		case "gemini":
			c.Engine.APIKey = os.Getenv("GEMINI_API_KEY")
		default:
			c.Engine.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}
	if v := os.Getenv("CASELENS_AUDIT_DSN"); v != "" {
		c.Audit.DSN = v
	}
	if v := os.Getenv("CASELENS_ADDR"); v != "" {
		c.Server.Addr = v
	}
}

// Validate checks for configuration that can never work.
func (c *Config) Validate() error {
	switch c.Audit.Driver {
	case "sqlite":
		if c.Audit.Path == "" {
			return fmt.Errorf("audit.path is required for the sqlite driver")
		}
	case "postgres":
		if c.Audit.DSN == "" {
			return fmt.Errorf("audit.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown audit driver: %q", c.Audit.Driver)
	}
	return nil
}

// EngineTimeout returns the parsed engine-call deadline, defaulting to 60s.
// The deadline is applied per call; a hung engine request cannot pin a
// request cycle forever.
func (e Engine) EngineTimeout() time.Duration {
	return parseDuration(e.Timeout, 60*time.Second)
}

// AuditTimeout returns the parsed audit-write deadline, defaulting to 5s.
func (a Audit) AuditTimeout() time.Duration {
	return parseDuration(a.Timeout, 5*time.Second)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
