package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if TRACKWATCH_CONFIG is set
//  3. env (prefix TRACKWATCH_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("TRACKWATCH_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: TRACKWATCH_ADDR, TRACKWATCH_DAYS_BACK, ...
	// Keys keep their underscores to match the struct's koanf tags. Nested
	// email keys use double underscores: TRACKWATCH_EMAIL__HOST -> email.host.
	envProvider := env.Provider("TRACKWATCH_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "trackwatch_")
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.Sport != "tf" && c.Sport != "xc":
		return fmt.Errorf("%w: sport must be tf or xc, got %q", ErrInvalidConfig, c.Sport)
	case c.DaysBack <= 0:
		return fmt.Errorf("%w: days_back must be positive", ErrInvalidConfig)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.QualifyingSpots <= 0:
		return fmt.Errorf("%w: qualifying_spots must be positive", ErrInvalidConfig)
	}

	switch c.StateBackend {
	case "file":
		if c.StatePath == "" {
			return fmt.Errorf("%w: state_path required for file backend", ErrInvalidConfig)
		}
	case "redis":
		if c.RedisAddr == "" {
			return fmt.Errorf("%w: redis_addr required for redis backend", ErrInvalidConfig)
		}
	case "postgres":
		if c.PostgresDSN == "" {
			return fmt.Errorf("%w: postgres_dsn required for postgres backend", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: state_backend must be file, redis or postgres, got %q",
			ErrInvalidConfig, c.StateBackend)
	}

	if c.Email.Enabled {
		if c.Email.Host == "" || c.Email.From == "" || len(c.Email.To) == 0 {
			return fmt.Errorf("%w: email enabled but host/from/to incomplete", ErrInvalidConfig)
		}
	}
	return nil
}
