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
//  2. file (YAML) if RANKER_CONFIG is set
//  3. env (prefix RANKER_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("RANKER_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: RANKER_ADDR, RANKER_QUEUE_SIZE, ...
	// Map env keys like RANKER_QUEUE_SIZE -> queue_size (flat keys).
	envProvider := env.Provider("RANKER_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "ranker_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	switch {
	case cfg.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case cfg.LedgerBackend != "memory" && cfg.LedgerBackend != "redis":
		return fmt.Errorf("%w: unknown ledger backend %q", ErrInvalidConfig, cfg.LedgerBackend)
	case cfg.LedgerBackend == "redis" && cfg.RedisAddr == "":
		return fmt.Errorf("%w: redis_addr must be set for the redis backend", ErrInvalidConfig)
	case cfg.TestFraction < 0 || cfg.TestFraction >= 1:
		return fmt.Errorf("%w: test_fraction must be in [0, 1)", ErrInvalidConfig)
	case cfg.ForestTrees <= 0:
		return fmt.Errorf("%w: forest_trees must be positive", ErrInvalidConfig)
	}
	return nil
}
