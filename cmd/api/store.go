package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hamed0406/statuspulse/internal/config"
	"github.com/hamed0406/statuspulse/internal/repo"
	"github.com/hamed0406/statuspulse/internal/repo/memory"
	"github.com/hamed0406/statuspulse/internal/repo/postgres"
	"github.com/hamed0406/statuspulse/internal/repo/sqlite"
)

// openKV returns the key-value store selected by STORE_DRIVER and a
// function that releases it.
func openKV(ctx context.Context, cfg config.Config, log *zap.Logger) (repo.KV, func() error, error) {
	switch cfg.StoreDriver {
	case "memory":
		log.Warn("memory_store", zap.String("hint", "data is lost on restart"))
		return memory.New(), func() error { return nil }, nil
	case "sqlite":
		s, err := sqlite.New(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case "postgres":
		s, err := postgres.New(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
