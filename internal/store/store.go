// Package store keeps cleaned results between requests.
//
// Three backends implement core.ResultStore:
//   - memory: process-local map, lost on restart
//   - redis: shared across instances, expiry handled by Redis
//   - postgres: durable table, expired rows purged by a sweeper
//
// All backends return core.ErrResultNotFound for unknown or expired ids.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/JonMunkholm/crunchclean/internal/config"
	"github.com/JonMunkholm/crunchclean/internal/core"
)

// Purger is implemented by backends that must delete expired results
// themselves.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Open creates the backend selected by cfg.Backend.
func Open(ctx context.Context, cfg config.StoreConfig) (core.ResultStore, error) {
	switch cfg.Backend {
	case config.BackendMemory, "":
		return NewMemory(cfg.TTL), nil

	case config.BackendRedis:
		r := NewRedis(cfg.Redis, cfg.TTL)
		if err := r.Ping(ctx); err != nil {
			r.Close()
			return nil, err
		}
		return r, nil

	case config.BackendPostgres:
		p, err := OpenPostgres(ctx, cfg.DatabaseURL, cfg.MaxConns, cfg.TTL)
		if err != nil {
			return nil, err
		}
		if err := p.Migrate(ctx); err != nil {
			p.Close()
			return nil, err
		}
		return p, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// StartSweeper purges expired results from s every interval until ctx is
// cancelled. It does nothing for backends that are not Purgers.
// It runs once immediately, then periodically; call it in its own goroutine.
func StartSweeper(ctx context.Context, s core.ResultStore, interval time.Duration) {
	p, ok := s.(Purger)
	if !ok {
		return
	}

	slog.Info("result sweeper started", "interval", interval)

	sweep(ctx, p)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("result sweeper stopped")
			return
		case <-ticker.C:
			sweep(ctx, p)
		}
	}
}

// sweep performs one purge. Failures are logged and retried on the next tick.
func sweep(ctx context.Context, p Purger) {
	start := time.Now()
	purged, err := p.PurgeExpired(ctx)
	if err != nil {
		slog.Error("purge expired results failed", "error", err)
		return
	}
	if purged > 0 {
		slog.Info("purged expired results",
			"results_purged", purged,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
