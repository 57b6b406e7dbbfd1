package main

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sot-platform/discovery-cli/internal/region"
	"github.com/sot-platform/discovery-cli/internal/scheduler"
	"github.com/sot-platform/discovery-cli/pkg/credits"
	"github.com/sot-platform/discovery-cli/pkg/research"
)

// initPool opens the Postgres connection pool from config.
func initPool(ctx context.Context) (*pgxpool.Pool, error) {
	if err := cfg.Validate("store"); err != nil {
		return nil, err
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.Store.DatabaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "parse connection string")
	}
	poolCfg.MaxConns = cfg.Store.MaxConns
	poolCfg.MinConns = cfg.Store.MinConns
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, eris.Wrap(err, "create connection pool")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "ping database")
	}

	return pool, nil
}

// initScheduler wires the full scheduler from config over an open pool.
func initScheduler(pool *pgxpool.Pool) *scheduler.Scheduler {
	researchClient := research.NewClient(
		cfg.Research.BaseURL,
		cfg.Research.Token,
		research.WithTimeout(time.Duration(cfg.Research.TimeoutSecs)*time.Second),
	)

	var creditsClient credits.Client
	if cfg.Credits.BaseURL != "" {
		creditsClient = credits.NewClient(
			cfg.Credits.BaseURL,
			cfg.Credits.Token,
			credits.WithTimeout(time.Duration(cfg.Credits.TimeoutSecs)*time.Second),
		)
	}

	return scheduler.New(
		scheduler.NewPostgresStore(pool),
		region.NewPostgresStore(pool),
		researchClient,
		creditsClient,
		cfg.Scheduler,
	)
}
