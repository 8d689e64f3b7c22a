// Package repository persists the conversion audit log and the state of
// asynchronous rate refresh requests in PostgreSQL.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"currencyconverter/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver registration
)

const connectRetryInterval = 500 * time.Millisecond

// NewPostgresDB opens the connection pool and pings the server until it
// answers or ctx is done.
func NewPostgresDB(ctx context.Context, cfg *config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeSec) * time.Second)

	if err := waitForDB(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("unable to connect to database %s:%d/%s: %w", cfg.Host, cfg.Port, cfg.Name, err)
	}
	return db, nil
}

func waitForDB(ctx context.Context, db *sql.DB) error {
	ticker := time.NewTicker(connectRetryInterval)
	defer ticker.Stop()
	for {
		err := db.PingContext(ctx)
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w (last error: %v)", ctx.Err(), err)
		case <-ticker.C:
		}
	}
}
