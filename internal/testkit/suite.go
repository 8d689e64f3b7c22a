package testkit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

// Suite owns the Postgres instance holding the audit tables, the Redis
// instance holding the rates snapshot, and one open connection to each.
type Suite struct {
	mu    sync.Mutex
	cfg   Config
	pg    *PostgresModule
	redis *RedisModule
	db    *sql.DB
	rdb   *redis.Client
}

var (
	globalSuite *Suite
	globalOnce  sync.Once
)

// Global returns the singleton Suite instance.
func Global() *Suite {
	globalOnce.Do(func() {
		globalSuite = &Suite{cfg: LoadConfig()}
	})
	return globalSuite
}

// AfterSetup runs once both connections are open, typically to apply
// migrations.
type AfterSetup func(db *sql.DB, rdb *redis.Client) error

// Setup starts both instances concurrently (or uses the external overrides),
// connects to them and calls afterSetup.
func (s *Suite) Setup(ctx context.Context, afterSetup AfterSetup) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return errors.New("suite already set up; call Shutdown first")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		pg, err := StartPostgres(gctx, &s.cfg)
		if err != nil {
			return fmt.Errorf("setup postgres: %w", err)
		}
		s.pg = pg
		return nil
	})
	g.Go(func() error {
		rm, err := StartRedis(gctx, &s.cfg)
		if err != nil {
			return fmt.Errorf("setup redis: %w", err)
		}
		s.redis = rm
		return nil
	})
	if err := g.Wait(); err != nil {
		s.teardown(ctx)
		return err
	}

	db, err := s.pg.Open(ctx)
	if err != nil {
		s.teardown(ctx)
		return err
	}
	s.db = db

	rdb, err := s.redis.Client(ctx)
	if err != nil {
		s.teardown(ctx)
		return err
	}
	s.rdb = rdb

	if afterSetup != nil {
		if err := afterSetup(db, rdb); err != nil {
			s.teardown(ctx)
			return fmt.Errorf("after setup: %w", err)
		}
	}
	return nil
}

// Shutdown closes the connections and terminates the containers unless
// KEEP_CONTAINERS is set.
func (s *Suite) Shutdown(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardown(ctx)
}

func (s *Suite) teardown(ctx context.Context) {
	if s.rdb != nil {
		_ = s.rdb.Close()
		s.rdb = nil
	}
	if s.db != nil {
		_ = s.db.Close()
		s.db = nil
	}

	if s.cfg.KeepContainers {
		fmt.Println("KEEP_CONTAINERS=true, leaving containers running")
		if s.pg != nil {
			fmt.Println("  Postgres DSN:", s.pg.DSN())
		}
		if s.redis != nil {
			fmt.Println("  Redis Addr:", s.redis.Addr())
		}
	} else {
		if s.redis != nil {
			if err := s.redis.Terminate(ctx); err != nil {
				fmt.Println("warning: failed to terminate redis container:", err)
			}
		}
		if s.pg != nil {
			if err := s.pg.Terminate(ctx); err != nil {
				fmt.Println("warning: failed to terminate postgres container:", err)
			}
		}
	}
	s.pg, s.redis = nil, nil
}

// DB returns the open Postgres connection, or nil before Setup.
func (s *Suite) DB() *sql.DB {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db
}

// Redis returns the open Redis client, or nil before Setup.
func (s *Suite) Redis() *redis.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rdb
}

// Reset empties the audit tables and flushes the Redis database, so each
// test starts without a cached snapshot.
func (s *Suite) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return errors.New("suite is not set up")
	}
	if err := ResetPostgres(ctx, s.db); err != nil {
		return err
	}
	return s.rdb.FlushDB(ctx).Err()
}

// Run sets up the suite, executes the tests, then shuts down. Intended for
// TestMain.
func (s *Suite) Run(m *testing.M, afterSetup AfterSetup) {
	ctx := context.Background()

	if err := s.Setup(ctx, afterSetup); err != nil {
		fmt.Fprintf(os.Stderr, "integration test setup failed: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()

	s.Shutdown(ctx)
	os.Exit(code)
}

// Run delegates to Global().Run.
func Run(m *testing.M, afterSetup AfterSetup) {
	Global().Run(m, afterSetup)
}
