//go:build integration

package integration

import (
	"context"
	"database/sql"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"currencyconverter/internal/rates"
	"currencyconverter/internal/testkit"
)

var (
	testDB  *sql.DB
	testRDB *redis.Client
)

// resetTestData empties the audit tables and flushes the current Redis database.
func resetTestData(t *testing.T) {
	t.Helper()

	if err := testkit.Global().Reset(context.Background()); err != nil {
		t.Fatalf("reset test data: %v", err)
	}
}

// testContext returns a context with a 30-second deadline tied to the test's cleanup.
func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// fixedFetcher returns the same snapshot on every call and counts the calls.
type fixedFetcher struct {
	snap  *rates.Snapshot
	err   error
	calls atomic.Int32
}

func (f *fixedFetcher) Fetch(_ context.Context) (*rates.Snapshot, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.snap, nil
}

func mustSnapshot(t *testing.T, ts time.Time, rts map[string]float64) *rates.Snapshot {
	t.Helper()
	snap, err := rates.NewSnapshot("USD", ts.Unix(), rts)
	if err != nil {
		t.Fatalf("NewSnapshot: %v", err)
	}
	return snap
}
