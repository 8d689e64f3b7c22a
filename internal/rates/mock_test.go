package rates

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context) (*Snapshot, error) {
	args := m.Called(ctx)
	snap, _ := args.Get(0).(*Snapshot)
	return snap, args.Error(1)
}

func loadFixture(t *testing.T) *Snapshot {
	t.Helper()
	data, err := os.ReadFile("../../testdata/rates.json")
	require.NoError(t, err)
	snap, err := DecodeSnapshot(data)
	require.NoError(t, err)
	return snap
}

func snapshotAt(t *testing.T, ts int64, rates map[string]float64) *Snapshot {
	t.Helper()
	snap, err := NewSnapshot("USD", ts, rates)
	require.NoError(t, err)
	return snap
}
