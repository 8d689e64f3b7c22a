package rates

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"currencyconverter/internal/apperrors"
)

func TestNewSnapshot_Validation(t *testing.T) {
	tests := []struct {
		name  string
		base  string
		rates map[string]float64
	}{
		{"empty base", "", map[string]float64{"EUR": 0.9}},
		{"no rates", "USD", nil},
		{"zero rate", "USD", map[string]float64{"EUR": 0}},
		{"negative rate", "USD", map[string]float64{"EUR": -1}},
		{"NaN rate", "USD", map[string]float64{"EUR": math.NaN()}},
		{"infinite rate", "USD", map[string]float64{"EUR": math.Inf(1)}},
		{"base not one", "USD", map[string]float64{"USD": 1.1, "EUR": 0.9}},
		{"empty code", "USD", map[string]float64{"": 2}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewSnapshot(tc.base, 1, tc.rates)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrFormat))
		})
	}
}

func TestSnapshot_IsImmutable(t *testing.T) {
	src := map[string]float64{"USD": 1, "EUR": 0.9}
	snap, err := NewSnapshot("USD", 100, src)
	require.NoError(t, err)

	src["EUR"] = 5
	got := snap.Rates()
	got["EUR"] = 7

	rate, ok := snap.Rate("EUR")
	assert.True(t, ok)
	assert.Equal(t, 0.9, rate)
}

func TestSnapshot_BaseRateWhenAbsent(t *testing.T) {
	snap, err := NewSnapshot("USD", 100, map[string]float64{"EUR": 0.9})
	require.NoError(t, err)

	rate, ok := snap.Rate("USD")
	assert.True(t, ok)
	assert.Equal(t, 1.0, rate)
	assert.True(t, snap.Has("USD"))
	assert.False(t, snap.Has("CZK"))
	assert.Equal(t, []string{"EUR"}, snap.Codes())
}

func TestSnapshot_IsStale(t *testing.T) {
	snap := snapshotAt(t, 1_000_000, map[string]float64{"EUR": 0.9})

	tests := []struct {
		name  string
		now   int64
		stale bool
	}{
		{"fresh", 1_000_000 + 10, false},
		{"one second before threshold", 1_000_000 + 3599, false},
		{"exactly threshold", 1_000_000 + 3600, true},
		{"past threshold", 1_000_000 + 7200, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.stale, snap.IsStale(time.Unix(tc.now, 0), time.Hour))
		})
	}
}

func TestDecodeSnapshot_StripsMetadata(t *testing.T) {
	payload := []byte(`{"disclaimer":"d","license":"l","timestamp":1700000000,"base":"USD","rates":{"USD":1,"EUR":0.9}}`)

	snap, err := DecodeSnapshot(payload)
	require.NoError(t, err)

	out, err := json.Marshal(snap)
	require.NoError(t, err)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out, &fields))
	assert.Len(t, fields, 3)
	assert.Contains(t, fields, "base")
	assert.Contains(t, fields, "timestamp")
	assert.Contains(t, fields, "rates")
	assert.Equal(t, int64(1700000000), snap.Timestamp())
}

func TestDecodeSnapshot_Malformed(t *testing.T) {
	_, err := DecodeSnapshot([]byte(`{"base":`))
	assert.True(t, errors.Is(err, apperrors.ErrFormat))
}

func TestFixture(t *testing.T) {
	snap := loadFixture(t)
	assert.Equal(t, "USD", snap.Base())
	assert.Greater(t, snap.Len(), 100)
}
