// Package rates owns exchange rate snapshots: where they come from, where they
// are cached and when a cached copy is trusted.
package rates

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"currencyconverter/internal/apperrors"
)

// Snapshot is an immutable, timestamped set of rates relative to a single base
// currency. Each rate is "units of that currency per one unit of base".
type Snapshot struct {
	base      string
	timestamp int64
	rates     map[string]float64
}

// NewSnapshot validates and copies the given rates into a new Snapshot.
func NewSnapshot(base string, timestamp int64, rates map[string]float64) (*Snapshot, error) {
	base = strings.TrimSpace(base)
	if base == "" {
		return nil, apperrors.New(apperrors.KindFormat, "snapshot base currency is empty")
	}
	if len(rates) == 0 {
		return nil, apperrors.New(apperrors.KindFormat, "snapshot has no rates")
	}

	copied := make(map[string]float64, len(rates))
	for code, rate := range rates {
		if code == "" {
			return nil, apperrors.New(apperrors.KindFormat, "snapshot contains an empty currency code")
		}
		if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 {
			return nil, apperrors.New(apperrors.KindFormat, "rate for %s must be a finite positive number, got %v", code, rate)
		}
		if code == base && rate != 1 {
			return nil, apperrors.New(apperrors.KindFormat, "base currency %s must map to 1, got %v", base, rate)
		}
		copied[code] = rate
	}

	return &Snapshot{base: base, timestamp: timestamp, rates: copied}, nil
}

// Base returns the currency all rates are relative to.
func (s *Snapshot) Base() string { return s.base }

// Timestamp returns the UNIX time the remote service produced the snapshot.
func (s *Snapshot) Timestamp() int64 { return s.timestamp }

// Len returns the number of rates.
func (s *Snapshot) Len() int { return len(s.rates) }

// Rate returns the rate for code. The base currency always has rate 1.
func (s *Snapshot) Rate(code string) (float64, bool) {
	if r, ok := s.rates[code]; ok {
		return r, true
	}
	if code == s.base {
		return 1, true
	}
	return 0, false
}

// Has reports whether code is a rates key or the base currency.
func (s *Snapshot) Has(code string) bool {
	_, ok := s.Rate(code)
	return ok
}

// Codes returns the rates keys in sorted order.
func (s *Snapshot) Codes() []string {
	codes := make([]string, 0, len(s.rates))
	for code := range s.rates {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Rates returns a copy of the rates map.
func (s *Snapshot) Rates() map[string]float64 {
	out := make(map[string]float64, len(s.rates))
	for k, v := range s.rates {
		out[k] = v
	}
	return out
}

// ProducedAt returns the snapshot timestamp as a UTC time.
func (s *Snapshot) ProducedAt() time.Time {
	return time.Unix(s.timestamp, 0).UTC()
}

// IsStale reports whether the snapshot is at least threshold old at now.
// Exactly threshold counts as stale.
func (s *Snapshot) IsStale(now time.Time, threshold time.Duration) bool {
	return now.Unix()-s.timestamp >= int64(threshold/time.Second)
}

type snapshotJSON struct {
	Base      string             `json:"base"`
	Timestamp int64              `json:"timestamp"`
	Rates     map[string]float64 `json:"rates"`
}

// MarshalJSON renders the three-field cache format.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(snapshotJSON{Base: s.base, Timestamp: s.timestamp, Rates: s.rates})
}

// DecodeSnapshot parses a {base, timestamp, rates} document. Any other fields,
// such as license or disclaimer text, are dropped.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var raw snapshotJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, apperrors.Wrap(apperrors.KindFormat, err, "decode snapshot")
	}
	snap, err := NewSnapshot(raw.Base, raw.Timestamp, raw.Rates)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}
