package converter

import (
	"encoding/json"
	"time"

	"currencyconverter/internal/rates"
)

// Input echoes the request amount and the resolved input code.
type Input struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// Result is the conversion output contract: exactly "input" and "output" when
// serialized.
type Result struct {
	Input  Input              `json:"input"`
	Output map[string]float64 `json:"output"`

	// Source, RatesBase and RatesTime describe the snapshot used. They are
	// not part of the serialized contract.
	Source    rates.Source `json:"-"`
	RatesBase string       `json:"-"`
	RatesTime time.Time    `json:"-"`
}

// Degraded reports whether the conversion used a stale cache because a
// refresh failed.
func (r *Result) Degraded() bool { return r.Source == rates.SourceStaleCache }

// JSON renders the result as UTF-8 JSON.
func (r *Result) JSON() ([]byte, error) {
	return json.Marshal(r)
}
