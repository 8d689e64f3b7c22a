// Package converter converts amounts between currencies through the base
// currency of a rate snapshot.
package converter

import (
	"context"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"currencyconverter/internal/apperrors"
	"currencyconverter/internal/rates"
)

// outputPlaces is the number of decimal places of every output amount.
const outputPlaces = 2

// SnapshotSource provides the rate snapshot for a conversion.
type SnapshotSource interface {
	Acquire(ctx context.Context) (*rates.Acquisition, error)
}

// Resolver maps a currency identifier to a code present in the snapshot.
type Resolver interface {
	Resolve(identifier string, snap *rates.Snapshot) (string, error)
}

// Request is a single conversion. A nil Output converts to every currency in
// the snapshot.
type Request struct {
	Amount float64
	Input  string
	Output *string
}

// Converter performs cross-rate conversions.
type Converter struct {
	source   SnapshotSource
	resolver Resolver
	log      *zap.SugaredLogger
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets the logger used for degraded conversions.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Converter) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates a Converter.
func New(source SnapshotSource, resolver Resolver, opts ...Option) *Converter {
	c := &Converter{
		source:   source,
		resolver: resolver,
		log:      zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert validates req, acquires a snapshot and computes the output amounts.
// Output amounts are rounded to two places, half away from zero.
func (c *Converter) Convert(ctx context.Context, req Request) (*Result, error) {
	if math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) {
		return nil, apperrors.New(apperrors.KindInvalidAmount, "amount must be a finite number, got %v", req.Amount)
	}
	input := strings.TrimSpace(req.Input)
	var output *string
	if req.Output != nil {
		o := strings.TrimSpace(*req.Output)
		output = &o
	}

	acq, err := c.source.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	snap := acq.Snapshot
	if acq.Degraded() {
		c.log.Warnw("Converting with stale rates", "snapshot_time", snap.ProducedAt(), "error", acq.FetchErr)
	}

	inCode, err := c.resolver.Resolve(input, snap)
	if err != nil {
		return nil, err
	}
	targets := snap.Codes()
	if output != nil {
		outCode, err := c.resolver.Resolve(*output, snap)
		if err != nil {
			return nil, err
		}
		targets = []string{outCode}
	}

	inRate, _ := snap.Rate(inCode)
	baseAmount := decimal.NewFromFloat(req.Amount).Div(decimal.NewFromFloat(inRate))

	res := &Result{
		Input:     Input{Amount: req.Amount, Currency: inCode},
		Output:    make(map[string]float64, len(targets)),
		Source:    acq.Source,
		RatesBase: snap.Base(),
		RatesTime: snap.ProducedAt(),
	}
	for _, code := range targets {
		rate, _ := snap.Rate(code)
		v := baseAmount.Mul(decimal.NewFromFloat(rate)).Round(outputPlaces).InexactFloat64()
		if math.IsInf(v, 0) {
			return nil, apperrors.New(apperrors.KindInvalidAmount, "amount %v overflows in %s", req.Amount, code)
		}
		res.Output[code] = v
	}
	return res, nil
}

// ParseAmount parses a textual amount such as "10" or "500.5".
func ParseAmount(raw string) (float64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return 0, apperrors.Wrap(apperrors.KindInvalidAmount, err, "amount %q is not a number", raw)
	}
	f := d.InexactFloat64()
	if math.IsInf(f, 0) {
		return 0, apperrors.New(apperrors.KindInvalidAmount, "amount %q is out of range", raw)
	}
	return f, nil
}
