// Package service ties the converter to the audit log and the asynchronous
// refresh queue.
package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"currencyconverter/internal/converter"
	"currencyconverter/internal/rates"
	"currencyconverter/internal/repository"
)

// Limits for RecentConversions.
const (
	DefaultRecentLimit = 20
	MaxRecentLimit     = 100
)

// ConversionServiceInterface defines the operations exposed over HTTP and to the worker.
type ConversionServiceInterface interface {
	Convert(ctx context.Context, req converter.Request) (*converter.Result, error)
	LatestRates(ctx context.Context) (*rates.Acquisition, error)
	RecentConversions(ctx context.Context, limit int) ([]repository.Conversion, error)
	RequestRefresh(ctx context.Context) (refreshID string, err error)
	GetRefresh(ctx context.Context, refreshID string) (*RefreshResult, error)
	ProcessRefresh(ctx context.Context, refreshID string) error
}

// Converter performs a single conversion.
type Converter interface {
	Convert(ctx context.Context, req converter.Request) (*converter.Result, error)
}

// RatesStore is the part of rates.Store the service needs.
type RatesStore interface {
	Acquire(ctx context.Context) (*rates.Acquisition, error)
	Refresh(ctx context.Context) (*rates.Snapshot, error)
}

// TaskEnqueuer puts refresh tasks on the queue.
type TaskEnqueuer interface {
	EnqueueRefreshTask(ctx context.Context, payload RefreshRatesPayload) error
}

// ConversionService defines business logic for conversions and rate refreshes.
// The repositories and the enqueuer are optional.
type ConversionService struct {
	converter   Converter
	store       RatesStore
	conversions repository.ConversionRepository
	refreshes   repository.RefreshRepository
	enqueuer    TaskEnqueuer
	log         *zap.SugaredLogger
}

// NewConversionService creates a new ConversionService.
func NewConversionService(
	conv Converter,
	store RatesStore,
	conversions repository.ConversionRepository,
	refreshes repository.RefreshRepository,
	enqueuer TaskEnqueuer,
	logger *zap.SugaredLogger,
) *ConversionService {
	return &ConversionService{
		converter:   conv,
		store:       store,
		conversions: conversions,
		refreshes:   refreshes,
		enqueuer:    enqueuer,
		log:         logger,
	}
}

// Convert runs the conversion and records it in the audit log. Audit
// failures are logged and never fail the conversion.
func (s *ConversionService) Convert(ctx context.Context, req converter.Request) (*converter.Result, error) {
	res, err := s.converter.Convert(ctx, req)
	if err != nil {
		return nil, err
	}
	if res.Degraded() {
		s.log.Warnw("Served conversion from stale rates", "rates_time", res.RatesTime, "input", res.Input.Currency)
	}
	s.recordConversion(ctx, req, res)
	return res, nil
}

func (s *ConversionService) recordConversion(ctx context.Context, req converter.Request, res *converter.Result) {
	if s.conversions == nil {
		return
	}

	var outputCurrency *string
	if req.Output != nil && len(res.Output) == 1 {
		for code := range res.Output {
			outputCurrency = &code
		}
	}
	c := &repository.Conversion{
		ID:             uuid.New().String(),
		Amount:         decimal.NewFromFloat(res.Input.Amount),
		InputCurrency:  res.Input.Currency,
		OutputCurrency: outputCurrency,
		Output:         res.Output,
		RatesTimestamp: res.RatesTime.Unix(),
		RatesBase:      res.RatesBase,
		RatesSource:    res.Source.String(),
	}
	if err := s.conversions.Record(ctx, c); err != nil {
		s.log.Warnw("Failed to record conversion", "input", c.InputCurrency, "error", err)
	}
}

// LatestRates returns the snapshot a conversion would use right now.
func (s *ConversionService) LatestRates(ctx context.Context) (*rates.Acquisition, error) {
	return s.store.Acquire(ctx)
}

// RecentConversions returns the newest audited conversions. limit is clamped
// to [1, MaxRecentLimit]; zero or less selects DefaultRecentLimit.
func (s *ConversionService) RecentConversions(ctx context.Context, limit int) ([]repository.Conversion, error) {
	if s.conversions == nil {
		return nil, ErrAuditDisabled
	}
	switch {
	case limit <= 0:
		limit = DefaultRecentLimit
	case limit > MaxRecentLimit:
		limit = MaxRecentLimit
	}

	list, err := s.conversions.ListRecent(ctx, limit)
	if err != nil {
		s.log.Errorw("DB error listing conversions", "error", err)
		return nil, ErrInternal
	}
	return list, nil
}
