package provider

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"currencyconverter/internal/rates"
)

var _ RatesProvider = (*ExchangeProviderFacade)(nil)

// ExchangeProviderFacade is an abstraction that calls providers sequentially.
type ExchangeProviderFacade struct {
	providers []RatesProvider
	log       *zap.SugaredLogger
}

// NewExchangeProviderFacade creates a new ExchangeProviderFacade with the given list of providers.
func NewExchangeProviderFacade(providers ...RatesProvider) *ExchangeProviderFacade {
	return &ExchangeProviderFacade{
		providers: providers,
		log:       zap.NewNop().Sugar(),
	}
}

// WithLogger sets the logger that reports falling back to the next provider.
func (p *ExchangeProviderFacade) WithLogger(l *zap.SugaredLogger) *ExchangeProviderFacade {
	if l != nil {
		p.log = l
	}
	return p
}

// Name identifies the provider in logs.
func (p *ExchangeProviderFacade) Name() string { return "facade" }

// Fetch calls providers sequentially until one succeeds. It stops early once
// ctx is done.
func (p *ExchangeProviderFacade) Fetch(ctx context.Context) (*rates.Snapshot, error) {
	var errs []error
	for i, prov := range p.providers {
		snap, err := prov.Fetch(ctx)
		if err == nil {
			return snap, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", prov.Name(), err))
		if ctx.Err() != nil {
			break
		}
		if i < len(p.providers)-1 {
			p.log.Warnw("Rates provider failed, trying next", "provider", prov.Name(), "error", err)
		}
	}

	return nil, fmt.Errorf("all providers failed: %w", errors.Join(errs...))
}
