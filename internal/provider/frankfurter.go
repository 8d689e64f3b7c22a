package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"currencyconverter/internal/rates"
)

var _ RatesProvider = (*FrankfurterProvider)(nil)

// FrankfurterProvider fetches rates from the Frankfurter API.
type FrankfurterProvider struct {
	baseURL string
	base    string
	client  *http.Client
	now     func() time.Time
}

// NewFrankfurterProvider creates a new FrankfurterProvider quoting against base.
func NewFrankfurterProvider(baseURL, base string, timeoutSec int) *FrankfurterProvider {
	if baseURL == "" {
		baseURL = "https://api.frankfurter.dev/v1"
	}
	if base == "" {
		base = "USD"
	}
	return &FrankfurterProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		base:    strings.ToUpper(base),
		client:  newHTTPClient(timeoutSec),
		now:     time.Now,
	}
}

// Name identifies the provider in logs.
func (p *FrankfurterProvider) Name() string { return "frankfurter" }

type frankfurterResponse struct {
	Amount float64            `json:"amount"`
	Base   string             `json:"base"`
	Date   string             `json:"date"`
	Rates  map[string]float64 `json:"rates"`
}

// Fetch retrieves all rates relative to the configured base.
func (p *FrankfurterProvider) Fetch(ctx context.Context) (*rates.Snapshot, error) {
	reqURL := fmt.Sprintf("%s/latest?base=%s", p.baseURL, url.QueryEscape(p.base))

	var result frankfurterResponse
	if err := getJSON(ctx, p.client, reqURL, &result); err != nil {
		return nil, fmt.Errorf("frankfurter API %w", err)
	}

	// Frankfurter omits the base from rates.
	all := make(map[string]float64, len(result.Rates)+1)
	for code, rate := range result.Rates {
		all[code] = rate
	}
	all[result.Base] = 1

	// Stamped with the fetch time. The publication date is midnight UTC, which
	// would make a freshly fetched snapshot look stale to the store.
	ts := p.now().UTC().Unix()

	snap, err := rates.NewSnapshot(result.Base, ts, all)
	if err != nil {
		return nil, fmt.Errorf("frankfurter API returned an invalid snapshot: %w", err)
	}
	return snap, nil
}
