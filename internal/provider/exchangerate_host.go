package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"currencyconverter/internal/rates"
)

var _ RatesProvider = (*ExchangeRateHostProvider)(nil)

// ExchangeRateHostProvider fetches rates from the exchangerate.host API.
type ExchangeRateHostProvider struct {
	baseURL string
	apiKey  string
	source  string
	client  *http.Client
}

// NewExchangeRateHostProvider creates a new ExchangeRateHostProvider with the given configuration.
func NewExchangeRateHostProvider(baseURL, apiKey, source string, timeoutSec int) *ExchangeRateHostProvider {
	if baseURL == "" {
		baseURL = "https://api.exchangerate.host"
	}
	if source == "" {
		source = "USD"
	}
	return &ExchangeRateHostProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		source:  strings.ToUpper(source),
		client:  newHTTPClient(timeoutSec),
	}
}

// Name identifies the provider in logs.
func (p *ExchangeRateHostProvider) Name() string { return "exchangerate_host" }

// getLiveURL forms the API URL for fetching all quotes of the source currency.
func (p *ExchangeRateHostProvider) getLiveURL() string {
	q := url.Values{}
	q.Set("access_key", p.apiKey)
	q.Set("source", p.source)
	return p.baseURL + "/live?" + q.Encode()
}

// exchangerate.host live API response structure
type erHostResponse struct {
	Success   bool               `json:"success"`
	Timestamp int64              `json:"timestamp"`
	Source    string             `json:"source"`
	Quotes    map[string]float64 `json:"quotes"`
}

// Fetch retrieves all quotes for the source currency.
func (p *ExchangeRateHostProvider) Fetch(ctx context.Context) (*rates.Snapshot, error) {
	var result erHostResponse
	if err := getJSON(ctx, p.client, p.getLiveURL(), &result); err != nil {
		return nil, fmt.Errorf("exchangerate.host API %w", err)
	}
	if !result.Success {
		return nil, fmt.Errorf("exchangerate.host API returned success=false for source %s", p.source)
	}

	// The API returns quotes keyed as "SOURCEQUOTE", e.g. "USDEUR"
	all := make(map[string]float64, len(result.Quotes)+1)
	for key, rate := range result.Quotes {
		code := strings.TrimPrefix(key, result.Source)
		if code == "" || code == key {
			continue
		}
		all[code] = rate
	}
	all[result.Source] = 1

	snap, err := rates.NewSnapshot(result.Source, result.Timestamp, all)
	if err != nil {
		return nil, fmt.Errorf("exchangerate.host API returned an invalid snapshot: %w", err)
	}
	return snap, nil
}
