package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"currencyconverter/internal/rates"
)

var _ RatesProvider = (*OpenExchangeRatesProvider)(nil)

// DefaultOpenExchangeRatesURL is the latest-rates endpoint.
const DefaultOpenExchangeRatesURL = "https://openexchangerates.org/api/latest.json"

// OpenExchangeRatesProvider fetches the latest snapshot from openexchangerates.org.
type OpenExchangeRatesProvider struct {
	endpoint string
	appID    string
	client   *http.Client
}

// NewOpenExchangeRatesProvider creates a new OpenExchangeRatesProvider. appID is
// the account credential sent as the app_id query parameter.
func NewOpenExchangeRatesProvider(endpoint, appID string, timeoutSec int) *OpenExchangeRatesProvider {
	if endpoint == "" {
		endpoint = DefaultOpenExchangeRatesURL
	}
	return &OpenExchangeRatesProvider{
		endpoint: endpoint,
		appID:    appID,
		client:   newHTTPClient(timeoutSec),
	}
}

// Name identifies the provider in logs.
func (p *OpenExchangeRatesProvider) Name() string { return "openexchangerates" }

// The response also carries disclaimer and license text; leaving them out of
// the struct drops them on decode.
type oxrResponse struct {
	Timestamp int64              `json:"timestamp"`
	Base      string             `json:"base"`
	Rates     map[string]float64 `json:"rates"`
}

func (p *OpenExchangeRatesProvider) latestURL() (string, error) {
	u, err := url.Parse(p.endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("app_id", p.appID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Fetch retrieves the latest snapshot.
func (p *OpenExchangeRatesProvider) Fetch(ctx context.Context) (*rates.Snapshot, error) {
	reqURL, err := p.latestURL()
	if err != nil {
		return nil, fmt.Errorf("openexchangerates: %w", err)
	}

	var result oxrResponse
	if err := getJSON(ctx, p.client, reqURL, &result); err != nil {
		return nil, fmt.Errorf("openexchangerates API %w", err)
	}

	snap, err := rates.NewSnapshot(result.Base, result.Timestamp, result.Rates)
	if err != nil {
		return nil, fmt.Errorf("openexchangerates API returned an invalid snapshot: %w", err)
	}
	return snap, nil
}
