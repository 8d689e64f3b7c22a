package api

import (
	"context"

	"currencyconverter/internal/converter"
	"currencyconverter/internal/rates"
	"currencyconverter/internal/repository"
	"currencyconverter/internal/service"
)

// mockConversionService implements service.ConversionServiceInterface for testing.
type mockConversionService struct {
	convertFunc           func(ctx context.Context, req converter.Request) (*converter.Result, error)
	latestRatesFunc       func(ctx context.Context) (*rates.Acquisition, error)
	recentConversionsFunc func(ctx context.Context, limit int) ([]repository.Conversion, error)
	requestRefreshFunc    func(ctx context.Context) (string, error)
	getRefreshFunc        func(ctx context.Context, refreshID string) (*service.RefreshResult, error)
}

func (m *mockConversionService) Convert(ctx context.Context, req converter.Request) (*converter.Result, error) {
	return m.convertFunc(ctx, req)
}

func (m *mockConversionService) LatestRates(ctx context.Context) (*rates.Acquisition, error) {
	return m.latestRatesFunc(ctx)
}

func (m *mockConversionService) RecentConversions(ctx context.Context, limit int) ([]repository.Conversion, error) {
	return m.recentConversionsFunc(ctx, limit)
}

func (m *mockConversionService) RequestRefresh(ctx context.Context) (string, error) {
	return m.requestRefreshFunc(ctx)
}

func (m *mockConversionService) GetRefresh(ctx context.Context, refreshID string) (*service.RefreshResult, error) {
	return m.getRefreshFunc(ctx, refreshID)
}

func (m *mockConversionService) ProcessRefresh(_ context.Context, _ string) error {
	return nil // Not used in handler tests
}
