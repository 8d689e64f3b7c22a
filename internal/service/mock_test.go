package service

import (
	"context"

	"currencyconverter/internal/converter"
	"currencyconverter/internal/rates"
	"currencyconverter/internal/repository"
)

type mockConverter struct {
	convertFunc func(ctx context.Context, req converter.Request) (*converter.Result, error)
}

func (m *mockConverter) Convert(ctx context.Context, req converter.Request) (*converter.Result, error) {
	return m.convertFunc(ctx, req)
}

type mockStore struct {
	acquireFunc func(ctx context.Context) (*rates.Acquisition, error)
	refreshFunc func(ctx context.Context) (*rates.Snapshot, error)
}

func (m *mockStore) Acquire(ctx context.Context) (*rates.Acquisition, error) {
	return m.acquireFunc(ctx)
}

func (m *mockStore) Refresh(ctx context.Context) (*rates.Snapshot, error) {
	return m.refreshFunc(ctx)
}

type mockConversionRepo struct {
	recordFunc     func(ctx context.Context, c *repository.Conversion) error
	listRecentFunc func(ctx context.Context, limit int) ([]repository.Conversion, error)
}

func (m *mockConversionRepo) Record(ctx context.Context, c *repository.Conversion) error {
	return m.recordFunc(ctx, c)
}

func (m *mockConversionRepo) ListRecent(ctx context.Context, limit int) ([]repository.Conversion, error) {
	return m.listRecentFunc(ctx, limit)
}

type mockRefreshRepo struct {
	createRefreshFunc func(ctx context.Context, id string) (string, error)
	markRunningFunc   func(ctx context.Context, id string) error
	markSuccessFunc   func(ctx context.Context, id, base string, timestamp int64) error
	markFailedFunc    func(ctx context.Context, id, errorMsg string) error
	getByIDFunc       func(ctx context.Context, id string) (*repository.Refresh, error)
}

func (m *mockRefreshRepo) CreateRefresh(ctx context.Context, id string) (string, error) {
	return m.createRefreshFunc(ctx, id)
}

func (m *mockRefreshRepo) MarkRunning(ctx context.Context, id string) error {
	return m.markRunningFunc(ctx, id)
}

func (m *mockRefreshRepo) MarkSuccess(ctx context.Context, id, base string, timestamp int64) error {
	return m.markSuccessFunc(ctx, id, base, timestamp)
}

func (m *mockRefreshRepo) MarkFailed(ctx context.Context, id, errorMsg string) error {
	return m.markFailedFunc(ctx, id, errorMsg)
}

func (m *mockRefreshRepo) GetByID(ctx context.Context, id string) (*repository.Refresh, error) {
	return m.getByIDFunc(ctx, id)
}

type mockEnqueuer struct {
	payloads []RefreshRatesPayload
	err      error
}

func (m *mockEnqueuer) EnqueueRefreshTask(_ context.Context, payload RefreshRatesPayload) error {
	m.payloads = append(m.payloads, payload)
	return m.err
}
