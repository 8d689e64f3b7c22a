package provider

import (
	"context"

	"github.com/stretchr/testify/mock"

	"currencyconverter/internal/rates"
)

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) Fetch(ctx context.Context) (*rates.Snapshot, error) {
	args := m.Called(ctx)
	snap, _ := args.Get(0).(*rates.Snapshot)
	return snap, args.Error(1)
}
