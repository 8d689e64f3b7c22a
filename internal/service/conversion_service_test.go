package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"currencyconverter/internal/apperrors"
	"currencyconverter/internal/converter"
	"currencyconverter/internal/rates"
	"currencyconverter/internal/repository"
)

func strPtr(s string) *string { return &s }

func eurToCzk() *converter.Result {
	return &converter.Result{
		Input:     converter.Input{Amount: 10, Currency: "EUR"},
		Output:    map[string]float64{"CZK": 269.56},
		Source:    rates.SourceCache,
		RatesBase: "USD",
		RatesTime: time.Unix(1700000000, 0).UTC(),
	}
}

func TestConvert_RecordsAudit(t *testing.T) {
	sugar := zap.NewNop().Sugar()

	var recorded *repository.Conversion
	repo := &mockConversionRepo{
		recordFunc: func(ctx context.Context, c *repository.Conversion) error {
			recorded = c
			return nil
		},
	}
	conv := &mockConverter{
		convertFunc: func(ctx context.Context, req converter.Request) (*converter.Result, error) {
			return eurToCzk(), nil
		},
	}

	svc := NewConversionService(conv, nil, repo, nil, nil, sugar)
	res, err := svc.Convert(context.Background(), converter.Request{Amount: 10, Input: "€", Output: strPtr("CZK")})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if res.Output["CZK"] != 269.56 {
		t.Errorf("Expected 269.56, got %v", res.Output["CZK"])
	}

	if recorded == nil {
		t.Fatal("Expected conversion to be recorded")
	}
	if recorded.InputCurrency != "EUR" {
		t.Errorf("Expected resolved input EUR, got %s", recorded.InputCurrency)
	}
	if recorded.OutputCurrency == nil || *recorded.OutputCurrency != "CZK" {
		t.Errorf("Expected output currency CZK, got %v", recorded.OutputCurrency)
	}
	if recorded.Amount.String() != "10" {
		t.Errorf("Expected amount 10, got %s", recorded.Amount)
	}
	if recorded.RatesSource != "cache" || recorded.RatesBase != "USD" || recorded.RatesTimestamp != 1700000000 {
		t.Errorf("Unexpected rates metadata: %+v", recorded)
	}
	if recorded.ID == "" {
		t.Error("Expected generated ID")
	}
}

func TestConvert_AllCurrenciesHasNoOutputCurrency(t *testing.T) {
	sugar := zap.NewNop().Sugar()

	var recorded *repository.Conversion
	repo := &mockConversionRepo{
		recordFunc: func(ctx context.Context, c *repository.Conversion) error {
			recorded = c
			return nil
		},
	}
	conv := &mockConverter{
		convertFunc: func(ctx context.Context, req converter.Request) (*converter.Result, error) {
			// A one-entry snapshot still means "all currencies".
			return eurToCzk(), nil
		},
	}

	svc := NewConversionService(conv, nil, repo, nil, nil, sugar)
	if _, err := svc.Convert(context.Background(), converter.Request{Amount: 10, Input: "EUR"}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if recorded == nil || recorded.OutputCurrency != nil {
		t.Errorf("Expected nil output currency, got %+v", recorded)
	}
}

func TestConvert_AuditFailureIsIgnored(t *testing.T) {
	sugar := zap.NewNop().Sugar()

	repo := &mockConversionRepo{
		recordFunc: func(ctx context.Context, c *repository.Conversion) error {
			return errors.New("db down")
		},
	}
	conv := &mockConverter{
		convertFunc: func(ctx context.Context, req converter.Request) (*converter.Result, error) {
			return eurToCzk(), nil
		},
	}

	svc := NewConversionService(conv, nil, repo, nil, nil, sugar)
	if _, err := svc.Convert(context.Background(), converter.Request{Amount: 10, Input: "EUR", Output: strPtr("CZK")}); err != nil {
		t.Errorf("Expected audit failure to be ignored, got %v", err)
	}
}

func TestConvert_ErrorSkipsAudit(t *testing.T) {
	sugar := zap.NewNop().Sugar()

	repo := &mockConversionRepo{
		recordFunc: func(ctx context.Context, c *repository.Conversion) error {
			t.Error("Record must not be called for a failed conversion")
			return nil
		},
	}
	conv := &mockConverter{
		convertFunc: func(ctx context.Context, req converter.Request) (*converter.Result, error) {
			return nil, apperrors.New(apperrors.KindUnknownCurrency, "unknown currency %q", req.Input)
		},
	}

	svc := NewConversionService(conv, nil, repo, nil, nil, sugar)
	_, err := svc.Convert(context.Background(), converter.Request{Amount: 10, Input: "XEUR"})
	if !errors.Is(err, apperrors.ErrUnknownCurrency) {
		t.Errorf("Expected ErrUnknownCurrency, got %v", err)
	}
}

func TestLatestRates(t *testing.T) {
	sugar := zap.NewNop().Sugar()
	snap, err := rates.NewSnapshot("USD", 1700000000, map[string]float64{"USD": 1, "EUR": 0.9})
	if err != nil {
		t.Fatal(err)
	}

	store := &mockStore{
		acquireFunc: func(ctx context.Context) (*rates.Acquisition, error) {
			return &rates.Acquisition{Snapshot: snap, Source: rates.SourceStaleCache}, nil
		},
	}

	svc := NewConversionService(nil, store, nil, nil, nil, sugar)
	acq, err := svc.LatestRates(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !acq.Degraded() || acq.Snapshot != snap {
		t.Errorf("Unexpected acquisition: %+v", acq)
	}
}

func TestRecentConversions(t *testing.T) {
	sugar := zap.NewNop().Sugar()

	t.Run("disabled without repository", func(t *testing.T) {
		svc := NewConversionService(nil, nil, nil, nil, nil, sugar)
		if _, err := svc.RecentConversions(context.Background(), 10); !errors.Is(err, ErrAuditDisabled) {
			t.Errorf("Expected ErrAuditDisabled, got %v", err)
		}
	})

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"default", 0, DefaultRecentLimit},
		{"negative", -5, DefaultRecentLimit},
		{"in range", 7, 7},
		{"clamped", 1000, MaxRecentLimit},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got int
			repo := &mockConversionRepo{
				listRecentFunc: func(ctx context.Context, limit int) ([]repository.Conversion, error) {
					got = limit
					return []repository.Conversion{{ID: "a"}}, nil
				},
			}
			svc := NewConversionService(nil, nil, repo, nil, nil, sugar)
			list, err := svc.RecentConversions(context.Background(), tc.limit)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if got != tc.want {
				t.Errorf("Expected limit %d, got %d", tc.want, got)
			}
			if len(list) != 1 {
				t.Errorf("Expected 1 conversion, got %d", len(list))
			}
		})
	}

	t.Run("db error", func(t *testing.T) {
		repo := &mockConversionRepo{
			listRecentFunc: func(ctx context.Context, limit int) ([]repository.Conversion, error) {
				return nil, errors.New("db down")
			},
		}
		svc := NewConversionService(nil, nil, repo, nil, nil, sugar)
		if _, err := svc.RecentConversions(context.Background(), 5); !errors.Is(err, ErrInternal) {
			t.Errorf("Expected ErrInternal, got %v", err)
		}
	})
}
