package api

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"currencyconverter/internal/apperrors"
	"currencyconverter/internal/converter"
	"currencyconverter/internal/rates"
	"currencyconverter/internal/repository"
	"currencyconverter/internal/service"
)

func TestHandleConvert(t *testing.T) {
	t.Run("single output returns 200", func(t *testing.T) {
		var got converter.Request
		svc := &mockConversionService{
			convertFunc: func(ctx context.Context, req converter.Request) (*converter.Result, error) {
				got = req
				return &converter.Result{
					Input:  converter.Input{Amount: 10, Currency: "EUR"},
					Output: map[string]float64{"CZK": 269.56},
					Source: rates.SourceCache,
				}, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/convert?amount=10&input_currency=%E2%82%AC&output_currency=CZK", nil)
		w := httptest.NewRecorder()

		handler := HandleConvert(svc)
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		if got.Input != "€" || got.Output == nil || *got.Output != "CZK" || got.Amount != 10 {
			t.Errorf("Unexpected request passed to service: %+v", got)
		}
		if src := w.Header().Get(headerRatesSource); src != "cache" {
			t.Errorf("Expected %s header 'cache', got '%s'", headerRatesSource, src)
		}

		var body map[string]json.RawMessage
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if len(body) != 2 {
			t.Errorf("Expected exactly input and output fields, got %v", body)
		}
		if string(body["output"]) != `{"CZK":269.56}` {
			t.Errorf("Unexpected output: %s", body["output"])
		}
	})

	t.Run("missing output converts to all", func(t *testing.T) {
		var got converter.Request
		svc := &mockConversionService{
			convertFunc: func(ctx context.Context, req converter.Request) (*converter.Result, error) {
				got = req
				return &converter.Result{Output: map[string]float64{}, Source: rates.SourceRemote}, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/convert?amount=10&input_currency=EUR&output_currency=", nil)
		w := httptest.NewRecorder()
		HandleConvert(svc).ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		if got.Output != nil {
			t.Errorf("Expected nil output currency, got %q", *got.Output)
		}
	})

	errorCases := []struct {
		name       string
		url        string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"non-numeric amount", "/convert?amount=abc&input_currency=EUR", nil, http.StatusBadRequest, 6},
		{"missing amount", "/convert?input_currency=EUR", nil, http.StatusBadRequest, 6},
		{"missing input currency", "/convert?amount=10", nil, http.StatusBadRequest, 5},
		{"unknown currency", "/convert?amount=10&input_currency=XEUR",
			apperrors.New(apperrors.KindUnknownCurrency, "unknown currency \"XEUR\""), http.StatusBadRequest, 5},
		{"overflowing amount", "/convert?amount=1e308&input_currency=USD&output_currency=CZK",
			apperrors.New(apperrors.KindInvalidAmount, "amount 1e+308 overflows in CZK"), http.StatusBadRequest, 6},
		{"fetch error", "/convert?amount=10&input_currency=EUR",
			apperrors.New(apperrors.KindFetch, "remote down"), http.StatusBadGateway, 3},
		{"storage error", "/convert?amount=10&input_currency=EUR",
			apperrors.New(apperrors.KindStorage, "no cache"), http.StatusServiceUnavailable, 2},
		{"unexpected error", "/convert?amount=10&input_currency=EUR",
			errors.New("boom"), http.StatusInternalServerError, 0},
	}

	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockConversionService{
				convertFunc: func(ctx context.Context, req converter.Request) (*converter.Result, error) {
					if tc.err == nil {
						t.Error("Service must not be called")
					}
					return nil, tc.err
				},
			}

			req := httptest.NewRequest(http.MethodGet, tc.url, nil)
			w := httptest.NewRecorder()
			HandleConvert(svc).ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Errorf("Expected status %d, got %d", tc.wantStatus, w.Code)
			}
			var resp ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if resp.Code != tc.wantCode {
				t.Errorf("Expected code %d, got %d", tc.wantCode, resp.Code)
			}
			if resp.Error == "" {
				t.Error("Expected error message")
			}
		})
	}
}

func TestWriteJSON_UnencodableValue(t *testing.T) {
	w := httptest.NewRecorder()
	writeJSON(w, http.StatusOK, map[string]float64{"CZK": math.Inf(1)})

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", w.Code)
	}
	var resp ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Error == "" {
		t.Error("Expected error message")
	}
}

func TestHandleLatestRates(t *testing.T) {
	t.Run("degraded snapshot", func(t *testing.T) {
		snap, err := rates.NewSnapshot("USD", 1700000000, map[string]float64{"USD": 1, "EUR": 0.9})
		if err != nil {
			t.Fatal(err)
		}
		svc := &mockConversionService{
			latestRatesFunc: func(ctx context.Context) (*rates.Acquisition, error) {
				return &rates.Acquisition{Snapshot: snap, Source: rates.SourceStaleCache}, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/rates", nil)
		w := httptest.NewRecorder()
		HandleLatestRates(svc).ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		var resp RatesResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp.Base != "USD" || resp.Timestamp != 1700000000 || resp.Source != "stale-cache" || !resp.Degraded {
			t.Errorf("Unexpected response: %+v", resp)
		}
		if resp.Rates["EUR"] != 0.9 {
			t.Errorf("Expected EUR 0.9, got %v", resp.Rates["EUR"])
		}
	})

	t.Run("storage error returns 503", func(t *testing.T) {
		svc := &mockConversionService{
			latestRatesFunc: func(ctx context.Context) (*rates.Acquisition, error) {
				return nil, apperrors.New(apperrors.KindStorage, "no cache")
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/rates", nil)
		w := httptest.NewRecorder()
		HandleLatestRates(svc).ServeHTTP(w, req)

		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected status 503, got %d", w.Code)
		}
	})
}

func TestHandleRequestRefresh(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		err        error
		wantStatus int
	}{
		{"tracked", "test-uuid-123", nil, http.StatusAccepted},
		{"untracked", "", nil, http.StatusAccepted},
		{"disabled", "", service.ErrRefreshDisabled, http.StatusNotImplemented},
		{"queue error", "", service.ErrInternalQueue, http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockConversionService{
				requestRefreshFunc: func(ctx context.Context) (string, error) {
					return tc.id, tc.err
				},
			}

			req := httptest.NewRequest(http.MethodPost, "/rates/refresh", nil)
			w := httptest.NewRecorder()
			HandleRequestRefresh(svc).ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Fatalf("Expected status %d, got %d", tc.wantStatus, w.Code)
			}
			if tc.err != nil {
				return
			}
			var resp RefreshAcceptedResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if resp.Status != "PENDING" || resp.RefreshID != tc.id {
				t.Errorf("Unexpected response: %+v", resp)
			}
		})
	}
}

func TestHandleGetRefresh(t *testing.T) {
	serve := func(svc service.ConversionServiceInterface, id string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/rates/refresh/"+id, nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("refresh_id", id)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
		w := httptest.NewRecorder()
		HandleGetRefresh(svc).ServeHTTP(w, req)
		return w
	}

	t.Run("success returns 200", func(t *testing.T) {
		base := "USD"
		ts := int64(1700000000)
		updatedAt := "2025-12-01T10:15:30Z"
		svc := &mockConversionService{
			getRefreshFunc: func(ctx context.Context, refreshID string) (*service.RefreshResult, error) {
				return &service.RefreshResult{
					ID:             refreshID,
					Status:         "SUCCESS",
					RatesBase:      &base,
					RatesTimestamp: &ts,
					RequestedAt:    "2025-12-01T10:15:29Z",
					UpdatedAt:      &updatedAt,
				}, nil
			},
		}

		w := serve(svc, "test-uuid")

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		var resp RefreshResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp.RefreshID != "test-uuid" || resp.Status != "SUCCESS" {
			t.Errorf("Unexpected response: %+v", resp)
		}
		if resp.RatesTimestamp == nil || *resp.RatesTimestamp != ts {
			t.Errorf("Expected rates_timestamp %d, got %v", ts, resp.RatesTimestamp)
		}
	})

	errorCases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid id", service.ErrInvalidRefreshID, http.StatusBadRequest},
		{"not found", service.ErrNotFound, http.StatusNotFound},
		{"disabled", service.ErrAuditDisabled, http.StatusNotImplemented},
		{"internal", service.ErrInternal, http.StatusInternalServerError},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockConversionService{
				getRefreshFunc: func(ctx context.Context, refreshID string) (*service.RefreshResult, error) {
					return nil, tc.err
				},
			}

			w := serve(svc, "some-id")

			if w.Code != tc.wantStatus {
				t.Errorf("Expected status %d, got %d", tc.wantStatus, w.Code)
			}
		})
	}
}

func TestHandleRecentConversions(t *testing.T) {
	t.Run("returns conversions", func(t *testing.T) {
		var gotLimit int
		czk := "CZK"
		svc := &mockConversionService{
			recentConversionsFunc: func(ctx context.Context, limit int) ([]repository.Conversion, error) {
				gotLimit = limit
				return []repository.Conversion{{
					ID:             "id-1",
					Amount:         decimal.RequireFromString("10.5"),
					InputCurrency:  "EUR",
					OutputCurrency: &czk,
					Output:         map[string]float64{"CZK": 283.03},
					RatesBase:      "USD",
					RatesTimestamp: 1700000000,
					RatesSource:    "cache",
					CreatedAt:      time.Date(2025, 12, 1, 10, 15, 30, 0, time.UTC),
				}}, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/conversions?limit=5", nil)
		w := httptest.NewRecorder()
		HandleRecentConversions(svc).ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		if gotLimit != 5 {
			t.Errorf("Expected limit 5, got %d", gotLimit)
		}
		var resp ConversionsResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if len(resp.Conversions) != 1 {
			t.Fatalf("Expected 1 conversion, got %d", len(resp.Conversions))
		}
		c := resp.Conversions[0]
		if c.Amount != "10.5" || c.CreatedAt != "2025-12-01T10:15:30Z" || c.OutputCurrency == nil || *c.OutputCurrency != "CZK" {
			t.Errorf("Unexpected conversion: %+v", c)
		}
	})

	t.Run("invalid limit returns 400", func(t *testing.T) {
		svc := &mockConversionService{}

		req := httptest.NewRequest(http.MethodGet, "/conversions?limit=zero", nil)
		w := httptest.NewRecorder()
		HandleRecentConversions(svc).ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("disabled returns 501", func(t *testing.T) {
		svc := &mockConversionService{
			recentConversionsFunc: func(ctx context.Context, limit int) ([]repository.Conversion, error) {
				return nil, service.ErrAuditDisabled
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/conversions", nil)
		w := httptest.NewRecorder()
		HandleRecentConversions(svc).ServeHTTP(w, req)

		if w.Code != http.StatusNotImplemented {
			t.Errorf("Expected status 501, got %d", w.Code)
		}
	})
}

func TestHandleHealthz(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()

	handler := HandleHealthz()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", w.Body.String())
	}
}

func TestHandleReadyz_NoDependencies(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	w := httptest.NewRecorder()

	HandleReadyz(nil, nil, nil).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestHandleReadyz_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = cache.Close() })

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	w := httptest.NewRecorder()
	HandleReadyz(nil, cache, nil).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp ReadyResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Checks["redis_cache"] != "ok" {
		t.Errorf("Expected redis_cache ok, got %q", resp.Checks["redis_cache"])
	}

	mr.Close()
	w = httptest.NewRecorder()
	HandleReadyz(nil, cache, nil).ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503 after Redis stopped, got %d", w.Code)
	}
	resp = ReadyResponse{}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Status != "not ready" || resp.Checks["redis_cache"] != "unavailable" {
		t.Errorf("Expected not ready with redis_cache unavailable, got %+v", resp)
	}
}

func TestOpenAPISpecHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	OpenAPISpecHandler()(rec, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var doc struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths map[string]json.RawMessage `json:"paths"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode document: %v", err)
	}
	if doc.Info.Title != "Currency Converter API" {
		t.Errorf("unexpected title %q", doc.Info.Title)
	}
	for _, path := range []string{"/convert", "/rates", "/rates/refresh", "/rates/refresh/{refresh_id}", "/conversions"} {
		if _, ok := doc.Paths[path]; !ok {
			t.Errorf("document is missing path %s", path)
		}
	}
}
