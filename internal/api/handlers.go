package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"currencyconverter/internal/apperrors"
	"currencyconverter/internal/converter"
	"currencyconverter/internal/service"
)

// headerRatesSource tells clients whether the rates were fresh, cached or stale.
const headerRatesSource = "X-Rates-Source"

// RatesResponse represents the current rates snapshot
type RatesResponse struct {
	Base      string             `json:"base" example:"USD"`
	Timestamp int64              `json:"timestamp" example:"1700000000"`
	Source    string             `json:"source" example:"cache"`
	Degraded  bool               `json:"degraded" example:"false"`
	Rates     map[string]float64 `json:"rates"`
}

// RefreshAcceptedResponse represents the response for a refresh request
type RefreshAcceptedResponse struct {
	Status    string `json:"status" example:"PENDING"`
	RefreshID string `json:"refresh_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
}

// RefreshResponse represents a tracked refresh request
type RefreshResponse struct {
	RefreshID      string  `json:"refresh_id" example:"123e4567-e89b-12d3-a456-426614174000"`
	Status         string  `json:"status" example:"SUCCESS"`
	RatesBase      *string `json:"rates_base,omitempty" example:"USD"`
	RatesTimestamp *int64  `json:"rates_timestamp,omitempty" example:"1700000000"`
	RequestedAt    string  `json:"requested_at" example:"2025-12-01T10:15:29Z"`
	UpdatedAt      *string `json:"updated_at,omitempty" example:"2025-12-01T10:15:30Z"`
	Error          *string `json:"error,omitempty" example:"fetch rates: all providers failed"`
}

// ConversionResponse represents one audited conversion
type ConversionResponse struct {
	ID             string             `json:"id" example:"123e4567-e89b-12d3-a456-426614174000"`
	Amount         string             `json:"amount" example:"10"`
	InputCurrency  string             `json:"input_currency" example:"EUR"`
	OutputCurrency *string            `json:"output_currency,omitempty" example:"CZK"`
	Output         map[string]float64 `json:"output"`
	RatesBase      string             `json:"rates_base" example:"USD"`
	RatesTimestamp int64              `json:"rates_timestamp" example:"1700000000"`
	RatesSource    string             `json:"rates_source" example:"cache"`
	CreatedAt      string             `json:"created_at" example:"2025-12-01T10:15:30Z"`
}

// ConversionsResponse represents a page of audited conversions
type ConversionsResponse struct {
	Conversions []ConversionResponse `json:"conversions"`
}

// HandleConvert godoc
// @Summary Convert an amount between currencies
// @Description Converts amount from input_currency to output_currency, or to every known currency when output_currency is omitted. Currencies may be given as codes ("EUR") or symbols ("€"). Rates may be refreshed from the remote provider as a side effect.
// @Tags conversion
// @Produce json
// @Param amount query string true "Amount to convert" example(10)
// @Param input_currency query string true "Input currency code or symbol" example(EUR)
// @Param output_currency query string false "Output currency code or symbol" example(CZK)
// @Success 200 {object} converter.Result "Conversion result"
// @Failure 400 {object} ErrorResponse "Invalid amount (code 6) or unknown currency (code 5)"
// @Failure 502 {object} ErrorResponse "Remote rates unavailable and no cache to fall back to"
// @Failure 503 {object} ErrorResponse "Rates cache unavailable"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /convert [get]
func HandleConvert(svc service.ConversionServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		rawAmount := strings.TrimSpace(q.Get("amount"))
		if rawAmount == "" {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "amount is required", Code: int(apperrors.KindInvalidAmount)})
			return
		}
		amount, err := converter.ParseAmount(rawAmount)
		if err != nil {
			writeAppError(w, err)
			return
		}

		input := strings.TrimSpace(q.Get("input_currency"))
		if input == "" {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "input_currency is required", Code: int(apperrors.KindUnknownCurrency)})
			return
		}
		req := converter.Request{Amount: amount, Input: input}
		if output := strings.TrimSpace(q.Get("output_currency")); output != "" {
			req.Output = &output
		}

		res, err := svc.Convert(r.Context(), req)
		if err != nil {
			writeAppError(w, err)
			return
		}

		w.Header().Set(headerRatesSource, res.Source.String())
		writeJSON(w, http.StatusOK, res)
	}
}

// HandleLatestRates godoc
// @Summary Get the current rates snapshot
// @Description Returns the snapshot a conversion would use right now, following the configured rates mode. degraded is true when a refresh failed and the stale cache was served.
// @Tags rates
// @Produce json
// @Success 200 {object} RatesResponse "Current snapshot"
// @Failure 502 {object} ErrorResponse "Remote rates unavailable"
// @Failure 503 {object} ErrorResponse "Rates cache unavailable"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /rates [get]
func HandleLatestRates(svc service.ConversionServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		acq, err := svc.LatestRates(r.Context())
		if err != nil {
			writeAppError(w, err)
			return
		}

		w.Header().Set(headerRatesSource, acq.Source.String())
		writeJSON(w, http.StatusOK, RatesResponse{
			Base:      acq.Snapshot.Base(),
			Timestamp: acq.Snapshot.Timestamp(),
			Source:    acq.Source.String(),
			Degraded:  acq.Degraded(),
			Rates:     acq.Snapshot.Rates(),
		})
	}
}

// HandleRequestRefresh godoc
// @Summary Request asynchronous rates refresh
// @Description Enqueues a refresh of the rates cache. Returns immediately; refresh_id is set when the database is configured and can be polled. A refresh that is already pending is reused.
// @Tags rates
// @Produce json
// @Success 202 {object} RefreshAcceptedResponse "Refresh request accepted"
// @Failure 501 {object} ErrorResponse "Asynchronous refresh is disabled"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /rates/refresh [post]
func HandleRequestRefresh(svc service.ConversionServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		refreshID, err := svc.RequestRefresh(r.Context())
		if err != nil {
			switch {
			case errors.Is(err, service.ErrRefreshDisabled):
				writeJSON(w, http.StatusNotImplemented, ErrorResponse{Error: err.Error()})
			default:
				writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal error"})
			}
			return
		}

		writeJSON(w, http.StatusAccepted, RefreshAcceptedResponse{Status: "PENDING", RefreshID: refreshID})
	}
}

// HandleGetRefresh godoc
// @Summary Get refresh status by ID
// @Description Retrieves the status of a refresh request. Returns the base and timestamp of the new snapshot when status is SUCCESS.
// @Tags rates
// @Produce json
// @Param refresh_id path string true "Refresh ID (UUID)" format(uuid)
// @Success 200 {object} RefreshResponse "Refresh found"
// @Failure 400 {object} ErrorResponse "Invalid refresh_id format"
// @Failure 404 {object} ErrorResponse "Unknown refresh_id"
// @Failure 501 {object} ErrorResponse "Database is not configured"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /rates/refresh/{refresh_id} [get]
func HandleGetRefresh(svc service.ConversionServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		refreshID := chi.URLParam(r, "refresh_id")
		if refreshID == "" {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "refresh_id is required"})
			return
		}

		rf, err := svc.GetRefresh(r.Context(), refreshID)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrAuditDisabled):
				writeJSON(w, http.StatusNotImplemented, ErrorResponse{Error: err.Error()})
			case errors.Is(err, service.ErrInvalidRefreshID):
				writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			case errors.Is(err, service.ErrNotFound):
				writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "Unknown refresh_id"})
			default:
				writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal error"})
			}
			return
		}

		writeJSON(w, http.StatusOK, RefreshResponse{
			RefreshID:      rf.ID,
			Status:         rf.Status,
			RatesBase:      rf.RatesBase,
			RatesTimestamp: rf.RatesTimestamp,
			RequestedAt:    rf.RequestedAt,
			UpdatedAt:      rf.UpdatedAt,
			Error:          rf.ErrorMsg,
		})
	}
}

// HandleRecentConversions godoc
// @Summary List recent conversions
// @Description Returns the most recent audited conversions, newest first.
// @Tags conversion
// @Produce json
// @Param limit query int false "Maximum number of entries (1-100, default 20)"
// @Success 200 {object} ConversionsResponse "Recent conversions"
// @Failure 400 {object} ErrorResponse "Invalid limit"
// @Failure 501 {object} ErrorResponse "Audit log is disabled"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /conversions [get]
func HandleRecentConversions(svc service.ConversionServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer"})
				return
			}
			limit = n
		}

		list, err := svc.RecentConversions(r.Context(), limit)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrAuditDisabled):
				writeJSON(w, http.StatusNotImplemented, ErrorResponse{Error: err.Error()})
			default:
				writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal error"})
			}
			return
		}

		resp := ConversionsResponse{Conversions: make([]ConversionResponse, 0, len(list))}
		for _, c := range list {
			resp.Conversions = append(resp.Conversions, ConversionResponse{
				ID:             c.ID,
				Amount:         c.Amount.String(),
				InputCurrency:  c.InputCurrency,
				OutputCurrency: c.OutputCurrency,
				Output:         c.Output,
				RatesBase:      c.RatesBase,
				RatesTimestamp: c.RatesTimestamp,
				RatesSource:    c.RatesSource,
				CreatedAt:      c.CreatedAt.UTC().Format(time.RFC3339),
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
