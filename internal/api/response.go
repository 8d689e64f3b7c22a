// Package api implements HTTP handlers for the currency converter service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"currencyconverter/internal/apperrors"
)

// ErrorResponse represents an error response. Code is the stable error kind
// for conversion and rate failures.
type ErrorResponse struct {
	Error string `json:"error" example:"unknown currency \"XEUR\""`
	Code  int    `json:"code,omitempty" example:"5"`
}

// writeJSON writes a JSON response with the given status code. The body is
// encoded before the header goes out so an unencodable value becomes a 500.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(ErrorResponse{Error: "Internal error"})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

// statusForKind maps an error kind to the HTTP status reported to clients.
func statusForKind(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindInvalidAmount, apperrors.KindUnknownCurrency:
		return http.StatusBadRequest
	case apperrors.KindFetch:
		return http.StatusBadGateway
	case apperrors.KindStorage:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeAppError writes an error from the rates store or the converter.
func writeAppError(w http.ResponseWriter, err error) {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal error"})
		return
	}
	status := statusForKind(appErr.Kind)
	msg := appErr.Error()
	if status == http.StatusInternalServerError {
		msg = "Internal error"
	}
	writeJSON(w, status, ErrorResponse{Error: msg, Code: int(appErr.Kind)})
}
