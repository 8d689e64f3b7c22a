package service

import (
	"time"

	"currencyconverter/internal/repository"
)

// RefreshResult represents a refresh request returned by the service layer.
// Fields are populated according to the refresh's status:
//   - SUCCESS: RatesBase, RatesTimestamp and UpdatedAt are set, ErrorMsg is nil.
//   - FAILED:  ErrorMsg is set.
//   - PENDING/RUNNING: only ID, Status and RequestedAt are set.
type RefreshResult struct {
	ID             string
	Status         string
	RatesBase      *string
	RatesTimestamp *int64
	ErrorMsg       *string
	RequestedAt    string
	UpdatedAt      *string
}

func refreshResultFromRepo(rf *repository.Refresh) *RefreshResult {
	r := &RefreshResult{
		ID:          rf.ID,
		Status:      string(rf.Status),
		RequestedAt: rf.RequestedAt.UTC().Format(time.RFC3339),
	}

	switch rf.Status {
	case repository.StatusSuccess:
		r.RatesBase = rf.RatesBase
		r.RatesTimestamp = rf.RatesTimestamp
		if rf.UpdatedAt != nil {
			ts := rf.UpdatedAt.UTC().Format(time.RFC3339)
			r.UpdatedAt = &ts
		}
	case repository.StatusFailed:
		r.ErrorMsg = rf.ErrorMsg
	}

	return r
}
