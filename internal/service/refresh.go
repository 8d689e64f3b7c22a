package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"currencyconverter/internal/repository"
)

// TaskTypeRefreshRates is the Asynq task type for rate refresh jobs.
const TaskTypeRefreshRates = "rates:refresh"

// RefreshRatesPayload is the payload structure for rate refresh Asynq tasks.
// RefreshID is empty for scheduled refreshes and when no database is configured.
type RefreshRatesPayload struct {
	RefreshID string `json:"refresh_id,omitempty"`
}

// RequestRefresh enqueues an asynchronous rate refresh. When the database is
// configured the request is tracked and a refresh that is already pending or
// running is reused.
func (s *ConversionService) RequestRefresh(ctx context.Context) (string, error) {
	if s.enqueuer == nil {
		return "", ErrRefreshDisabled
	}
	if s.refreshes == nil {
		if err := s.enqueuer.EnqueueRefreshTask(ctx, RefreshRatesPayload{}); err != nil {
			s.log.Errorw("Failed to enqueue refresh task", "error", err)
			return "", ErrInternalQueue
		}
		s.log.Infow("Enqueued untracked refresh task")
		return "", nil
	}

	uid := uuid.New().String()
	id, err := s.refreshes.CreateRefresh(ctx, uid)
	if err != nil {
		s.log.Errorw("CreateRefresh DB error", "error", err)
		return "", ErrInternal
	}
	if id != uid {
		return id, nil
	}

	if err := s.enqueuer.EnqueueRefreshTask(ctx, RefreshRatesPayload{RefreshID: id}); err != nil {
		s.log.Errorw("Failed to enqueue refresh task", "refresh_id", id, "error", err)
		s.markFailed(ctx, id, "enqueue error")
		return "", ErrInternalQueue
	}

	s.log.Infow("Enqueued refresh task", "refresh_id", id)
	return id, nil
}

// GetRefresh retrieves the state of a tracked refresh request.
func (s *ConversionService) GetRefresh(ctx context.Context, refreshID string) (*RefreshResult, error) {
	if s.refreshes == nil {
		return nil, ErrAuditDisabled
	}
	if _, err := uuid.Parse(refreshID); err != nil {
		return nil, ErrInvalidRefreshID
	}
	rf, err := s.refreshes.GetByID(ctx, refreshID)
	if err != nil {
		s.log.Errorw("DB error fetching refresh by ID", "refresh_id", refreshID, "error", err)
		return nil, ErrInternal
	}
	if rf == nil {
		return nil, ErrNotFound
	}
	return refreshResultFromRepo(rf), nil
}

// ProcessRefresh fetches and stores a new snapshot (called by background worker).
func (s *ConversionService) ProcessRefresh(ctx context.Context, refreshID string) error {
	tracked := refreshID != "" && s.refreshes != nil

	s.log.Infow("Processing refresh", "refresh_id", refreshID)
	if tracked {
		if err := s.refreshes.MarkRunning(ctx, refreshID); err != nil {
			switch {
			case errors.Is(err, repository.ErrRefreshConflict):
				// A newer refresh owns the slot; this retry can never be marked done.
				s.log.Warnw("Refresh superseded by a newer request, skipping", "refresh_id", refreshID)
				return nil
			case errors.Is(err, repository.ErrRefreshNotRunnable):
				s.log.Warnw("Refresh not runnable, skipping", "refresh_id", refreshID, "error", err)
				return nil
			default:
				s.log.Warnw("Failed to mark refresh as RUNNING", "refresh_id", refreshID, "error", err)
			}
		}
	}

	snap, err := s.store.Refresh(ctx)
	if err != nil {
		s.log.Errorw("Rate refresh failed", "refresh_id", refreshID, "error", err)
		if tracked {
			s.markFailed(ctx, refreshID, err.Error())
		}
		return err
	}

	if tracked {
		if err := s.refreshes.MarkSuccess(ctx, refreshID, snap.Base(), snap.Timestamp()); err != nil {
			s.log.Errorw("DB update error on success", "refresh_id", refreshID, "error", err)
			return err
		}
	}

	s.log.Infow("Refresh success", "refresh_id", refreshID, "base", snap.Base(), "rates", snap.Len(), "timestamp", snap.Timestamp())
	return nil
}

func (s *ConversionService) markFailed(ctx context.Context, refreshID, reason string) {
	if err := s.refreshes.MarkFailed(ctx, refreshID, reason); err != nil {
		s.log.Warnw("Failed to mark refresh as FAILED", "refresh_id", refreshID, "error", err)
	}
}
