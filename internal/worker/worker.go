// Package worker implements background task handlers for asynchronous rate refreshes.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"currencyconverter/internal/service"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// NewRatesRefreshHandler returns a function to handle rate refresh tasks.
func NewRatesRefreshHandler(svc service.ConversionServiceInterface, logger *zap.SugaredLogger) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload service.RefreshRatesPayload
		if len(t.Payload()) > 0 {
			if err := json.Unmarshal(t.Payload(), &payload); err != nil {
				logger.Errorw("Invalid task payload", "type", t.Type(), "error", err)
				return fmt.Errorf("decode %s payload: %w", t.Type(), asynq.SkipRetry)
			}
		}

		err := svc.ProcessRefresh(ctx, payload.RefreshID)
		if err != nil {
			logger.Errorw("Task processing failed", "refresh_id", payload.RefreshID, "error", err)
			return err
		}

		logger.Infow("Task completed", "refresh_id", payload.RefreshID)
		return nil
	}
}

// AsynqEnqueuer is responsible for enqueuing tasks to an Asynq queue with specific configurations for retries and timeouts.
type AsynqEnqueuer struct {
	client    *asynq.Client
	maxRetry  int
	timeout   time.Duration
	uniqueTTL time.Duration
	log       *zap.SugaredLogger
}

// NewAsynqEnqueuer creates a new AsynqEnqueuer. Identical tasks enqueued
// within uniqueTTL are dropped.
func NewAsynqEnqueuer(client *asynq.Client, maxRetry int, timeout, uniqueTTL time.Duration, logger *zap.SugaredLogger) *AsynqEnqueuer {
	return &AsynqEnqueuer{
		client:    client,
		maxRetry:  maxRetry,
		timeout:   timeout,
		uniqueTTL: uniqueTTL,
		log:       logger,
	}
}

// EnqueueRefreshTask enqueues a rate refresh task. A duplicate of a task that
// is still queued is not an error.
func (e *AsynqEnqueuer) EnqueueRefreshTask(ctx context.Context, payload service.RefreshRatesPayload) error {
	task, err := NewRefreshTask(payload, e.maxRetry, e.timeout, e.uniqueTTL)
	if err != nil {
		return err
	}

	_, err = e.client.EnqueueContext(ctx, task)
	if errors.Is(err, asynq.ErrDuplicateTask) {
		e.log.Infow("Refresh task already queued", "refresh_id", payload.RefreshID)
		return nil
	}
	return err
}

// NewRefreshTask builds a rate refresh task. A zero uniqueTTL disables
// de-duplication.
func NewRefreshTask(payload service.RefreshRatesPayload, maxRetry int, timeout, uniqueTTL time.Duration) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	opts := []asynq.Option{
		asynq.MaxRetry(maxRetry),
		asynq.Timeout(timeout),
	}
	if uniqueTTL > 0 {
		opts = append(opts, asynq.Unique(uniqueTTL))
	}
	return asynq.NewTask(service.TaskTypeRefreshRates, data, opts...), nil
}

// RegisterPeriodicRefresh schedules an untracked refresh task on cronspec.
func RegisterPeriodicRefresh(scheduler *asynq.Scheduler, cronspec string, maxRetry int, timeout time.Duration) (string, error) {
	task, err := NewRefreshTask(service.RefreshRatesPayload{}, maxRetry, timeout, 0)
	if err != nil {
		return "", err
	}
	entryID, err := scheduler.Register(cronspec, task)
	if err != nil {
		return "", fmt.Errorf("register periodic refresh %q: %w", cronspec, err)
	}
	return entryID, nil
}
