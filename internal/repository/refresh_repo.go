package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a unique constraint violation.
const uniqueViolation = "23505"

// ErrRefreshConflict is returned by MarkRunning when another refresh already
// holds the pending or running slot.
var ErrRefreshConflict = errors.New("another refresh is pending or running")

// ErrRefreshNotRunnable is returned by MarkRunning when the refresh does not
// exist or is not PENDING or FAILED.
var ErrRefreshNotRunnable = errors.New("refresh not found or not in PENDING/FAILED status")

// Status represents the state of a rate refresh request.
type Status string

// Status values for the refresh lifecycle.
const (
	StatusPending Status = "PENDING"
	StatusRunning Status = "RUNNING"
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

// Refresh represents a rate refresh request record in the DB.
type Refresh struct {
	ID             string
	Status         Status
	RatesBase      *string
	RatesTimestamp *int64
	ErrorMsg       *string
	RequestedAt    time.Time
	UpdatedAt      *time.Time
}

// RefreshRepository defines DB operations for refresh requests.
type RefreshRepository interface {
	CreateRefresh(ctx context.Context, id string) (string, error)
	MarkRunning(ctx context.Context, id string) error
	MarkSuccess(ctx context.Context, id, base string, timestamp int64) error
	MarkFailed(ctx context.Context, id, errorMsg string) error
	GetByID(ctx context.Context, id string) (*Refresh, error)
}

// PostgresRefreshRepository is an implementation of RefreshRepository using PostgreSQL.
type PostgresRefreshRepository struct {
	db *sql.DB
}

// NewPostgresRefreshRepository creates a new PostgresRefreshRepository.
func NewPostgresRefreshRepository(db *sql.DB) RefreshRepository {
	return &PostgresRefreshRepository{db: db}
}

// CreateRefresh inserts a new refresh request. If a refresh is already
// pending or running, it returns the existing one's ID.
func (r *PostgresRefreshRepository) CreateRefresh(ctx context.Context, id string) (string, error) {
	query := `INSERT INTO rate_refreshes (id, status, requested_at)
              VALUES ($1::uuid, 'PENDING'::refresh_status, NOW())
              ON CONFLICT (scope) WHERE status IN ('PENDING', 'RUNNING')
              DO UPDATE SET scope = rate_refreshes.scope  -- no-op, changes nothing
              RETURNING id::text`

	var returnedID string
	err := r.db.QueryRowContext(ctx, query, id).Scan(&returnedID)
	if err != nil {
		return "", fmt.Errorf("failed to create refresh: %w", err)
	}
	return returnedID, nil
}

// MarkRunning updates a refresh record status to RUNNING.
func (r *PostgresRefreshRepository) MarkRunning(ctx context.Context, id string) error {
	// Failed status can occur on Asynq retry
	query := `UPDATE rate_refreshes
				SET status=$1::refresh_status, updated_at=NOW()
				WHERE id=$2::uuid AND status IN ($3::refresh_status, $4::refresh_status)`
	result, err := r.db.ExecContext(ctx, query, StatusRunning, id, StatusPending, StatusFailed)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("refresh %s: %w", id, ErrRefreshConflict)
		}
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("refresh %s: %w", id, ErrRefreshNotRunnable)
	}
	return nil
}

// MarkSuccess records the snapshot the refresh produced.
func (r *PostgresRefreshRepository) MarkSuccess(ctx context.Context, id, base string, timestamp int64) error {
	query := `UPDATE rate_refreshes
				SET status=$1::refresh_status,
				    rates_base=$2,
				    rates_timestamp=$3,
				    error=NULL,
				    updated_at=NOW()
				WHERE id=$4::uuid AND status=$5::refresh_status`

	result, err := r.db.ExecContext(ctx, query, StatusSuccess, base, timestamp, id, StatusRunning)
	if err != nil {
		return err
	}
	return checkRowsAffected(result, id)
}

// MarkFailed updates the refresh record to FAILED with an error message.
func (r *PostgresRefreshRepository) MarkFailed(ctx context.Context, id, errorMsg string) error {
	query := `UPDATE rate_refreshes
				SET status=$1::refresh_status,
				    error=$2,
				    updated_at=NOW()
				WHERE id=$3::uuid AND status IN ($4::refresh_status, $5::refresh_status)`

	result, err := r.db.ExecContext(ctx, query, StatusFailed, errorMsg, id, StatusPending, StatusRunning)
	if err != nil {
		return err
	}
	return checkRowsAffected(result, id)
}

func checkRowsAffected(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("refresh %s not found", id)
	}
	return nil
}

// GetByID retrieves a refresh record by id.
func (r *PostgresRefreshRepository) GetByID(ctx context.Context, id string) (*Refresh, error) {
	query := `SELECT id::text, status, rates_base, rates_timestamp, error, requested_at, updated_at
              FROM rate_refreshes
              WHERE id=$1::uuid`

	row := r.db.QueryRowContext(ctx, query, id)
	return scanRefresh(row)
}

// scanRefresh maps a single row into a Refresh, returning (nil, nil) for sql.ErrNoRows.
func scanRefresh(row *sql.Row) (*Refresh, error) {
	var rf Refresh
	var base sql.NullString
	var ts sql.NullInt64
	var errMsg sql.NullString
	var updatedAt sql.NullTime
	var statusStr string

	err := row.Scan(&rf.ID, &statusStr, &base, &ts, &errMsg, &rf.RequestedAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	rf.Status = Status(statusStr)
	if base.Valid {
		rf.RatesBase = &base.String
	}
	if ts.Valid {
		rf.RatesTimestamp = &ts.Int64
	}
	if errMsg.Valid {
		rf.ErrorMsg = &errMsg.String
	}
	if updatedAt.Valid {
		rf.UpdatedAt = &updatedAt.Time
	}
	return &rf, nil
}
