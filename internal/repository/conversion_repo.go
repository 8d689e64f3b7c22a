package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Conversion is one audited conversion.
type Conversion struct {
	ID             string
	Amount         decimal.Decimal
	InputCurrency  string
	OutputCurrency *string // nil when every currency was requested
	Output         map[string]float64
	RatesBase      string
	RatesTimestamp int64
	RatesSource    string
	CreatedAt      time.Time
}

// ConversionRepository defines DB operations for the conversion audit log.
type ConversionRepository interface {
	Record(ctx context.Context, c *Conversion) error
	ListRecent(ctx context.Context, limit int) ([]Conversion, error)
}

// PostgresConversionRepository is an implementation of ConversionRepository using PostgreSQL.
type PostgresConversionRepository struct {
	db *sql.DB
}

// NewPostgresConversionRepository creates a new PostgresConversionRepository.
func NewPostgresConversionRepository(db *sql.DB) ConversionRepository {
	return &PostgresConversionRepository{db: db}
}

// Record inserts c. CreatedAt is set by the database.
func (r *PostgresConversionRepository) Record(ctx context.Context, c *Conversion) error {
	output, err := json.Marshal(c.Output)
	if err != nil {
		return fmt.Errorf("encode conversion output: %w", err)
	}

	query := `INSERT INTO conversions
                (id, amount, input_currency, output_currency, output,
                 rates_base, rates_timestamp, rates_source, created_at)
              VALUES ($1::uuid, $2::numeric, $3, $4, $5::jsonb, $6, $7, $8, NOW())`

	_, err = r.db.ExecContext(ctx, query,
		c.ID, c.Amount, c.InputCurrency, c.OutputCurrency, string(output),
		c.RatesBase, c.RatesTimestamp, c.RatesSource)
	if err != nil {
		return fmt.Errorf("failed to record conversion: %w", err)
	}
	return nil
}

// ListRecent returns up to limit conversions, newest first.
func (r *PostgresConversionRepository) ListRecent(ctx context.Context, limit int) ([]Conversion, error) {
	query := `SELECT id::text, amount, input_currency, output_currency, output::text,
                     rates_base, rates_timestamp, rates_source, created_at
              FROM conversions
              ORDER BY created_at DESC
              LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversions: %w", err)
	}
	defer rows.Close() //nolint:errcheck // rows.Err is checked below

	var out []Conversion
	for rows.Next() {
		var c Conversion
		var outputCurrency sql.NullString
		var output string
		if err := rows.Scan(&c.ID, &c.Amount, &c.InputCurrency, &outputCurrency, &output,
			&c.RatesBase, &c.RatesTimestamp, &c.RatesSource, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan conversion: %w", err)
		}
		if outputCurrency.Valid {
			c.OutputCurrency = &outputCurrency.String
		}
		if err := json.Unmarshal([]byte(output), &c.Output); err != nil {
			return nil, fmt.Errorf("decode conversion %s output: %w", c.ID, err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversions: %w", err)
	}
	return out, nil
}
