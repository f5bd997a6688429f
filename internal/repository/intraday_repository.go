package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ndewijer/Fund-NAV-Estimator/internal/model"
)

// IntradayRepository provides data access methods for the intraday_estimate table.
type IntradayRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewIntradayRepository creates a new IntradayRepository with the provided database connection.
func NewIntradayRepository(db *sql.DB) *IntradayRepository {
	return &IntradayRepository{db: db}
}

func (r *IntradayRepository) WithTx(tx *sql.Tx) *IntradayRepository {
	return &IntradayRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *IntradayRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// InsertPoint stores a recorded estimate. A missing ID is generated.
// Returns the stored point.
func (r *IntradayRepository) InsertPoint(ctx context.Context, p model.IntradayPoint) (model.IntradayPoint, error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.RecordedAt = p.RecordedAt.UTC()

	_, err := r.getQuerier().ExecContext(ctx, `
		INSERT INTO intraday_estimate (id, fund_code, recorded_at, estimate, mode)
		VALUES (?, ?, ?, ?, ?)
	`, p.ID, p.FundCode, formatTimestamp(p.RecordedAt), p.EstimatedChangePercent, string(p.Mode))
	if err != nil {
		return model.IntradayPoint{}, fmt.Errorf("failed to insert intraday estimate: %w", err)
	}
	return p, nil
}

// GetPoints returns the points of a fund recorded at or after since, oldest first.
func (r *IntradayRepository) GetPoints(ctx context.Context, fundCode string, since time.Time) ([]model.IntradayPoint, error) {
	rows, err := r.getQuerier().QueryContext(ctx, `
		SELECT id, fund_code, recorded_at, estimate, mode
		FROM intraday_estimate
		WHERE fund_code = ? AND recorded_at >= ?
		ORDER BY recorded_at ASC
	`, fundCode, formatTimestamp(since))
	if err != nil {
		return nil, fmt.Errorf("failed to query intraday_estimate table: %w", err)
	}
	defer rows.Close()

	points := []model.IntradayPoint{}
	for rows.Next() {
		var p model.IntradayPoint
		var recordedAt, mode string
		if err := rows.Scan(&p.ID, &p.FundCode, &recordedAt, &p.EstimatedChangePercent, &mode); err != nil {
			return nil, fmt.Errorf("failed to scan intraday_estimate row: %w", err)
		}
		p.RecordedAt, err = ParseTime(recordedAt)
		if err != nil {
			return nil, err
		}
		p.Mode = model.ValuationMode(mode)
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating intraday_estimate rows: %w", err)
	}
	return points, nil
}

// DeleteBefore removes points recorded before cutoff and returns how many were removed.
func (r *IntradayRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.getQuerier().ExecContext(ctx,
		`DELETE FROM intraday_estimate WHERE recorded_at < ?`, formatTimestamp(cutoff),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete intraday estimates: %w", err)
	}
	return result.RowsAffected()
}
