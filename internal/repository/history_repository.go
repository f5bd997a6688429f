package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ndewijer/Fund-NAV-Estimator/internal/model"
)

// HistoryRepository provides data access methods for the nav_history table.
// It caches fetched NAV series per fund.
type HistoryRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewHistoryRepository creates a new HistoryRepository with the provided database connection.
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) WithTx(tx *sql.Tx) *HistoryRepository {
	return &HistoryRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *HistoryRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// GetHistory returns the cached points of a fund dated on or after since, ascending by date.
func (r *HistoryRepository) GetHistory(ctx context.Context, fundCode string, since time.Time) ([]model.HistoryPoint, error) {
	rows, err := r.getQuerier().QueryContext(ctx, `
		SELECT date, nav
		FROM nav_history
		WHERE fund_code = ? AND date >= ?
		ORDER BY date ASC
	`, fundCode, formatDate(since))
	if err != nil {
		return nil, fmt.Errorf("failed to query nav_history table: %w", err)
	}
	defer rows.Close()

	points := []model.HistoryPoint{}
	for rows.Next() {
		var dateStr string
		var nav float64
		if err := rows.Scan(&dateStr, &nav); err != nil {
			return nil, fmt.Errorf("failed to scan nav_history row: %w", err)
		}
		date, err := ParseTime(dateStr)
		if err != nil {
			return nil, err
		}
		points = append(points, model.HistoryPoint{Date: date, NAV: nav})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating nav_history rows: %w", err)
	}
	return points, nil
}

// LastFetched returns when the fund's history was last stored. found is false
// when nothing is cached for the fund.
func (r *HistoryRepository) LastFetched(ctx context.Context, fundCode string) (at time.Time, found bool, err error) {
	var value sql.NullString
	err = r.getQuerier().QueryRowContext(ctx,
		`SELECT MAX(fetched_at) FROM nav_history WHERE fund_code = ?`, fundCode,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !value.Valid) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to query nav_history fetch time: %w", err)
	}
	at, err = ParseTime(value.String)
	if err != nil {
		return time.Time{}, false, err
	}
	return at, true, nil
}

// SaveHistory upserts points of a fund and stamps them with fetchedAt.
// Existing dates are overwritten; dates not in points are left untouched.
func (r *HistoryRepository) SaveHistory(ctx context.Context, fundCode string, points []model.HistoryPoint, fetchedAt time.Time) error {
	if r.tx == nil {
		return withTx(ctx, r.db, func(tx *sql.Tx) error {
			return r.WithTx(tx).SaveHistory(ctx, fundCode, points, fetchedAt)
		})
	}

	stamp := formatTimestamp(fetchedAt)
	for _, p := range points {
		_, err := r.tx.ExecContext(ctx, `
			INSERT INTO nav_history (fund_code, date, nav, fetched_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(fund_code, date) DO UPDATE SET nav = excluded.nav, fetched_at = excluded.fetched_at
		`, fundCode, formatDate(p.Date), p.NAV, stamp)
		if err != nil {
			return fmt.Errorf("failed to save nav_history row: %w", err)
		}
	}
	return nil
}
