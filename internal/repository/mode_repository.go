package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ndewijer/Fund-NAV-Estimator/internal/model"
)

// ModeRepository provides data access methods for the valuation_mode table.
// It stores the valuation mode chosen per fund.
type ModeRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewModeRepository creates a new ModeRepository with the provided database connection.
func NewModeRepository(db *sql.DB) *ModeRepository {
	return &ModeRepository{db: db}
}

func (r *ModeRepository) WithTx(tx *sql.Tx) *ModeRepository {
	return &ModeRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *ModeRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// GetModes returns every stored mode keyed by fund code.
// Returns an empty map if none are stored.
func (r *ModeRepository) GetModes(ctx context.Context) (map[string]model.ValuationMode, error) {
	rows, err := r.getQuerier().QueryContext(ctx, `SELECT fund_code, mode FROM valuation_mode`)
	if err != nil {
		return nil, fmt.Errorf("failed to query valuation_mode table: %w", err)
	}
	defer rows.Close()

	modes := make(map[string]model.ValuationMode)
	for rows.Next() {
		var code, mode string
		if err := rows.Scan(&code, &mode); err != nil {
			return nil, fmt.Errorf("failed to scan valuation_mode row: %w", err)
		}
		modes[code] = model.ValuationMode(mode)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating valuation_mode rows: %w", err)
	}
	return modes, nil
}

// GetMode returns the stored mode of one fund. found is false when none is stored.
func (r *ModeRepository) GetMode(ctx context.Context, fundCode string) (mode model.ValuationMode, found bool, err error) {
	var value string
	err = r.getQuerier().QueryRowContext(ctx,
		`SELECT mode FROM valuation_mode WHERE fund_code = ?`, fundCode,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query valuation mode: %w", err)
	}
	return model.ValuationMode(value), true, nil
}

// SaveMode inserts or replaces the mode of one fund.
func (r *ModeRepository) SaveMode(ctx context.Context, fundCode string, mode model.ValuationMode, at time.Time) error {
	_, err := r.getQuerier().ExecContext(ctx, `
		INSERT INTO valuation_mode (fund_code, mode, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(fund_code) DO UPDATE SET mode = excluded.mode, updated_at = excluded.updated_at
	`, fundCode, string(mode), formatTimestamp(at))
	if err != nil {
		return fmt.Errorf("failed to save valuation mode: %w", err)
	}
	return nil
}

// SaveModes stores several modes atomically.
func (r *ModeRepository) SaveModes(ctx context.Context, modes map[string]model.ValuationMode, at time.Time) error {
	if r.tx != nil {
		return r.saveAll(ctx, modes, at)
	}
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		return r.WithTx(tx).saveAll(ctx, modes, at)
	})
}

func (r *ModeRepository) saveAll(ctx context.Context, modes map[string]model.ValuationMode, at time.Time) error {
	for code, mode := range modes {
		if err := r.SaveMode(ctx, code, mode, at); err != nil {
			return err
		}
	}
	return nil
}
