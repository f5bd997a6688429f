package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/ndewijer/Fund-NAV-Estimator/internal/model"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/repository"
)

// HistoryBuilder provides a fluent interface for seeding the NAV history cache.
//
// Example usage:
//
//	// 30 daily points ending today, fetched just now
//	points := testutil.NewHistory("110011").Build(t, db)
//
//	// Stale cache entry with a custom series
//	points := testutil.NewHistory("110011").
//	    WithDaily(time.Now().AddDate(0, 0, -10), 10, 1.0, 0.01).
//	    FetchedAt(time.Now().Add(-48 * time.Hour)).
//	    Build(t, db)
type HistoryBuilder struct {
	FundCode  string
	Points    []model.HistoryPoint
	FetchedOn time.Time
}

// NewHistory creates a HistoryBuilder with 30 daily points ending today.
func NewHistory(fundCode string) *HistoryBuilder {
	b := &HistoryBuilder{
		FundCode:  fundCode,
		FetchedOn: time.Now(),
	}
	return b.WithDaily(Today().AddDate(0, 0, -29), 30, 1.0, 0.001)
}

// WithPoints replaces the series.
func (b *HistoryBuilder) WithPoints(points ...model.HistoryPoint) *HistoryBuilder {
	b.Points = points
	return b
}

// WithDaily replaces the series with count consecutive daily points starting
// at start, the NAV rising by step each day.
func (b *HistoryBuilder) WithDaily(start time.Time, count int, nav, step float64) *HistoryBuilder {
	b.Points = make([]model.HistoryPoint, count)
	for i := 0; i < count; i++ {
		b.Points[i] = model.HistoryPoint{
			Date: start.AddDate(0, 0, i),
			NAV:  nav + float64(i)*step,
		}
	}
	return b
}

// FetchedAt sets when the series was fetched.
func (b *HistoryBuilder) FetchedAt(at time.Time) *HistoryBuilder {
	b.FetchedOn = at
	return b
}

// Build stores the series in the database and returns it.
func (b *HistoryBuilder) Build(t *testing.T, db *sql.DB) []model.HistoryPoint {
	t.Helper()

	repo := repository.NewHistoryRepository(db)
	if err := repo.SaveHistory(context.Background(), b.FundCode, b.Points, b.FetchedOn); err != nil {
		t.Fatalf("Failed to create test history: %v", err)
	}
	return b.Points
}

// IntradayBuilder provides a fluent interface for creating recorded intraday points.
//
// Example usage:
//
//	point := testutil.NewIntradayPoint("110011").
//	    WithEstimate(0.85).
//	    RecordedAt(time.Now().Add(-time.Hour)).
//	    Build(t, db)
type IntradayBuilder struct {
	point model.IntradayPoint
}

// NewIntradayPoint creates an IntradayBuilder recorded now with a 0.5% holdings estimate.
func NewIntradayPoint(fundCode string) *IntradayBuilder {
	return &IntradayBuilder{point: model.IntradayPoint{
		FundCode:               fundCode,
		RecordedAt:             time.Now().UTC(),
		EstimatedChangePercent: 0.5,
		Mode:                   model.ModeHoldings,
	}}
}

// WithEstimate sets the estimated change.
func (b *IntradayBuilder) WithEstimate(pct float64) *IntradayBuilder {
	b.point.EstimatedChangePercent = pct
	return b
}

// WithMode sets the mode the estimate was produced with.
func (b *IntradayBuilder) WithMode(mode model.ValuationMode) *IntradayBuilder {
	b.point.Mode = mode
	return b
}

// RecordedAt sets the recording time.
func (b *IntradayBuilder) RecordedAt(at time.Time) *IntradayBuilder {
	b.point.RecordedAt = at
	return b
}

// Build stores the point in the database and returns it with its ID.
func (b *IntradayBuilder) Build(t *testing.T, db *sql.DB) model.IntradayPoint {
	t.Helper()

	point, err := repository.NewIntradayRepository(db).InsertPoint(context.Background(), b.point)
	if err != nil {
		t.Fatalf("Failed to create test intraday point: %v", err)
	}
	return point
}

// Convenience functions

// SetMode stores a valuation mode for a fund.
//
// Example usage:
//
//	testutil.SetMode(t, db, "110011", model.ModeRealtimeAPI)
func SetMode(t *testing.T, db *sql.DB, fundCode string, mode model.ValuationMode) {
	t.Helper()

	if err := repository.NewModeRepository(db).SaveMode(context.Background(), fundCode, mode, time.Now()); err != nil {
		t.Fatalf("Failed to set test mode: %v", err)
	}
}

// Today returns midnight UTC of the current day.
func Today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
