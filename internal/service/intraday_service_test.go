package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Fund-NAV-Estimator/internal/model"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/testutil"
)

// TestIntradayService tests recording and listing intraday estimates.
//
// WHY: The intraday chart must only show today's successful estimates;
// failed snapshots have no number to plot and older days would distort it.
func TestIntradayService(t *testing.T) {
	ctx := context.Background()

	t.Run("records only successful snapshots", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestIntradayService(t, db)
		estimate := 0.42

		recorded, err := svc.Record(ctx, []model.FundSnapshot{
			{FundCode: equityFund, Status: model.StatusOK, Mode: model.ModeHoldings, EstimatedChangePercent: &estimate, UpdatedAt: time.Now().UTC()},
			{FundCode: otherFund, Status: model.StatusHoldingsMissing, Mode: model.ModeHoldings, UpdatedAt: time.Now().UTC()},
		})

		require.NoError(t, err)
		assert.Equal(t, 1, recorded)

		points, err := svc.Today(ctx, equityFund)
		require.NoError(t, err)
		require.Len(t, points, 1)
		assert.InDelta(t, 0.42, points[0].EstimatedChangePercent, 1e-9)
		assert.Equal(t, model.ModeHoldings, points[0].Mode)
		assert.NotEmpty(t, points[0].ID)

		others, err := svc.Today(ctx, otherFund)
		require.NoError(t, err)
		assert.Empty(t, others)
	})

	t.Run("today excludes earlier days", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestIntradayService(t, db)
		testutil.NewIntradayPoint(equityFund).RecordedAt(time.Now().Add(-72 * time.Hour)).Build(t, db)
		current := testutil.NewIntradayPoint(equityFund).WithEstimate(-0.3).Build(t, db)

		points, err := svc.Today(ctx, equityFund)

		require.NoError(t, err)
		require.Len(t, points, 1)
		assert.Equal(t, current.ID, points[0].ID)
	})

	t.Run("prune removes old days", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestIntradayService(t, db)
		testutil.NewIntradayPoint(equityFund).RecordedAt(time.Now().Add(-10 * 24 * time.Hour)).Build(t, db)
		testutil.NewIntradayPoint(equityFund).Build(t, db)

		removed, err := svc.Prune(ctx, 7)

		require.NoError(t, err)
		assert.Equal(t, int64(1), removed)
		points, err := svc.Today(ctx, equityFund)
		require.NoError(t, err)
		assert.Len(t, points, 1)
	})
}
