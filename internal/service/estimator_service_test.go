package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Fund-NAV-Estimator/internal/model"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/service"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/testutil"
)

const (
	equityFund = "110011"
	otherFund  = "000001"
)

// withEquityFund configures a fund holding two A-shares: 40% up 2% and 30% down 2%.
func withEquityFund(src *testutil.Sources, code string) {
	src.Pages.WithHoldingsPage(code, testutil.HoldingsPage("易方达优质精选混合", "2024-09-30",
		testutil.HoldingRow{Code: "600519", MarketID: "1", Name: "贵州茅台", Weight: "40.00%"},
		testutil.HoldingRow{Code: "000858", MarketID: "0", Name: "五粮液", Weight: "30.00%"},
	))
	src.Quotes.
		WithLine("sh600519", testutil.AShareQuoteLine("sh600519", "贵州茅台", 100, 102)).
		WithLine("sz000858", testutil.AShareQuoteLine("sz000858", "五粮液", 50, 49))
}

func withRecentHistory(src *testutil.Sources, days int) {
	records := make([]testutil.HistoryRecord, 0, days)
	for i := 1; i <= days; i++ {
		records = append(records, testutil.HistoryRecord{Date: testutil.Today().AddDate(0, 0, -i), NAV: "1.2345"})
	}
	src.History.WithPage(1, testutil.HistoryPage(1, 20, records...))
}

// TestEstimatorService_ProcessFund tests the single-fund pipeline.
//
// WHY: ProcessFund decides which path produces a fund's estimate and how
// failures surface. A wrong branch shows a stale or fabricated number to the
// user, so every path and its fallbacks are pinned here.
func TestEstimatorService_ProcessFund(t *testing.T) {
	ctx := context.Background()

	t.Run("estimates from holdings and live quotes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		src := testutil.NewSources()
		withEquityFund(src, equityFund)
		svc := testutil.NewTestEstimatorService(t, db, src, service.EstimatorOptions{})

		snap := svc.ProcessFund(ctx, equityFund, model.ModeHoldings)

		assert.Equal(t, model.StatusOK, snap.Status)
		assert.Equal(t, model.ModeHoldings, snap.Mode)
		assert.Equal(t, "易方达优质精选混合", snap.FundName)
		assert.Equal(t, "2024-09-30", snap.ReportDate)
		require.NotNil(t, snap.EstimatedChangePercent)
		assert.InDelta(t, 20.0/70.0, *snap.EstimatedChangePercent, 1e-9)
		require.NotNil(t, snap.Valuation)
		assert.Len(t, snap.Valuation.Details, 2)
		assert.InDelta(t, 70.0, snap.Valuation.TotalWeightUsed, 1e-9)
		assert.Empty(t, snap.Error)
		assert.False(t, snap.UpdatedAt.IsZero())
	})

	t.Run("realtime mode uses the third-party estimate", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		src := testutil.NewSources()
		src.Realtime.WithEstimate(model.RealtimeEstimate{
			FundCode:               equityFund,
			Name:                   "易方达优质精选混合",
			EstimatedChangePercent: 1.23,
			UpdateTime:             "2024-10-17 14:30",
		})
		svc := testutil.NewTestEstimatorService(t, db, src, service.EstimatorOptions{})

		snap := svc.ProcessFund(ctx, equityFund, model.ModeRealtimeAPI)

		assert.Equal(t, model.StatusOK, snap.Status)
		assert.Equal(t, model.ModeRealtimeAPI, snap.Mode)
		require.NotNil(t, snap.EstimatedChangePercent)
		assert.InDelta(t, 1.23, *snap.EstimatedChangePercent, 1e-9)
		assert.Nil(t, snap.Valuation)
		assert.Equal(t, "2024-10-17 14:30", snap.ReportDate)
		assert.Equal(t, 0, src.Pages.HoldingsCalls, "holdings should not be resolved")
	})

	t.Run("realtime failure degrades to holdings", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		src := testutil.NewSources()
		withEquityFund(src, equityFund)
		svc := testutil.NewTestEstimatorService(t, db, src, service.EstimatorOptions{})

		snap := svc.ProcessFund(ctx, equityFund, model.ModeRealtimeAPI)

		assert.Equal(t, model.StatusOK, snap.Status)
		assert.Equal(t, model.ModeHoldings, snap.Mode)
		require.NotNil(t, snap.Valuation)
		assert.Equal(t, 1, src.Realtime.CallCount())
	})

	t.Run("missing holdings without fallback reports holdings unavailable", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		src := testutil.NewSources()
		svc := testutil.NewTestEstimatorService(t, db, src, service.EstimatorOptions{})

		snap := svc.ProcessFund(ctx, equityFund, model.ModeHoldings)

		assert.Equal(t, model.StatusHoldingsMissing, snap.Status)
		assert.Equal(t, model.ModeHoldings, snap.Mode)
		assert.Equal(t, "--", snap.FundName)
		assert.Equal(t, "--", snap.ReportDate)
		assert.Nil(t, snap.EstimatedChangePercent)
		assert.NotEmpty(t, snap.Error)
		assert.False(t, snap.Succeeded())
		assert.Equal(t, 0, src.Realtime.CallCount())
	})

	t.Run("missing holdings falls back to realtime when enabled", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		src := testutil.NewSources()
		withRecentHistory(src, 5)
		src.Realtime.WithEstimate(model.RealtimeEstimate{FundCode: equityFund, EstimatedChangePercent: -0.5})
		svc := testutil.NewTestEstimatorService(t, db, src, service.EstimatorOptions{
			RealtimeFallback: true,
			HistoryDays:      30,
		})

		snap := svc.ProcessFund(ctx, equityFund, model.ModeHoldings)

		assert.Equal(t, model.StatusOK, snap.Status)
		assert.Equal(t, model.ModeRealtimeFallback, snap.Mode)
		assert.Equal(t, "Fund "+equityFund, snap.FundName)
		require.NotNil(t, snap.EstimatedChangePercent)
		assert.InDelta(t, -0.5, *snap.EstimatedChangePercent, 1e-9)
		assert.Nil(t, snap.History, "fallback snapshots carry no history")
	})

	t.Run("realtime is not retried as fallback after it already failed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		src := testutil.NewSources()
		svc := testutil.NewTestEstimatorService(t, db, src, service.EstimatorOptions{RealtimeFallback: true})

		snap := svc.ProcessFund(ctx, equityFund, model.ModeRealtimeAPI)

		assert.Equal(t, model.StatusHoldingsMissing, snap.Status)
		assert.Equal(t, 1, src.Realtime.CallCount())
	})

	t.Run("no quotes keeps ok status with a zero estimate", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		src := testutil.NewSources()
		withEquityFund(src, equityFund)
		src.Quotes.Lines = map[string]string{}
		svc := testutil.NewTestEstimatorService(t, db, src, service.EstimatorOptions{})

		snap := svc.ProcessFund(ctx, equityFund, model.ModeHoldings)

		assert.Equal(t, model.StatusOK, snap.Status)
		require.NotNil(t, snap.EstimatedChangePercent)
		assert.Zero(t, *snap.EstimatedChangePercent)
		require.NotNil(t, snap.Valuation)
		assert.False(t, snap.Valuation.HasCoverage())
		for _, d := range snap.Valuation.Details {
			assert.Nil(t, d.ChangePercent)
		}
	})

	t.Run("attaches history when enabled", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		src := testutil.NewSources()
		withEquityFund(src, equityFund)
		withRecentHistory(src, 5)
		svc := testutil.NewTestEstimatorService(t, db, src, service.EstimatorOptions{HistoryDays: 30})

		snap := svc.ProcessFund(ctx, equityFund, model.ModeHoldings)

		assert.Equal(t, model.StatusOK, snap.Status)
		assert.Len(t, snap.History, 5)
	})

	t.Run("history failure does not fail the snapshot", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		src := testutil.NewSources()
		withEquityFund(src, equityFund)
		src.History.WithFailingPage(1).WithFailingPage(2).WithFailingPage(3)
		svc := testutil.NewTestEstimatorService(t, db, src, service.EstimatorOptions{HistoryDays: 30})

		snap := svc.ProcessFund(ctx, equityFund, model.ModeHoldings)

		assert.Equal(t, model.StatusOK, snap.Status)
		assert.Nil(t, snap.History)
	})
}

// TestEstimatorService_ProcessFunds tests the concurrent multi-fund pipeline.
//
// WHY: Funds run concurrently but callers render results as a list, so the
// output must follow input order and one fund's failure must not leak into another.
func TestEstimatorService_ProcessFunds(t *testing.T) {
	ctx := context.Background()

	t.Run("returns one snapshot per distinct code in input order", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		src := testutil.NewSources()
		withEquityFund(src, equityFund)
		withEquityFund(src, otherFund)
		svc := testutil.NewTestEstimatorService(t, db, src, service.EstimatorOptions{})

		snaps := svc.ProcessFunds(ctx, []string{otherFund, " " + equityFund + " ", otherFund, ""}, nil)

		require.Len(t, snaps, 2)
		assert.Equal(t, otherFund, snaps[0].FundCode)
		assert.Equal(t, equityFund, snaps[1].FundCode)
	})

	t.Run("applies per-fund modes and isolates failures", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		src := testutil.NewSources()
		withEquityFund(src, equityFund)
		src.Realtime.WithEstimate(model.RealtimeEstimate{FundCode: otherFund, EstimatedChangePercent: 0.7})
		svc := testutil.NewTestEstimatorService(t, db, src, service.EstimatorOptions{})

		codes := []string{equityFund, otherFund, "999999"}
		snaps := svc.ProcessFunds(ctx, codes, map[string]model.ValuationMode{
			otherFund: model.ModeRealtimeAPI,
		})

		require.Len(t, snaps, 3)
		assert.Equal(t, model.ModeHoldings, snaps[0].Mode)
		assert.True(t, snaps[0].Succeeded())
		assert.Equal(t, model.ModeRealtimeAPI, snaps[1].Mode)
		assert.True(t, snaps[1].Succeeded())
		assert.Equal(t, model.StatusHoldingsMissing, snaps[2].Status)
	})

	t.Run("returns empty slice for no codes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestEstimatorService(t, db, testutil.NewSources(), service.EstimatorOptions{})

		snaps := svc.ProcessFunds(ctx, []string{"", "  "}, nil)

		assert.Empty(t, snaps)
	})
}

func TestNormalizeCodes(t *testing.T) {
	assert.Equal(t, []string{"110011", "000001"}, service.NormalizeCodes([]string{" 110011", "", "000001", "110011 "}))
	assert.Empty(t, service.NormalizeCodes(nil))
}
