package holdings_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Fund-NAV-Estimator/internal/apperrors"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/holdings"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/testutil"
)

func newResolver(pages *testutil.MockPageSource, searcher *testutil.MockNameSearcher) *holdings.Resolver {
	if searcher == nil {
		return holdings.NewResolver(pages, nil, holdings.DefaultThresholds(), zerolog.Nop())
	}
	return holdings.NewResolver(pages, searcher, holdings.DefaultThresholds(), zerolog.Nop())
}

// TestResolver_ResolveHoldings tests the full resolution flow for ordinary funds.
//
// WHY: ResolveHoldings is the entry point of the estimation pipeline. Its
// outcomes (holdings, feeder target, or ErrNoData) drive the service's fallback logic.
func TestResolver_ResolveHoldings(t *testing.T) {
	ctx := context.Background()

	t.Run("returns parsed holdings for an ordinary fund", func(t *testing.T) {
		pages := testutil.NewMockPageSource().WithHoldingsPage("005827", testutil.HoldingsPage(
			"易方达蓝筹精选混合", "2024-12-31",
			testutil.HoldingRow{Code: "00700", MarketID: "116", Name: "腾讯控股", Weight: "9.87%"},
			testutil.HoldingRow{Code: "600519", MarketID: "1", Name: "贵州茅台", Weight: "9.10%"},
		))
		searcher := testutil.NewMockNameSearcher()

		result, err := newResolver(pages, searcher).ResolveHoldings(ctx, "005827")

		require.NoError(t, err)
		assert.Equal(t, "易方达蓝筹精选混合", result.FundName)
		assert.Equal(t, "2024-12-31", result.ReportDate)
		assert.False(t, result.FeederTarget)
		assert.Len(t, result.Holdings, 2)
		assert.Empty(t, searcher.Queries, "no search for a non-feeder")
		assert.Zero(t, pages.BackupCalls)
	})

	t.Run("transport failure is ErrNoData", func(t *testing.T) {
		pages := testutil.NewMockPageSource()

		_, err := newResolver(pages, nil).ResolveHoldings(ctx, "000001")

		assert.ErrorIs(t, err, apperrors.ErrNoData)
		assert.Zero(t, pages.BackupCalls, "no backup lookup after a transport failure")
	})

	t.Run("empty holdings for a non-feeder is ErrNoData", func(t *testing.T) {
		pages := testutil.NewMockPageSource().WithHoldingsPage("000001", testutil.HoldingsPage("某债券基金", ""))

		_, err := newResolver(pages, testutil.NewMockNameSearcher()).ResolveHoldings(ctx, "000001")

		assert.ErrorIs(t, err, apperrors.ErrNoData)
	})

	t.Run("missing name uses the basic info page", func(t *testing.T) {
		pages := testutil.NewMockPageSource().
			WithHoldingsPage("000002", testutil.HoldingsPage("", "2024-12-31",
				testutil.HoldingRow{Code: "600036", MarketID: "1", Name: "招商银行", Weight: "70.00%"},
			)).
			WithBasicInfoPage("000002", testutil.BasicInfoPage("某价值精选混合"))

		result, err := newResolver(pages, nil).ResolveHoldings(ctx, "000002")

		require.NoError(t, err)
		assert.Equal(t, "某价值精选混合", result.FundName)
	})

	t.Run("missing name falls through to the bond page", func(t *testing.T) {
		pages := testutil.NewMockPageSource().
			WithHoldingsPage("000003", testutil.HoldingsPage("", "2024-12-31",
				testutil.HoldingRow{Code: "600036", MarketID: "1", Name: "招商银行", Weight: "70.00%"},
			)).
			WithBasicInfoPage("000003", "<html></html>").
			WithBondPage("000003", "<a href='http://fund.eastmoney.com/000003.html'>某稳健债券</a>")

		result, err := newResolver(pages, nil).ResolveHoldings(ctx, "000003")

		require.NoError(t, err)
		assert.Equal(t, "某稳健债券", result.FundName)
		assert.Equal(t, 2, pages.BackupCalls)
	})

	t.Run("no name anywhere uses the placeholder", func(t *testing.T) {
		pages := testutil.NewMockPageSource().
			WithHoldingsPage("000004", testutil.HoldingsPage("", "2024-12-31",
				testutil.HoldingRow{Code: "600036", MarketID: "1", Name: "招商银行", Weight: "70.00%"},
			))

		result, err := newResolver(pages, nil).ResolveHoldings(ctx, "000004")

		require.NoError(t, err)
		assert.Equal(t, "Fund 000004", result.FundName)
	})
}

// TestResolver_FeederResolution tests target ETF resolution for feeder funds.
//
// WHY: A feeder's disclosed holdings do not describe its exposure. Resolving the
// target ETF turns a useless estimate into one backed by a single live quote.
func TestResolver_FeederResolution(t *testing.T) {
	ctx := context.Background()
	feederPage := testutil.HoldingsPage("华夏沪深300ETF联接A", "2024-12-31",
		testutil.HoldingRow{Code: "510330", MarketID: "1", Name: "华夏沪深300ETF", Weight: "45.00%"},
	)

	t.Run("replaces holdings with the found target", func(t *testing.T) {
		pages := testutil.NewMockPageSource().WithHoldingsPage("000051", feederPage)
		searcher := testutil.NewMockNameSearcher().WithResult("沪深300ETF", "510330")

		result, err := newResolver(pages, searcher).ResolveHoldings(ctx, "000051")

		require.NoError(t, err)
		assert.True(t, result.FeederTarget)
		assert.Equal(t, holdings.FeederReportDate, result.ReportDate)
		assert.Equal(t, "华夏沪深300ETF联接A", result.FundName)
		require.Len(t, result.Holdings, 1)
		assert.Equal(t, "510330", result.Holdings[0].DisplayCode)
		assert.Equal(t, "沪深300ETF", result.Holdings[0].Name)
		assert.InDelta(t, 95.0, result.Holdings[0].Weight, 1e-9)
		assert.Equal(t, "sh510330", result.Holdings[0].QuoteKey)
	})

	t.Run("shenzhen target uses the sz prefix", func(t *testing.T) {
		pages := testutil.NewMockPageSource().WithHoldingsPage("000051", feederPage)
		searcher := testutil.NewMockNameSearcher().WithResult("沪深300ETF", "159919")

		result, err := newResolver(pages, searcher).ResolveHoldings(ctx, "000051")

		require.NoError(t, err)
		assert.Equal(t, "sz159919", result.Holdings[0].QuoteKey)
	})

	t.Run("self match is rejected and retried once with ETF appended", func(t *testing.T) {
		pages := testutil.NewMockPageSource().WithHoldingsPage("001234", testutil.HoldingsPage(
			"天弘中证银行联接C", "",
		))
		searcher := testutil.NewMockNameSearcher().
			WithResult("中证银行", "001234").
			WithResult("中证银行ETF", "515290")

		result, err := newResolver(pages, searcher).ResolveHoldings(ctx, "001234")

		require.NoError(t, err)
		assert.Equal(t, []string{"中证银行", "中证银行ETF"}, searcher.Queries)
		require.Len(t, result.Holdings, 1)
		assert.Equal(t, "515290", result.Holdings[0].DisplayCode)
	})

	t.Run("no retry when the cleaned name already has ETF", func(t *testing.T) {
		pages := testutil.NewMockPageSource().WithHoldingsPage("000051", feederPage)
		searcher := testutil.NewMockNameSearcher().WithResult("沪深300ETF", "000051")

		result, err := newResolver(pages, searcher).ResolveHoldings(ctx, "000051")

		require.NoError(t, err)
		assert.Equal(t, []string{"沪深300ETF"}, searcher.Queries)
		assert.False(t, result.FeederTarget, "unresolved feeder keeps its parsed holdings")
		assert.Len(t, result.Holdings, 1)
		assert.Equal(t, "2024-12-31", result.ReportDate)
	})

	t.Run("unresolved feeder without holdings is ErrNoData", func(t *testing.T) {
		pages := testutil.NewMockPageSource().WithHoldingsPage("001234", testutil.HoldingsPage("天弘中证银行联接C", ""))
		searcher := testutil.NewMockNameSearcher()

		_, err := newResolver(pages, searcher).ResolveHoldings(ctx, "001234")

		assert.ErrorIs(t, err, apperrors.ErrNoData)
		assert.Len(t, searcher.Queries, 2)
	})

	t.Run("search failure is not an error", func(t *testing.T) {
		pages := testutil.NewMockPageSource().WithHoldingsPage("000051", feederPage)
		searcher := testutil.NewMockNameSearcher().WithError(errors.New("connection reset"))

		result, err := newResolver(pages, searcher).ResolveHoldings(ctx, "000051")

		require.NoError(t, err)
		assert.False(t, result.FeederTarget)
	})

	t.Run("nil searcher disables resolution", func(t *testing.T) {
		pages := testutil.NewMockPageSource().WithHoldingsPage("000051", feederPage)

		result, err := newResolver(pages, nil).ResolveHoldings(ctx, "000051")

		require.NoError(t, err)
		assert.False(t, result.FeederTarget)
	})

	t.Run("backup name enables feeder detection", func(t *testing.T) {
		pages := testutil.NewMockPageSource().
			WithHoldingsPage("000961", testutil.HoldingsPage("", "")).
			WithBasicInfoPage("000961", testutil.BasicInfoPage("天弘沪深300ETF联接A"))
		searcher := testutil.NewMockNameSearcher().WithResult("沪深300ETF", "515330")

		result, err := newResolver(pages, searcher).ResolveHoldings(ctx, "000961")

		require.NoError(t, err)
		assert.True(t, result.FeederTarget)
		assert.Equal(t, "天弘沪深300ETF联接A", result.FundName)
		assert.Equal(t, "sh515330", result.Holdings[0].QuoteKey)
	})
}
