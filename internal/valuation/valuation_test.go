package valuation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Fund-NAV-Estimator/internal/model"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/valuation"
)

func twoHoldings() []model.Holding {
	return []model.Holding{
		{DisplayCode: "600519", Name: "贵州茅台", Weight: 60, QuoteKey: "sh600519"},
		{DisplayCode: "00700", Name: "腾讯控股", Weight: 40, QuoteKey: "rt_hk00700"},
	}
}

// TestEstimate tests the coverage-weighted estimate.
//
// WHY: The estimate is the number users act on. Unquoted holdings must be
// excluded from both sides of the average instead of being treated as flat.
func TestEstimate(t *testing.T) {
	t.Run("full coverage", func(t *testing.T) {
		quotes := map[string]model.QuoteRecord{
			"sh600519":   {Name: "贵州茅台", Price: 1500, ChangePercent: 2.0},
			"rt_hk00700": {Name: "腾讯控股", Price: 380, ChangePercent: -1.0},
		}

		result := valuation.Estimate(twoHoldings(), quotes)

		assert.InDelta(t, 0.8, result.EstimatedChangePercent, 1e-9)
		assert.InDelta(t, 100.0, result.TotalWeightUsed, 1e-9)
		require.Len(t, result.Details, 2)
		assert.InDelta(t, 120.0, result.Details[0].Contribution, 1e-9)
		assert.InDelta(t, -40.0, result.Details[1].Contribution, 1e-9)
		assert.True(t, result.HasCoverage())
	})

	t.Run("partial coverage excludes unmatched weight", func(t *testing.T) {
		quotes := map[string]model.QuoteRecord{
			"sh600519": {Name: "贵州茅台", Price: 1500, ChangePercent: 2.0},
		}

		result := valuation.Estimate(twoHoldings(), quotes)

		assert.InDelta(t, 2.0, result.EstimatedChangePercent, 1e-9)
		assert.InDelta(t, 60.0, result.TotalWeightUsed, 1e-9)
		require.Len(t, result.Details, 2)

		missing := result.Details[1]
		assert.Equal(t, "00700", missing.Code)
		assert.Equal(t, "腾讯控股", missing.Name)
		assert.Nil(t, missing.Price)
		assert.Nil(t, missing.ChangePercent)
		assert.Zero(t, missing.Contribution)
	})

	t.Run("empty holdings yields zero", func(t *testing.T) {
		result := valuation.Estimate(nil, map[string]model.QuoteRecord{"sh600519": {ChangePercent: 5}})

		assert.Equal(t, 0.0, result.EstimatedChangePercent)
		assert.Zero(t, result.TotalWeightUsed)
		assert.Empty(t, result.Details)
		assert.False(t, result.HasCoverage())
	})

	t.Run("no quotes yields zero", func(t *testing.T) {
		result := valuation.Estimate(twoHoldings(), nil)

		assert.Equal(t, 0.0, result.EstimatedChangePercent)
		assert.Zero(t, result.TotalWeightUsed)
		assert.Len(t, result.Details, 2)
	})

	t.Run("zero weight holdings yield zero", func(t *testing.T) {
		holdings := []model.Holding{{DisplayCode: "600519", Weight: 0, QuoteKey: "sh600519"}}
		quotes := map[string]model.QuoteRecord{"sh600519": {ChangePercent: 3.0}}

		result := valuation.Estimate(holdings, quotes)

		assert.Equal(t, 0.0, result.EstimatedChangePercent)
	})

	t.Run("quote name is preferred over holding name", func(t *testing.T) {
		holdings := []model.Holding{{DisplayCode: "510330", Name: "沪深300ETF", Weight: 95, QuoteKey: "sh510330"}}

		named := valuation.Estimate(holdings, map[string]model.QuoteRecord{
			"sh510330": {Name: "华夏沪深300ETF", Price: 4.1, ChangePercent: 0.5},
		})
		unnamed := valuation.Estimate(holdings, map[string]model.QuoteRecord{
			"sh510330": {Price: 4.1, ChangePercent: 0.5},
		})

		assert.Equal(t, "华夏沪深300ETF", named.Details[0].Name)
		assert.Equal(t, "沪深300ETF", unnamed.Details[0].Name)
		require.NotNil(t, named.Details[0].Price)
		assert.InDelta(t, 4.1, *named.Details[0].Price, 1e-9)
	})
}
