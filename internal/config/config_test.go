package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Fund-NAV-Estimator/internal/config"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/model"
)

// TestLoad tests environment-driven configuration.
//
// WHY: Every threshold of the pipeline is overridable. A typo in one value
// must not silently zero a worker count or a batch size.
func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := config.Load()

		require.NoError(t, err)
		assert.Equal(t, "localhost:5001", cfg.Server.Addr)
		assert.Equal(t, model.ModeHoldings, cfg.Estimator.DefaultMode)
		assert.True(t, cfg.Estimator.RealtimeFallback)
		assert.Equal(t, 5, cfg.Estimator.FundWorkers)
		assert.Equal(t, 10, cfg.Estimator.HistoryWorkers)
		assert.Equal(t, 20, cfg.Estimator.QuoteBatchSize)
		assert.Equal(t, 20, cfg.Estimator.HistoryPageSize)
		assert.Equal(t, 365, cfg.Estimator.HistoryDays)
		assert.Equal(t, time.Hour, cfg.Estimator.HistoryCacheTTL)
		assert.InDelta(t, 60.0, cfg.Estimator.FeederLowWeight, 1e-9)
		assert.InDelta(t, 100.0, cfg.Estimator.FeederHighWeight, 1e-9)
		assert.InDelta(t, 95.0, cfg.Estimator.FeederTargetWeight, 1e-9)
		assert.Equal(t, 5*time.Second, cfg.Upstream.Timeout)
		assert.Equal(t, "@every 60s", cfg.Refresh.Schedule)
		assert.Equal(t, "@daily", cfg.Refresh.PruneSchedule)
		assert.Equal(t, 7, cfg.Refresh.IntradayRetentionDays)
		assert.Empty(t, cfg.Estimator.FundCodes)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("SERVER_PORT", "8080")
		t.Setenv("FUND_CODES", "005827, 000051,,161725")
		t.Setenv("DEFAULT_VALUATION_MODE", "realtime_api")
		t.Setenv("REALTIME_FALLBACK", "false")
		t.Setenv("QUOTE_BATCH_SIZE", "10")
		t.Setenv("HTTP_TIMEOUT", "3s")
		t.Setenv("FEEDER_LOW_WEIGHT", "50")
		t.Setenv("CORS_ALLOWED_ORIGINS", "https://funds.example.com")

		cfg, err := config.Load()

		require.NoError(t, err)
		assert.Equal(t, "localhost:8080", cfg.Server.Addr)
		assert.Equal(t, []string{"005827", "000051", "161725"}, cfg.Estimator.FundCodes)
		assert.Equal(t, model.ModeRealtimeAPI, cfg.Estimator.DefaultMode)
		assert.False(t, cfg.Estimator.RealtimeFallback)
		assert.Equal(t, 10, cfg.Estimator.QuoteBatchSize)
		assert.Equal(t, 3*time.Second, cfg.Upstream.Timeout)
		assert.InDelta(t, 50.0, cfg.Estimator.FeederLowWeight, 1e-9)
		assert.Equal(t, []string{"https://funds.example.com"}, cfg.CORS.AllowedOrigins)
	})

	t.Run("invalid values keep defaults and are reported", func(t *testing.T) {
		t.Setenv("FUND_WORKERS", "zero")
		t.Setenv("QUOTE_BATCH_SIZE", "-1")
		t.Setenv("HISTORY_CACHE_TTL", "soon")
		t.Setenv("DEFAULT_VALUATION_MODE", "magic")

		cfg, err := config.Load()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "FUND_WORKERS")
		assert.Contains(t, err.Error(), "QUOTE_BATCH_SIZE")
		assert.Contains(t, err.Error(), "HISTORY_CACHE_TTL")
		assert.Contains(t, err.Error(), "DEFAULT_VALUATION_MODE")
		require.NotNil(t, cfg)
		assert.Equal(t, 5, cfg.Estimator.FundWorkers)
		assert.Equal(t, 20, cfg.Estimator.QuoteBatchSize)
		assert.Equal(t, time.Hour, cfg.Estimator.HistoryCacheTTL)
		assert.Equal(t, model.ModeHoldings, cfg.Estimator.DefaultMode)
	})
}
