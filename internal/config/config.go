package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ndewijer/Fund-NAV-Estimator/internal/model"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	CORS      CORSConfig
	Log       LogConfig
	Estimator EstimatorConfig
	Upstream  UpstreamConfig
	Refresh   RefreshConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Pretty bool
}

// EstimatorConfig holds the estimation pipeline settings
type EstimatorConfig struct {
	FundCodes          []string
	DefaultMode        model.ValuationMode
	RealtimeFallback   bool
	FundWorkers        int
	HistoryWorkers     int
	QuoteBatchSize     int
	HistoryPageSize    int
	HistoryDays        int
	HistoryCacheTTL    time.Duration
	FeederLowWeight    float64
	FeederHighWeight   float64
	FeederTargetWeight float64
}

// UpstreamConfig holds upstream endpoints and the per-request timeout
type UpstreamConfig struct {
	Timeout         time.Duration
	EastmoneyF10URL string
	EastmoneyAPIURL string
	SinaQuoteURL    string
	SinaSuggestURL  string
	TTFundURL       string
}

// RefreshConfig holds the background board refresh settings
type RefreshConfig struct {
	Enabled  bool
	Schedule string

	// PruneSchedule runs removal of intraday points older than IntradayRetentionDays.
	PruneSchedule         string
	IntradayRetentionDays int
}

// Load reads configuration from environment variables and .env file.
// Unparseable values keep their default and are reported together in the returned error.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	p := &parser{}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/fund_estimator.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost")),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: p.bool("LOG_PRETTY", false),
		},
		Estimator: EstimatorConfig{
			FundCodes:          splitList(getEnv("FUND_CODES", "")),
			DefaultMode:        p.mode("DEFAULT_VALUATION_MODE", model.ModeHoldings),
			RealtimeFallback:   p.bool("REALTIME_FALLBACK", true),
			FundWorkers:        p.positiveInt("FUND_WORKERS", 5),
			HistoryWorkers:     p.positiveInt("HISTORY_WORKERS", 10),
			QuoteBatchSize:     p.positiveInt("QUOTE_BATCH_SIZE", 20),
			HistoryPageSize:    p.positiveInt("HISTORY_PAGE_SIZE", 20),
			HistoryDays:        p.positiveInt("HISTORY_DAYS", 365),
			HistoryCacheTTL:    p.duration("HISTORY_CACHE_TTL", time.Hour),
			FeederLowWeight:    p.float("FEEDER_LOW_WEIGHT", 60),
			FeederHighWeight:   p.float("FEEDER_HIGH_WEIGHT", 100),
			FeederTargetWeight: p.float("FEEDER_TARGET_WEIGHT", 95),
		},
		Upstream: UpstreamConfig{
			Timeout:         p.duration("HTTP_TIMEOUT", 5*time.Second),
			EastmoneyF10URL: getEnv("EASTMONEY_F10_URL", "http://fundf10.eastmoney.com"),
			EastmoneyAPIURL: getEnv("EASTMONEY_API_URL", "http://api.fund.eastmoney.com"),
			SinaQuoteURL:    getEnv("SINA_QUOTE_URL", "http://hq.sinajs.cn"),
			SinaSuggestURL:  getEnv("SINA_SUGGEST_URL", "http://suggest3.sinajs.cn"),
			TTFundURL:       getEnv("TTFUND_URL", "http://fundgz.1234567.com.cn"),
		},
		Refresh: RefreshConfig{
			Enabled:  p.bool("REFRESH_ENABLED", true),
			Schedule: getEnv("REFRESH_SCHEDULE", "@every 60s"),

			PruneSchedule:         getEnv("PRUNE_SCHEDULE", "@daily"),
			IntradayRetentionDays: p.positiveInt("INTRADAY_RETENTION_DAYS", 7),
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, errors.Join(p.errs...)
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// splitList splits a comma separated value, dropping blanks.
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parser reads typed values and collects parse errors.
type parser struct {
	errs []error
}

func (p *parser) fail(key, value string, err error) {
	p.errs = append(p.errs, fmt.Errorf("invalid %s %q: %w", key, value, err))
}

func (p *parser) bool(key string, def bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return def
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		p.fail(key, value, err)
		return def
	}
	return b
}

func (p *parser) positiveInt(key string, def int) int {
	value := os.Getenv(key)
	if value == "" {
		return def
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		p.fail(key, value, err)
		return def
	}
	if n <= 0 {
		p.fail(key, value, errors.New("must be positive"))
		return def
	}
	return n
}

func (p *parser) float(key string, def float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return def
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		p.fail(key, value, err)
		return def
	}
	if f < 0 {
		p.fail(key, value, errors.New("must not be negative"))
		return def
	}
	return f
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return def
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		p.fail(key, value, err)
		return def
	}
	if d <= 0 {
		p.fail(key, value, errors.New("must be positive"))
		return def
	}
	return d
}

func (p *parser) mode(key string, def model.ValuationMode) model.ValuationMode {
	value := os.Getenv(key)
	if value == "" {
		return def
	}
	m := model.ValuationMode(strings.TrimSpace(value))
	if !model.ValidModes[m] {
		p.fail(key, value, errors.New("unknown valuation mode"))
		return def
	}
	return m
}
