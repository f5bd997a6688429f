package testutil

import (
	"database/sql"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ndewijer/Fund-NAV-Estimator/internal/history"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/holdings"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/model"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/quote"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/repository"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/service"
)

// Sources bundles the fake upstreams a test wires into the services.
type Sources struct {
	Pages    *MockPageSource
	Searcher *MockNameSearcher
	Quotes   *MockQuoteSource
	History  *MockHistorySource
	Realtime *MockRealtimeSource
}

// NewSources creates a Sources with empty fakes.
//
// Example usage:
//
//	src := testutil.NewSources()
//	src.Pages.WithHoldingsPage("110011", testutil.HoldingsPage(...))
//	svc := testutil.NewTestEstimatorService(t, db, src, service.EstimatorOptions{})
func NewSources() *Sources {
	return &Sources{
		Pages:    NewMockPageSource(),
		Searcher: NewMockNameSearcher(),
		Quotes:   NewMockQuoteSource(),
		History:  NewMockHistorySource(),
		Realtime: NewMockRealtimeSource(),
	}
}

func NewTestHistoryService(t *testing.T, db *sql.DB, src *Sources, ttl time.Duration) *service.HistoryService {
	t.Helper()

	fetcher := history.NewFetcher(src.History, history.DefaultPageSize, history.DefaultWorkers, zerolog.Nop())

	return service.NewHistoryService(
		fetcher,
		repository.NewHistoryRepository(db),
		ttl,
		zerolog.Nop(),
	)
}

// NewTestEstimatorService wires the real resolver, quote fetcher and history
// cache on top of the fakes in src.
func NewTestEstimatorService(t *testing.T, db *sql.DB, src *Sources, opts service.EstimatorOptions) *service.EstimatorService {
	t.Helper()

	resolver := holdings.NewResolver(src.Pages, src.Searcher, holdings.DefaultThresholds(), zerolog.Nop())
	quotes := quote.NewFetcher(src.Quotes, quote.DefaultBatchSize, quote.DefaultWorkers, zerolog.Nop())

	return service.NewEstimatorService(
		resolver,
		quotes,
		NewTestHistoryService(t, db, src, time.Hour),
		src.Realtime,
		opts,
		zerolog.Nop(),
	)
}

func NewTestModeService(t *testing.T, db *sql.DB) *service.ModeService {
	t.Helper()

	return service.NewModeService(repository.NewModeRepository(db), model.ModeHoldings)
}

func NewTestIntradayService(t *testing.T, db *sql.DB) *service.IntradayService {
	t.Helper()

	return service.NewIntradayService(repository.NewIntradayRepository(db), zerolog.Nop())
}

func NewTestBoardService(t *testing.T, db *sql.DB, src *Sources, codes []string) *service.BoardService {
	t.Helper()

	return service.NewBoardService(
		NewTestEstimatorService(t, db, src, service.EstimatorOptions{}),
		NewTestModeService(t, db),
		NewTestIntradayService(t, db),
		codes,
		zerolog.Nop(),
	)
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db, map[string]bool{"scheduled_refresh": false})
}

// MakeID generates a UUID string for use in tests.
//
// Example usage:
//
//	id := testutil.MakeID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeID() string {
	return uuid.New().String()
}

// MakeFundCode generates a random six-digit fund code.
//
// Example usage:
//
//	code := testutil.MakeFundCode()
//	// Returns: "483920"
func MakeFundCode() string {
	//nolint:gosec // G404: Using math/rand for test data generation is acceptable
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

// MakeFundCodes generates count distinct fund codes.
func MakeFundCodes(count int) []string {
	seen := make(map[string]bool, count)
	codes := make([]string, 0, count)
	for len(codes) < count {
		code := MakeFundCode()
		if seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}
	return codes
}
