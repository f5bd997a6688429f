// Package history fetches a fund's historical unit NAV series from a paged upstream.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Fund-NAV-Estimator/internal/apperrors"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/model"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/numeric"
)

// Paging defaults.
const (
	// DefaultPageSize is the number of records requested per page.
	DefaultPageSize = 20
	// DefaultWorkers bounds the number of pages in flight.
	DefaultWorkers = 10
	// DateLayout is the upstream record date format.
	DateLayout = "2006-01-02"
)

// PageSource fetches one raw JSON page of NAV history.
type PageSource interface {
	FetchHistoryPage(ctx context.Context, fundCode string, pageIndex, pageSize int) ([]byte, error)
}

// page mirrors the upstream history payload.
type page struct {
	Data struct {
		LSJZList []record `json:"LSJZList"`
	} `json:"Data"`
}

type record struct {
	Date string `json:"FSRQ"`
	NAV  string `json:"DWJZ"`
}

// Fetcher assembles a NAV series from concurrently fetched pages.
type Fetcher struct {
	source   PageSource
	pageSize int
	workers  int
	now      func() time.Time
	log      zerolog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClock overrides the clock used to compute the window cutoff.
func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) { f.now = now }
}

// NewFetcher creates a Fetcher. Non-positive pageSize or workers use the defaults.
func NewFetcher(source PageSource, pageSize, workers int, log zerolog.Logger, opts ...Option) *Fetcher {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	f := &Fetcher{
		source:   source,
		pageSize: pageSize,
		workers:  workers,
		now:      time.Now,
		log:      log.With().Str("component", "history").Logger(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// PageCount returns how many pages are requested for a window of days.
// Non-trading days mean a window holds fewer records than days, so the
// count overshoots on purpose.
func PageCount(days, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return days/pageSize + 2
}

// FetchHistory returns the NAV series of the last days calendar days,
// ascending by date with one point per date.
// It returns apperrors.ErrNoData when no page yields a single record.
func (f *Fetcher) FetchHistory(ctx context.Context, fundCode string, days int) ([]model.HistoryPoint, error) {
	if days <= 0 {
		return nil, apperrors.ErrInvalidDays
	}

	pages := PageCount(days, f.pageSize)
	results := make([][]model.HistoryPoint, pages)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers)

	for i := 0; i < pages; i++ {
		i := i
		g.Go(func() error {
			results[i] = f.fetchPage(gctx, fundCode, i+1)
			return nil
		})
	}
	_ = g.Wait()

	byDate := make(map[time.Time]float64)
	for _, points := range results {
		for _, p := range points {
			byDate[p.Date] = p.NAV
		}
	}
	if len(byDate) == 0 {
		return nil, fmt.Errorf("%w: no history records for %s", apperrors.ErrNoData, fundCode)
	}

	cutoff := f.cutoff(days)
	series := make([]model.HistoryPoint, 0, len(byDate))
	for date, nav := range byDate {
		if date.Before(cutoff) {
			continue
		}
		series = append(series, model.HistoryPoint{Date: date, NAV: nav})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })

	f.log.Debug().Str("fund", fundCode).Int("days", days).Int("pages", pages).Int("points", len(series)).Msg("Fetched history")
	return series, nil
}

// cutoff is the first date kept: midnight UTC of today minus days.
func (f *Fetcher) cutoff(days int) time.Time {
	now := f.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return today.AddDate(0, 0, -days)
}

func (f *Fetcher) fetchPage(ctx context.Context, fundCode string, pageIndex int) []model.HistoryPoint {
	raw, err := f.source.FetchHistoryPage(ctx, fundCode, pageIndex, f.pageSize)
	if err != nil {
		f.log.Warn().Err(err).Str("fund", fundCode).Int("page", pageIndex).Msg("History page failed")
		return nil
	}

	points, skipped, err := ParsePage(raw)
	if err != nil {
		f.log.Warn().Err(err).Str("fund", fundCode).Int("page", pageIndex).Msg("Malformed history page")
		return nil
	}
	if skipped > 0 {
		f.log.Warn().Str("fund", fundCode).Int("page", pageIndex).Int("skipped", skipped).Msg("Skipped history records")
	}
	return points
}

// ParsePage decodes one history page. Records with an unparseable date or a
// non-positive or non-finite NAV are skipped and counted.
func ParsePage(raw []byte) (points []model.HistoryPoint, skipped int, err error) {
	var p page
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", apperrors.ErrMalformedPayload, err)
	}

	points = make([]model.HistoryPoint, 0, len(p.Data.LSJZList))
	for _, r := range p.Data.LSJZList {
		date, err := time.Parse(DateLayout, strings.TrimSpace(r.Date))
		if err != nil {
			skipped++
			continue
		}
		nav, err := numeric.ParseFinite(r.NAV)
		if err != nil || nav <= 0 {
			skipped++
			continue
		}
		points = append(points, model.HistoryPoint{Date: date, NAV: nav})
	}
	return points, skipped, nil
}
