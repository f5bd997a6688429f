package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Fund-NAV-Estimator/internal/apperrors"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/model"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/valuation"
)

// DefaultFundWorkers bounds the number of fund pipelines run concurrently.
const DefaultFundWorkers = 5

// HoldingsResolver resolves a fund code into its holdings.
type HoldingsResolver interface {
	ResolveHoldings(ctx context.Context, fundCode string) (model.HoldingsResult, error)
}

// QuoteFetcher fetches live quotes keyed by quote key.
type QuoteFetcher interface {
	FetchQuotes(ctx context.Context, keys []string) map[string]model.QuoteRecord
}

// HistoryProvider returns a fund's NAV series for the last days calendar days.
type HistoryProvider interface {
	GetHistory(ctx context.Context, fundCode string, days int) ([]model.HistoryPoint, error)
}

// RealtimeEstimateSource fetches a third-party pre-computed estimate.
type RealtimeEstimateSource interface {
	FetchRealtimeEstimate(ctx context.Context, fundCode string) (model.RealtimeEstimate, error)
}

// EstimatorOptions configures the EstimatorService.
type EstimatorOptions struct {
	Workers     int
	HistoryDays int // 0 disables history on snapshots
	DefaultMode model.ValuationMode
	// RealtimeFallback enables the realtime API when the holdings path has no data.
	RealtimeFallback bool
}

// EstimatorService runs the per-fund estimation pipeline and assembles snapshots.
type EstimatorService struct {
	holdings HoldingsResolver
	quotes   QuoteFetcher
	history  HistoryProvider
	realtime RealtimeEstimateSource
	opts     EstimatorOptions
	now      func() time.Time
	log      zerolog.Logger
}

// NewEstimatorService creates a new EstimatorService.
// history and realtime may be nil, which disables history and the realtime path.
func NewEstimatorService(
	holdings HoldingsResolver,
	quotes QuoteFetcher,
	history HistoryProvider,
	realtime RealtimeEstimateSource,
	opts EstimatorOptions,
	log zerolog.Logger,
) *EstimatorService {
	if opts.Workers <= 0 {
		opts.Workers = DefaultFundWorkers
	}
	if opts.DefaultMode == "" {
		opts.DefaultMode = model.ModeHoldings
	}
	return &EstimatorService{
		holdings: holdings,
		quotes:   quotes,
		history:  history,
		realtime: realtime,
		opts:     opts,
		now:      time.Now,
		log:      log.With().Str("component", "estimator").Logger(),
	}
}

// DefaultMode returns the mode used for funds without an explicit one.
func (s *EstimatorService) DefaultMode() model.ValuationMode {
	return s.opts.DefaultMode
}

// Holdings resolves the holdings of one fund without pricing them.
func (s *EstimatorService) Holdings(ctx context.Context, fundCode string) (model.HoldingsResult, error) {
	return s.holdings.ResolveHoldings(ctx, fundCode)
}

// ProcessFund builds a snapshot for one fund.
//
// Flow:
//   - realtime_api: use the third-party estimate; on failure degrade to holdings.
//   - holdings: resolve holdings, fetch quotes, estimate, attach history.
//     When the holdings path has no data and RealtimeFallback is on, the realtime
//     estimate is tried once (unless it already failed above).
//
// ProcessFund never returns an error: failures are reported in the snapshot's
// Status and Error fields. A history failure never fails the snapshot.
func (s *EstimatorService) ProcessFund(ctx context.Context, fundCode string, mode model.ValuationMode) model.FundSnapshot {
	realtimeTried := false

	if mode == model.ModeRealtimeAPI && s.realtime != nil {
		realtimeTried = true
		est, err := s.realtime.FetchRealtimeEstimate(ctx, fundCode)
		if err == nil {
			return s.realtimeSnapshot(ctx, fundCode, est, model.ModeRealtimeAPI, true)
		}
		s.log.Info().Err(err).Str("fund", fundCode).Msg("Realtime estimate failed, degrading to holdings")
	}

	result, err := s.holdings.ResolveHoldings(ctx, fundCode)
	if err != nil {
		if s.opts.RealtimeFallback && s.realtime != nil && !realtimeTried {
			est, rtErr := s.realtime.FetchRealtimeEstimate(ctx, fundCode)
			if rtErr == nil {
				s.log.Info().Str("fund", fundCode).Msg("Holdings unavailable, using realtime fallback")
				return s.realtimeSnapshot(ctx, fundCode, est, model.ModeRealtimeFallback, false)
			}
			s.log.Warn().Err(rtErr).Str("fund", fundCode).Msg("Realtime fallback failed")
		}
		return s.failedSnapshot(fundCode, err)
	}

	quotes := s.quotes.FetchQuotes(ctx, result.QuoteKeys())
	val := valuation.Estimate(result.Holdings, quotes)
	if !val.HasCoverage() {
		s.log.Warn().Str("fund", fundCode).Int("holdings", len(result.Holdings)).Msg("No quotes for any holding")
	}

	estimate := val.EstimatedChangePercent
	return model.FundSnapshot{
		FundCode:               fundCode,
		FundName:               result.FundName,
		ReportDate:             result.ReportDate,
		Mode:                   model.ModeHoldings,
		Status:                 model.StatusOK,
		EstimatedChangePercent: &estimate,
		Valuation:              &val,
		History:                s.fetchHistory(ctx, fundCode),
		UpdatedAt:              s.now().UTC(),
	}
}

// ProcessFunds builds snapshots for several funds concurrently. Blank and
// duplicate codes are dropped; the result follows the order of first
// appearance. modes overrides the default mode per fund code.
func (s *EstimatorService) ProcessFunds(ctx context.Context, codes []string, modes map[string]model.ValuationMode) []model.FundSnapshot {
	codes = NormalizeCodes(codes)
	snapshots := make([]model.FundSnapshot, len(codes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)

	for i, code := range codes {
		i, code := i, code
		mode, ok := modes[code]
		if !ok {
			mode = s.opts.DefaultMode
		}
		g.Go(func() error {
			snapshots[i] = s.ProcessFund(gctx, code, mode)
			return nil
		})
	}
	_ = g.Wait()

	return snapshots
}

// NormalizeCodes trims codes and drops blanks and duplicates, keeping first appearance order.
func NormalizeCodes(codes []string) []string {
	seen := make(map[string]bool, len(codes))
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, code)
	}
	return out
}

func (s *EstimatorService) realtimeSnapshot(ctx context.Context, fundCode string, est model.RealtimeEstimate, mode model.ValuationMode, withHistory bool) model.FundSnapshot {
	name := est.Name
	if name == "" {
		name = "Fund " + fundCode
	}
	estimate := est.EstimatedChangePercent
	snapshot := model.FundSnapshot{
		FundCode:               fundCode,
		FundName:               name,
		ReportDate:             est.UpdateTime,
		Mode:                   mode,
		Status:                 model.StatusOK,
		EstimatedChangePercent: &estimate,
		UpdatedAt:              s.now().UTC(),
	}
	if withHistory {
		snapshot.History = s.fetchHistory(ctx, fundCode)
	}
	return snapshot
}

func (s *EstimatorService) failedSnapshot(fundCode string, err error) model.FundSnapshot {
	status, mode := model.StatusError, model.ModeNone
	if errors.Is(err, apperrors.ErrNoData) {
		status, mode = model.StatusHoldingsMissing, model.ModeHoldings
	}
	s.log.Warn().Err(err).Str("fund", fundCode).Str("status", status).Msg("Fund estimate failed")

	return model.FundSnapshot{
		FundCode:   fundCode,
		FundName:   "--",
		ReportDate: "--",
		Mode:       mode,
		Status:     status,
		UpdatedAt:  s.now().UTC(),
		Error:      err.Error(),
	}
}

func (s *EstimatorService) fetchHistory(ctx context.Context, fundCode string) []model.HistoryPoint {
	if s.history == nil || s.opts.HistoryDays <= 0 {
		return nil
	}
	points, err := s.history.GetHistory(ctx, fundCode, s.opts.HistoryDays)
	if err != nil {
		s.log.Warn().Err(err).Str("fund", fundCode).Msg("History unavailable")
		return nil
	}
	return points
}
