package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Fund-NAV-Estimator/internal/apperrors"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/history"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/model"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/repository"
)

// MaxHistoryDays is the longest history window a caller may request.
const MaxHistoryDays = 3650

// coverageSlack is how far after the window start the first cached point may
// fall before the cache is considered too short. Market holidays can run past a week.
const coverageSlack = 14 * 24 * time.Hour

// HistoryFetcher fetches a NAV series from upstream.
type HistoryFetcher interface {
	FetchHistory(ctx context.Context, fundCode string, days int) ([]model.HistoryPoint, error)
}

// HistoryService serves NAV history from a sqlite cache, refreshing it from
// upstream once it is older than the TTL.
type HistoryService struct {
	fetcher HistoryFetcher
	repo    *repository.HistoryRepository
	ttl     time.Duration
	now     func() time.Time
	log     zerolog.Logger
}

// NewHistoryService creates a new HistoryService.
func NewHistoryService(fetcher HistoryFetcher, repo *repository.HistoryRepository, ttl time.Duration, log zerolog.Logger) *HistoryService {
	return &HistoryService{
		fetcher: fetcher,
		repo:    repo,
		ttl:     ttl,
		now:     time.Now,
		log:     log.With().Str("component", "history-cache").Logger(),
	}
}

// GetHistory returns the fund's NAV series for the last days calendar days.
//
// A fresh cache entry is served directly. Otherwise the series is fetched and
// stored; if that fetch fails, a stale cache entry is served instead of the error.
func (s *HistoryService) GetHistory(ctx context.Context, fundCode string, days int) ([]model.HistoryPoint, error) {
	if days <= 0 || days > MaxHistoryDays {
		return nil, apperrors.ErrInvalidDays
	}

	since := s.windowStart(days)

	lastFetched, cached, err := s.repo.LastFetched(ctx, fundCode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrFailedToRetrieveHistory, err)
	}
	if cached && s.now().Sub(lastFetched) < s.ttl {
		points, err := s.repo.GetHistory(ctx, fundCode, since)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrFailedToRetrieveHistory, err)
		}
		if covers(points, since) {
			s.log.Debug().Str("fund", fundCode).Int("points", len(points)).Msg("History cache hit")
			return points, nil
		}
	}

	points, fetchErr := s.fetcher.FetchHistory(ctx, fundCode, days)
	if fetchErr != nil {
		if cached {
			stale, err := s.repo.GetHistory(ctx, fundCode, since)
			if err == nil && len(stale) > 0 {
				s.log.Warn().Err(fetchErr).Str("fund", fundCode).Time("fetched_at", lastFetched).Msg("Serving stale history")
				return stale, nil
			}
		}
		return nil, fetchErr
	}

	if err := s.repo.SaveHistory(ctx, fundCode, points, s.now()); err != nil {
		s.log.Error().Err(err).Str("fund", fundCode).Msg("Failed to cache history")
	}
	return points, nil
}

// GetHistoryWithSummary returns the series together with its summary statistics.
func (s *HistoryService) GetHistoryWithSummary(ctx context.Context, fundCode string, days int) ([]model.HistoryPoint, model.HistorySummary, error) {
	points, err := s.GetHistory(ctx, fundCode, days)
	if err != nil {
		return nil, model.HistorySummary{}, err
	}
	return points, history.Summarize(points), nil
}

// covers reports whether cached points reach back to the window start.
func covers(points []model.HistoryPoint, since time.Time) bool {
	return len(points) > 0 && !points[0].Date.After(since.Add(coverageSlack))
}

func (s *HistoryService) windowStart(days int) time.Time {
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return today.AddDate(0, 0, -days)
}
