package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Fund-NAV-Estimator/internal/apperrors"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/model"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/repository"
)

// MarketLocation is the time zone that defines a trading day.
var MarketLocation = time.FixedZone("CST", 8*60*60)

// IntradayService records estimates through the trading day so they can be charted.
type IntradayService struct {
	repo *repository.IntradayRepository
	loc  *time.Location
	now  func() time.Time
	log  zerolog.Logger
}

// NewIntradayService creates a new IntradayService.
func NewIntradayService(repo *repository.IntradayRepository, log zerolog.Logger) *IntradayService {
	return &IntradayService{
		repo: repo,
		loc:  MarketLocation,
		now:  time.Now,
		log:  log.With().Str("component", "intraday").Logger(),
	}
}

// Record stores one point per successful snapshot and returns how many were stored.
// A failed insert is logged and does not stop the others.
func (s *IntradayService) Record(ctx context.Context, snapshots []model.FundSnapshot) (int, error) {
	recorded := 0
	var firstErr error
	for _, snap := range snapshots {
		if !snap.Succeeded() {
			continue
		}
		_, err := s.repo.InsertPoint(ctx, model.IntradayPoint{
			FundCode:               snap.FundCode,
			RecordedAt:             snap.UpdatedAt,
			EstimatedChangePercent: *snap.EstimatedChangePercent,
			Mode:                   snap.Mode,
		})
		if err != nil {
			s.log.Error().Err(err).Str("fund", snap.FundCode).Msg("Failed to record intraday estimate")
			if firstErr == nil {
				firstErr = fmt.Errorf("%w: %v", apperrors.ErrFailedToRecordIntraday, err)
			}
			continue
		}
		recorded++
	}
	return recorded, firstErr
}

// Today returns the points recorded for a fund since the start of the current trading day.
func (s *IntradayService) Today(ctx context.Context, fundCode string) ([]model.IntradayPoint, error) {
	points, err := s.repo.GetPoints(ctx, fundCode, s.dayStart(s.now()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrFailedToRetrieveIntraday, err)
	}
	return points, nil
}

// Prune removes points from trading days older than keepDays and returns the number removed.
func (s *IntradayService) Prune(ctx context.Context, keepDays int) (int64, error) {
	cutoff := s.dayStart(s.now()).AddDate(0, 0, -keepDays)
	return s.repo.DeleteBefore(ctx, cutoff)
}

func (s *IntradayService) dayStart(t time.Time) time.Time {
	local := t.In(s.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
}
