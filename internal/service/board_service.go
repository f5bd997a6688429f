package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Fund-NAV-Estimator/internal/apperrors"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/model"
)

// BoardService keeps the latest board of snapshots for the configured funds.
//
// The board is replaced wholesale on every refresh, so readers always see one
// complete refresh and never a mix of two.
type BoardService struct {
	estimator *EstimatorService
	modes     *ModeService
	intraday  *IntradayService
	codes     []string

	board   atomic.Pointer[model.Board]
	refresh sync.Mutex
	log     zerolog.Logger
}

// NewBoardService creates a new BoardService for the given fund codes.
// intraday may be nil, which disables recording.
func NewBoardService(estimator *EstimatorService, modes *ModeService, intraday *IntradayService, codes []string, log zerolog.Logger) *BoardService {
	return &BoardService{
		estimator: estimator,
		modes:     modes,
		intraday:  intraday,
		codes:     NormalizeCodes(codes),
		log:       log.With().Str("component", "board").Logger(),
	}
}

// Codes returns the fund codes on the board.
func (s *BoardService) Codes() []string {
	return append([]string(nil), s.codes...)
}

// Board returns the latest board, or nil before the first refresh.
func (s *BoardService) Board() *model.Board {
	return s.board.Load()
}

// Refresh estimates every fund on the board with its persisted mode and
// publishes the result. Concurrent calls are serialized.
func (s *BoardService) Refresh(ctx context.Context) (*model.Board, error) {
	s.refresh.Lock()
	defer s.refresh.Unlock()

	start := time.Now()

	modes, err := s.modes.Modes(ctx, s.codes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrFailedToRefreshBoard, err)
	}

	board := &model.Board{
		Snapshots:   s.estimator.ProcessFunds(ctx, s.codes, modes),
		RefreshedAt: time.Now().UTC(),
	}
	s.board.Store(board)

	ok := 0
	for _, snap := range board.Snapshots {
		if snap.Succeeded() {
			ok++
		}
	}

	if s.intraday != nil {
		if _, err := s.intraday.Record(ctx, board.Snapshots); err != nil {
			s.log.Warn().Err(err).Msg("Some intraday estimates were not recorded")
		}
	}

	s.log.Info().
		Int("funds", len(board.Snapshots)).
		Int("ok", ok).
		Dur("duration", time.Since(start)).
		Msg("Board refreshed")

	return board, nil
}

// Name identifies the board refresh as a scheduled job.
func (s *BoardService) Name() string {
	return "board-refresh"
}

// Run refreshes the board as a scheduled job.
func (s *BoardService) Run(ctx context.Context) error {
	_, err := s.Refresh(ctx)
	return err
}
