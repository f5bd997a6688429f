package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ndewijer/Fund-NAV-Estimator/internal/apperrors"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/model"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/repository"
)

// ModeService handles the per-fund valuation mode preference.
type ModeService struct {
	repo        *repository.ModeRepository
	defaultMode model.ValuationMode
}

// NewModeService creates a new ModeService. Funds without a stored mode use defaultMode.
func NewModeService(repo *repository.ModeRepository, defaultMode model.ValuationMode) *ModeService {
	if !model.ValidModes[defaultMode] {
		defaultMode = model.ModeHoldings
	}
	return &ModeService{
		repo:        repo,
		defaultMode: defaultMode,
	}
}

// Modes returns the effective mode of each code: the stored one, or the default.
func (s *ModeService) Modes(ctx context.Context, codes []string) (map[string]model.ValuationMode, error) {
	stored, err := s.repo.GetModes(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrFailedToRetrieveModes, err)
	}

	modes := make(map[string]model.ValuationMode, len(codes))
	for _, code := range NormalizeCodes(codes) {
		if mode, ok := stored[code]; ok && model.ValidModes[mode] {
			modes[code] = mode
			continue
		}
		modes[code] = s.defaultMode
	}
	return modes, nil
}

// Mode returns the effective mode of one fund.
func (s *ModeService) Mode(ctx context.Context, fundCode string) (model.ValuationMode, error) {
	mode, found, err := s.repo.GetMode(ctx, fundCode)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrFailedToRetrieveModes, err)
	}
	if !found || !model.ValidModes[mode] {
		return s.defaultMode, nil
	}
	return mode, nil
}

// SetMode stores the mode of one fund.
func (s *ModeService) SetMode(ctx context.Context, fundCode string, mode model.ValuationMode) error {
	if !model.ValidModes[mode] {
		return apperrors.ErrInvalidMode
	}
	if err := s.repo.SaveMode(ctx, fundCode, mode, time.Now()); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrFailedToSaveMode, err)
	}
	return nil
}

// ApplyToAll stores the same mode for every code atomically.
func (s *ModeService) ApplyToAll(ctx context.Context, codes []string, mode model.ValuationMode) error {
	if !model.ValidModes[mode] {
		return apperrors.ErrInvalidMode
	}
	codes = NormalizeCodes(codes)
	if len(codes) == 0 {
		return apperrors.ErrEmptyCodes
	}

	modes := make(map[string]model.ValuationMode, len(codes))
	for _, code := range codes {
		modes[code] = mode
	}
	if err := s.repo.SaveModes(ctx, modes, time.Now()); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrFailedToSaveMode, err)
	}
	return nil
}
