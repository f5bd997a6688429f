// Package validation checks caller input before it reaches the services.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ndewijer/Fund-NAV-Estimator/internal/apperrors"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/model"
)

// MaxCodesPerRequest bounds how many funds one estimates request may ask for.
const MaxCodesPerRequest = 50

// MaxDays is the longest history window accepted.
const MaxDays = 3650

var fundCodeRe = regexp.MustCompile(`^[0-9]{6}$`)

// ValidateFundCode checks that a fund code is exactly six digits.
func ValidateFundCode(code string) error {
	if !fundCodeRe.MatchString(code) {
		return fmt.Errorf("%w: %q", apperrors.ErrInvalidFundCode, code)
	}
	return nil
}

// ValidateFundCodes checks a list of fund codes. The list must not be empty.
func ValidateFundCodes(codes []string) error {
	if len(codes) == 0 {
		return apperrors.ErrEmptyCodes
	}
	if len(codes) > MaxCodesPerRequest {
		return fmt.Errorf("%w: %d exceeds %d", apperrors.ErrTooManyCodes, len(codes), MaxCodesPerRequest)
	}
	for _, code := range codes {
		if err := ValidateFundCode(code); err != nil {
			return err
		}
	}
	return nil
}

// ParseCodes splits a comma separated code list, trimming blanks.
func ParseCodes(raw string) []string {
	var codes []string
	for _, part := range strings.Split(raw, ",") {
		if code := strings.TrimSpace(part); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

// ParseDays parses a days query value. An empty value yields fallback.
func ParseDays(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 1 || days > MaxDays {
		return 0, fmt.Errorf("%w: %q", apperrors.ErrInvalidDays, raw)
	}
	return days, nil
}

// ValidateMode checks that a mode can be selected by a caller.
func ValidateMode(mode string) error {
	if !model.ValidModes[model.ValuationMode(mode)] {
		return fmt.Errorf("%w: %q", apperrors.ErrInvalidMode, mode)
	}
	return nil
}
