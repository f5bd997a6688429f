package validation_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Fund-NAV-Estimator/internal/api/request"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/apperrors"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/validation"
)

func TestValidateFundCode(t *testing.T) {
	assert.NoError(t, validation.ValidateFundCode("110011"))
	assert.NoError(t, validation.ValidateFundCode("000001"))

	for _, code := range []string{"", "11001", "1100111", "11001a", " 110011", "１１００１１"} {
		assert.ErrorIs(t, validation.ValidateFundCode(code), apperrors.ErrInvalidFundCode, "code=%q", code)
	}
}

func TestValidateFundCodes(t *testing.T) {
	t.Run("requires at least one code", func(t *testing.T) {
		assert.ErrorIs(t, validation.ValidateFundCodes(nil), apperrors.ErrEmptyCodes)
	})

	t.Run("caps the number of codes", func(t *testing.T) {
		codes := make([]string, validation.MaxCodesPerRequest+1)
		for i := range codes {
			codes[i] = "110011"
		}
		assert.ErrorIs(t, validation.ValidateFundCodes(codes), apperrors.ErrTooManyCodes)
	})

	t.Run("reports the first malformed code", func(t *testing.T) {
		err := validation.ValidateFundCodes([]string{"110011", "bad"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidFundCode)
		assert.Contains(t, err.Error(), "bad")
	})
}

func TestParseCodes(t *testing.T) {
	assert.Equal(t, []string{"110011", "000001"}, validation.ParseCodes(" 110011,,000001 , "))
	assert.Empty(t, validation.ParseCodes(""))
}

func TestParseDays(t *testing.T) {
	days, err := validation.ParseDays("", 365)
	require.NoError(t, err)
	assert.Equal(t, 365, days)

	days, err = validation.ParseDays("3650", 365)
	require.NoError(t, err)
	assert.Equal(t, 3650, days)

	for _, raw := range []string{"0", "-1", "3651", "1.5", "abc"} {
		_, err := validation.ParseDays(raw, 365)
		assert.ErrorIs(t, err, apperrors.ErrInvalidDays, "raw=%q", raw)
	}
}

func TestValidateModeRequests(t *testing.T) {
	assert.NoError(t, validation.ValidateSetMode(request.SetModeRequest{Mode: "holdings"}))
	assert.NoError(t, validation.ValidateSetMode(request.SetModeRequest{Mode: "realtime_api"}))

	err := validation.ValidateSetMode(request.SetModeRequest{Mode: "none"})
	var verr *validation.Error
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "mode")

	err = validation.ValidateApplyMode(request.ApplyModeRequest{Mode: "bogus"})
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "mode")
	assert.Contains(t, verr.Fields, "codes")

	assert.NoError(t, validation.ValidateApplyMode(request.ApplyModeRequest{Codes: []string{"110011"}, Mode: "holdings"}))
}
