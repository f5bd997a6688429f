package numeric_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Fund-NAV-Estimator/internal/numeric"
)

// TestParseFinite verifies that only finite decimals are accepted.
//
// WHY: strconv.ParseFloat accepts NaN and infinity spellings. A single such
// value from an upstream feed would poison every sum it reaches and cannot be
// encoded as JSON, so it must be rejected at the parse boundary.
func TestParseFinite(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    float64
		wantErr bool
	}{
		{"plain", "1.25", 1.25, false},
		{"negative", "-3.5", -3.5, false},
		{"padded", "  42 ", 42, false},
		{"nan", "NaN", 0, true},
		{"inf", "inf", 0, true},
		{"negative infinity", "-Infinity", 0, true},
		{"text", "abc", 0, true},
		{"empty", "", 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := numeric.ParseFinite(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseFinite_NotFiniteError(t *testing.T) {
	_, err := numeric.ParseFinite("nan")
	assert.ErrorIs(t, err, numeric.ErrNotFinite)
}

func TestParseNonNegative(t *testing.T) {
	got, err := numeric.ParseNonNegative("0")
	require.NoError(t, err)
	assert.Zero(t, got)

	_, err = numeric.ParseNonNegative("-1")
	assert.Error(t, err)

	_, err = numeric.ParseNonNegative("+Inf")
	assert.ErrorIs(t, err, numeric.ErrNotFinite)
}
