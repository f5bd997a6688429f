// Package numeric parses the decimal fields found in upstream payloads.
package numeric

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrNotFinite is returned for NaN and infinite values.
var ErrNotFinite = errors.New("value is not finite")

// ParseFinite parses s as a float64 and rejects NaN and ±Inf,
// which strconv.ParseFloat otherwise accepts ("NaN", "inf", "infinity").
func ParseFinite(s string) (float64, error) {
	s = strings.TrimSpace(s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q", ErrNotFinite, s)
	}
	return f, nil
}

// ParseNonNegative is ParseFinite restricted to values >= 0.
func ParseNonNegative(s string) (float64, error) {
	f, err := ParseFinite(s)
	if err != nil {
		return 0, err
	}
	if f < 0 {
		return 0, fmt.Errorf("negative value %v", f)
	}
	return f, nil
}
