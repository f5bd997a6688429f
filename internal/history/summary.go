package history

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ndewijer/Fund-NAV-Estimator/internal/model"
)

// Summarize describes an ascending NAV series. Volatility is the sample
// standard deviation of point-to-point returns and needs at least three points;
// with fewer it is 0. An empty series yields a zero summary.
func Summarize(points []model.HistoryPoint) model.HistorySummary {
	if len(points) == 0 {
		return model.HistorySummary{}
	}

	navs := make([]float64, len(points))
	for i, p := range points {
		navs[i] = p.NAV
	}

	first, last := navs[0], navs[len(navs)-1]
	summary := model.HistorySummary{
		Start:    points[0].Date,
		End:      points[len(points)-1].Date,
		Points:   len(points),
		FirstNAV: first,
		LastNAV:  last,
	}
	if first > 0 {
		summary.ChangePercent = (last - first) / first * 100
	}

	if returns := Returns(navs); len(returns) >= 2 {
		summary.Volatility = stat.StdDev(returns, nil)
	}
	summary.MaxDrawdownPercent = MaxDrawdown(navs)

	return summary
}

// Returns converts a NAV series to percentage returns.
// Returns[i] = (nav[i+1] - nav[i]) / nav[i] * 100. Pairs with a non-positive base are skipped.
func Returns(navs []float64) []float64 {
	if len(navs) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(navs)-1)
	for i := 1; i < len(navs); i++ {
		if navs[i-1] <= 0 {
			continue
		}
		returns = append(returns, (navs[i]-navs[i-1])/navs[i-1]*100)
	}
	return returns
}

// MaxDrawdown returns the largest peak-to-trough decline of the series, in
// percentage points of the peak. A series that never falls returns 0.
func MaxDrawdown(navs []float64) float64 {
	if len(navs) < 2 {
		return 0
	}

	// drawdowns[i] is the fall of navs[i] from the running peak.
	drawdowns := make([]float64, len(navs))
	peak := navs[0]
	for i, nav := range navs {
		peak = max(peak, nav)
		if peak > 0 {
			drawdowns[i] = (peak - nav) / peak * 100
		}
	}
	return floats.Max(drawdowns)
}
