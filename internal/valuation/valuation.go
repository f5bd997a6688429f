// Package valuation turns fund holdings and live quotes into an intraday NAV change estimate.
package valuation

import (
	"github.com/ndewijer/Fund-NAV-Estimator/internal/model"
)

// Estimate computes the coverage-weighted change estimate for a fund.
//
// Only holdings with a quote participate:
//
//	estimate = Σ(weight_i × change_i) / Σ(weight_i)   over quoted holdings
//
// so the estimate reflects the average move of the covered part of the
// portfolio rather than assuming uncovered weight is flat. Holdings without a
// quote appear in Details with nil price and change and a zero contribution.
// A detail's Contribution is its term of the numerator (weight × change).
// When nothing is covered the estimate is 0.0 and TotalWeightUsed is 0.
//
// Parameters:
//   - holdings: disclosed holdings, weights in percentage points
//   - quotes: quote records keyed by quote key; a missing key means no price
//
// Returns:
// ValuationResult with one detail per holding, in holding order.
func Estimate(holdings []model.Holding, quotes map[string]model.QuoteRecord) model.ValuationResult {
	var weightedSum, totalWeight float64
	details := make([]model.ValuationDetail, 0, len(holdings))

	for _, h := range holdings {
		q, ok := quotes[h.QuoteKey]
		if !ok {
			details = append(details, model.ValuationDetail{
				Code:   h.DisplayCode,
				Name:   h.Name,
				Weight: h.Weight,
			})
			continue
		}

		contribution := h.Weight * q.ChangePercent
		weightedSum += contribution
		totalWeight += h.Weight

		name := q.Name
		if name == "" {
			name = h.Name
		}
		price := q.Price
		change := q.ChangePercent

		details = append(details, model.ValuationDetail{
			Code:          h.DisplayCode,
			Name:          name,
			Weight:        h.Weight,
			Price:         &price,
			ChangePercent: &change,
			Contribution:  contribution,
		})
	}

	estimate := 0.0
	if totalWeight > 0 {
		estimate = weightedSum / totalWeight
	}

	return model.ValuationResult{
		EstimatedChangePercent: estimate,
		TotalWeightUsed:        totalWeight,
		Details:                details,
	}
}
