package model

import "time"

// QuoteRecord is a live price snapshot for one quote key.
// ChangePercent is signed and expressed in percentage points.
type QuoteRecord struct {
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	ChangePercent float64 `json:"changePercent"`
}

// ValuationDetail is the contribution of a single holding to an estimate.
// Price and ChangePercent are nil when no quote was available for the holding.
type ValuationDetail struct {
	Code          string   `json:"code"`
	Name          string   `json:"name"`
	Weight        float64  `json:"weight"`
	Price         *float64 `json:"price"`
	ChangePercent *float64 `json:"changePercent"`
	Contribution  float64  `json:"contribution"`
}

// ValuationResult is the output of one estimation.
//
// TotalWeightUsed only counts holdings with a resolved quote. When it is zero
// EstimatedChangePercent is 0.0 by convention, which callers must read as
// "no data" rather than "no change".
type ValuationResult struct {
	EstimatedChangePercent float64           `json:"estimatedChangePercent"`
	TotalWeightUsed        float64           `json:"totalWeightUsed"`
	Details                []ValuationDetail `json:"details"`
}

// HasCoverage reports whether at least one holding contributed to the estimate.
func (v ValuationResult) HasCoverage() bool {
	return v.TotalWeightUsed > 0
}

// HistoryPoint is a unit NAV observation.
type HistoryPoint struct {
	Date time.Time `json:"date"`
	NAV  float64   `json:"nav"`
}

// HistorySummary describes a NAV series over its window.
type HistorySummary struct {
	Start              time.Time `json:"start"`
	End                time.Time `json:"end"`
	Points             int       `json:"points"`
	FirstNAV           float64   `json:"firstNav"`
	LastNAV            float64   `json:"lastNav"`
	ChangePercent      float64   `json:"changePercent"`
	Volatility         float64   `json:"volatility"`         // std dev of daily returns, percentage points
	MaxDrawdownPercent float64   `json:"maxDrawdownPercent"` // largest peak-to-trough fall, percentage points
}

// IntradayPoint is one recorded estimate for a fund during a trading day.
type IntradayPoint struct {
	ID                     string        `json:"id"`
	FundCode               string        `json:"fundCode"`
	RecordedAt             time.Time     `json:"recordedAt"`
	EstimatedChangePercent float64       `json:"estimatedChangePercent"`
	Mode                   ValuationMode `json:"mode"`
}
