package model

import "time"

// ValuationMode selects how a fund's intraday change is estimated.
type ValuationMode string

const (
	// ModeHoldings estimates from the disclosed top holdings and live quotes.
	ModeHoldings ValuationMode = "holdings"
	// ModeRealtimeAPI uses the third-party pre-computed real-time estimate.
	ModeRealtimeAPI ValuationMode = "realtime_api"
	// ModeRealtimeFallback marks a snapshot that fell back to the realtime API
	// after the holdings pipeline produced no data.
	ModeRealtimeFallback ValuationMode = "realtime_api_fallback"
	// ModeNone marks a snapshot where every path failed.
	ModeNone ValuationMode = "none"
)

// ValidModes lists the modes a caller may select for a fund.
var ValidModes = map[ValuationMode]bool{
	ModeHoldings:    true,
	ModeRealtimeAPI: true,
}

// Holding is one disclosed position of a fund.
// Weight is expressed in percentage points.
type Holding struct {
	DisplayCode string  `json:"code"`
	Name        string  `json:"name"`
	Weight      float64 `json:"weight"`
	QuoteKey    string  `json:"quoteKey"`
}

// HoldingsResult is the outcome of holdings resolution for a single fund.
type HoldingsResult struct {
	FundName     string    `json:"fundName"`
	Holdings     []Holding `json:"holdings"`
	ReportDate   string    `json:"reportDate"`
	FeederTarget bool      `json:"feederTarget"` // true when Holdings is a synthetic feeder target
}

// TotalWeight returns the sum of the holding weights.
func (r HoldingsResult) TotalWeight() float64 {
	total := 0.0
	for _, h := range r.Holdings {
		total += h.Weight
	}
	return total
}

// QuoteKeys returns the quote keys of the holdings in holding order.
func (r HoldingsResult) QuoteKeys() []string {
	keys := make([]string, 0, len(r.Holdings))
	for _, h := range r.Holdings {
		keys = append(keys, h.QuoteKey)
	}
	return keys
}

// RealtimeEstimate is a third-party pre-computed intraday estimate for a fund.
type RealtimeEstimate struct {
	FundCode               string  `json:"fundCode"`
	Name                   string  `json:"name"`
	NAVDate                string  `json:"navDate"`
	NAV                    float64 `json:"nav"`
	EstimatedNAV           float64 `json:"estimatedNav"`
	EstimatedChangePercent float64 `json:"estimatedChangePercent"`
	UpdateTime             string  `json:"updateTime"`
}

// Snapshot status values.
const (
	StatusOK              = "ok"
	StatusHoldingsMissing = "holdings unavailable"
	StatusError           = "error"
)

// FundSnapshot is the assembled result of one refresh for one fund.
// Snapshots are never mutated after being published; a refresh builds new ones.
type FundSnapshot struct {
	FundCode               string           `json:"fundCode"`
	FundName               string           `json:"fundName"`
	ReportDate             string           `json:"reportDate"`
	Mode                   ValuationMode    `json:"mode"`
	Status                 string           `json:"status"`
	EstimatedChangePercent *float64         `json:"estimatedChangePercent"`
	Valuation              *ValuationResult `json:"valuation,omitempty"`
	History                []HistoryPoint   `json:"history,omitempty"`
	UpdatedAt              time.Time        `json:"updatedAt"`
	Error                  string           `json:"error,omitempty"`
}

// Succeeded reports whether the snapshot carries an estimate.
func (s FundSnapshot) Succeeded() bool {
	return s.Status == StatusOK && s.EstimatedChangePercent != nil
}

// Board is the set of snapshots published by one refresh.
type Board struct {
	Snapshots   []FundSnapshot `json:"snapshots"`
	RefreshedAt time.Time      `json:"refreshedAt"`
}
