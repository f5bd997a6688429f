package request

// SetModeRequest selects the valuation mode of one fund.
type SetModeRequest struct {
	Mode string `json:"mode"`
}

// ApplyModeRequest selects the same valuation mode for several funds.
type ApplyModeRequest struct {
	Codes []string `json:"codes"`
	Mode  string   `json:"mode"`
}
