// Package ttfund fetches the third-party pre-computed intraday fund estimate.
package ttfund

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Fund-NAV-Estimator/internal/apperrors"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/model"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/numeric"
)

// DefaultURL is the estimate feed endpoint.
const DefaultURL = "http://fundgz.1234567.com.cn"

// estimatePayload mirrors the JSON object wrapped by the jsonpgz callback.
// Every value is sent as a string.
type estimatePayload struct {
	FundCode   string `json:"fundcode"`
	Name       string `json:"name"`
	NAVDate    string `json:"jzrq"`
	NAV        string `json:"dwjz"`
	Estimate   string `json:"gsz"`
	ChangePct  string `json:"gszzl"`
	UpdateTime string `json:"gztime"`
}

// Client fetches realtime estimates. It implements service.RealtimeEstimateSource.
type Client struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewClient creates a new estimate client. An empty baseURL uses DefaultURL.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		log:     log.With().Str("client", "ttfund").Logger(),
	}
}

// FetchRealtimeEstimate returns the current third-party estimate for a fund.
// Funds the feed does not cover answer with an empty callback, reported as apperrors.ErrNoData.
func (c *Client) FetchRealtimeEstimate(ctx context.Context, fundCode string) (model.RealtimeEstimate, error) {
	u := fmt.Sprintf("%s/js/%s.js?rt=%d", c.baseURL, fundCode, time.Now().UnixMilli())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return model.RealtimeEstimate{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return model.RealtimeEstimate{}, fmt.Errorf("%w: %v", apperrors.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.RealtimeEstimate{}, fmt.Errorf("%w: ttfund returned status %d", apperrors.ErrUnavailable, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.RealtimeEstimate{}, fmt.Errorf("%w: read body: %v", apperrors.ErrUnavailable, err)
	}

	est, err := ParseEstimate(string(data))
	if err != nil {
		c.log.Warn().Err(err).Str("fund", fundCode).Msg("Unusable realtime estimate")
		return model.RealtimeEstimate{}, err
	}
	return est, nil
}

// ParseEstimate decodes a jsonpgz({...}); payload.
func ParseEstimate(body string) (model.RealtimeEstimate, error) {
	start := strings.Index(body, "(")
	end := strings.LastIndex(body, ")")
	if start < 0 || end <= start {
		return model.RealtimeEstimate{}, fmt.Errorf("%w: not a jsonp payload", apperrors.ErrMalformedPayload)
	}

	inner := strings.TrimSpace(body[start+1 : end])
	if inner == "" {
		return model.RealtimeEstimate{}, fmt.Errorf("%w: empty realtime estimate", apperrors.ErrNoData)
	}

	var p estimatePayload
	if err := json.Unmarshal([]byte(inner), &p); err != nil {
		return model.RealtimeEstimate{}, fmt.Errorf("%w: %v", apperrors.ErrMalformedPayload, err)
	}

	change, err := numeric.ParseFinite(p.ChangePct)
	if err != nil {
		return model.RealtimeEstimate{}, fmt.Errorf("%w: estimate change %q", apperrors.ErrMalformedPayload, p.ChangePct)
	}

	// NAV values are informational; a blank one does not invalidate the estimate.
	nav, _ := numeric.ParseNonNegative(p.NAV)
	estNAV, _ := numeric.ParseNonNegative(p.Estimate)

	return model.RealtimeEstimate{
		FundCode:               p.FundCode,
		Name:                   p.Name,
		NAVDate:                p.NAVDate,
		NAV:                    nav,
		EstimatedNAV:           estNAV,
		EstimatedChangePercent: change,
		UpdateTime:             p.UpdateTime,
	}, nil
}
