// Package sina fetches live quotes and name-search suggestions from the sina feeds.
// Both feeds are served as GBK text.
package sina

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/ndewijer/Fund-NAV-Estimator/internal/apperrors"
)

// Default upstream endpoints.
const (
	DefaultQuoteURL   = "http://hq.sinajs.cn"
	DefaultSuggestURL = "http://suggest3.sinajs.cn"
)

// quoteReferer is required by the quote feed; requests without it are refused.
const quoteReferer = "http://finance.sina.com.cn/"

// Client talks to the sina quote and suggest feeds. It implements
// quote.BatchSource and holdings.NameSearcher.
type Client struct {
	quoteURL   string
	suggestURL string
	client     *http.Client
	log        zerolog.Logger
}

// NewClient creates a new sina client. Empty URLs use the defaults.
func NewClient(quoteURL, suggestURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if quoteURL == "" {
		quoteURL = DefaultQuoteURL
	}
	if suggestURL == "" {
		suggestURL = DefaultSuggestURL
	}
	return &Client{
		quoteURL:   strings.TrimRight(quoteURL, "/"),
		suggestURL: strings.TrimRight(suggestURL, "/"),
		client:     &http.Client{Timeout: timeout},
		log:        log.With().Str("client", "sina").Logger(),
	}
}

// FetchQuoteBatch returns the raw quote feed text for a batch of quote keys,
// one var hq_str_<key>="..."; line per key.
func (c *Client) FetchQuoteBatch(ctx context.Context, keys []string) (string, error) {
	if len(keys) == 0 {
		return "", nil
	}
	u := c.quoteURL + "/list=" + strings.Join(keys, ",")
	return c.get(ctx, u, quoteReferer)
}

// SearchByName returns the code of the best suggestion for name, or "" when
// nothing matched.
func (c *Client) SearchByName(ctx context.Context, name string) (string, error) {
	u := c.suggestURL + "/suggest/type=&key=" + url.PathEscape(name)
	body, err := c.get(ctx, u, "")
	if err != nil {
		return "", err
	}
	code := ParseSuggest(body)
	c.log.Debug().Str("query", name).Str("code", code).Msg("Name search")
	return code, nil
}

// ParseSuggest extracts the code of the first entry of a suggest payload:
//
//	var suggestvalue="name,type,code,symbol,...;name,type,code,...";
//
// It returns "" for an empty payload or an entry with fewer than four fields.
func ParseSuggest(body string) string {
	_, value, found := strings.Cut(body, `suggestvalue="`)
	if !found {
		return ""
	}
	value = strings.TrimSpace(value)
	value = strings.TrimRight(value, `";`)
	if value == "" {
		return ""
	}

	first, _, _ := strings.Cut(value, ";")
	fields := strings.Split(first, ",")
	if len(fields) < 4 {
		return ""
	}
	return strings.TrimSpace(fields[2])
}

// get performs a GET and returns the GBK body decoded to UTF-8.
// Transport failures and non-200 responses wrap apperrors.ErrUnavailable.
func (c *Client) get(ctx context.Context, u, referer string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	if referer != "" {
		req.Header.Set("Referer", referer)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: sina returned status %d", apperrors.ErrUnavailable, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", apperrors.ErrUnavailable, err)
	}

	text, err := simplifiedchinese.GBK.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("%w: decode gbk: %v", apperrors.ErrMalformedPayload, err)
	}
	return string(text), nil
}
