// Package eastmoney fetches fund pages and NAV history from the eastmoney F10 site.
package eastmoney

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/ndewijer/Fund-NAV-Estimator/internal/apperrors"
)

// Default upstream endpoints.
const (
	DefaultF10URL = "http://fundf10.eastmoney.com"
	DefaultAPIURL = "http://api.fund.eastmoney.com"
)

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	// topLine is the number of holdings rows requested per page.
	topLine = "10"
)

// Client fetches raw pages from eastmoney. It implements holdings.PageSource
// and history.PageSource.
type Client struct {
	f10URL string
	apiURL string
	client *http.Client
	log    zerolog.Logger
}

// NewClient creates a new eastmoney client. Empty URLs use the defaults.
func NewClient(f10URL, apiURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if f10URL == "" {
		f10URL = DefaultF10URL
	}
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &Client{
		f10URL: strings.TrimRight(f10URL, "/"),
		apiURL: strings.TrimRight(apiURL, "/"),
		client: &http.Client{Timeout: timeout},
		log:    log.With().Str("client", "eastmoney").Logger(),
	}
}

// FetchHoldingsPage returns the stock holdings page of a fund.
func (c *Client) FetchHoldingsPage(ctx context.Context, fundCode string) (string, error) {
	return c.fetchArchive(ctx, "jjcc", fundCode)
}

// FetchBondHoldingsPage returns the bond holdings page of a fund.
func (c *Client) FetchBondHoldingsPage(ctx context.Context, fundCode string) (string, error) {
	return c.fetchArchive(ctx, "zqcc", fundCode)
}

// FetchBasicInfoPage returns the basic-info page of a fund.
func (c *Client) FetchBasicInfoPage(ctx context.Context, fundCode string) (string, error) {
	u := fmt.Sprintf("%s/jbgk_%s.html", c.f10URL, url.PathEscape(fundCode))
	return c.get(ctx, u, "")
}

// FetchHistoryPage returns one JSON page of the fund's NAV history.
func (c *Client) FetchHistoryPage(ctx context.Context, fundCode string, pageIndex, pageSize int) ([]byte, error) {
	q := url.Values{}
	q.Set("fundCode", fundCode)
	q.Set("pageIndex", strconv.Itoa(pageIndex))
	q.Set("pageSize", strconv.Itoa(pageSize))

	u := c.apiURL + "/f10/lsjz?" + q.Encode()
	referer := fmt.Sprintf("%s/jjjz_%s.html", c.f10URL, url.PathEscape(fundCode))

	body, err := c.get(ctx, u, referer)
	if err != nil {
		return nil, err
	}
	return []byte(body), nil
}

func (c *Client) fetchArchive(ctx context.Context, kind, fundCode string) (string, error) {
	q := url.Values{}
	q.Set("type", kind)
	q.Set("code", fundCode)
	q.Set("topline", topLine)
	q.Set("year", "")
	q.Set("month", "")

	u := c.f10URL + "/FundArchivesDatas.aspx?" + q.Encode()
	referer := fmt.Sprintf("%s/ccmx_%s.html", c.f10URL, url.PathEscape(fundCode))

	return c.get(ctx, u, referer)
}

// get performs a GET and returns the body as UTF-8 text.
// Transport failures and non-200 responses wrap apperrors.ErrUnavailable.
func (c *Client) get(ctx context.Context, u, referer string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if referer != "" {
		req.Header.Set("Referer", referer)
	}

	c.log.Debug().Str("url", u).Msg("Fetching page")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: eastmoney returned status %d", apperrors.ErrUnavailable, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", apperrors.ErrUnavailable, err)
	}

	return decode(data, resp.Header.Get("Content-Type"))
}

// decode converts a GBK page to UTF-8 when the response or the page itself
// declares a gb2312/gbk charset. Other pages are returned as-is.
func decode(data []byte, contentType string) (string, error) {
	if !declaresGBK(contentType) && !declaresGBK(string(sniffHead(data))) {
		return string(data), nil
	}
	utf8, err := simplifiedchinese.GBK.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("%w: decode gbk: %v", apperrors.ErrMalformedPayload, err)
	}
	return string(utf8), nil
}

func declaresGBK(s string) bool {
	s = strings.ToLower(s)
	return strings.Contains(s, "charset=gb2312") || strings.Contains(s, "charset=gbk")
}

// sniffHead returns the part of the page where a meta charset can appear.
func sniffHead(data []byte) []byte {
	if i := bytes.Index(data, []byte("</head>")); i >= 0 {
		return data[:i]
	}
	return data[:min(len(data), 1024)]
}
