package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ndewijer/Fund-NAV-Estimator/internal/apperrors"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/model"
)

// MockPageSource is a mock implementation of holdings.PageSource.
// Pages are keyed by fund code; a missing page returns an ErrUnavailable error.
type MockPageSource struct {
	mu sync.Mutex

	HoldingsPages  map[string]string
	BasicInfoPages map[string]string
	BondPages      map[string]string
	// HoldingsCalls tracks how many times FetchHoldingsPage was called
	HoldingsCalls int
	// BackupCalls tracks basic-info and bond page fetches combined
	BackupCalls int
}

// NewMockPageSource creates an empty page source.
func NewMockPageSource() *MockPageSource {
	return &MockPageSource{
		HoldingsPages:  make(map[string]string),
		BasicInfoPages: make(map[string]string),
		BondPages:      make(map[string]string),
	}
}

// WithHoldingsPage configures the holdings page returned for a fund.
func (m *MockPageSource) WithHoldingsPage(code, page string) *MockPageSource {
	m.HoldingsPages[code] = page
	return m
}

// WithBasicInfoPage configures the basic-info page returned for a fund.
func (m *MockPageSource) WithBasicInfoPage(code, page string) *MockPageSource {
	m.BasicInfoPages[code] = page
	return m
}

// WithBondPage configures the bond-holdings page returned for a fund.
func (m *MockPageSource) WithBondPage(code, page string) *MockPageSource {
	m.BondPages[code] = page
	return m
}

func (m *MockPageSource) FetchHoldingsPage(_ context.Context, code string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.HoldingsCalls++
	return lookupPage(m.HoldingsPages, "holdings", code)
}

func (m *MockPageSource) FetchBasicInfoPage(_ context.Context, code string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BackupCalls++
	return lookupPage(m.BasicInfoPages, "basic info", code)
}

func (m *MockPageSource) FetchBondHoldingsPage(_ context.Context, code string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BackupCalls++
	return lookupPage(m.BondPages, "bond holdings", code)
}

func lookupPage(pages map[string]string, kind, code string) (string, error) {
	page, ok := pages[code]
	if !ok {
		return "", fmt.Errorf("%w: %s page for %s", apperrors.ErrUnavailable, kind, code)
	}
	return page, nil
}

// MockNameSearcher is a mock implementation of holdings.NameSearcher.
// Unknown names return "" (no match).
type MockNameSearcher struct {
	mu sync.Mutex

	Results map[string]string
	Err     error
	// Queries records every name searched, in call order
	Queries []string
}

// NewMockNameSearcher creates a searcher with no configured matches.
func NewMockNameSearcher() *MockNameSearcher {
	return &MockNameSearcher{Results: make(map[string]string)}
}

// WithResult configures the code returned for a search name.
func (m *MockNameSearcher) WithResult(name, code string) *MockNameSearcher {
	m.Results[name] = code
	return m
}

// WithError configures the searcher to fail every query.
func (m *MockNameSearcher) WithError(err error) *MockNameSearcher {
	m.Err = err
	return m
}

func (m *MockNameSearcher) SearchByName(_ context.Context, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Queries = append(m.Queries, name)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Results[name], nil
}

// MockQuoteSource is a mock implementation of quote.BatchSource.
// Each known key contributes its configured line to the batch payload.
type MockQuoteSource struct {
	mu sync.Mutex

	Lines map[string]string
	// FailKeys makes any batch containing one of these keys fail
	FailKeys map[string]bool
	// Batches records the keys of every batch requested
	Batches [][]string
}

// NewMockQuoteSource creates a quote source with no configured lines.
func NewMockQuoteSource() *MockQuoteSource {
	return &MockQuoteSource{
		Lines:    make(map[string]string),
		FailKeys: make(map[string]bool),
	}
}

// WithLine configures the raw feed line returned for a key.
func (m *MockQuoteSource) WithLine(key, line string) *MockQuoteSource {
	m.Lines[key] = line
	return m
}

// WithFailingKey makes any batch containing key fail with ErrUnavailable.
func (m *MockQuoteSource) WithFailingKey(key string) *MockQuoteSource {
	m.FailKeys[key] = true
	return m
}

func (m *MockQuoteSource) FetchQuoteBatch(_ context.Context, keys []string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Batches = append(m.Batches, append([]string(nil), keys...))

	var b strings.Builder
	for _, key := range keys {
		if m.FailKeys[key] {
			return "", fmt.Errorf("%w: quote batch containing %s", apperrors.ErrUnavailable, key)
		}
		if line, ok := m.Lines[key]; ok {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

// BatchSizes returns the size of every requested batch, sorted descending.
func (m *MockQuoteSource) BatchSizes() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	sizes := make([]int, 0, len(m.Batches))
	for _, batch := range m.Batches {
		sizes = append(sizes, len(batch))
	}
	sort.Sort(sort.Reverse(sort.IntSlice(sizes)))
	return sizes
}

// MockHistorySource is a mock implementation of history.PageSource.
// Pages are keyed by page index; a missing page returns an empty list.
type MockHistorySource struct {
	mu sync.Mutex

	Pages     map[int][]byte
	FailPages map[int]bool
	// Requested records every page index fetched
	Requested []int
}

// NewMockHistorySource creates a history source with no configured pages.
func NewMockHistorySource() *MockHistorySource {
	return &MockHistorySource{
		Pages:     make(map[int][]byte),
		FailPages: make(map[int]bool),
	}
}

// WithPage configures the payload returned for a page index.
func (m *MockHistorySource) WithPage(index int, payload []byte) *MockHistorySource {
	m.Pages[index] = payload
	return m
}

// WithFailingPage makes the given page index fail with ErrUnavailable.
func (m *MockHistorySource) WithFailingPage(index int) *MockHistorySource {
	m.FailPages[index] = true
	return m
}

func (m *MockHistorySource) FetchHistoryPage(_ context.Context, code string, pageIndex, pageSize int) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requested = append(m.Requested, pageIndex)
	if m.FailPages[pageIndex] {
		return nil, fmt.Errorf("%w: history page %d for %s", apperrors.ErrUnavailable, pageIndex, code)
	}
	if payload, ok := m.Pages[pageIndex]; ok {
		return payload, nil
	}
	return HistoryPage(pageIndex, pageSize), nil
}

// RequestedPages returns the fetched page indexes in ascending order.
func (m *MockHistorySource) RequestedPages() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	pages := append([]int(nil), m.Requested...)
	sort.Ints(pages)
	return pages
}

// MockRealtimeSource is a mock implementation of service.RealtimeEstimateSource.
type MockRealtimeSource struct {
	mu sync.Mutex

	Estimates map[string]model.RealtimeEstimate
	Err       error
	Calls     int
}

// NewMockRealtimeSource creates a realtime source with no configured estimates.
func NewMockRealtimeSource() *MockRealtimeSource {
	return &MockRealtimeSource{Estimates: make(map[string]model.RealtimeEstimate)}
}

// WithEstimate configures the estimate returned for a fund, keyed by its FundCode.
func (m *MockRealtimeSource) WithEstimate(est model.RealtimeEstimate) *MockRealtimeSource {
	m.Estimates[est.FundCode] = est
	return m
}

// WithError configures the source to fail every request.
func (m *MockRealtimeSource) WithError(err error) *MockRealtimeSource {
	m.Err = err
	return m
}

func (m *MockRealtimeSource) FetchRealtimeEstimate(_ context.Context, code string) (model.RealtimeEstimate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return model.RealtimeEstimate{}, m.Err
	}
	est, ok := m.Estimates[code]
	if !ok {
		return model.RealtimeEstimate{}, fmt.Errorf("%w: realtime estimate for %s", apperrors.ErrUnavailable, code)
	}
	return est, nil
}

// CallCount returns the number of realtime estimate requests.
func (m *MockRealtimeSource) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}
