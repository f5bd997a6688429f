// Package quote fetches live quotes for a set of quote keys from a batch quote feed.
package quote

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Fund-NAV-Estimator/internal/model"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/numeric"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/quotekey"
)

// Fetch limits.
const (
	// DefaultBatchSize is the number of keys requested per upstream call.
	DefaultBatchSize = 20
	// DefaultWorkers bounds the number of batches in flight.
	DefaultWorkers = 5
)

// BatchSource fetches the raw feed text for one batch of quote keys.
type BatchSource interface {
	FetchQuoteBatch(ctx context.Context, keys []string) (string, error)
}

// Fetcher fetches quotes in concurrent batches.
type Fetcher struct {
	source    BatchSource
	batchSize int
	workers   int
	log       zerolog.Logger
}

// NewFetcher creates a Fetcher. Non-positive batchSize or workers use the defaults.
func NewFetcher(source BatchSource, batchSize, workers int, log zerolog.Logger) *Fetcher {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Fetcher{
		source:    source,
		batchSize: batchSize,
		workers:   workers,
		log:       log.With().Str("component", "quote").Logger(),
	}
}

// FetchQuotes returns a quote record per key that could be fetched and parsed.
// Keys absent from the result have no available price. A failed batch only
// loses its own keys, and the result never contains a key that was not requested.
func (f *Fetcher) FetchQuotes(ctx context.Context, keys []string) map[string]model.QuoteRecord {
	keys = dedupe(keys)
	if len(keys) == 0 {
		return map[string]model.QuoteRecord{}
	}

	batches := partition(keys, f.batchSize)
	results := make([]map[string]model.QuoteRecord, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers)

	for i, batch := range batches {
		i, batch := i, batch
		g.Go(func() error {
			results[i] = f.fetchBatch(gctx, batch)
			return nil
		})
	}
	_ = g.Wait()

	quotes := make(map[string]model.QuoteRecord, len(keys))
	for i, batch := range batches {
		requested := make(map[string]bool, len(batch))
		for _, k := range batch {
			requested[k] = true
		}
		for key, rec := range results[i] {
			if requested[key] {
				quotes[key] = rec
			}
		}
	}

	f.log.Debug().Int("requested", len(keys)).Int("received", len(quotes)).Int("batches", len(batches)).Msg("Fetched quotes")
	return quotes
}

func (f *Fetcher) fetchBatch(ctx context.Context, batch []string) map[string]model.QuoteRecord {
	payload, err := f.source.FetchQuoteBatch(ctx, batch)
	if err != nil {
		f.log.Warn().Err(err).Strs("keys", batch).Msg("Quote batch failed")
		return nil
	}

	out := make(map[string]model.QuoteRecord, len(batch))
	for _, line := range strings.Split(payload, "\n") {
		key, rec, ok, err := ParseLine(line)
		if err != nil {
			f.log.Warn().Err(err).Str("line", truncate(line, 120)).Msg("Skipping quote line")
			continue
		}
		if ok {
			out[key] = rec
		}
	}
	return out
}

// ParseLine parses one feed line of the form var hq_str_<key>="f0,f1,...";
// ok is false for blank lines and empty payloads. The field layout depends on
// the key's market prefix.
func ParseLine(line string) (key string, rec model.QuoteRecord, ok bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", model.QuoteRecord{}, false, nil
	}

	lhs, rhs, found := strings.Cut(line, "=")
	if !found {
		return "", model.QuoteRecord{}, false, fmt.Errorf("no assignment in quote line")
	}
	_, key, found = strings.Cut(lhs, "hq_str_")
	if !found {
		return "", model.QuoteRecord{}, false, fmt.Errorf("no quote key in line")
	}
	key = strings.TrimSpace(key)

	body := strings.TrimSpace(rhs)
	body = strings.TrimSuffix(body, ";")
	body = strings.Trim(body, `"`)
	if body == "" {
		return key, model.QuoteRecord{}, false, nil
	}

	fields := strings.Split(body, ",")
	switch quotekey.Prefix(key) {
	case quotekey.PrefixHongKong:
		rec, err = parseFields(fields, 9, 1, 6, 8)
	case quotekey.PrefixUS:
		rec, err = parseFields(fields, 3, 0, 1, 2)
	default:
		rec, err = parseAShare(fields)
	}
	if err != nil {
		return key, model.QuoteRecord{}, false, fmt.Errorf("%s: %w", key, err)
	}
	return key, rec, true, nil
}

// parseFields reads a layout where the feed already carries the change percentage.
func parseFields(fields []string, minFields, nameIdx, priceIdx, changeIdx int) (model.QuoteRecord, error) {
	if len(fields) < minFields {
		return model.QuoteRecord{}, fmt.Errorf("expected at least %d fields, got %d", minFields, len(fields))
	}
	price, err := numeric.ParseNonNegative(fields[priceIdx])
	if err != nil {
		return model.QuoteRecord{}, fmt.Errorf("price: %w", err)
	}
	change, err := numeric.ParseFinite(fields[changeIdx])
	if err != nil {
		return model.QuoteRecord{}, fmt.Errorf("change: %w", err)
	}
	return model.QuoteRecord{
		Name:          strings.TrimSpace(fields[nameIdx]),
		Price:         price,
		ChangePercent: change,
	}, nil
}

// parseAShare reads the mainland layout: name, open, previous close, price.
// The change is derived from the previous close.
func parseAShare(fields []string) (model.QuoteRecord, error) {
	if len(fields) < 4 {
		return model.QuoteRecord{}, fmt.Errorf("expected at least 4 fields, got %d", len(fields))
	}
	prevClose, err := numeric.ParseNonNegative(fields[2])
	if err != nil {
		return model.QuoteRecord{}, fmt.Errorf("previous close: %w", err)
	}
	price, err := numeric.ParseNonNegative(fields[3])
	if err != nil {
		return model.QuoteRecord{}, fmt.Errorf("price: %w", err)
	}

	change := 0.0
	if prevClose > 0 {
		change = (price - prevClose) / prevClose * 100
	}
	return model.QuoteRecord{
		Name:          strings.TrimSpace(fields[0]),
		Price:         price,
		ChangePercent: change,
	}, nil
}

func dedupe(keys []string) []string {
	seen := make(map[string]bool, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

func partition(keys []string, size int) [][]string {
	batches := make([][]string, 0, (len(keys)+size-1)/size)
	for start := 0; start < len(keys); start += size {
		end := min(start+size, len(keys))
		batches = append(batches, keys[start:end])
	}
	return batches
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
