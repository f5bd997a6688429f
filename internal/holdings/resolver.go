package holdings

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Fund-NAV-Estimator/internal/apperrors"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/model"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/quotekey"
)

// PageSource fetches the raw pages holdings resolution reads.
// Implementations return an error wrapping apperrors.ErrUnavailable on transport failure.
type PageSource interface {
	FetchHoldingsPage(ctx context.Context, fundCode string) (string, error)
	FetchBasicInfoPage(ctx context.Context, fundCode string) (string, error)
	FetchBondHoldingsPage(ctx context.Context, fundCode string) (string, error)
}

// NameSearcher looks up the best-matching security code for a name.
// An empty code with a nil error means nothing matched.
type NameSearcher interface {
	SearchByName(ctx context.Context, name string) (string, error)
}

// Resolver resolves a fund code into its holdings.
type Resolver struct {
	pages      PageSource
	searcher   NameSearcher
	thresholds Thresholds
	log        zerolog.Logger
}

// NewResolver creates a Resolver. searcher may be nil, which disables feeder resolution.
func NewResolver(pages PageSource, searcher NameSearcher, thresholds Thresholds, log zerolog.Logger) *Resolver {
	return &Resolver{
		pages:      pages,
		searcher:   searcher,
		thresholds: thresholds,
		log:        log.With().Str("component", "holdings").Logger(),
	}
}

// ResolveHoldings returns the fund name, holdings and report date for a fund.
//
// Resolution order:
//  1. Parse the holdings page; rows that fail to parse are logged and skipped.
//  2. If the page carries no name, consult the backup name pages.
//  3. If the fund looks like a feeder (see ShouldResolveFeeder), try to resolve
//     its target ETF; a found target replaces the parsed holdings.
//  4. Otherwise return the parsed holdings, or apperrors.ErrNoData when there are none.
func (r *Resolver) ResolveHoldings(ctx context.Context, fundCode string) (model.HoldingsResult, error) {
	content, err := r.pages.FetchHoldingsPage(ctx, fundCode)
	if err != nil {
		r.log.Warn().Err(err).Str("fund", fundCode).Msg("Holdings page unavailable")
		return model.HoldingsResult{}, fmt.Errorf("%w: holdings page for %s: %v", apperrors.ErrNoData, fundCode, err)
	}

	page := ParsePage(content)
	for _, rowErr := range page.RowErrors {
		r.log.Warn().Str("fund", fundCode).Int("row", rowErr.Row).Err(rowErr.Err).Msg("Skipping holdings row")
	}

	name := page.FundName
	if name == "" {
		name = r.FetchBackupName(ctx, fundCode)
	}

	if ShouldResolveFeeder(page.Holdings, name, r.thresholds) {
		total := model.HoldingsResult{Holdings: page.Holdings}.TotalWeight()
		r.log.Info().
			Str("fund", fundCode).
			Str("name", name).
			Float64("total_weight", total).
			Msg("Fund looks like a feeder, resolving target")

		if target, ok := r.resolveFeeder(ctx, fundCode, name); ok {
			return model.HoldingsResult{
				FundName:     name,
				Holdings:     []model.Holding{target},
				ReportDate:   FeederReportDate,
				FeederTarget: true,
			}, nil
		}
	}

	if len(page.Holdings) == 0 {
		return model.HoldingsResult{}, fmt.Errorf("%w: no holdings for %s", apperrors.ErrNoData, fundCode)
	}

	if name == "" {
		name = PlaceholderName(fundCode)
	}

	return model.HoldingsResult{
		FundName:   name,
		Holdings:   page.Holdings,
		ReportDate: page.ReportDate,
	}, nil
}

// PlaceholderName is the synthetic name used when no source yields a fund name.
func PlaceholderName(fundCode string) string {
	return "Fund " + fundCode
}

// FetchBackupName looks the fund name up on the basic-info page, then on the
// bond-holdings page. It returns "" when neither yields a name.
func (r *Resolver) FetchBackupName(ctx context.Context, fundCode string) string {
	if page, err := r.pages.FetchBasicInfoPage(ctx, fundCode); err != nil {
		r.log.Warn().Err(err).Str("fund", fundCode).Msg("Basic info page unavailable")
	} else if name := ExtractBasicInfoName(page); name != "" {
		return name
	}

	if page, err := r.pages.FetchBondHoldingsPage(ctx, fundCode); err != nil {
		r.log.Warn().Err(err).Str("fund", fundCode).Msg("Bond holdings page unavailable")
	} else if name := ExtractBondHoldingsName(page); name != "" {
		return name
	}

	return ""
}

// resolveFeeder searches for the target ETF of a feeder fund. A search hit on
// the fund's own code is rejected; when the cleaned name has no ETF marker the
// search is retried once with the marker appended.
func (r *Resolver) resolveFeeder(ctx context.Context, fundCode, fundName string) (model.Holding, bool) {
	if r.searcher == nil {
		return model.Holding{}, false
	}

	targetName := CleanFeederName(fundName)
	r.log.Info().Str("fund", fundCode).Str("target_name", targetName).Msg("Searching feeder target")

	targetCode := r.search(ctx, fundCode, targetName)
	if targetCode == "" && !strings.Contains(targetName, ETFMarker) {
		targetCode = r.search(ctx, fundCode, targetName+ETFMarker)
	}

	if targetCode == "" {
		r.log.Info().Str("fund", fundCode).Err(apperrors.ErrTargetNotFound).Msg("No feeder target")
		return model.Holding{}, false
	}

	r.log.Info().Str("fund", fundCode).Str("target", targetCode).Msg("Found feeder target")

	return model.Holding{
		DisplayCode: targetCode,
		Name:        targetName,
		Weight:      r.thresholds.TargetWeight,
		QuoteKey:    quotekey.MapETF(targetCode),
	}, true
}

// search returns the matched code, or "" for no match, a failed search or a self-match.
func (r *Resolver) search(ctx context.Context, fundCode, name string) string {
	code, err := r.searcher.SearchByName(ctx, name)
	if err != nil {
		r.log.Warn().Err(err).Str("fund", fundCode).Str("query", name).Msg("Name search failed")
		return ""
	}
	code = strings.TrimSpace(code)
	if code == fundCode {
		r.log.Debug().Str("fund", fundCode).Str("query", name).Msg("Rejecting self-match")
		return ""
	}
	return code
}
