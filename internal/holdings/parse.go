// Package holdings extracts a fund's top holdings from the upstream holdings
// page and, for feeder funds, resolves the single target ETF they track.
package holdings

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ndewijer/Fund-NAV-Estimator/internal/model"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/numeric"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/quotekey"
)

// Markers used by the holdings page.
const (
	// NoDataMarker is rendered in place of the table when nothing is disclosed.
	NoDataMarker = "暂无数据"
	// DefaultReportDate is used when the page carries no as-of date.
	DefaultReportDate = "--"
	// minTableLength is the shortest fragment that can hold a table row.
	minTableLength = 50
	// Column positions in a holdings row.
	colCode   = 1
	colName   = 2
	colWeight = 6
	minCols   = 7
)

var (
	nameRe     = regexp.MustCompile(`title='(.*?)'`)
	dateRe     = regexp.MustCompile(`截止至：<font class='px12'>(.*?)</font>`)
	contentRe  = regexp.MustCompile(`(?s)content:"(.*?)",\s*\w+\s*[:=]`)
	rowRe      = regexp.MustCompile(`(?s)<tr>(.*?)</tr>`)
	linkRe     = regexp.MustCompile(`unify/r/(\d+)\.([a-zA-Z0-9]+)`)
	cellRe     = regexp.MustCompile(`(?s)<td.*?>(.*?)</td>`)
	tagRe      = regexp.MustCompile(`<.*?>`)
	weightRepl = strings.NewReplacer("%", "", ",", "")
)

// Page is the structured content of one holdings page.
type Page struct {
	FundName   string
	ReportDate string
	Holdings   []model.Holding
	// RowErrors holds one entry per table row that could not be parsed.
	RowErrors []RowError
}

// RowError describes a skipped table row.
type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

// ParsePage extracts the fund name, report date and holdings from a raw holdings page.
// A page without a table, or with the no-data marker, yields zero holdings.
func ParsePage(content string) Page {
	page := Page{ReportDate: DefaultReportDate}

	if m := nameRe.FindStringSubmatch(content); m != nil {
		page.FundName = strings.TrimSpace(m[1])
	}
	if m := dateRe.FindStringSubmatch(content); m != nil {
		page.ReportDate = strings.TrimSpace(m[1])
	}

	table := extractTable(content)
	if table == "" || strings.Contains(table, NoDataMarker) || len(table) <= minTableLength {
		return page
	}

	for i, m := range rowRe.FindAllStringSubmatch(table, -1) {
		row := m[1]
		if strings.Contains(row, "<th") {
			continue
		}
		holding, ok, err := parseRow(row)
		if err != nil {
			page.RowErrors = append(page.RowErrors, RowError{Row: i, Err: err})
			continue
		}
		if ok {
			page.Holdings = append(page.Holdings, holding)
		}
	}

	return page
}

// extractTable returns the embedded table markup of the page.
func extractTable(content string) string {
	if m := contentRe.FindStringSubmatch(content); m != nil {
		return m[1]
	}

	_, rest, found := strings.Cut(content, `content:"`)
	if !found {
		return ""
	}
	table, _, _ := strings.Cut(rest, `",`)
	return table
}

// parseRow converts one table row into a holding.
// ok is false for rows that are legitimately skipped (too few cells, placeholder weight).
func parseRow(row string) (model.Holding, bool, error) {
	cells := cellRe.FindAllStringSubmatch(row, -1)

	code := ""
	marketID := ""
	if m := linkRe.FindStringSubmatch(row); m != nil {
		marketID = m[1]
		code = m[2]
	} else if len(cells) > colCode {
		code = cellText(cells[colCode][1])
	}

	if len(cells) < minCols {
		return model.Holding{}, false, nil
	}

	weightText := weightRepl.Replace(cellText(cells[colWeight][1]))
	if weightText == "" || weightText == "--" {
		return model.Holding{}, false, nil
	}

	weight, err := numeric.ParseFinite(weightText)
	if err != nil {
		return model.Holding{}, false, fmt.Errorf("invalid weight %q: %w", weightText, err)
	}
	if weight < 0 {
		return model.Holding{}, false, fmt.Errorf("negative weight %v", weight)
	}
	if code == "" {
		return model.Holding{}, false, fmt.Errorf("missing security code")
	}

	return model.Holding{
		DisplayCode: code,
		Name:        cellText(cells[colName][1]),
		Weight:      weight,
		QuoteKey:    quotekey.Map(code, marketID),
	}, true, nil
}

func cellText(html string) string {
	return strings.TrimSpace(tagRe.ReplaceAllString(html, ""))
}
