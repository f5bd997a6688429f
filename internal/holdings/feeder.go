package holdings

import (
	"regexp"
	"strings"

	"github.com/ndewijer/Fund-NAV-Estimator/internal/model"
)

// Feeder name markers.
const (
	FeederMarker = "联接"
	ETFMarker    = "ETF"
	// FeederReportDate replaces the report date when holdings come from a feeder target.
	FeederReportDate = "实时追踪"
)

// Thresholds are the heuristic limits that decide when a fund is re-resolved as a feeder.
type Thresholds struct {
	// LowWeight: disclosed holdings summing below this look like a feeder's wrapper positions.
	LowWeight float64
	// HighWeight: holdings summing above this indicate corrupted upstream data.
	HighWeight float64
	// TargetWeight is the weight assigned to the synthetic feeder target holding.
	TargetWeight float64
}

// DefaultThresholds returns the standard feeder thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		LowWeight:    60.0,
		HighWeight:   100.0,
		TargetWeight: 95.0,
	}
}

// IssuerPrefixes are common fund issuer names stripped from a feeder name.
// Only the first match is removed.
var IssuerPrefixes = []string{
	"南方", "华夏", "博时", "易方达", "嘉实", "富国", "广发", "汇添富", "招商",
	"工银", "中欧", "天弘", "华安", "鹏华", "国泰", "华宝", "银华", "大成", "景顺长城",
}

// structureQualifiers are removed wherever they appear. Parenthesized forms go
// before the bare marker so no empty parentheses are left behind.
var structureQualifiers = []string{
	"发起式",
	"（QDII）",
	"(QDII)",
	"QDII",
	"人民币",
	"美元",
}

var (
	trailingFeederRe = regexp.MustCompile(FeederMarker + `[A-Z]?$`)
	classSuffixRe    = regexp.MustCompile(`[A-E]$`)
)

// CleaningRule is one step of feeder name cleaning.
type CleaningRule struct {
	Name  string
	Apply func(name string) string
}

// NameCleaningRules are applied in order, each to the output of the previous one.
var NameCleaningRules = []CleaningRule{
	{Name: "issuer-prefix", Apply: stripIssuerPrefix},
	{Name: "structure-qualifiers", Apply: stripStructureQualifiers},
	{Name: "feeder-marker", Apply: stripFeederMarker},
	{Name: "class-suffix", Apply: stripClassSuffix},
}

// IsFeederName reports whether a fund name suggests the fund feeds a single target ETF.
func IsFeederName(name string) bool {
	return strings.Contains(name, FeederMarker) || strings.Contains(name, ETFMarker)
}

// ShouldResolveFeeder reports whether a fund should be re-resolved as a feeder:
// its name must suggest a feeder, and its disclosed holdings must be empty,
// sum above th.HighWeight, or sum below th.LowWeight.
func ShouldResolveFeeder(holdings []model.Holding, name string, th Thresholds) bool {
	if !IsFeederName(name) {
		return false
	}
	if len(holdings) == 0 {
		return true
	}
	total := model.HoldingsResult{Holdings: holdings}.TotalWeight()
	return total > th.HighWeight || total < th.LowWeight
}

// CleanFeederName turns a feeder fund's display name into a guess of its target's name.
func CleanFeederName(name string) string {
	cleaned := strings.TrimSpace(name)
	for _, rule := range NameCleaningRules {
		cleaned = rule.Apply(cleaned)
	}
	return cleaned
}

func stripIssuerPrefix(name string) string {
	for _, prefix := range IssuerPrefixes {
		if strings.HasPrefix(name, prefix) {
			return strings.TrimPrefix(name, prefix)
		}
	}
	return name
}

func stripStructureQualifiers(name string) string {
	for _, q := range structureQualifiers {
		name = strings.ReplaceAll(name, q, "")
	}
	return name
}

func stripFeederMarker(name string) string {
	name = trailingFeederRe.ReplaceAllString(name, "")
	return strings.ReplaceAll(name, FeederMarker, "")
}

// stripClassSuffix removes a single trailing share-class letter. "ETF" ends in
// F, outside A-E, so a literal ETF suffix survives.
func stripClassSuffix(name string) string {
	return classSuffixRe.ReplaceAllString(name, "")
}
