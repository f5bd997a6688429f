// Package quotekey maps exchange-local security codes to quote-feed keys.
//
// Mapping is expressed as ordered rule lists evaluated first-match-wins:
// MarketRules apply when the upstream market id is a known number, ShapeRules
// guess the market from the code itself. The last shape rule matches every
// code, so Map is total.
package quotekey

import (
	"strconv"
	"strings"
)

// Quote-feed key prefixes.
const (
	PrefixShenzhen = "sz"
	PrefixShanghai = "sh"
	PrefixBeijing  = "bj"
	PrefixHongKong = "rt_hk"
	PrefixUS       = "gb_"
)

// Upstream market ids.
const (
	MarketShenzhen = 0
	MarketShanghai = 1
	MarketHongKong = 116
	// MarketUSFloor is the lowest id used for US venues (105, 106, 107...).
	MarketUSFloor = 100
)

// HongKongCodeWidth is the zero-padded width of Hong Kong codes in the feed.
const HongKongCodeWidth = 5

// MarketRule maps a code when the upstream market id matches.
type MarketRule struct {
	Name  string
	Match func(marketID int) bool
	Build func(code string) string
}

// ShapeRule maps a code based on its shape alone.
type ShapeRule struct {
	Name  string
	Match func(code string) bool
	Build func(code string) string
}

// MarketRules are evaluated in order when a numeric market id is present.
var MarketRules = []MarketRule{
	{
		Name:  "shenzhen",
		Match: func(id int) bool { return id == MarketShenzhen },
		Build: shenzhen,
	},
	{
		Name:  "shanghai",
		Match: func(id int) bool { return id == MarketShanghai },
		Build: shanghai,
	},
	{
		Name:  "hongkong",
		Match: func(id int) bool { return id == MarketHongKong },
		Build: hongKong,
	},
	{
		Name:  "us",
		Match: func(id int) bool { return id >= MarketUSFloor && id != MarketHongKong },
		Build: us,
	},
}

// ShapeRules are evaluated in order when the market id is absent or unrecognized.
var ShapeRules = []ShapeRule{
	{
		Name:  "us-alpha",
		Match: hasASCIILetter,
		Build: us,
	},
	{
		Name:  "hongkong-short",
		Match: func(code string) bool { return len(code) < 6 },
		Build: hongKong,
	},
	{
		Name:  "shanghai",
		Match: func(code string) bool { return strings.HasPrefix(code, "6") || strings.HasPrefix(code, "5") },
		Build: shanghai,
	},
	{
		Name:  "beijing",
		Match: func(code string) bool { return strings.HasPrefix(code, "4") || strings.HasPrefix(code, "8") },
		Build: beijing,
	},
	{
		Name:  "shenzhen",
		Match: func(string) bool { return true },
		Build: shenzhen,
	},
}

// Map converts a raw security code and an optional market id into a quote key.
// An empty or non-numeric marketID counts as absent.
func Map(code, marketID string) string {
	code = strings.TrimSpace(code)

	if id, err := strconv.Atoi(strings.TrimSpace(marketID)); err == nil {
		for _, rule := range MarketRules {
			if rule.Match(id) {
				return rule.Build(code)
			}
		}
	}

	return MapByShape(code)
}

// MapByShape applies ShapeRules only.
func MapByShape(code string) string {
	for _, rule := range ShapeRules {
		if rule.Match(code) {
			return rule.Build(code)
		}
	}
	return shenzhen(code)
}

// MapETF maps an exchange-traded fund code. ETFs only list in Shanghai
// (codes starting with 5) or Shenzhen.
func MapETF(code string) string {
	code = strings.TrimSpace(code)
	if strings.HasPrefix(code, "5") {
		return shanghai(code)
	}
	return shenzhen(code)
}

// Prefix returns the market prefix of a quote key, or "" when none is known.
func Prefix(key string) string {
	for _, p := range []string{PrefixHongKong, PrefixUS, PrefixShanghai, PrefixShenzhen, PrefixBeijing} {
		if strings.HasPrefix(key, p) {
			return p
		}
	}
	return ""
}

func shenzhen(code string) string { return PrefixShenzhen + code }

func shanghai(code string) string { return PrefixShanghai + code }

func beijing(code string) string { return PrefixBeijing + code }

func us(code string) string { return PrefixUS + strings.ToLower(code) }

func hongKong(code string) string {
	return PrefixHongKong + padLeft(code, HongKongCodeWidth, '0')
}

func padLeft(s string, width int, pad byte) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(string(pad), width-len(s)) + s
}

func hasASCIILetter(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			return true
		}
	}
	return false
}
