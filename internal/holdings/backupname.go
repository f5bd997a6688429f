package holdings

import (
	"regexp"
	"strings"
)

var (
	// Basic-info page: the full-name field of the fund profile table.
	fullNameLooseRe  = regexp.MustCompile(`(?s)基金全称.*?<td>(.*?)</td>`)
	fullNameStrictRe = regexp.MustCompile(`<th>基金全称</th>\s*<td>(.*?)</td>`)
	// Bond-holdings page: the fund link or title attribute.
	fundLinkRe  = regexp.MustCompile(`fund\.eastmoney\.com/\d+\.html'>(.*?)</a>`)
	fundTitleRe = regexp.MustCompile(`title='(.*?)'`)
)

// ExtractBasicInfoName returns the fund's full name from the basic-info page,
// or "" when the field is absent.
func ExtractBasicInfoName(page string) string {
	for _, re := range []*regexp.Regexp{fullNameLooseRe, fullNameStrictRe} {
		if m := re.FindStringSubmatch(page); m != nil {
			if name := cellText(m[1]); name != "" {
				return name
			}
		}
	}
	return ""
}

// ExtractBondHoldingsName returns the fund name linked from the bond-holdings
// page, or "" when neither the link nor a title attribute is present.
func ExtractBondHoldingsName(page string) string {
	for _, re := range []*regexp.Regexp{fundLinkRe, fundTitleRe} {
		if m := re.FindStringSubmatch(page); m != nil {
			if name := strings.TrimSpace(m[1]); name != "" {
				return name
			}
		}
	}
	return ""
}
