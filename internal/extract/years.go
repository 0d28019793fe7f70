package extract

import (
	"regexp"
	"strings"
)

// EntryLevelYears is reported for entry-level wording and when nothing matches.
const EntryLevelYears = "0"

type yearsRule struct {
	name    string
	pattern *regexp.Regexp
	format  func(match []string) string
}

// yearsRules are tried in order against lower-cased text; the first match wins.
var yearsRules = []yearsRule{
	{
		name:    "range",
		pattern: regexp.MustCompile(`(\d+)\s*(?:-|–|to)\s*(\d+)\s*years?`),
		format:  func(m []string) string { return m[1] + "-" + m[2] },
	},
	{
		name:    "plus",
		pattern: regexp.MustCompile(`(\d+)\s*\+\s*years?`),
		format:  func(m []string) string { return m[1] + "+" },
	},
	{
		name:    "at_least",
		pattern: regexp.MustCompile(`at least\s+(\d+)\s*years?`),
		format:  func(m []string) string { return m[1] + "+" },
	},
	{
		name:    "single",
		pattern: regexp.MustCompile(`(\d+)\s+years?`),
		format:  func(m []string) string { return m[1] },
	},
	{
		name:    "entry_level",
		pattern: regexp.MustCompile(`\b(?:entry|junior|intern|new grad)\b`),
		format:  func([]string) string { return EntryLevelYears },
	},
}

// ExtractYears returns the experience requirement as "N-M", "N+", "N", or "0".
func ExtractYears(text string) string {
	lower := strings.ToLower(text)
	for _, rule := range yearsRules {
		if m := rule.pattern.FindStringSubmatch(lower); m != nil {
			return rule.format(m)
		}
	}
	return EntryLevelYears
}
