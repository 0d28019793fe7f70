package extract

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/JakeFAU/careers-crawler/internal/crawler"
)

type seniorityRule struct {
	pattern *regexp.Regexp
	level   crawler.Seniority
}

// titleSeniorityRules are tried in order against the lower-cased title.
var titleSeniorityRules = []seniorityRule{
	{regexp.MustCompile(`\bprincipal\b`), crawler.SeniorityPrincipal},
	{regexp.MustCompile(`\b(?:staff|senior|lead)\b`), crawler.SenioritySenior},
	{regexp.MustCompile(`\b(?:mid|associate)\b`), crawler.SeniorityMid},
	{regexp.MustCompile(`\b(?:intern|junior|entry|graduate)\b`), crawler.SeniorityEntry},
}

var yearsValuePattern = regexp.MustCompile(`^(\d+)(?:-(\d+))?\+?$`)

// ClassifySeniority uses title keywords first and falls back to the lower
// bound of the years requirement.
func ClassifySeniority(title, years string) crawler.Seniority {
	lower := strings.ToLower(title)
	for _, rule := range titleSeniorityRules {
		if rule.pattern.MatchString(lower) {
			return rule.level
		}
	}

	m := yearsValuePattern.FindStringSubmatch(strings.TrimSpace(years))
	if m == nil {
		return crawler.SeniorityEntry
	}
	minYears, err := strconv.Atoi(m[1])
	if errors.Is(err, strconv.ErrRange) {
		return crawler.SeniorityPrincipal
	}
	if err != nil {
		return crawler.SeniorityEntry
	}
	switch {
	case minYears <= 2:
		return crawler.SeniorityEntry
	case minYears <= 4:
		return crawler.SeniorityMid
	case minYears <= 7:
		return crawler.SenioritySenior
	default:
		return crawler.SeniorityPrincipal
	}
}
