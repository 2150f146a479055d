package app

import (
	"regexp"
	"strconv"
	"strings"

	"delai_travel/internal/domain"
)

// Tunable thresholds carried over from the product's editorial choices.
const (
	BudgetPriceCeiling = 2000.0
	LuxuryMinRating    = 4
	AroundBandLow      = 0.8
	AroundBandHigh     = 1.2
)

var (
	limitRe = regexp.MustCompile(`(?i)\b(?:find|show|top|first|list)\s+(?:me\s+)?(\d{1,2})\b`)

	// Phrase-qualified price patterns are tried before the shorthand and
	// bare-number ones so "under 5000" is never misread as a bare 5000.
	underRe = regexp.MustCompile(`(?i)\b(?:under|below|less\s+than)\s+(?:₱|php\s*)?(\d+(?:\.\d+)?)\s*(k\b|thousand\b)?`)
	overRe  = regexp.MustCompile(`(?i)\b(?:over|above|more\s+than)\s+(?:₱|php\s*)?(\d+(?:\.\d+)?)\s*(k\b|thousand\b)?`)
	shortRe = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*(?:k\b|thousand\b)`)
	bareRe  = regexp.MustCompile(`\b(\d{4,})\b`)

	budgetRe = regexp.MustCompile(`(?i)\b(?:budget|cheap)\b`)
	luxuryRe = regexp.MustCompile(`(?i)\bluxury\b|\b5[\s-]star`)

	nearRe = regexp.MustCompile(`(?i)\b(?:near|at|close\s+to)\s+(?:the\s+)?([^.,!?\n]+)`)
)

var sortRules = []struct {
	keywords []string
	order    domain.SortBy
}{
	{[]string{"cheapest", "lowest price"}, domain.SortPriceAsc},
	{[]string{"most expensive", "expensive", "highest price"}, domain.SortPriceDesc},
	{[]string{"best rated", "highest rating", "highest rated", "top rated"}, domain.SortRatingDesc},
	{[]string{"lowest rated", "worst rated"}, domain.SortRatingAsc},
}

// AnalyzeRequirements extracts count limits, sort preference, budget/luxury
// filters, sub-location mentions, and price constraints from free text. Pure
// function of the message; rules are independent and composable.
func AnalyzeRequirements(message string) domain.RequirementSet {
	var req domain.RequirementSet
	lower := strings.ToLower(message)

	if m := limitRe.FindStringSubmatch(message); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			req.Limit = n
		}
	}

	for _, rule := range sortRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				req.SortBy = rule.order
				break
			}
		}
		if req.SortBy != domain.SortNone {
			break
		}
	}

	switch {
	case budgetRe.MatchString(message):
		req.FilterBy = domain.FilterBudget
	case luxuryRe.MatchString(message):
		req.FilterBy = domain.FilterLuxury
	}

	req.Price = parsePrice(message)

	if loc := parseNearPhrase(message); loc != "" {
		req.LocationSpecific = loc
	}

	return req
}

// parsePrice applies the price patterns in fixed order; the first satisfied
// pattern wins and the rest are ignored.
func parsePrice(message string) *domain.PriceFilter {
	if m := underRe.FindStringSubmatch(message); m != nil {
		return &domain.PriceFilter{Type: domain.PriceUnder, Max: scaled(m[1], m[2])}
	}
	if m := overRe.FindStringSubmatch(message); m != nil {
		return &domain.PriceFilter{Type: domain.PriceOver, Min: scaled(m[1], m[2])}
	}
	if m := shortRe.FindStringSubmatch(message); m != nil {
		return aroundFilter(scaled(m[1], "k"))
	}
	if m := bareRe.FindStringSubmatch(message); m != nil {
		return aroundFilter(scaled(m[1], ""))
	}
	return nil
}

func aroundFilter(target float64) *domain.PriceFilter {
	return &domain.PriceFilter{
		Type:   domain.PriceAround,
		Target: target,
		Min:    target * AroundBandLow,
		Max:    target * AroundBandHigh,
	}
}

func scaled(num, suffix string) float64 {
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if strings.TrimSpace(suffix) != "" {
		n *= 1000
	}
	return n
}

var priceLikePhrase = regexp.MustCompile(`(?i)^(?:₱|php\s*)?\d`)

// parseNearPhrase captures "near/at/close to <place>" when the place reads
// like a name rather than a number.
func parseNearPhrase(message string) string {
	m := nearRe.FindStringSubmatch(message)
	if m == nil {
		return ""
	}
	phrase := strings.TrimSpace(m[1])
	if len(phrase) <= 3 {
		return ""
	}
	if priceLikePhrase.MatchString(phrase) {
		return "" // "at 5000 pesos" is a price, not a place
	}
	return strings.ToLower(phrase)
}
