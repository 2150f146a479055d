package app

import (
	"sort"
	"strings"

	"delai_travel/internal/domain"
)

// cityAliases is the explicit, finite alias table for city filtering. A
// requested city absent from this table yields zero matches; cross-city
// leakage is never acceptable even when the outcome is an empty result.
var cityAliases = map[string][]string{
	"manila":  {"manila", "pasay", "caloocan", "makati", "quezon", "taguig"},
	"cebu":    {"cebu", "lapu-lapu", "mactan", "cebu airport"},
	"boracay": {"boracay", "malay", "caticlan"},
	"siargao": {"siargao", "general luna", "del carmen"},
	"davao":   {"davao"},
	"gensan":  {"gensan", "general santos"},
	"baguio":  {"baguio"},
	"palawan": {"palawan", "puerto princesa", "el nido", "coron"},
	"bohol":   {"bohol", "tagbilaran", "panglao"},
}

// FilterHotels applies the six filter stages in order: city, price,
// specific location, budget/luxury, sort, limit. Output order is preserved
// through to display.
func FilterHotels(records []domain.HotelRecord, city, specificLocation string, req domain.RequirementSet) []domain.HotelRecord {
	out := filterByCity(records, city)
	out = filterByPrice(out, req.Price)
	out = filterBySpecificLocation(out, specificLocation)
	out = filterByTier(out, req.FilterBy)
	out = sortHotels(out, req.SortBy)
	if req.Limit > 0 && len(out) > req.Limit {
		out = out[:req.Limit]
	}
	return out
}

func filterByCity(records []domain.HotelRecord, city string) []domain.HotelRecord {
	city = strings.ToLower(strings.TrimSpace(city))
	if city == "" {
		return records
	}
	aliases, ok := cityAliases[city]
	if !ok {
		return nil
	}
	var out []domain.HotelRecord
	for _, r := range records {
		rc := strings.ToLower(r.City)
		for _, a := range aliases {
			if strings.Contains(rc, a) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

func filterByPrice(records []domain.HotelRecord, pf *domain.PriceFilter) []domain.HotelRecord {
	if pf == nil {
		return records
	}
	var out []domain.HotelRecord
	for _, r := range records {
		switch pf.Type {
		case domain.PriceAround:
			if r.Total >= pf.Min && r.Total <= pf.Max {
				out = append(out, r)
			}
		case domain.PriceUnder:
			if r.Total <= pf.Max {
				out = append(out, r)
			}
		case domain.PriceOver:
			if r.Total >= pf.Min {
				out = append(out, r)
			}
		}
	}
	return out
}

// filterBySpecificLocation narrows by sub-area but reverts to the incoming
// set when nothing matches. A named sub-area with no exact hit must not erase
// an otherwise valid city-level result set.
func filterBySpecificLocation(records []domain.HotelRecord, loc string) []domain.HotelRecord {
	loc = strings.ToLower(strings.TrimSpace(loc))
	if loc == "" {
		return records
	}
	var out []domain.HotelRecord
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.HotelName), loc) ||
			strings.Contains(strings.ToLower(r.Address), loc) ||
			strings.Contains(strings.ToLower(r.City), loc) {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return records
	}
	return out
}

func filterByTier(records []domain.HotelRecord, tier domain.FilterBy) []domain.HotelRecord {
	if tier == domain.FilterNone {
		return records
	}
	var out []domain.HotelRecord
	for _, r := range records {
		switch tier {
		case domain.FilterBudget:
			if r.Total <= BudgetPriceCeiling {
				out = append(out, r)
			}
		case domain.FilterLuxury:
			if r.HotelRating >= LuxuryMinRating {
				out = append(out, r)
			}
		}
	}
	return out
}

// sortHotels sorts a copy; ties retain original catalog order.
func sortHotels(records []domain.HotelRecord, order domain.SortBy) []domain.HotelRecord {
	if order == domain.SortNone || len(records) < 2 {
		return records
	}
	out := make([]domain.HotelRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		switch order {
		case domain.SortPriceAsc:
			return out[i].Total < out[j].Total
		case domain.SortPriceDesc:
			return out[i].Total > out[j].Total
		case domain.SortRatingAsc:
			return out[i].HotelRating < out[j].HotelRating
		case domain.SortRatingDesc:
			return out[i].HotelRating > out[j].HotelRating
		}
		return false
	})
	return out
}
