package travelnext

import (
	"strconv"
	"strings"

	"delai_travel/internal/domain"
)

// Supplier payloads are loosely typed: totals arrive as numbers or strings,
// ratings as either, facility lists as strings or {name} objects. Absent
// fields map to zero values, never errors.

func mapRecords(in []map[string]any) []domain.HotelRecord {
	out := make([]domain.HotelRecord, 0, len(in))
	for _, m := range in {
		r := mapRecord(m)
		if r.HotelName == "" {
			continue // unusable without the matching key
		}
		out = append(out, r)
	}
	return out
}

func mapRecord(m map[string]any) domain.HotelRecord {
	rec := domain.HotelRecord{
		HotelID:      firstStr(m, "hotelId", "hotel_id", "id"),
		HotelName:    firstStr(m, "hotelName", "hotel_name", "name"),
		City:         firstStr(m, "city", "cityName", "city_name"),
		Locality:     firstStr(m, "locality", "area", "district"),
		Address:      firstStr(m, "address", "hotelAddress", "full_address"),
		Currency:     firstStr(m, "currency", "requiredCurrency"),
		FareType:     firstStr(m, "fareType", "fare_type"),
		PropertyType: firstStr(m, "propertyType", "property_type"),
		Phone:        firstStr(m, "phone", "phoneNumber"),
		Email:        firstStr(m, "email"),
		Special:      firstStr(m, "special", "specialOffer"),
		Thumbnail:    firstStr(m, "thumbNailUrl", "thumbnail", "imageUrl"),
		Facilities:   strSlice(m, "facilities", "amenities"),
	}
	if rec.Currency == "" {
		rec.Currency = "PHP"
	}
	if f, ok := firstFloat(m, "total", "price", "totalPrice"); ok {
		rec.Total = f
	}
	if f, ok := firstFloat(m, "hotelRating", "hotel_rating", "rating", "starRating"); ok {
		rec.HotelRating = int(f)
	}
	if f, ok := firstFloat(m, "tripAdvisorRating", "tripadvisor_rating"); ok {
		rec.TripAdvisorRating = f
	}
	if f, ok := firstFloat(m, "tripAdvisorReview", "tripadvisor_reviews"); ok {
		rec.TripAdvisorReview = int(f)
	}
	if f, ok := firstFloat(m, "latitude", "lat"); ok {
		rec.Latitude = f
	}
	if f, ok := firstFloat(m, "longitude", "lng", "lon"); ok {
		rec.Longitude = f
	}
	return rec
}

func firstStr(m map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// firstFloat accepts float64/int/string forms, including "1,200.50".
func firstFloat(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			return v, true
		case int:
			return float64(v), true
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", ""))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

// strSlice accepts []any holding strings or {name/url} objects.
func strSlice(m map[string]any, keys ...string) []string {
	for _, k := range keys {
		raw, ok := m[k].([]any)
		if !ok {
			continue
		}
		out := make([]string, 0, len(raw))
		for _, it := range raw {
			switch t := it.(type) {
			case string:
				if t != "" {
					out = append(out, t)
				}
			case map[string]any:
				if n, ok := t["name"].(string); ok && n != "" {
					out = append(out, n)
				}
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}
