package app

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"delai_travel/internal/adapters/observability"
	"delai_travel/internal/adapters/openai"
	"delai_travel/internal/domain"
)

// knownCities are the destinations the catalog filter understands.
var knownCities = []string{
	"manila", "cebu", "boracay", "siargao", "davao",
	"gensan", "baguio", "palawan", "bohol",
}

// landmarkCities maps well-known areas and landmarks to their canonical city.
var landmarkCities = map[string]string{
	"el nido":               "palawan",
	"coron":                 "palawan",
	"puerto princesa":       "palawan",
	"mactan":                "cebu",
	"lapu-lapu":             "cebu",
	"makati":                "manila",
	"bgc":                   "manila",
	"bonifacio global city": "manila",
	"taguig":                "manila",
	"intramuros":            "manila",
	"pasay":                 "manila",
	"quezon city":           "manila",
	"panglao":               "bohol",
	"chocolate hills":       "bohol",
	"tagbilaran":            "bohol",
	"general luna":          "siargao",
	"cloud 9":               "siargao",
	"general santos":        "gensan",
	"caticlan":              "boracay",
	"white beach":           "boracay",
}

var referencePhrases = []string{" there", "that place", "this place", " it?", " it "}

// Resolver extracts a city and optional sub-location from the message plus
// recent turns. Extraction is delegated to the text generator when one is
// configured, with the keyword tables as fallback.
type Resolver struct {
	gen domain.TextGenerator
	log zerolog.Logger
}

func NewResolver(gen domain.TextGenerator, log zerolog.Logger) *Resolver {
	return &Resolver{gen: gen, log: log}
}

const locationSystemPrompt = `You extract travel destinations from chat messages about the Philippines.
Reply with STRICT JSON only, no prose, in this exact shape:
{"city": "<lowercase city name or empty string>", "specific_location": "<sub-area or empty string>", "reasoning": "<one short sentence>"}
Known cities: manila, cebu, boracay, siargao, davao, gensan, baguio, palawan, bohol.
Map landmarks to their city (El Nido -> palawan, Mactan -> cebu, Makati -> manila, Panglao -> bohol).
If no destination is mentioned, use an empty city.`

type locationReply struct {
	City             string `json:"city"`
	SpecificLocation string `json:"specific_location"`
	Reasoning        string `json:"reasoning"`
}

// Resolve never fails; the zero-value context with an empty City signals the
// caller to ask for a destination rather than guess one.
func (r *Resolver) Resolve(ctx context.Context, message string, history []domain.ConversationTurn) domain.LocationContext {
	loc := r.resolveMessage(ctx, message)

	if loc.City == "" && hasReferencePhrase(message) {
		for i := len(history) - 1; i >= 0; i-- {
			if !history[i].Valid() {
				continue
			}
			if city, why := keywordCity(history[i].Content); city != "" {
				loc.City = city
				loc.Reasoning = "reference phrase resolved from history: " + why
				loc.FromHistory = true
				break
			}
		}
	}

	if loc.City != "" && loc.SpecificLocation == "" {
		loc.SpecificLocation = parseNearPhrase(message)
	}
	if loc.City == "" {
		// specific location is only meaningful jointly with a city
		loc.SpecificLocation = ""
	}
	return loc
}

func (r *Resolver) resolveMessage(ctx context.Context, message string) domain.LocationContext {
	if r.gen != nil && r.gen.Enabled() {
		if loc, ok := r.resolveWithGenerator(ctx, message); ok {
			return loc
		}
		observability.ObserveFallback("location")
	}

	city, why := keywordCity(message)
	return domain.LocationContext{City: city, Reasoning: why}
}

func (r *Resolver) resolveWithGenerator(ctx context.Context, message string) (domain.LocationContext, bool) {
	reply, err := r.gen.Complete(ctx, domain.CompletionRequest{
		Messages: []domain.Message{
			{Role: "system", Content: locationSystemPrompt},
			{Role: "user", Content: message},
		},
		Temperature: 0.1,
		MaxTokens:   150,
	})
	if err != nil {
		r.log.Debug().Err(err).Msg("location extraction call failed")
		return domain.LocationContext{}, false
	}

	var out locationReply
	if err := openai.DecodeJSON(reply, &out); err != nil {
		r.log.Debug().Err(err).Msg("location extraction reply unparsable")
		return domain.LocationContext{}, false
	}

	city := strings.ToLower(strings.TrimSpace(out.City))
	if mapped, ok := landmarkCities[city]; ok {
		city = mapped
	}
	if city != "" && !isKnownCity(city) {
		// a city the filter cannot serve is no better than none
		return domain.LocationContext{}, false
	}
	return domain.LocationContext{
		City:             city,
		SpecificLocation: strings.ToLower(strings.TrimSpace(out.SpecificLocation)),
		Reasoning:        out.Reasoning,
	}, true
}

// keywordCity is the deterministic fallback: canonical city names first, then
// the landmark table.
func keywordCity(text string) (city, reasoning string) {
	lower := strings.ToLower(text)
	for _, c := range knownCities {
		if strings.Contains(lower, c) {
			return c, "city keyword: " + c
		}
	}
	for lm, c := range landmarkCities {
		if strings.Contains(lower, lm) {
			return c, "landmark keyword: " + lm
		}
	}
	return "", ""
}

func isKnownCity(city string) bool {
	for _, c := range knownCities {
		if c == city {
			return true
		}
	}
	return false
}

func hasReferencePhrase(message string) bool {
	lower := " " + strings.ToLower(message) + " "
	for _, p := range referencePhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
