package app

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"delai_travel/internal/adapters/observability"
	"delai_travel/internal/domain"
)

// hotelKeywords is the low-latency hotel-intent check, used on its own when
// no text generator is configured.
var hotelKeywords = []string{
	"hotel", "hotels", "accommodation", "stay", "book", "reservation",
	"resort", "lodging", "where to stay", "hostel", "recommend", "suggestion",
	"check in", "check-in", "room",
}

var currencyMarkers = []string{"₱", "php", "peso"}

// Intent is the per-message classification result.
type Intent struct {
	IsHotelQuery       bool
	IsFollowUpQuestion bool
}

// Classifier decides whether a message asks about hotels and whether a
// composed reply should populate the results panel. Stateless aside from
// reading the supplied history.
type Classifier struct {
	gen domain.TextGenerator
	log zerolog.Logger
}

func NewClassifier(gen domain.TextGenerator, log zerolog.Logger) *Classifier {
	return &Classifier{gen: gen, log: log}
}

// Classify runs the keyword check first and only consults the generator when
// keywords miss, keeping the common path cheap.
func (c *Classifier) Classify(ctx context.Context, message string, history []domain.ConversationTurn) Intent {
	it := Intent{
		IsHotelQuery:       containsAny(message, hotelKeywords),
		IsFollowUpQuestion: isFollowUp(message, history),
	}
	if !it.IsHotelQuery && c.gen != nil && c.gen.Enabled() {
		it.IsHotelQuery = c.classifyWithGenerator(ctx, message, history)
	}
	return it
}

const intentSystemPrompt = `You classify chat messages for a travel assistant.
Answer with exactly one word: "yes" if the user is asking to find, compare, or book hotels or places to stay, otherwise "no".`

func (c *Classifier) classifyWithGenerator(ctx context.Context, message string, history []domain.ConversationTurn) bool {
	msgs := []domain.Message{{Role: "system", Content: intentSystemPrompt}}
	for _, t := range history {
		if t.Valid() {
			msgs = append(msgs, domain.Message{Role: t.Role, Content: t.Content})
		}
	}
	msgs = append(msgs, domain.Message{Role: "user", Content: message})

	reply, err := c.gen.Complete(ctx, domain.CompletionRequest{
		Messages:    msgs,
		Temperature: 0,
		MaxTokens:   5,
	})
	if err != nil {
		c.log.Debug().Err(err).Msg("intent classification call failed")
		observability.ObserveFallback("intent")
		return false
	}
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(reply)), "yes")
}

// PanelTrigger reports whether a composed reply should (re-)populate the
// structured results view: the user asked for hotels, or the reply names a
// catalog hotel, or the reply quotes a price.
func PanelTrigger(message, reply string, catalog []domain.HotelRecord) bool {
	if containsAny(message, hotelKeywords) {
		return true
	}
	lowerReply := strings.ToLower(reply)
	for _, h := range catalog {
		name := strings.ToLower(h.HotelName)
		if name != "" && strings.Contains(lowerReply, name) {
			return true
		}
	}
	return containsAny(reply, currencyMarkers)
}

// isFollowUp is a cheap check for questions about hotels already shown: the
// previous assistant turn carried results and the message asks about a known
// attribute or names one of those hotels.
func isFollowUp(message string, history []domain.ConversationTurn) bool {
	lower := strings.ToLower(message)
	for i := len(history) - 1; i >= 0; i-- {
		t := history[i]
		if t.Role != "assistant" || len(t.HotelResults) == 0 {
			continue
		}
		for _, h := range t.HotelResults {
			if name := strings.ToLower(h.HotelName); name != "" && strings.Contains(lower, name) {
				return true
			}
		}
		return containsAny(message, attributeKeywords)
	}
	return false
}

var attributeKeywords = []string{
	"rating", "stars", "price", "cost", "how much", "address", "location",
	"where is", "amenities", "facilities", "wifi", "pool", "refundable",
}

func containsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
