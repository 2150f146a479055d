package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"delai_travel/internal/adapters/observability"
	"delai_travel/internal/domain"
)

const personaPrompt = `You are Delai, a warm and friendly Filipino travel assistant. You are conversational, empathetic, and natural, never robotic.
Listen carefully to what users actually say. If someone mentions a place casually, chat about it instead of assuming they want hotels.
If a user says they are not asking for hotels yet, respect that completely.
Never mention databases, systems, or technical limitations. Answer like a knowledgeable friend.`

const apologyReply = "I apologize, but I'm having trouble responding right now. Could you try asking again?"

const clarifyReply = "Which city are you looking for hotels in?"

// Composer turns the pipeline's intermediate results into the final reply and
// panel payload. Every text-generation sub-step has a deterministic fallback,
// so a Composer with a disabled generator still produces complete replies.
type Composer struct {
	gen     domain.TextGenerator
	workers int
	log     zerolog.Logger
}

func NewComposer(gen domain.TextGenerator, workers int, log zerolog.Logger) *Composer {
	if workers <= 0 {
		workers = 4
	}
	return &Composer{gen: gen, workers: workers, log: log}
}

type ComposeInput struct {
	Message      string
	History      []domain.ConversationTurn
	Location     domain.LocationContext
	Requirements domain.RequirementSet
	Intent       Intent
	Filtered     []domain.HotelRecord
	Catalog      []domain.HotelRecord
}

// Compose walks the decision cascade; the first applicable branch wins.
func (c *Composer) Compose(ctx context.Context, in ComposeInput) domain.ResponsePayload {
	if in.Intent.IsFollowUpQuestion {
		if p, ok := c.answerAttributeQuestion(in); ok {
			return p
		}
	}

	switch {
	case in.Location.City != "" && len(in.Filtered) > 0:
		return c.composeHotelList(ctx, in)
	case in.Location.City != "":
		return c.composeNoResults(ctx, in)
	case in.Intent.IsHotelQuery:
		return domain.ResponsePayload{
			Reply:         clarifyReply,
			NeedsMoreInfo: true,
			MatchedHotels: []domain.HotelRecord{},
		}
	default:
		return c.composeConversational(ctx, in)
	}
}

/* ---- branch 1: direct attribute answers ---- */

type attributeFlags struct {
	rating, price, location, amenities, booking bool
}

func (f attributeFlags) any() bool {
	return f.rating || f.price || f.location || f.amenities || f.booking
}

func detectAttributes(message string) attributeFlags {
	lower := strings.ToLower(message)
	has := func(kws ...string) bool {
		for _, k := range kws {
			if strings.Contains(lower, k) {
				return true
			}
		}
		return false
	}
	return attributeFlags{
		rating:    has("rating", "stars", "star"),
		price:     has("price", "cost", "how much", "rate", "expensive"),
		location:  has("address", "location", "where is", "where's", "located"),
		amenities: has("amenities", "facilities", "wifi", "pool", "parking", "breakfast"),
		booking:   has("refundable", "cancellation", "fare type", "booking"),
	}
}

// answerAttributeQuestion serves follow-ups about a hotel the user has
// already seen, straight from stored records with no generation call.
func (c *Composer) answerAttributeQuestion(in ComposeInput) (domain.ResponsePayload, bool) {
	attrs := detectAttributes(in.Message)
	if !attrs.any() {
		return domain.ResponsePayload{}, false
	}
	hotel, ok := findHotelByName(in.Message, priorShownHotels(in.History), in.Catalog)
	if !ok {
		return domain.ResponsePayload{}, false
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Yes! I'm familiar with %s.", hotel.HotelName)

	// fixed fragment order: rating, price, location, amenities
	if attrs.rating {
		if hotel.HotelRating > 0 {
			fmt.Fprintf(&b, " It's a %d-star hotel.", hotel.HotelRating)
		} else {
			b.WriteString(" I don't have a star rating on record for it.")
		}
	}
	if attrs.price {
		b.WriteString(" " + priceSentence(hotel))
	}
	if attrs.location {
		switch {
		case hotel.Address != "" && hotel.City != "":
			fmt.Fprintf(&b, " You'll find it at %s in %s.", hotel.Address, hotel.City)
		case hotel.City != "":
			fmt.Fprintf(&b, " It's located in %s.", hotel.City)
		default:
			b.WriteString(" I don't have its exact address on hand.")
		}
	}
	if attrs.amenities {
		if len(hotel.Facilities) > 0 {
			list := hotel.Facilities
			if len(list) > 6 {
				list = list[:6]
			}
			fmt.Fprintf(&b, " Facilities include %s.", strings.Join(list, ", "))
		} else {
			b.WriteString(" I don't have the facilities list for this one.")
		}
	}
	if attrs.booking && hotel.FareType != "" {
		fmt.Fprintf(&b, " The booking is %s.", strings.ToLower(hotel.FareType))
	}

	reply := b.String()
	return domain.ResponsePayload{
		Reply:                reply,
		HotelSearchTriggered: PanelTrigger(in.Message, reply, in.Catalog),
		MatchedHotels:        []domain.HotelRecord{hotel},
		Destination:          in.Location.City,
	}, true
}

func priceSentence(h domain.HotelRecord) string {
	if h.Total <= 0 {
		return "I don't have a current rate for it."
	}
	currency := h.Currency
	if currency == "" {
		currency = "PHP"
	}
	s := fmt.Sprintf("The rate is %s %s per night", currency, formatPrice(h.Total))
	switch {
	case h.Total < BudgetPriceCeiling:
		s += " - that's quite budget-friendly!"
	case h.Total < 5000:
		s += " - a reasonable mid-range option."
	default:
		s += " - a premium choice."
	}
	return s
}

// priorShownHotels collects records from earlier assistant turns, newest
// first, so the most recently shown hotel wins a name tie.
func priorShownHotels(history []domain.ConversationTurn) []domain.HotelRecord {
	var out []domain.HotelRecord
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == "assistant" {
			out = append(out, history[i].HotelResults...)
		}
	}
	return out
}

// findHotelByName matches by exact case-insensitive substring first, then by
// majority word overlap against the message.
func findHotelByName(message string, groups ...[]domain.HotelRecord) (domain.HotelRecord, bool) {
	lower := strings.ToLower(message)

	for _, g := range groups {
		for _, h := range g {
			name := strings.ToLower(h.HotelName)
			if name != "" && strings.Contains(lower, name) {
				return h, true
			}
		}
	}

	for _, g := range groups {
		for _, h := range g {
			words := strings.Fields(strings.ToLower(h.HotelName))
			if len(words) == 0 {
				continue
			}
			hits := 0
			for _, w := range words {
				if len(w) > 2 && strings.Contains(lower, w) {
					hits++
				}
			}
			if float64(hits)/float64(len(words)) >= 0.6 {
				return h, true
			}
		}
	}
	return domain.HotelRecord{}, false
}

/* ---- branch 2: destination with results ---- */

func (c *Composer) composeHotelList(ctx context.Context, in ComposeInput) domain.ResponsePayload {
	city := titleCity(in.Location.City)

	// work on copies; the catalog itself is never mutated
	hotels := make([]domain.HotelRecord, len(in.Filtered))
	copy(hotels, in.Filtered)

	intro := c.generateIntro(ctx, city, len(hotels))
	c.describeHotels(ctx, hotels)

	var b strings.Builder
	b.WriteString(intro)
	for i, h := range hotels {
		fmt.Fprintf(&b, "\n\n%d. %s\n%s", i+1, h.HotelName, h.AIDescription)
	}
	reply := b.String()

	return domain.ResponsePayload{
		Reply:                reply,
		HotelSearchTriggered: PanelTrigger(in.Message, reply, in.Catalog),
		MatchedHotels:        MatchPanelHotels(reply, in.Message, in.Location.City, hotels),
		Destination:          in.Location.City,
	}
}

func (c *Composer) generateIntro(ctx context.Context, city string, n int) string {
	fallback := fmt.Sprintf("Here are %d great places to stay in %s:", n, city)
	if c.gen == nil || !c.gen.Enabled() {
		return fallback
	}
	reply, err := c.gen.Complete(ctx, domain.CompletionRequest{
		Messages: []domain.Message{
			{Role: "system", Content: personaPrompt},
			{Role: "user", Content: fmt.Sprintf(
				"Write one short sentence (25 words max) announcing that you found %d hotel options in %s. No lists, no hotel names.", n, city)},
		},
		Temperature: 0.7,
		MaxTokens:   60,
	})
	if err != nil || strings.TrimSpace(reply) == "" {
		c.log.Debug().Err(err).Msg("intro generation failed")
		observability.ObserveFallback("intro")
		return fallback
	}
	return strings.TrimSpace(reply)
}

// describeHotels fills AIDescription on each record, fanning the generation
// calls out with bounded concurrency. Indexed writes keep canonical order; a
// failed call only costs that hotel its generated sentence.
func (c *Composer) describeHotels(ctx context.Context, hotels []domain.HotelRecord) {
	if c.gen == nil || !c.gen.Enabled() {
		for i := range hotels {
			hotels[i].AIDescription = fallbackDescription(hotels[i])
		}
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i := range hotels {
		i := i
		g.Go(func() error {
			desc, err := c.describeOne(gctx, hotels[i])
			if err != nil || strings.TrimSpace(desc) == "" {
				c.log.Debug().Err(err).Str("hotel", hotels[i].HotelName).Msg("description generation failed")
				observability.ObserveFallback("description")
				desc = fallbackDescription(hotels[i])
			}
			hotels[i].AIDescription = strings.TrimSpace(desc)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; fallbacks are applied in place
}

func (c *Composer) describeOne(ctx context.Context, h domain.HotelRecord) (string, error) {
	var facts []string
	if h.HotelRating > 0 {
		facts = append(facts, fmt.Sprintf("%d-star", h.HotelRating))
	}
	if h.Total > 0 {
		facts = append(facts, fmt.Sprintf("₱%s per night", formatPrice(h.Total)))
	}
	if h.Address != "" {
		facts = append(facts, "at "+h.Address)
	}
	if len(h.Facilities) > 0 {
		n := len(h.Facilities)
		if n > 4 {
			n = 4
		}
		facts = append(facts, "facilities: "+strings.Join(h.Facilities[:n], ", "))
	}
	return c.gen.Complete(ctx, domain.CompletionRequest{
		Messages: []domain.Message{
			{Role: "system", Content: personaPrompt},
			{Role: "user", Content: fmt.Sprintf(
				"Describe %s in %s for a traveler in one or two sentences. Details: %s. Do not invent details.",
				h.HotelName, h.City, strings.Join(facts, "; "))},
		},
		Temperature: 0.7,
		MaxTokens:   90,
	})
}

func fallbackDescription(h domain.HotelRecord) string {
	var b strings.Builder
	b.WriteString(h.HotelName)
	if h.HotelRating > 0 {
		fmt.Fprintf(&b, " is a %d-star stay", h.HotelRating)
	} else {
		b.WriteString(" is a comfortable stay")
	}
	if h.City != "" {
		fmt.Fprintf(&b, " in %s", h.City)
	}
	if h.Total > 0 {
		fmt.Fprintf(&b, " at ₱%s per night", formatPrice(h.Total))
	}
	b.WriteString(".")
	return b.String()
}

/* ---- branch 3: destination without results ---- */

func (c *Composer) composeNoResults(ctx context.Context, in ComposeInput) domain.ResponsePayload {
	city := titleCity(in.Location.City)
	fallback := fmt.Sprintf(
		"I couldn't find available stays in %s for now. Would you like to try a nearby city or a different destination?", city)

	reply := fallback
	if c.gen != nil && c.gen.Enabled() {
		got, err := c.gen.Complete(ctx, domain.CompletionRequest{
			Messages: []domain.Message{
				{Role: "system", Content: personaPrompt},
				{Role: "user", Content: fmt.Sprintf(
					"In two short sentences, tell the traveler you have no available options in %s right now and warmly invite them to try another destination. Do not invent hotels and do not mention any system limitation.", city)},
			},
			Temperature: 0.7,
			MaxTokens:   80,
		})
		if err != nil || strings.TrimSpace(got) == "" {
			c.log.Debug().Err(err).Msg("no-results generation failed")
			observability.ObserveFallback("no_results")
		} else {
			reply = strings.TrimSpace(got)
		}
	}

	return domain.ResponsePayload{
		Reply:         reply,
		MatchedHotels: []domain.HotelRecord{},
		Destination:   in.Location.City,
	}
}

/* ---- branch 5: plain conversation ---- */

func (c *Composer) composeConversational(ctx context.Context, in ComposeInput) domain.ResponsePayload {
	payload := domain.ResponsePayload{MatchedHotels: []domain.HotelRecord{}}
	if c.gen == nil || !c.gen.Enabled() {
		payload.Reply = apologyReply
		return payload
	}

	msgs := []domain.Message{{Role: "system", Content: personaPrompt}}
	for _, t := range in.History {
		if t.Valid() {
			msgs = append(msgs, domain.Message{Role: t.Role, Content: t.Content})
		}
	}
	msgs = append(msgs, domain.Message{Role: "user", Content: in.Message})

	reply, err := c.gen.Complete(ctx, domain.CompletionRequest{
		Messages:    msgs,
		Temperature: 0.7,
		MaxTokens:   300,
	})
	if err != nil || strings.TrimSpace(reply) == "" {
		c.log.Debug().Err(err).Msg("conversational generation failed")
		observability.ObserveFallback("conversation")
		payload.Reply = apologyReply
		return payload
	}
	payload.Reply = strings.TrimSpace(reply)
	return payload
}

/* ---- panel matching ---- */

// MatchPanelHotels keeps the panel consistent with the reply text: records
// named in the reply win; otherwise records matching the destination tokens
// in reply+message; otherwise the first few filtered records as a last
// resort. Filtered order is preserved.
func MatchPanelHotels(reply, message, destination string, filtered []domain.HotelRecord) []domain.HotelRecord {
	lowerReply := strings.ToLower(reply)

	var named []domain.HotelRecord
	for _, h := range filtered {
		if name := strings.ToLower(h.HotelName); name != "" && strings.Contains(lowerReply, name) {
			named = append(named, h)
		}
	}
	if len(named) > 0 {
		return named
	}

	if destination != "" &&
		strings.Contains(strings.ToLower(reply+" "+message), strings.ToLower(destination)) {
		if byCity := filterByCity(filtered, destination); len(byCity) > 0 {
			return byCity
		}
	}

	if len(filtered) > 3 {
		return filtered[:3]
	}
	return filtered
}

/* ---- small helpers ---- */

// formatPrice renders 1850 as "1,850.00".
func formatPrice(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	dot := strings.IndexByte(s, '.')
	intPart, frac := s[:dot], s[dot:]
	neg := strings.HasPrefix(intPart, "-")
	intPart = strings.TrimPrefix(intPart, "-")

	var b strings.Builder
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	out := b.String() + frac
	if neg {
		out = "-" + out
	}
	return out
}

func titleCity(city string) string {
	words := strings.Fields(city)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
