package app

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"delai_travel/internal/domain"
)

// historyLimit bounds the caller-supplied transcript for context-window
// economy.
const historyLimit = 5

// Orchestrator sequences the per-message pipeline: load catalog, resolve
// location and requirements, filter, classify, compose. It never returns an
// error; every failure path degrades to a coherent reply.
type Orchestrator struct {
	catalog    domain.CatalogSource
	resolver   *Resolver
	classifier *Classifier
	composer   *Composer
	log        zerolog.Logger
}

func NewOrchestrator(catalog domain.CatalogSource, gen domain.TextGenerator, descWorkers int, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		catalog:    catalog,
		resolver:   NewResolver(gen, log),
		classifier: NewClassifier(gen, log),
		composer:   NewComposer(gen, descWorkers, log),
		log:        log,
	}
}

// Handle is the sole entry point: one message plus rolling history in, one
// complete payload out.
func (o *Orchestrator) Handle(ctx context.Context, message string, history []domain.ConversationTurn) domain.ResponsePayload {
	history = sanitizeHistory(history)

	// cheap keyword hint scopes the inventory query; the full resolver runs
	// against the message and history afterwards
	hint, _ := keywordCity(message)
	catalog := o.catalog.Load(ctx, hint)

	var (
		loc domain.LocationContext
		req domain.RequirementSet
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		loc = o.resolver.Resolve(gctx, message, history)
		return nil
	})
	g.Go(func() error {
		req = AnalyzeRequirements(message)
		return nil
	})
	_ = g.Wait()

	if loc.FromHistory {
		// destination came from conversation history; a sub-location phrase
		// in the current message would over-filter follow-ups
		loc.SpecificLocation = ""
		req.LocationSpecific = ""
	}
	specific := loc.SpecificLocation
	if specific == "" {
		specific = req.LocationSpecific
	}

	filtered := FilterHotels(catalog, loc.City, specific, req)
	intent := o.classifier.Classify(ctx, message, history)

	if ctx.Err() != nil {
		o.log.Warn().Err(ctx.Err()).Msg("deadline hit mid-pipeline, returning fallback payload")
		return deadlineFallback(intent, loc)
	}

	payload := o.composer.Compose(ctx, ComposeInput{
		Message:      message,
		History:      history,
		Location:     loc,
		Requirements: req,
		Intent:       intent,
		Filtered:     filtered,
		Catalog:      catalog,
	})
	if payload.Reply == "" {
		return deadlineFallback(intent, loc)
	}
	if payload.MatchedHotels == nil {
		payload.MatchedHotels = []domain.HotelRecord{}
	}

	o.log.Info().
		Str("city", loc.City).
		Bool("hotel_query", intent.IsHotelQuery).
		Bool("panel", payload.HotelSearchTriggered).
		Int("catalog", len(catalog)).
		Int("matched", len(payload.MatchedHotels)).
		Msg("message handled")
	return payload
}

// sanitizeHistory drops malformed turns silently and bounds the rest to the
// most recent entries.
func sanitizeHistory(history []domain.ConversationTurn) []domain.ConversationTurn {
	clean := make([]domain.ConversationTurn, 0, len(history))
	for _, t := range history {
		if t.Valid() {
			clean = append(clean, t)
		}
	}
	if len(clean) > historyLimit {
		clean = clean[len(clean)-historyLimit:]
	}
	return clean
}

// deadlineFallback is the minimal coherent payload when the per-message
// budget expires: a clarifying question when the user wanted hotels without a
// destination, an apology otherwise. No partial reply ever reaches the
// caller.
func deadlineFallback(intent Intent, loc domain.LocationContext) domain.ResponsePayload {
	if intent.IsHotelQuery && loc.City == "" {
		return domain.ResponsePayload{
			Reply:         clarifyReply,
			NeedsMoreInfo: true,
			MatchedHotels: []domain.HotelRecord{},
		}
	}
	return domain.ResponsePayload{
		Reply:         apologyReply,
		MatchedHotels: []domain.HotelRecord{},
		Destination:   loc.City,
	}
}
