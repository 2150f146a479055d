package domain

import "context"

// CatalogSource loads the hotel inventory. Implementations never return an
// error: total failure yields an empty slice and downstream code treats "no
// hotels" as a valid degraded state.
type CatalogSource interface {
	Load(ctx context.Context, cityHint string) []HotelRecord
}

// Message is one role-tagged chat message sent to the text generator.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest controls a single text-generation call.
type CompletionRequest struct {
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// TextGenerator is the LLM port. Enabled reports whether a backing service is
// configured; every caller has a deterministic path for when it is not.
type TextGenerator interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	Enabled() bool
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
