package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"delai_travel/internal/app"
	"delai_travel/internal/domain"
)

func TestResolver_KeywordFallback(t *testing.T) {
	r := app.NewResolver(&fakeGen{off: true}, zerolog.Nop())
	ctx := context.Background()

	cases := []struct {
		msg  string
		want string
	}{
		{"any hotels in Cebu?", "cebu"},
		{"I want to see El Nido", "palawan"},
		{"somewhere in Makati please", "manila"},
		{"planning a surf trip to General Luna", "siargao"},
		{"what's the weather like today", ""},
	}
	for _, tc := range cases {
		got := r.Resolve(ctx, tc.msg, nil)
		if got.City != tc.want {
			t.Errorf("Resolve(%q).City = %q, want %q", tc.msg, got.City, tc.want)
		}
	}
}

func TestResolver_ReferencePhraseUsesHistory(t *testing.T) {
	r := app.NewResolver(&fakeGen{off: true}, zerolog.Nop())
	history := []domain.ConversationTurn{
		{Role: "assistant", Content: "Happy to help you plan!"},
		{Role: "user", Content: "I'm thinking of Palawan"},
	}

	got := r.Resolve(context.Background(), "find me hotels there", history)
	if got.City != "palawan" {
		t.Fatalf("City = %q, want palawan", got.City)
	}
	if !got.FromHistory {
		t.Fatalf("expected FromHistory to be set")
	}
}

func TestResolver_MostRecentCityWins(t *testing.T) {
	r := app.NewResolver(&fakeGen{off: true}, zerolog.Nop())
	history := []domain.ConversationTurn{
		{Role: "user", Content: "first I looked at Cebu"},
		{Role: "user", Content: "but now I like Bohol more"},
	}

	got := r.Resolve(context.Background(), "book me something there", history)
	if got.City != "bohol" {
		t.Fatalf("City = %q, want bohol", got.City)
	}
}

func TestResolver_NoReferenceNoGuess(t *testing.T) {
	r := app.NewResolver(&fakeGen{off: true}, zerolog.Nop())
	history := []domain.ConversationTurn{
		{Role: "user", Content: "I'm thinking of Palawan"},
	}

	// no location and no reference gesture: never silently reuse history
	got := r.Resolve(context.Background(), "do you do flight bookings?", history)
	if got.City != "" {
		t.Fatalf("City = %q, want empty", got.City)
	}
}

func TestResolver_GeneratorExtraction(t *testing.T) {
	gen := &fakeGen{replies: []string{
		`{"city":"palawan","specific_location":"el nido","reasoning":"landmark mention"}`,
	}}
	r := app.NewResolver(gen, zerolog.Nop())

	got := r.Resolve(context.Background(), "I want a beachfront place in El Nido", nil)
	if got.City != "palawan" {
		t.Fatalf("City = %q, want palawan", got.City)
	}
	if got.SpecificLocation != "el nido" {
		t.Fatalf("SpecificLocation = %q, want el nido", got.SpecificLocation)
	}
}

func TestResolver_GeneratorFailureFallsBack(t *testing.T) {
	gen := &fakeGen{err: errors.New("boom")}
	r := app.NewResolver(gen, zerolog.Nop())

	got := r.Resolve(context.Background(), "hotels in Davao", nil)
	if got.City != "davao" {
		t.Fatalf("City = %q, want davao", got.City)
	}
}

func TestResolver_UnknownGeneratorCityFallsBack(t *testing.T) {
	gen := &fakeGen{replies: []string{`{"city":"tokyo","reasoning":"guess"}`}}
	r := app.NewResolver(gen, zerolog.Nop())

	got := r.Resolve(context.Background(), "hotels near Chocolate Hills", nil)
	if got.City != "bohol" {
		t.Fatalf("City = %q, want bohol", got.City)
	}
}

func TestResolver_SpecificLocationNeedsCity(t *testing.T) {
	r := app.NewResolver(&fakeGen{off: true}, zerolog.Nop())

	got := r.Resolve(context.Background(), "somewhere near the beach please", nil)
	if got.City != "" || got.SpecificLocation != "" {
		t.Fatalf("expected empty context, got %+v", got)
	}

	got = r.Resolve(context.Background(), "hotels in Baguio near Burnham Park", nil)
	if got.City != "baguio" || got.SpecificLocation != "burnham park" {
		t.Fatalf("unexpected context %+v", got)
	}
}
