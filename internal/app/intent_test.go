package app_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"delai_travel/internal/app"
	"delai_travel/internal/domain"
)

func TestClassifier_KeywordIntent(t *testing.T) {
	c := app.NewClassifier(&fakeGen{off: true}, zerolog.Nop())
	ctx := context.Background()

	cases := []struct {
		msg  string
		want bool
	}{
		{"find me hotels in Cebu", true},
		{"where to stay in Baguio?", true},
		{"I need a reservation for next week", true},
		{"any resort suggestions?", true},
		{"how is the weather in Davao", false},
		{"thanks, that was helpful!", false},
	}
	for _, tc := range cases {
		if got := c.Classify(ctx, tc.msg, nil).IsHotelQuery; got != tc.want {
			t.Errorf("Classify(%q).IsHotelQuery = %v, want %v", tc.msg, got, tc.want)
		}
	}
}

func TestClassifier_GeneratorOnlyConsultedOnKeywordMiss(t *testing.T) {
	gen := &fakeGen{replies: []string{"yes"}}
	c := app.NewClassifier(gen, zerolog.Nop())
	ctx := context.Background()

	// keyword hit: no call made
	if !c.Classify(ctx, "cheap hotels please", nil).IsHotelQuery {
		t.Fatal("expected hotel intent")
	}
	if len(gen.calls) != 0 {
		t.Fatalf("expected no generator calls on keyword hit, got %d", len(gen.calls))
	}

	// keyword miss: the generator decides
	if !c.Classify(ctx, "somewhere cozy for two nights in Tagaytay", nil).IsHotelQuery {
		t.Fatal("expected generator to affirm intent")
	}
	if len(gen.calls) != 1 {
		t.Fatalf("expected one generator call, got %d", len(gen.calls))
	}
}

func TestClassifier_FollowUpDetection(t *testing.T) {
	c := app.NewClassifier(&fakeGen{off: true}, zerolog.Nop())
	history := []domain.ConversationTurn{
		{Role: "assistant", Content: "Here are 2 great places to stay in Cebu:", HotelResults: []domain.HotelRecord{
			{HotelName: "Quest Hotel", City: "Cebu", Total: 2500, HotelRating: 4},
			{HotelName: "Bai Hotel", City: "Mandaue", Total: 3200, HotelRating: 4},
		}},
	}

	it := c.Classify(context.Background(), "how much is Quest Hotel?", history)
	if !it.IsFollowUpQuestion {
		t.Fatal("expected follow-up detection by hotel name")
	}

	it = c.Classify(context.Background(), "does it have a pool?", history)
	if !it.IsFollowUpQuestion {
		t.Fatal("expected follow-up detection by attribute keyword")
	}

	it = c.Classify(context.Background(), "actually, tell me about Siargao", nil)
	if it.IsFollowUpQuestion {
		t.Fatal("no history should mean no follow-up")
	}
}

func TestPanelTrigger(t *testing.T) {
	catalog := []domain.HotelRecord{
		{HotelName: "Okada Manila", City: "Manila"},
		{HotelName: "Conrad Manila", City: "Pasay"},
	}

	cases := []struct {
		name    string
		message string
		reply   string
		want    bool
	}{
		{"user keyword", "show me hotels", "Sure, give me a second.", true},
		{"reply names catalog hotel", "anything fancy?", "You might like Okada Manila.", true},
		{"reply quotes a price", "anything fancy?", "Rooms start at ₱9,800 a night.", true},
		{"plain conversation", "how are you?", "Doing great, thanks for asking!", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := app.PanelTrigger(tc.message, tc.reply, catalog); got != tc.want {
				t.Fatalf("PanelTrigger = %v, want %v", got, tc.want)
			}
		})
	}
}
