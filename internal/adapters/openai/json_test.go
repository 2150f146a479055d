package openai_test

import (
	"testing"

	"delai_travel/internal/adapters/openai"
)

type cityReply struct {
	City             string `json:"city"`
	SpecificLocation string `json:"specific_location"`
	Reasoning        string `json:"reasoning"`
}

func TestDecodeJSON(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "plain json",
			input: `{"city":"cebu","specific_location":"","reasoning":"direct mention"}`,
			want:  "cebu",
		},
		{
			name:  "fenced json",
			input: "```json\n{\"city\":\"palawan\",\"specific_location\":\"el nido\",\"reasoning\":\"landmark\"}\n```",
			want:  "palawan",
		},
		{
			name:  "fenced without language tag",
			input: "```\n{\"city\":\"manila\"}\n```",
			want:  "manila",
		},
		{
			name:  "json buried in prose",
			input: "Sure! Here is the extraction you asked for: {\"city\":\"bohol\",\"reasoning\":\"Chocolate Hills are in Bohol\"} Hope that helps.",
			want:  "bohol",
		},
		{
			name:  "braces inside string values",
			input: `before {"city":"davao","reasoning":"text with } brace inside \" quotes"} after`,
			want:  "davao",
		},
		{
			name:    "no json at all",
			input:   "I could not determine the city, sorry.",
			wantErr: true,
		},
		{
			name:    "empty",
			input:   "   ",
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var out cityReply
			err := openai.DecodeJSON(tc.input, &out)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", out)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if out.City != tc.want {
				t.Fatalf("city = %q, want %q", out.City, tc.want)
			}
		})
	}
}
