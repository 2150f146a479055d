package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"delai_travel/internal/adapters/openai"
	"delai_travel/internal/domain"
)

func completionBody(text string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": text}},
		},
	}
}

func TestClient_Complete_RetriesThenSuccess(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		switch atomic.AddInt32(&hits, 1) {
		case 1, 2:
			// two transient failures
			w.WriteHeader(500)
		default:
			w.WriteHeader(200)
			_ = json.NewEncoder(w).Encode(completionBody("Mabuhay!"))
		}
	}))
	defer ts.Close()

	cl := openai.New(ts.URL, "test-key", "test-model", 100) // high RPS for tests
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got, err := cl.Complete(ctx, domain.CompletionRequest{
		Messages: []domain.Message{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got != "Mabuhay!" {
		t.Fatalf("unexpected completion: %q", got)
	}
	if atomic.LoadInt32(&hits) < 3 {
		t.Fatalf("expected at least 3 calls due to retries, got %d", hits)
	}
}

func TestClient_Complete_Unauthorized(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(401)
	}))
	defer ts.Close()

	cl := openai.New(ts.URL, "bad-key", "test-model", 100)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := cl.Complete(ctx, domain.CompletionRequest{
		Messages: []domain.Message{{Role: "user", Content: "hi"}},
	})
	if err == nil {
		t.Fatalf("expected error for 401")
	}
}

func TestClient_Disabled(t *testing.T) {
	cl := openai.New("http://localhost:0", "", "test-model", 100)
	if cl.Enabled() {
		t.Fatalf("client without key should be disabled")
	}
	_, err := cl.Complete(context.Background(), domain.CompletionRequest{})
	if err == nil {
		t.Fatalf("expected error from disabled client")
	}

	var nilClient *openai.Client
	if nilClient.Enabled() {
		t.Fatalf("nil client should be disabled")
	}
}

func TestClient_Complete_EmptyChoice(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer ts.Close()

	cl := openai.New(ts.URL, "test-key", "test-model", 100)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := cl.Complete(ctx, domain.CompletionRequest{
		Messages: []domain.Message{{Role: "user", Content: "hi"}},
	})
	if err == nil {
		t.Fatalf("expected error for empty choices")
	}
}
