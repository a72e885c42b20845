package openrouter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"portfolio-intel/internal/llm"
	"portfolio-intel/internal/store"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	t.Setenv("OPENROUTER_API_ENDPOINT", srv.URL)
	t.Setenv("OPENROUTER_API_KEY", "test-key")
	return NewClient(store.DefaultConfig())
}

func TestCompleteReturnsContent(t *testing.T) {
	var gotAuth, gotModel string
	var gotMessages []chatMessage
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		gotModel = req.Model
		gotMessages = req.Messages
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "Sentiment: positive. Buy more."}},
			},
		})
	})

	text, err := c.Complete(context.Background(), "system prompt", "user prompt")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if text != "Sentiment: positive. Buy more." {
		t.Errorf("unexpected content: %q", text)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotModel == "" {
		t.Error("model missing from request")
	}
	if len(gotMessages) != 2 || gotMessages[0].Role != "system" || gotMessages[1].Role != "user" {
		t.Errorf("unexpected messages: %+v", gotMessages)
	}
}

func TestCompleteMissingAPIKey(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not reach the server without a key")
	})
	t.Setenv("OPENROUTER_API_KEY", "")

	_, err := c.Complete(context.Background(), "sys", "user")
	if !errors.Is(err, llm.ErrAPIKeyMissing) {
		t.Errorf("expected ErrAPIKeyMissing, got %v", err)
	}
}

func TestCompleteUpstreamError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"rate limited"}`))
	})

	_, err := c.Complete(context.Background(), "sys", "user")
	var ue *llm.UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if ue.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d, want 429", ue.StatusCode)
	}
}

func TestCompleteEmptyChoices(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	})

	_, err := c.Complete(context.Background(), "sys", "user")
	var ue *llm.UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UpstreamError for empty choices, got %v", err)
	}
}

func TestCompleteTimeout(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Write([]byte(`{"choices":[]}`))
	})
	c.http.Timeout = 50 * time.Millisecond

	_, err := c.Complete(context.Background(), "sys", "user")
	if !errors.Is(err, llm.ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", err)
	}
}

func TestCompleteTransportError(t *testing.T) {
	t.Setenv("OPENROUTER_API_ENDPOINT", "http://127.0.0.1:1")
	t.Setenv("OPENROUTER_API_KEY", "test-key")
	c := NewClient(store.DefaultConfig())

	_, err := c.Complete(context.Background(), "sys", "user")
	var te *llm.TransportError
	if !errors.As(err, &te) {
		t.Errorf("expected TransportError, got %v", err)
	}
}

func TestCompleteModelOverride(t *testing.T) {
	var gotModel string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		json.NewDecoder(r.Body).Decode(&req)
		gotModel = req.Model
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "ok"}},
			},
		})
	})
	t.Setenv("OPENROUTER_MODEL", "custom/model")

	if _, err := c.Complete(context.Background(), "sys", "user"); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if gotModel != "custom/model" {
		t.Errorf("model = %q, want custom/model", gotModel)
	}
}
