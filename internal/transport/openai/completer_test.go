package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/estaterag/internal/domain"
)

func chatServer(t *testing.T, check func(req map[string]any), content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if check != nil {
			check(req)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "test-chat",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
			"usage": map[string]any{"prompt_tokens": 120, "completion_tokens": 30, "total_tokens": 150},
		})
	}))
}

func newTestCompleter(url string) *Completer {
	return NewCompleter(&Config{
		APIKey:   "test-key",
		BaseURL:  url,
		Provider: "test",
		Logger:   zap.NewNop(),
	}, domain.CompletionConfig{Model: "test-chat", Temperature: 0.2, MaxTokens: 600})
}

func TestCompleter_Complete(t *testing.T) {
	server := chatServer(t, func(req map[string]any) {
		if req["model"] != "test-chat" {
			t.Errorf("model = %v", req["model"])
		}
		if req["max_tokens"] != float64(600) {
			t.Errorf("max_tokens = %v", req["max_tokens"])
		}
		if req["n"] != float64(1) {
			t.Errorf("n = %v", req["n"])
		}
		msgs, _ := req["messages"].([]any)
		if len(msgs) != 2 {
			t.Fatalf("expected 2 messages, got %d", len(msgs))
		}
		first, _ := msgs[0].(map[string]any)
		if first["role"] != "system" || first["content"] != "sys" {
			t.Errorf("unexpected system message: %v", first)
		}
	}, "  Listing abc fits best.  ")
	defer server.Close()

	res, err := newTestCompleter(server.URL).Complete(context.Background(), domain.Prompt{System: "sys", User: "usr"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if res.Text != "Listing abc fits best." {
		t.Errorf("Text = %q", res.Text)
	}
	if res.PromptTokens != 120 || res.CompletionTokens != 30 {
		t.Errorf("unexpected usage: %+v", res)
	}
}

func TestCompleter_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "overloaded", "type": "server_error"},
		})
	}))
	defer server.Close()

	_, err := newTestCompleter(server.URL).Complete(context.Background(), domain.Prompt{System: "s", User: "u"})
	if !errors.Is(err, domain.ErrCompletion) {
		t.Fatalf("expected ErrCompletion, got %v", err)
	}
}

func TestCompleter_ConfigModelOverrides(t *testing.T) {
	c := NewCompleter(&Config{Model: "override", Logger: zap.NewNop()}, domain.DefaultCompletionConfig())
	if c.model != "override" {
		t.Errorf("model = %q, want override", c.model)
	}
	if c.temperature != 0.2 || c.maxTokens != 600 {
		t.Errorf("unexpected knobs: %v %d", c.temperature, c.maxTokens)
	}
}

func TestCompleter_ZeroTemperatureIsSent(t *testing.T) {
	server := chatServer(t, func(req map[string]any) {
		temp, ok := req["temperature"].(float64)
		if !ok {
			t.Errorf("temperature omitted from request: %v", req)
			return
		}
		if temp <= 0 || temp > 1e-30 {
			t.Errorf("temperature = %v, want effectively 0", temp)
		}
	}, "ok")
	defer server.Close()

	c := NewCompleter(&Config{BaseURL: server.URL, Logger: zap.NewNop()},
		domain.CompletionConfig{Model: "test-chat", Temperature: 0, MaxTokens: 10})
	if _, err := c.Complete(context.Background(), domain.Prompt{System: "s", User: "u"}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
}
