package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"rca-agent/internal/config"
)

func TestOllamaComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path: %s", r.URL.Path)
			return
		}

		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
			return
		}
		if req.Stream {
			t.Error("expected stream to be false")
		}
		if req.Format != "json" {
			t.Errorf("expected JSON format requested, got %q", req.Format)
		}
		if req.Model != "test-model" {
			t.Errorf("unexpected model: %s", req.Model)
		}

		json.NewEncoder(w).Encode(generateResponse{
			Response: `{"errors": [], "possible_solutions": []}`,
			Done:     true,
		})
	}))
	defer server.Close()

	client := NewOllamaClient(&config.Config{OllamaURL: server.URL, OllamaModel: "test-model"})
	out, err := client.Complete(context.Background(), "analyze this log")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if out == "" {
		t.Error("expected a non-empty payload")
	}
}

func TestOllamaComplete_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewOllamaClient(&config.Config{OllamaURL: server.URL, OllamaModel: "missing"})
	if _, err := client.Complete(context.Background(), "x"); err == nil {
		t.Fatal("expected an error for a 404 response")
	}
}

func TestOllamaName(t *testing.T) {
	client := NewOllamaClient(&config.Config{OllamaURL: "http://localhost:11434", OllamaModel: "qwen2.5-coder:3b-instruct"})
	if got := client.Name(); got != "ollama:qwen2.5-coder:3b-instruct" {
		t.Errorf("unexpected name: %s", got)
	}
}
