package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"rca-agent/internal/config"
)

func azureTestConfig(endpoint string) *config.Config {
	return &config.Config{
		AzureEndpoint:   endpoint,
		AzureAPIKey:     "test-key",
		AzureDeployment: "gpt-4.1",
		AzureAPIVersion: "2024-12-01-preview",
		Temperature:     0,
	}
}

func azureChatBody(content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}},
		},
	}
}

func TestAzureComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if want := "/openai/deployments/gpt-4.1/chat/completions"; r.URL.Path != want {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("api-version"); got != "2024-12-01-preview" {
			t.Errorf("unexpected api-version: %s", got)
		}
		if got := r.Header.Get("api-key"); got != "test-key" {
			t.Errorf("unexpected api-key header: %s", got)
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
			return
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("expected a single user message, got %+v", req.Messages)
		}
		if req.Temperature != 0 {
			t.Errorf("expected temperature 0, got %v", req.Temperature)
		}

		json.NewEncoder(w).Encode(azureChatBody(`{"errors": [], "possible_solutions": []}`))
	}))
	defer server.Close()

	client := NewAzureClient(azureTestConfig(server.URL))
	out, err := client.Complete(context.Background(), "analyze this")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if !strings.Contains(out, "possible_solutions") {
		t.Errorf("unexpected payload: %s", out)
	}
}

func TestAzureComplete_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "quota exceeded"}}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewAzureClient(azureTestConfig(server.URL))
	if _, err := client.Complete(context.Background(), "x"); err == nil {
		t.Fatal("expected an error for a 429 response")
	}
}

func TestAzureComplete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "content filtered", "type": "invalid_request"},
		})
	}))
	defer server.Close()

	client := NewAzureClient(azureTestConfig(server.URL))
	_, err := client.Complete(context.Background(), "x")
	if err == nil || !strings.Contains(err.Error(), "content filtered") {
		t.Fatalf("expected the API error message, got %v", err)
	}
}

func TestAzureComplete_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer server.Close()

	client := NewAzureClient(azureTestConfig(server.URL))
	if _, err := client.Complete(context.Background(), "x"); err == nil {
		t.Fatal("expected an error for empty choices")
	}
}

func TestNewFromConfig(t *testing.T) {
	azure := azureTestConfig("https://example.openai.azure.com")
	if _, ok := NewFromConfig(azure).(*AzureClient); !ok {
		t.Error("expected the Azure backend when credentials are present")
	}

	local := &config.Config{OllamaURL: "http://localhost:11434", OllamaModel: "m"}
	if _, ok := NewFromConfig(local).(*OllamaClient); !ok {
		t.Error("expected the Ollama fallback without Azure credentials")
	}
}
