package openrouter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fridge-inventory/internal/core/ai/provider"
	"fridge-inventory/internal/infrastructure/config"
	"fridge-inventory/internal/pkg/common"
)

func newTestClient(url string) *Client {
	return NewClient(config.OpenRouterConfig{
		APIKey:    "sk-test",
		BaseURL:   url,
		Model:     "test/model",
		MaxTokens: 256,
		Timeout:   2 * time.Second,
	})
}

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q", got)
		}
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Errorf("bad body: %v", err)
		}
		if body["model"] != "test/model" || body["max_tokens"] != float64(256) {
			t.Errorf("unexpected body: %v", body)
		}
		if rf, ok := body["response_format"].(map[string]any); !ok || rf["type"] != "json_object" {
			t.Errorf("expected json response_format, got %v", body["response_format"])
		}
		io.WriteString(w, `{"choices":[{"message":{"content":"[]"}}],"usage":{"total_tokens":12}}`)
	}))
	defer srv.Close()

	resp, err := newTestClient(srv.URL).Generate(context.Background(), &provider.Request{
		Messages: []provider.Message{{Role: "user", Content: "hi"}},
		JSONMode: true,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Content != "[]" || resp.Usage.TotalTokens != 12 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   *common.CustomError
	}{
		{"rate limited", http.StatusTooManyRequests, `{"error":{"message":"slow down"}}`, common.ErrAIRateLimited},
		{"server error", http.StatusBadGateway, `upstream`, common.ErrAIServiceError},
		{"no choices", http.StatusOK, `{"choices":[]}`, common.ErrAIServiceError},
		{"error body", http.StatusOK, `{"error":{"message":"model not found"}}`, common.ErrAIServiceError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := newTestClient(srv.URL).Generate(context.Background(), &provider.Request{})
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %s, got %v", tt.want.Code, err)
			}
		})
	}
}
