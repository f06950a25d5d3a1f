package summarize

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in       string
		maxWords int
		want     string
	}{
		{"one two three four", 2, "one two"},
		{"one two", 5, "one two"},
		{"  padded   text  ", 5, "padded   text"},
		{"kept whole", 0, "kept whole"},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.maxWords); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.maxWords, got, tt.want)
		}
	}
}

func TestBuildPrompt(t *testing.T) {
	got := BuildPrompt("body text", "Focus on totals.", 50)
	if !strings.HasPrefix(got, "Focus on totals.") {
		t.Errorf("prompt should lead with the steering text: %q", got)
	}
	if !strings.Contains(got, "keep under 50 words") {
		t.Errorf("prompt should carry the word budget: %q", got)
	}
	if !strings.HasSuffix(got, "body text") {
		t.Errorf("prompt should end with the text: %q", got)
	}

	got = BuildPrompt("body", "", 0)
	if !strings.Contains(got, "keep under 100 words") {
		t.Errorf("zero budget should fall back to the default: %q", got)
	}
	if !strings.HasPrefix(got, "Summarize the following text") {
		t.Errorf("empty prompt should fall back to the default: %q", got)
	}
}

func TestGeminiSummarize(t *testing.T) {
	var gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Contents) == 1 && len(req.Contents[0].Parts) == 1 {
			gotPrompt = req.Contents[0].Parts[0].Text
		}
		resp := map[string]any{
			"candidates": []any{
				map[string]any{
					"content": map[string]any{
						"parts": []any{map[string]any{"text": "a short summary with more than three words"}},
					},
				},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	g := NewGemini(Config{APIKey: "test-key", Endpoint: srv.URL})
	got, err := g.Summarize(context.Background(), "long report body", "Focus on risk.", 3)
	if err != nil {
		t.Fatalf("Summarize error: %v", err)
	}
	if got != "a short summary" {
		t.Errorf("Summarize = %q, want truncated to 3 words", got)
	}
	if !strings.Contains(gotPrompt, "long report body") || !strings.Contains(gotPrompt, "Focus on risk.") {
		t.Errorf("unexpected prompt %q", gotPrompt)
	}
}

func TestGeminiSummarizeAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"code":429,"message":"quota"}}`))
	}))
	defer srv.Close()

	g := NewGemini(Config{APIKey: "test-key", Endpoint: srv.URL})
	if _, err := g.Summarize(context.Background(), "text", "", 10); err == nil {
		t.Error("expected error for non-200 response")
	}
}
