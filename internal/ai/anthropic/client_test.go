package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spigell/jobfit/internal/ai"
)

func TestInvoke(t *testing.T) {
	var got MessagesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "secret" {
			t.Errorf("unexpected api key header %q", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") != APIVersion {
			t.Errorf("unexpected version header %q", r.Header.Get("anthropic-version"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(`{"id":"msg_1","content":[{"type":"text","text":"` + "```json\\n{}\\n```" + `"}],"stop_reason":"end_turn"}`))
	}))
	defer srv.Close()

	b, err := New(Config{APIKey: "secret", BaseURL: srv.URL}, srv.Client())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, err := b.Invoke(context.Background(), ai.Request{System: "sys", Prompt: "score", JSON: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out != "```json\n{}\n```" {
		t.Fatalf("unexpected output: %q", out)
	}

	if got.Model != DefaultModel || got.System != "sys" || got.MaxTokens != defaultMaxTokens {
		t.Fatalf("unexpected request: %+v", got)
	}

	if len(got.Messages) != 1 || got.Messages[0].Role != "user" || got.Messages[0].Content != "score" {
		t.Fatalf("unexpected messages: %+v", got.Messages)
	}
}

func TestInvokeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		errPart string
	}{
		{name: "api error", status: http.StatusTooManyRequests, body: `{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`, errPart: "rate_limit_error"},
		{name: "raw error", status: http.StatusBadGateway, body: `upstream`, errPart: "HTTP 502"},
		{name: "no text", status: http.StatusOK, body: `{"content":[{"type":"tool_use"}]}`, errPart: "no text content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			b, _ := New(Config{APIKey: "k", BaseURL: srv.URL}, srv.Client())
			_, err := b.Invoke(context.Background(), ai.Request{Prompt: "p"})
			if err == nil || !strings.Contains(err.Error(), tt.errPart) {
				t.Fatalf("expected error containing %q, got %v", tt.errPart, err)
			}
		})
	}
}
