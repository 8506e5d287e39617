package gemini

import (
	"context"
	"net/http"
	"testing"

	"github.com/spigell/jobfit/internal/ai"
	"google.golang.org/genai"
)

type fakeModels struct {
	resp   *genai.GenerateContentResponse
	err    error
	calls  int
	model  string
	config *genai.GenerateContentConfig
	prompt string
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls++
	f.model = model
	f.config = config
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompt = contents[0].Parts[0].Text
	}
	return f.resp, f.err
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: content}},
	}
}

func TestInvokeJSON(t *testing.T) {
	models := &fakeModels{resp: textResponse(`{"overall_score": 90}`)}
	b := newBackend(models, "")

	out, err := b.Invoke(context.Background(), ai.Request{System: "system", Prompt: "score this", JSON: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out != `{"overall_score": 90}` {
		t.Fatalf("unexpected output: %q", out)
	}

	if models.model != DefaultModel {
		t.Fatalf("expected default model, got %q", models.model)
	}

	if models.config.ResponseMIMEType != "application/json" {
		t.Fatalf("expected json mime type, got %q", models.config.ResponseMIMEType)
	}

	if models.config.Temperature == nil || *models.config.Temperature != 0 {
		t.Fatalf("expected zero temperature")
	}

	if models.config.SystemInstruction == nil || models.config.SystemInstruction.Parts[0].Text != "system" {
		t.Fatalf("expected system instruction to be set")
	}

	if models.prompt != "score this" {
		t.Fatalf("unexpected prompt: %q", models.prompt)
	}
}

func TestInvokeJoinsParts(t *testing.T) {
	models := &fakeModels{resp: textResponse("# Jane", " ", "## Skills")}
	b := newBackend(models, "gemini-pro")

	out, err := b.Invoke(context.Background(), ai.Request{Prompt: "tailor"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out != "# Jane\n## Skills" {
		t.Fatalf("unexpected output: %q", out)
	}

	if models.config.ResponseMIMEType != "" || models.config.SystemInstruction != nil {
		t.Fatalf("expected plain text request, got %+v", models.config)
	}
}

func TestInvokeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		models *fakeModels
		prompt string
		calls  int
	}{
		{name: "api error", models: &fakeModels{err: genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"}}, prompt: "p", calls: 1},
		{name: "empty response", models: &fakeModels{resp: textResponse("  ")}, prompt: "p", calls: 1},
		{name: "empty prompt", models: &fakeModels{}, prompt: "  ", calls: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b := newBackend(tt.models, "")
			if _, err := b.Invoke(context.Background(), ai.Request{Prompt: tt.prompt}); err == nil {
				t.Fatalf("expected error")
			}
			if tt.models.calls != tt.calls {
				t.Fatalf("expected %d calls, got %d", tt.calls, tt.models.calls)
			}
		})
	}
}

func TestNewRequiresKey(t *testing.T) {
	if _, err := New(context.Background(), " ", ""); err == nil {
		t.Fatalf("expected error for empty api key")
	}
}
