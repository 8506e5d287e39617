package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spigell/jobfit/internal/ai"
	"google.golang.org/genai"
)

const (
	Name         = "gemini"
	DefaultModel = "gemini-2.0-flash"
)

type contentModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Backend wraps the Google GenAI client as a scoring backend.
type Backend struct {
	models    contentModels
	modelName string
}

var _ ai.Backend = (*Backend)(nil)

// New creates a Backend configured for the Gemini API.
func New(ctx context.Context, apiKey, model string) (*Backend, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newBackend(client.Models, model), nil
}

func newBackend(models contentModels, model string) *Backend {
	if model = strings.TrimSpace(model); model == "" {
		model = DefaultModel
	}
	return &Backend{models: models, modelName: model}
}

func (b *Backend) Name() string { return Name }

func (b *Backend) Model() string {
	if b == nil {
		return ""
	}
	return b.modelName
}

// Invoke sends the prompt to Gemini and joins the textual parts of the reply.
func (b *Backend) Invoke(ctx context.Context, req ai.Request) (string, error) {
	if b == nil || b.models == nil {
		return "", errors.New("gemini backend is not initialized")
	}

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
	}
	if req.JSON {
		config.ResponseMIMEType = "application/json"
	}
	if system := strings.TrimSpace(req.System); system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := b.models.GenerateContent(ctx, b.modelName, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}

	return output, nil
}
