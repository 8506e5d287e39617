package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spigell/jobfit/internal/ai"
)

const (
	Name             = "anthropic"
	DefaultModel     = "claude-3-haiku-20240307"
	DefaultBaseURL   = "https://api.anthropic.com/v1"
	APIVersion       = "2023-06-01"
	defaultMaxTokens = 4096
)

type Config struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
}

// Backend calls the Messages API. It has no JSON mode, replies may come fenced.
type Backend struct {
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	httpClient *http.Client
}

var _ ai.Backend = (*Backend)(nil)

func New(cfg Config, httpClient *http.Client) (*Backend, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("anthropic api key is required")
	}

	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Minute}
	}

	b := &Backend{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		model:      strings.TrimSpace(cfg.Model),
		maxTokens:  cfg.MaxTokens,
		httpClient: httpClient,
	}
	if b.baseURL == "" {
		b.baseURL = DefaultBaseURL
	}
	if b.model == "" {
		b.model = DefaultModel
	}
	if b.maxTokens <= 0 {
		b.maxTokens = defaultMaxTokens
	}

	return b, nil
}

func (b *Backend) Name() string  { return Name }
func (b *Backend) Model() string { return b.model }

// MessagesRequest is the body of a Messages API call.
type MessagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Messages    []Message `json:"messages"`
	System      string    `json:"system,omitempty"`
	Temperature float64   `json:"temperature"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type MessagesResponse struct {
	ID         string         `json:"id"`
	Content    []ContentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
}

type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Invoke sends one Messages request and joins the text blocks of the reply.
func (b *Backend) Invoke(ctx context.Context, req ai.Request) (string, error) {
	body, err := json.Marshal(MessagesRequest{
		Model:     b.model,
		MaxTokens: b.maxTokens,
		System:    strings.TrimSpace(req.System),
		Messages:  []Message{{Role: "user", Content: req.Prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal anthropic request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create anthropic request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", b.apiKey)
	httpReq.Header.Set("anthropic-version", APIVersion)

	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("anthropic request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read anthropic response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if json.Unmarshal(respBytes, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("anthropic returned HTTP %d (%s): %s", resp.StatusCode, apiErr.Error.Type, apiErr.Error.Message)
		}
		return "", fmt.Errorf("anthropic returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(respBytes)))
	}

	var msg MessagesResponse
	if err := json.Unmarshal(respBytes, &msg); err != nil {
		return "", fmt.Errorf("parse anthropic response: %w", err)
	}

	var parts []string
	for _, block := range msg.Content {
		if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
			parts = append(parts, block.Text)
		}
	}

	if len(parts) == 0 {
		return "", errors.New("anthropic returned no text content")
	}

	return strings.Join(parts, "\n"), nil
}
