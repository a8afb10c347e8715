package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/insightink/insightink/internal/profile"
)

// maxEmbeddingInputLen caps the text sent to the embedding model.
const maxEmbeddingInputLen = 8000

// minTitleContentLen is the content length below which no title is generated.
const minTitleContentLen = 50

// Config holds the AI provider configuration.
type Config struct {
	BaseURL        string
	APIKey         string
	EmbeddingModel string
	ChatModel      string
	MaxRetries     int
	Timeout        time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:        "https://api.openai.com/v1",
		APIKey:         "",
		EmbeddingModel: "text-embedding-3-small",
		ChatModel:      "gpt-4o-mini",
		MaxRetries:     3,
		Timeout:        30 * time.Second,
	}
}

// ConfigFromProfile builds a provider config from the server profile.
func ConfigFromProfile(p *profile.Profile) *Config {
	cfg := DefaultConfig()
	if p.AIBaseURL != "" {
		cfg.BaseURL = p.AIBaseURL
	}
	cfg.APIKey = p.AIAPIKey
	if p.AIEmbeddingModel != "" {
		cfg.EmbeddingModel = p.AIEmbeddingModel
	}
	if p.AIChatModel != "" {
		cfg.ChatModel = p.AIChatModel
	}
	return cfg
}

// Provider provides best-effort AI enrichment: embeddings, note titles, and
// tag suggestions. Callers treat every failure as a degraded result, never a
// write failure.
type Provider struct {
	client *openai.Client
	config *Config
}

// NewProvider creates a new AI provider.
func NewProvider(cfg *Config) (*Provider, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = "text-embedding-3-small"
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = "gpt-4o-mini"
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	client := openai.NewClientWithConfig(clientConfig)

	return &Provider{
		client: client,
		config: cfg,
	}, nil
}

// Embedding generates an embedding vector for the given text.
func (p *Provider) Embedding(ctx context.Context, text string) ([]float32, error) {
	text = truncate(text, maxEmbeddingInputLen)
	if text == "" {
		return nil, fmt.Errorf("empty embedding input")
	}

	var result []float32
	err := p.doWithRetry(ctx, func() error {
		req := openai.EmbeddingRequest{
			Input: []string{text},
			Model: openai.EmbeddingModel(p.config.EmbeddingModel),
		}
		resp, err := p.client.CreateEmbeddings(ctx, req)
		if err != nil {
			return err
		}
		if len(resp.Data) == 0 {
			return fmt.Errorf("empty embedding response")
		}
		result = resp.Data[0].Embedding
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}
	return result, nil
}

// GenerateTitle produces a concise title for note content. Content shorter
// than the threshold never triggers a model call.
func (p *Provider) GenerateTitle(ctx context.Context, content string) (string, error) {
	if len(content) < minTitleContentLen {
		return "", fmt.Errorf("content too short for title generation")
	}

	var result string
	err := p.doWithRetry(ctx, func() error {
		req := openai.ChatCompletionRequest{
			Model: p.config.ChatModel,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You are a helpful assistant that generates concise, descriptive titles for notes. The title should be 5-10 words long and capture the main topic or purpose of the note.",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: "Generate a title for this note:\n\n" + content,
				},
			},
			Temperature: 0.7,
			MaxTokens:   50,
		}
		resp, err := p.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("empty chat response")
		}
		result = strings.TrimSpace(resp.Choices[0].Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate title: %w", err)
	}
	if result == "" {
		return "", fmt.Errorf("empty generated title")
	}
	return result, nil
}

// SuggestTags extracts up to limit tag names from note content.
func (p *Provider) SuggestTags(ctx context.Context, content string, limit int) ([]string, error) {
	if content == "" {
		return []string{}, nil
	}
	if limit <= 0 {
		limit = 5
	}

	var result []string
	err := p.doWithRetry(ctx, func() error {
		req := openai.ChatCompletionRequest{
			Model: p.config.ChatModel,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You extract relevant tags from text content.",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: fmt.Sprintf("Extract up to %d relevant tags from this note. Return only a JSON object with a \"tags\" array of tag names without explanation.\n\nNOTE CONTENT:\n%s", limit, content),
				},
			},
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		}
		resp, err := p.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("empty chat response")
		}
		var parsed struct {
			Tags []string `json:"tags"`
		}
		if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &parsed); err != nil {
			return fmt.Errorf("failed to parse tag suggestions: %w", err)
		}
		result = parsed.Tags
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to suggest tags: %w", err)
	}
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Validate validates the provider configuration by testing API connectivity.
func (p *Provider) Validate(ctx context.Context) error {
	if p.config.APIKey == "" {
		return fmt.Errorf("API key is required, set INSIGHTINK_AI_API_KEY environment variable")
	}
	if _, err := p.Embedding(ctx, "test"); err != nil {
		return fmt.Errorf("embedding validation failed: %w", err)
	}
	slog.Info("AI provider validated successfully",
		"embedding_model", p.config.EmbeddingModel,
		"chat_model", p.config.ChatModel)
	return nil
}

// doWithRetry executes a function with exponential backoff retry.
func (p *Provider) doWithRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < p.config.MaxRetries; attempt++ {
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			if attempt < p.config.MaxRetries-1 {
				waitTime := time.Duration(math.Pow(2, float64(attempt))) * time.Second
				slog.Debug("AI request failed, retrying",
					"attempt", attempt+1,
					"wait_time", waitTime,
					"error", err)
				select {
				case <-time.After(waitTime):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
	return lastErr
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
