package coach

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// ErrNotConfigured is returned by a generator that has no API key.
var ErrNotConfigured = errors.New("insight generation is not configured")

const (
	temperature     = 0.7
	maxOutputTokens = 500
)

// Generator produces insight text from a system instruction and a prompt.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// GenAIGenerator generates insights with the Gemini API.
type GenAIGenerator struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// NewGenAIGenerator creates a Gemini backed generator.
func NewGenAIGenerator(ctx context.Context, apiKey, model string, logger *zap.Logger) (*GenAIGenerator, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GenAIGenerator{client: client, model: model, logger: logger}, nil
}

// Generate asks the model for one insight. An empty answer yields Fallback.
func (g *GenAIGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       genai.Ptr[float32](temperature),
		MaxOutputTokens:   maxOutputTokens,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("genai generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		g.logger.Warn("empty insight from model", zap.String("model", g.model))
		return Fallback, nil
	}
	return text, nil
}

// DisabledGenerator is used when no API key is configured.
type DisabledGenerator struct{}

// Generate always fails with ErrNotConfigured.
func (DisabledGenerator) Generate(context.Context, string, string) (string, error) {
	return "", ErrNotConfigured
}
