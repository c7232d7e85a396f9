package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	textservice "github.com/Black-And-White-Club/typer-master/app/modules/text/application"
	"google.golang.org/genai"
)

// Config holds the credentials and model used for generation.
type Config struct {
	APIKey string
	Model  string
}

// contentGenerator is the part of *genai.Models the generator uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Generator implements textservice.Generator on top of the Gemini API.
type Generator struct {
	models contentGenerator
	model  string
}

var _ textservice.Generator = (*Generator)(nil)

// NewGenerator creates a Gemini client. It fails when the key or model is missing.
func NewGenerator(ctx context.Context, cfg Config) (*Generator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini: api key is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("gemini: model is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &Generator{models: client.Models, model: cfg.Model}, nil
}

// Generate sends prompt as a single user turn and returns the concatenated text parts.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}
	return extractText(resp)
}

func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("prompt blocked (%s): %w", resp.PromptFeedback.BlockReason, textservice.ErrEmptyResponse)
		}
		return "", fmt.Errorf("no candidates: %w", textservice.ErrEmptyResponse)
	}

	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil {
		return "", fmt.Errorf("candidate without content: %w", textservice.ErrMalformedResponse)
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("candidate has no text parts: %w", textservice.ErrEmptyResponse)
	}
	return sb.String(), nil
}
