// Package gemini adapts Google's Gemini API to the generator port.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/skillsprint/roadmap-api/internal/ports/out/generator"
)

const DefaultModel = "gemini-1.5-flash"

// ErrNotConfigured is returned by every call when no API key was provided. Its text carries the
// same reason code Gemini uses for a bad key so that it classifies as an auth-config failure.
var ErrNotConfigured = errors.New("API_KEY_INVALID: GEMINI_API_KEY is not configured")

type Config struct {
	APIKey string
	Model  string

	// BaseURL overrides the Gemini endpoint (tests, proxies).
	BaseURL    string
	HTTPClient *http.Client
}

// Generator calls models.generateContent once per prompt. No retries: failures surface to the caller.
type Generator struct {
	client *genai.Client
	model  string
}

var _ generator.Generator = (*Generator)(nil)

// New builds the client once at startup. With an empty API key it returns an Unconfigured generator
// rather than failing, so the service still boots and reports geminiConfigured=false.
func New(ctx context.Context, cfg Config) (generator.Generator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return Unconfigured{}, nil
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Generator{client: client, model: model}, nil
}

func (g *Generator) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		// genai.APIError renders code, status and details (which carry reasons such as
		// API_KEY_INVALID) into its message; keep it intact for classification.
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini generate: empty response")
	}
	return text, nil
}

// Unconfigured fails every call with ErrNotConfigured.
type Unconfigured struct{}

func (Unconfigured) GenerateText(context.Context, string) (string, error) {
	return "", ErrNotConfigured
}
