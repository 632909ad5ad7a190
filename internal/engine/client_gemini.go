package engine

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"caselens/internal/analysis"
	"caselens/internal/config"
)

// geminiClient implements Client using the Google GenAI SDK.
type geminiClient struct {
	client *genai.Client
	model  string
}

func newGeminiClient(cfg config.Engine) (*geminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("engine API key not configured")
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &geminiClient{client: client, model: model}, nil
}

func (c *geminiClient) Model() string { return c.model }

// Analyze sends exactly one generation request with JSON output forced at the
// API level. The brace-span fallback in decodeOutput still applies.
func (c *geminiClient) Analyze(ctx context.Context, instruction string) (*analysis.EngineOutput, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model,
		genai.Text(instruction),
		&genai.GenerateContentConfig{
			Temperature:      genai.Ptr[float32](0.1),
			ResponseMIMEType: "application/json",
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, ErrEmptyOutput
	}
	return decodeOutput(text)
}
