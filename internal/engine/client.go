// Package engine talks to the external text-reasoning service. Each call is
// a single attempt: no retry, no backoff, fail fast. The client recovers the
// structured shape of the engine's output but performs no semantic validation
// of field values.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"caselens/internal/analysis"
	"caselens/internal/config"
)

// Sentinel errors for the failure taxonomy. Callers match with errors.Is.
var (
	// ErrTransport marks a non-success response from the engine; the wrapped
	// message carries the raw upstream body for diagnostics.
	ErrTransport = errors.New("engine transport failure")
	// ErrEmptyOutput marks a success response that contained no text.
	ErrEmptyOutput = errors.New("engine returned empty output")
	// ErrMalformedOutput marks text that is not recoverable as structured
	// data even after brace-span fallback.
	ErrMalformedOutput = errors.New("engine returned malformed output")
)

// Client is one reasoning-engine provider. Analyze sends exactly one request
// and parses the engine's free-text output into the expected shape.
type Client interface {
	Analyze(ctx context.Context, instruction string) (*analysis.EngineOutput, error)
	Model() string
}

// New selects a provider from configuration.
func New(cfg config.Engine) (Client, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "openai", "":
		return newOpenAIClient(cfg)
	case "gemini":
		return newGeminiClient(cfg)
	default:
		return nil, fmt.Errorf("unknown engine provider: %q", cfg.Provider)
	}
}
