// Package assistant relays ballistic questions to a hosted LLM.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var (
	ErrEmptyQuestion = errors.New("question is empty")
	ErrEmptyResponse = errors.New("assistant returned an empty response")
	ErrNoAPIKey      = errors.New("assistant requires an API key (set AI_API_KEY or GEMINI_API_KEY)")
)

// Assistant sends a prompt and returns the model's free-text reply.
type Assistant interface {
	Ask(ctx context.Context, prompt string) (string, error)
}

// HTTPClient is the part of *http.Client the providers use.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config selects and configures a provider.
type Config struct {
	Provider   string
	APIKey     string
	Model      string
	Endpoint   string
	Timeout    time.Duration
	HTTPClient HTTPClient
}

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	defaultTimeout = 45 * time.Second
)

// New builds the Assistant for cfg.Provider, defaulting to Gemini.
func New(cfg Config) (Assistant, error) {
	cfg.Provider = strings.TrimSpace(strings.ToLower(cfg.Provider))
	if cfg.Provider == "" {
		cfg.Provider = ProviderGemini
	}
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	cfg.Model = strings.TrimSpace(cfg.Model)
	cfg.Endpoint = strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	if cfg.HTTPClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		cfg.HTTPClient = &http.Client{Timeout: timeout}
	}

	switch cfg.Provider {
	case ProviderGemini:
		return newGemini(cfg), nil
	case ProviderOpenAI:
		return newOpenAI(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", cfg.Provider)
	}
}

// apiError is the error envelope both providers use.
type apiError struct {
	Error struct {
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func statusError(provider string, code int, body apiError) error {
	if body.Error.Message != "" {
		return fmt.Errorf("%s: HTTP %d: %s", provider, code, body.Error.Message)
	}
	return fmt.Errorf("%s request failed with HTTP %d", provider, code)
}
