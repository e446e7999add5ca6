// Package llm abstracts the LLM providers behind a structured-evaluation
// capability: a single forced function/tool call whose parameter schema the
// caller supplies. Each provider adapter implements the contract against its
// own API shape, so the evaluation engine never branches on provider.
//
// Basic usage:
//
//	client, err := llm.NewClient("openai", llm.ClientConfig{
//	    APIKey: os.Getenv("OPENAI_API_KEY"),
//	    Model:  "gpt-4.1",
//	})
//	resp, err := client.RequestStructured(ctx, llm.StructuredRequest{...})
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/nlpeval/w5h-judge/internal/domain"
)

// StructuredRequest describes one schema-constrained judge call.
type StructuredRequest struct {
	// System is the fixed system instruction.
	System string
	// User is the rendered per-task user message.
	User string
	// ToolName names the single callable the model is forced to invoke.
	ToolName string
	// ToolDescription documents the callable for the model.
	ToolDescription string
	// Schema is the callable's parameter schema.
	Schema *Schema
	// Temperature controls sampling randomness.
	Temperature float64
	// MaxTokens caps the model's output length.
	MaxTokens int
}

// StructuredResponse carries the provider's answer to a structured request.
type StructuredResponse struct {
	// Payload holds the forced tool-call arguments, or nil when the model
	// returned no structured call. Callers fall back to RawText then.
	Payload json.RawMessage
	// RawText is any plain-text content the model produced.
	RawText string
	// Usage records provider-reported token counts; counts stay nil when
	// the provider reported nothing.
	Usage domain.TokenUsage
}

// StructuredClient is the provider-capability interface the evaluation
// engine programs against.
type StructuredClient interface {
	// RequestStructured sends one schema-constrained request and returns
	// the structured payload or degraded raw text. The call blocks until
	// the provider responds; no retries are attempted.
	RequestStructured(ctx context.Context, req StructuredRequest) (*StructuredResponse, error)

	// Model returns the configured model identifier.
	Model() string
}

// ClientConfig holds the per-run provider settings.
type ClientConfig struct {
	// APIKey authenticates requests to the provider.
	APIKey string
	// Model is the judge model identifier.
	Model string
	// BaseURL overrides the provider's default endpoint. Leave empty to
	// use the default.
	BaseURL string
}

// ProviderFactory creates a StructuredClient from configuration.
type ProviderFactory func(ClientConfig) (StructuredClient, error)

// Provider factory registry, populated by each provider's init.
var providerFactories = map[string]ProviderFactory{}

// RegisterProviderFactory registers a provider implementation under its
// canonical type name.
func RegisterProviderFactory(providerType string, factory ProviderFactory) {
	providerFactories[providerType] = factory
}

// providerAliases maps accepted provider spellings to canonical types.
var providerAliases = map[string]string{
	"openai":       "openai",
	"anthropic":    "anthropic",
	"claude":       "anthropic",
	"google":       "google",
	"gemini":       "google",
	"googleai":     "google",
	"google-genai": "google",
}

// providerEnvVars names the environment variable holding each provider's
// API key.
var providerEnvVars = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
	"google":    "GOOGLE_API_KEY",
}

// ResolveProvider maps a configured provider name, case-insensitively and
// through its accepted aliases, to the canonical provider type.
func ResolveProvider(name string) (string, error) {
	canonical, ok := providerAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("unknown LLM provider %q; supported: openai | anthropic | gemini", name)
	}
	return canonical, nil
}

// ResolveAPIKey returns the credential for a provider type. The provider's
// environment variable takes precedence; the configured override is the
// fallback. A missing credential is a fatal configuration error raised here,
// before any task is attempted.
func ResolveAPIKey(providerType, configOverride string) (string, error) {
	envVar, ok := providerEnvVars[providerType]
	if !ok {
		return "", fmt.Errorf("unknown LLM provider %q", providerType)
	}
	if key := os.Getenv(envVar); key != "" {
		return key, nil
	}
	if configOverride != "" {
		return configOverride, nil
	}
	return "", fmt.Errorf("%s is not set; export it or provide llm.api_key in the config file", envVar)
}

// NewClient creates a structured client for the canonical provider type.
func NewClient(providerType string, config ClientConfig) (StructuredClient, error) {
	if config.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}
	if config.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	factory, ok := providerFactories[providerType]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", providerType)
	}

	client, err := factory(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}
	return client, nil
}
