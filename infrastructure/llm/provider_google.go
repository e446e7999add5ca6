package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
	"google.golang.org/genai"

	"github.com/nlpeval/w5h-judge/internal/domain"
)

func init() {
	RegisterProviderFactory("google", newGoogleProvider)
}

// googleProvider implements the StructuredClient interface against the
// Gemini API, forcing the evaluation function via the ANY calling mode.
type googleProvider struct {
	client          *genai.Client
	model           string
	errorClassifier *ErrorClassifier
}

func newGoogleProvider(config ClientConfig) (StructuredClient, error) {
	if config.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Google client: %w", err)
	}

	return &googleProvider{
		client:          client,
		model:           config.Model,
		errorClassifier: &ErrorClassifier{Provider: "google"},
	}, nil
}

func (p *googleProvider) Model() string { return p.model }

// RequestStructured sends one generate-content call with a single function
// declaration, restricting the model to that function. The function-call
// arguments become the structured payload; response text is the degraded
// raw-text path.
func (p *googleProvider) RequestStructured(ctx context.Context, req StructuredRequest) (*StructuredResponse, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(req.Temperature)),
		MaxOutputTokens: int32(req.MaxTokens),
		Tools: []*genai.Tool{
			{
				FunctionDeclarations: []*genai.FunctionDeclaration{
					{
						Name:        req.ToolName,
						Description: req.ToolDescription,
						Parameters:  toGenaiSchema(req.Schema),
					},
				},
			},
		},
		ToolConfig: &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{
				Mode:                 genai.FunctionCallingConfigModeAny,
				AllowedFunctionNames: []string{req.ToolName},
			},
		},
	}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	contents := []*genai.Content{genai.NewContentFromText(req.User, genai.RoleUser)}

	result, err := p.client.Models.GenerateContent(ctx, p.model, contents, config)
	if err != nil {
		return nil, p.handleError(err)
	}

	resp := &StructuredResponse{
		RawText: result.Text(),
		Usage:   p.usageFrom(result.UsageMetadata),
	}

	for _, call := range result.FunctionCalls() {
		if call.Name != req.ToolName {
			continue
		}
		payload, err := json.Marshal(call.Args)
		if err != nil {
			return nil, fmt.Errorf("failed to encode function-call arguments: %w", err)
		}
		resp.Payload = payload
		break
	}

	if resp.Payload == nil && resp.RawText == "" {
		return nil, ErrEmptyResponse
	}
	return resp, nil
}

func (p *googleProvider) usageFrom(usage *genai.GenerateContentResponseUsageMetadata) domain.TokenUsage {
	if usage == nil {
		return domain.TokenUsage{}
	}
	return domain.NewTokenUsage(
		int(usage.PromptTokenCount),
		int(usage.CandidatesTokenCount),
		int(usage.TotalTokenCount),
	)
}

func (p *googleProvider) handleError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return p.errorClassifier.ClassifyContextError(err)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		message := apiErr.Message
		if message == "" && len(apiErr.Errors) > 0 {
			message = apiErr.Errors[0].Message
		}
		return p.errorClassifier.ClassifyHTTPError(apiErr.Code, message, err)
	}

	return NewProviderError("google", ErrorTypeUnknown, 0, "request failed", err)
}

// toGenaiSchema converts the provider-neutral schema to the Gemini SDK's
// native schema type.
func toGenaiSchema(s *Schema) *genai.Schema {
	if s == nil {
		return nil
	}

	out := &genai.Schema{
		Description: s.Description,
		Minimum:     s.Minimum,
		Maximum:     s.Maximum,
		Required:    s.Required,
	}

	switch s.Type {
	case "object":
		out.Type = genai.TypeObject
	case "integer":
		out.Type = genai.TypeInteger
	case "string":
		out.Type = genai.TypeString
	default:
		out.Type = genai.TypeUnspecified
	}

	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGenaiSchema(prop)
		}
	}

	return out
}
