package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/nlpeval/w5h-judge/internal/domain"
)

func init() {
	RegisterProviderFactory("openai", newOpenAIProvider)
}

// openAIProvider implements the StructuredClient interface against the
// OpenAI chat-completions API, forcing the evaluation tool via tool_choice.
type openAIProvider struct {
	client          *openai.Client
	model           string
	errorClassifier *ErrorClassifier
}

func newOpenAIProvider(config ClientConfig) (StructuredClient, error) {
	if config.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &openAIProvider{
		client:          openai.NewClientWithConfig(clientConfig),
		model:           config.Model,
		errorClassifier: &ErrorClassifier{Provider: "openai"},
	}, nil
}

func (p *openAIProvider) Model() string { return p.model }

// RequestStructured sends one chat completion with a single function tool
// and a forced tool choice. A structured tool call is preferred; any plain
// assistant content is surfaced as the degraded raw-text path.
func (p *openAIProvider) RequestStructured(ctx context.Context, req StructuredRequest) (*StructuredResponse, error) {
	completion, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:               p.model,
		Temperature:         float32(req.Temperature),
		MaxCompletionTokens: req.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
		Tools: []openai.Tool{
			{
				Type: openai.ToolTypeFunction,
				Function: &openai.FunctionDefinition{
					Name:        req.ToolName,
					Description: req.ToolDescription,
					Parameters:  req.Schema.AsMap(),
				},
			},
		},
		ToolChoice: openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: req.ToolName},
		},
	})
	if err != nil {
		return nil, p.handleError(err)
	}

	if len(completion.Choices) == 0 {
		return nil, ErrNoResponseChoice
	}
	msg := completion.Choices[0].Message

	resp := &StructuredResponse{
		RawText: msg.Content,
		Usage:   p.usageFrom(completion.Usage),
	}
	if len(msg.ToolCalls) > 0 {
		resp.Payload = json.RawMessage(msg.ToolCalls[0].Function.Arguments)
	}
	return resp, nil
}

// usageFrom converts the API usage block, treating an all-zero block as
// unreported rather than a measured empty usage.
func (p *openAIProvider) usageFrom(usage openai.Usage) domain.TokenUsage {
	if usage.TotalTokens == 0 && usage.PromptTokens == 0 && usage.CompletionTokens == 0 {
		return domain.TokenUsage{}
	}
	return domain.NewTokenUsage(usage.PromptTokens, usage.CompletionTokens, usage.TotalTokens)
}

func (p *openAIProvider) handleError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return p.errorClassifier.ClassifyContextError(err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		message := apiErr.Message
		if message == "" {
			message = "unknown error"
		}
		return p.errorClassifier.ClassifyHTTPError(apiErr.HTTPStatusCode, message, err)
	}

	return NewProviderError("openai", ErrorTypeUnknown, 0, fmt.Sprintf("request failed: %v", err), err)
}
