package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/nlpeval/w5h-judge/internal/domain"
)

func init() {
	RegisterProviderFactory("anthropic", newAnthropicProvider)
}

// anthropicProvider implements the StructuredClient interface against
// Anthropic's Messages API, forcing the evaluation tool via tool_choice.
type anthropicProvider struct {
	client anthropic.Client
	model  string
}

func newAnthropicProvider(config ClientConfig) (StructuredClient, error) {
	if config.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}

	opts := []option.RequestOption{option.WithAPIKey(config.APIKey)}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	return &anthropicProvider{
		client: anthropic.NewClient(opts...),
		model:  config.Model,
	}, nil
}

func (p *anthropicProvider) Model() string { return p.model }

// RequestStructured sends one message with a single tool and a forced tool
// choice, collecting the tool_use input as the structured payload and any
// text blocks as the degraded raw-text path.
func (p *anthropicProvider) RequestStructured(ctx context.Context, req StructuredRequest) (*StructuredResponse, error) {
	schema := req.Schema.AsMap()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(req.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.User)),
		},
		Temperature: anthropic.Float(req.Temperature),
		Tools: []anthropic.ToolUnionParam{
			{
				OfTool: &anthropic.ToolParam{
					Name:        req.ToolName,
					Description: anthropic.String(req.ToolDescription),
					InputSchema: anthropic.ToolInputSchemaParam{
						Properties: schema["properties"],
						ExtraFields: map[string]any{
							"required": req.Schema.Required,
						},
					},
				},
			},
		},
		ToolChoice: anthropic.ToolChoiceUnionParam{
			OfTool: &anthropic.ToolChoiceToolParam{Name: req.ToolName},
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	message, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, p.wrapError(err)
	}

	resp := &StructuredResponse{Usage: p.usageFrom(message.Usage)}

	var text strings.Builder
	for _, block := range message.Content {
		switch content := block.AsAny().(type) {
		case anthropic.TextBlock:
			text.WriteString(content.Text)
		case anthropic.ToolUseBlock:
			if resp.Payload == nil && content.Name == req.ToolName {
				resp.Payload = content.Input
			}
		}
	}
	resp.RawText = text.String()

	if resp.Payload == nil && resp.RawText == "" {
		return nil, ErrEmptyResponse
	}
	return resp, nil
}

func (p *anthropicProvider) usageFrom(usage anthropic.Usage) domain.TokenUsage {
	if usage.InputTokens == 0 && usage.OutputTokens == 0 {
		return domain.TokenUsage{}
	}
	in := int(usage.InputTokens)
	out := int(usage.OutputTokens)
	return domain.NewTokenUsage(in, out, in+out)
}

func (p *anthropicProvider) wrapError(err error) error {
	var anthropicErr *anthropic.Error
	if errors.As(err, &anthropicErr) {
		classifier := &ErrorClassifier{Provider: "anthropic"}
		return classifier.ClassifyHTTPError(anthropicErr.StatusCode, anthropicErr.Error(), err)
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		classifier := &ErrorClassifier{Provider: "anthropic"}
		return classifier.ClassifyContextError(err)
	}

	return fmt.Errorf("anthropic request failed: %w", err)
}
