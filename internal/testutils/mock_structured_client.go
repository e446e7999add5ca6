// Package testutils provides deterministic test doubles for the evaluation
// pipeline.
package testutils

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nlpeval/w5h-judge/infrastructure/llm"
	"github.com/nlpeval/w5h-judge/internal/domain"
)

// ScriptedResponse is one pre-programmed answer for the mock client.
// Exactly one of Err, Payload, or RawText drives the outcome.
type ScriptedResponse struct {
	// Payload is returned as the structured tool-call payload.
	Payload json.RawMessage
	// RawText is returned as degraded plain-text content.
	RawText string
	// Usage is the token usage reported with the response.
	Usage domain.TokenUsage
	// Err, when set, fails the request instead of answering.
	Err error
}

// MockStructuredClient implements llm.StructuredClient with a scripted
// sequence of responses, consumed one per request in order. It records every
// request it receives so tests can assert on prompts and schemas.
type MockStructuredClient struct {
	mu        sync.Mutex
	model     string
	responses []ScriptedResponse
	next      int

	// Requests holds every request received, in order.
	Requests []llm.StructuredRequest
}

// NewMockStructuredClient creates a mock client that replays the given
// responses in order.
func NewMockStructuredClient(model string, responses ...ScriptedResponse) *MockStructuredClient {
	return &MockStructuredClient{model: model, responses: responses}
}

// WithEvaluation returns a scripted response whose payload is the JSON
// encoding of a complete evaluation, with the given total token count.
func WithEvaluation(eval domain.DetailedEvaluation, totalTokens int) ScriptedResponse {
	payload, err := json.Marshal(eval)
	if err != nil {
		panic(fmt.Sprintf("marshal scripted evaluation: %v", err))
	}
	prompt := totalTokens / 2
	completion := totalTokens - prompt
	return ScriptedResponse{
		Payload: payload,
		Usage:   domain.NewTokenUsage(prompt, completion, totalTokens),
	}
}

// RequestStructured replays the next scripted response. Exhausting the
// script is a test setup bug and fails loudly.
func (m *MockStructuredClient) RequestStructured(ctx context.Context, req llm.StructuredRequest) (*llm.StructuredResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests = append(m.Requests, req)
	if m.next >= len(m.responses) {
		return nil, fmt.Errorf("mock client exhausted after %d responses", len(m.responses))
	}
	resp := m.responses[m.next]
	m.next++

	if resp.Err != nil {
		return nil, resp.Err
	}
	return &llm.StructuredResponse{
		Payload: resp.Payload,
		RawText: resp.RawText,
		Usage:   resp.Usage,
	}, nil
}

// Model returns the mock model identifier.
func (m *MockStructuredClient) Model() string { return m.model }

// SampleEvaluation builds a fully populated evaluation with every score set
// to score. Useful as a baseline the test then tweaks.
func SampleEvaluation(score int) domain.DetailedEvaluation {
	return domain.DetailedEvaluation{
		Scores: domain.Scores{
			FactualAccuracy:         score,
			Completeness:            score,
			RelevanceAndConciseness: score,
			ClarityAndReadability:   score,
			SourceFaithfulness:      score,
			OverallCoherence:        score,
		},
		Justifications: domain.Justifications{
			FactualAccuracy:         "All stated facts match the source.",
			Completeness:            "Covers every answerable 5W1H element.",
			RelevanceAndConciseness: "No extraneous content.",
			ClarityAndReadability:   "Reads cleanly.",
			SourceFaithfulness:      "No unsupported claims.",
			OverallCoherence:        "Internally consistent.",
		},
		ConfidenceLevel: domain.ConfidenceLevel{
			Score:         score,
			Justification: "The article states the key facts explicitly.",
		},
	}
}
