// Package engine implements the structured evaluation engine: it renders
// judge prompts, invokes the LLM through the structured-call capability, and
// validates responses into evaluation results. Tasks are processed strictly
// sequentially and a malformed response degrades only its own task's result,
// never the batch.
package engine

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"text/template"

	"github.com/go-playground/validator/v10"

	"github.com/nlpeval/w5h-judge/infrastructure/llm"
	"github.com/nlpeval/w5h-judge/internal/domain"
)

// Evaluator runs evaluation tasks against a structured LLM client.
type Evaluator struct {
	client       llm.StructuredClient
	systemPrompt string
	userTemplate *template.Template
	temperature  float64
	maxTokens    int
	validate     *validator.Validate
	logger       *slog.Logger
}

// promptData is the substitution payload for the user prompt template.
type promptData struct {
	OriginalDocument     string
	ExtractionToEvaluate string
}

// New creates an Evaluator. The user prompt must be a Go template using
// {{.OriginalDocument}} and {{.ExtractionToEvaluate}} placeholders; a
// template that does not parse is a configuration error.
func New(client llm.StructuredClient, systemPrompt, userPrompt string, temperature float64, maxTokens int, logger *slog.Logger) (*Evaluator, error) {
	if client == nil {
		return nil, fmt.Errorf("LLM client cannot be nil")
	}

	tmpl, err := template.New("userPrompt").Parse(userPrompt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse user prompt template: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Evaluator{
		client:       client,
		systemPrompt: systemPrompt,
		userTemplate: tmpl,
		temperature:  temperature,
		maxTokens:    maxTokens,
		validate:     validator.New(),
		logger:       logger,
	}, nil
}

// Evaluate runs every task in order, one blocking LLM call at a time, and
// returns exactly one result per task. Request and parse failures are
// recorded in the affected task's result; evaluation of subsequent tasks
// always continues.
func (e *Evaluator) Evaluate(ctx context.Context, tasks []domain.Task) []domain.EvaluationResult {
	results := make([]domain.EvaluationResult, 0, len(tasks))

	e.logger.Info("evaluation started", "model", e.client.Model(), "tasks", len(tasks))

	for i, task := range tasks {
		e.logger.Info("evaluating task",
			"index", i+1,
			"doc_id", truncate(task.DocumentID, 80),
			"extraction_from", task.ModelName)

		results = append(results, e.evaluateOne(ctx, task))

		if r := results[len(results)-1]; r.EvaluationData != nil {
			e.logger.Info("received evaluation",
				"index", i+1,
				"prompt_tokens", tokenCount(r.TokenUsage.PromptTokens),
				"completion_tokens", tokenCount(r.TokenUsage.CompletionTokens),
				"total_tokens", tokenCount(r.TokenUsage.TotalTokens))
		}
	}

	e.logger.Info("evaluation finished", "items", len(results))
	return results
}

// evaluateOne drives a single task through the request/parse/record flow.
func (e *Evaluator) evaluateOne(ctx context.Context, task domain.Task) domain.EvaluationResult {
	result := domain.EvaluationResult{
		DocumentID:     task.DocumentID,
		ModelEvaluated: task.ModelName,
	}

	userPrompt, err := e.renderUserPrompt(task)
	if err != nil {
		result.Error = fmt.Sprintf("prompt rendering error: %v", err)
		return result
	}

	resp, err := e.client.RequestStructured(ctx, llm.StructuredRequest{
		System:          e.systemPrompt,
		User:            userPrompt,
		ToolName:        SaveEvaluationTool,
		ToolDescription: saveEvaluationDescription,
		Schema:          evaluationSchema(),
		Temperature:     e.temperature,
		MaxTokens:       e.maxTokens,
	})
	if err != nil {
		e.logger.Warn("LLM request failed",
			"doc_id", task.DocumentID, "model", task.ModelName, "error", err)
		result.Error = fmt.Sprintf("LLM request error: %v", err)
		return result
	}

	result.TokenUsage = resp.Usage

	// Prefer the forced tool call; plain-text JSON in the response body is
	// the degraded fallback when no structured call came back or the
	// structured payload fails validation.
	var evaluation *domain.DetailedEvaluation
	var parseErr error
	if resp.Payload != nil {
		evaluation, parseErr = e.decodeEvaluation(resp.Payload)
	} else {
		parseErr = fmt.Errorf("no structured tool call in response")
	}
	if evaluation == nil {
		if fallback, err := e.decodeFromRawText(resp.RawText); err == nil {
			evaluation, parseErr = fallback, nil
		}
	}

	if parseErr != nil {
		e.logger.Warn("parsing error",
			"doc_id", task.DocumentID, "model", task.ModelName, "error", parseErr)
		result.Error = fmt.Sprintf("evaluation parsing error: %v", parseErr)
		result.RawOutput = rawOutput(resp)
		return result
	}

	result.EvaluationData = evaluation
	return result
}

func (e *Evaluator) renderUserPrompt(task domain.Task) (string, error) {
	var buf bytes.Buffer
	err := e.userTemplate.Execute(&buf, promptData{
		OriginalDocument:     task.OriginalText,
		ExtractionToEvaluate: task.Extraction,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// rawOutput preserves whatever the model produced for forensic review.
func rawOutput(resp *llm.StructuredResponse) string {
	if resp.RawText != "" {
		return resp.RawText
	}
	return string(resp.Payload)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// tokenCount flattens an optional count for logging.
func tokenCount(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
