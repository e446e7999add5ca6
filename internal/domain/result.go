package domain

// TokenUsage records the token counts a provider reported for one request.
// Counts are pointers so that unreported usage serializes as null rather
// than a misleading zero.
type TokenUsage struct {
	PromptTokens     *int `json:"prompt_tokens"`
	CompletionTokens *int `json:"completion_tokens"`
	TotalTokens      *int `json:"total_tokens"`
}

// NewTokenUsage builds a fully reported usage record.
func NewTokenUsage(prompt, completion, total int) TokenUsage {
	return TokenUsage{
		PromptTokens:     &prompt,
		CompletionTokens: &completion,
		TotalTokens:      &total,
	}
}

// EvaluationResult is the outcome recorded for one task, successful or not.
// Exactly one result exists per attempted task, so result counts audit task
// counts. A failed parse carries a nil EvaluationData plus the raw model
// output and an error description for forensic review.
type EvaluationResult struct {
	DocumentID     string              `json:"document_idx"`
	ModelEvaluated string              `json:"model_evaluated"`
	EvaluationData *DetailedEvaluation `json:"evaluation_data"`
	TokenUsage     TokenUsage          `json:"token_usage"`
	Error          string              `json:"error,omitempty"`
	RawOutput      string              `json:"raw_output,omitempty"`
}

// ResultsBundle wraps a run's results with the aggregate token total.
type ResultsBundle struct {
	TotalTokens int                `json:"total_tokens"`
	Results     []EvaluationResult `json:"results"`
}
