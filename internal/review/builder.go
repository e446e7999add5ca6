// Package review converts raw evaluation results into the downstream
// artifacts: the results bundle with its aggregate token total, and the
// expert review bundle with a per-criterion breakdown pre-populated with the
// AI's scores and blank expert-feedback slots.
package review

import (
	"fmt"

	"github.com/nlpeval/w5h-judge/internal/domain"
)

// blankFeedback is the initial value of every expert-feedback slot. The
// single space survives round-trips through spreadsheet tooling that treats
// truly empty cells as missing.
const blankFeedback = " "

// ExpertFeedback holds the slots a human reviewer fills in manually.
type ExpertFeedback struct {
	ScoreValidity      string `json:"score_validity_1_to_5"`
	ExplanationQuality string `json:"explanation_quality"`
	OptionalNotes      string `json:"optional_notes"`
}

// Judgment pairs one criterion's AI score and justification with the blank
// expert-feedback slots.
type Judgment struct {
	AIScore         int            `json:"ai_score"`
	AIJustification string         `json:"ai_justification"`
	ExpertFeedback  ExpertFeedback `json:"expert_feedback"`
}

// DocumentInfo nests the source document fields of a review task.
type DocumentInfo struct {
	DocID          string `json:"doc_id"`
	FullSourceText string `json:"full_source_text"`
}

// ExtractionInfo nests the extraction fields of a review task.
type ExtractionInfo struct {
	ModelEvaluated       string `json:"model_evaluated"`
	ExtractionToEvaluate string `json:"extraction_to_evaluate"`
}

// Task is one expert review task, derived 1:1 from a successful
// evaluation result.
type Task struct {
	ReviewID        string                 `json:"review_id"`
	DocumentInfo    DocumentInfo           `json:"document_info"`
	ExtractionInfo  ExtractionInfo         `json:"extraction_info"`
	ConfidenceLevel domain.ConfidenceLevel `json:"confidence_level"`
	Judgments       map[string]Judgment    `json:"judgments_to_review"`
}

// BatchInfo identifies the run a review bundle came from.
type BatchInfo struct {
	Dataset     string `json:"dataset"`
	Environment string `json:"environment"`
	Provider    string `json:"provider"`
	Model       string `json:"model"`
}

// Bundle is the complete review artifact for one run.
type Bundle struct {
	ReviewBatchInfo BatchInfo `json:"review_batch_info"`
	ReviewItems     []Task    `json:"review_items"`
}

// BuildResultsBundle wraps the result sequence with the aggregate token
// total. Missing totals count as zero for aggregation only; the underlying
// per-result counts keep their null state.
func BuildResultsBundle(results []domain.EvaluationResult) domain.ResultsBundle {
	total := 0
	for _, r := range results {
		if r.TokenUsage.TotalTokens != nil {
			total += *r.TokenUsage.TotalTokens
		}
	}
	return domain.ResultsBundle{TotalTokens: total, Results: results}
}

// BuildTask constructs the expert review task for one evaluated extraction.
// The result must carry evaluation data; callers skip failed results.
// A divergence between the score and justification key sets means the
// evaluation schema itself is inconsistent, so it fails loudly instead of
// silently dropping a criterion.
func BuildTask(task domain.Task, result domain.EvaluationResult) (Task, error) {
	if result.EvaluationData == nil {
		return Task{}, fmt.Errorf("result for doc %s / model %s has no evaluation data", result.DocumentID, result.ModelEvaluated)
	}

	scores := result.EvaluationData.Scores.ByCriterion()
	justifications := result.EvaluationData.Justifications.ByCriterion()

	judgments := make(map[string]Judgment, len(scores))
	for _, criterion := range domain.Criteria() {
		score, ok := scores[criterion]
		if !ok {
			return Task{}, fmt.Errorf("criterion %q missing from scores", criterion)
		}
		justification, ok := justifications[criterion]
		if !ok {
			return Task{}, fmt.Errorf("criterion %q has a score but no justification", criterion)
		}
		judgments[criterion] = Judgment{
			AIScore:         score,
			AIJustification: justification,
			ExpertFeedback: ExpertFeedback{
				ScoreValidity:      blankFeedback,
				ExplanationQuality: blankFeedback,
				OptionalNotes:      blankFeedback,
			},
		}
	}

	return Task{
		ReviewID: fmt.Sprintf("%s_%s", task.DocumentID, task.ModelName),
		DocumentInfo: DocumentInfo{
			DocID:          task.DocumentID,
			FullSourceText: task.OriginalText,
		},
		ExtractionInfo: ExtractionInfo{
			ModelEvaluated:       task.ModelName,
			ExtractionToEvaluate: task.Extraction,
		},
		ConfidenceLevel: result.EvaluationData.ConfidenceLevel,
		Judgments:       judgments,
	}, nil
}

// BuildBundle pairs tasks with their results positionally and collects a
// review task for every result that carries evaluation data. Failed results
// are skipped, not emitted.
func BuildBundle(info BatchInfo, tasks []domain.Task, results []domain.EvaluationResult) (Bundle, error) {
	if len(tasks) != len(results) {
		return Bundle{}, fmt.Errorf("task/result count mismatch: %d tasks, %d results", len(tasks), len(results))
	}

	bundle := Bundle{ReviewBatchInfo: info, ReviewItems: []Task{}}
	for i, result := range results {
		if result.EvaluationData == nil {
			continue
		}
		item, err := BuildTask(tasks[i], result)
		if err != nil {
			return Bundle{}, err
		}
		bundle.ReviewItems = append(bundle.ReviewItems, item)
	}
	return bundle, nil
}
