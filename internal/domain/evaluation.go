package domain

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Criterion names in their canonical order. Scores, Justifications, review
// judgments, and the spreadsheet export all iterate criteria in this order.
var criteria = []string{
	"factual_accuracy",
	"completeness",
	"relevance_and_conciseness",
	"clarity_and_readability",
	"source_faithfulness",
	"overall_coherence",
}

// Criteria returns the fixed, ordered set of evaluation criterion names.
// The returned slice is a copy and safe to modify.
func Criteria() []string {
	out := make([]string, len(criteria))
	copy(out, criteria)
	return out
}

// Scores holds the numerical score for each evaluation criterion.
// Every score is an integer in the closed range [1,5].
type Scores struct {
	FactualAccuracy         int `json:"factual_accuracy" validate:"required,min=1,max=5"`
	Completeness            int `json:"completeness" validate:"required,min=1,max=5"`
	RelevanceAndConciseness int `json:"relevance_and_conciseness" validate:"required,min=1,max=5"`
	ClarityAndReadability   int `json:"clarity_and_readability" validate:"required,min=1,max=5"`
	SourceFaithfulness      int `json:"source_faithfulness" validate:"required,min=1,max=5"`
	OverallCoherence        int `json:"overall_coherence" validate:"required,min=1,max=5"`
}

// ByCriterion returns the scores keyed by criterion name.
func (s Scores) ByCriterion() map[string]int {
	return map[string]int{
		"factual_accuracy":          s.FactualAccuracy,
		"completeness":              s.Completeness,
		"relevance_and_conciseness": s.RelevanceAndConciseness,
		"clarity_and_readability":   s.ClarityAndReadability,
		"source_faithfulness":       s.SourceFaithfulness,
		"overall_coherence":         s.OverallCoherence,
	}
}

// Justifications holds the free-text rationale for each assigned score.
// Its key set matches the Scores key set exactly.
type Justifications struct {
	FactualAccuracy         string `json:"factual_accuracy" validate:"required"`
	Completeness            string `json:"completeness" validate:"required"`
	RelevanceAndConciseness string `json:"relevance_and_conciseness" validate:"required"`
	ClarityAndReadability   string `json:"clarity_and_readability" validate:"required"`
	SourceFaithfulness      string `json:"source_faithfulness" validate:"required"`
	OverallCoherence        string `json:"overall_coherence" validate:"required"`
}

// ByCriterion returns the justifications keyed by criterion name.
func (j Justifications) ByCriterion() map[string]string {
	return map[string]string{
		"factual_accuracy":          j.FactualAccuracy,
		"completeness":              j.Completeness,
		"relevance_and_conciseness": j.RelevanceAndConciseness,
		"clarity_and_readability":   j.ClarityAndReadability,
		"source_faithfulness":       j.SourceFaithfulness,
		"overall_coherence":         j.OverallCoherence,
	}
}

// ConfidenceLevel scores the suitability of the source text for 5W1H
// extraction, not the quality of the extraction itself.
type ConfidenceLevel struct {
	Score         int    `json:"score" validate:"required,min=1,max=5"`
	Justification string `json:"justification" validate:"required"`
}

// DetailedEvaluation is the structured payload the judge model returns for
// one task: six bounded scores, their justifications, and a source-text
// confidence assessment.
type DetailedEvaluation struct {
	Scores          Scores          `json:"scores" validate:"required"`
	Justifications  Justifications  `json:"justifications" validate:"required"`
	ConfidenceLevel ConfidenceLevel `json:"confidence_level" validate:"required"`
}

// Validate enforces the evaluation invariants: every score is an integer in
// [1,5] and every justification is present.
func (e *DetailedEvaluation) Validate(v *validator.Validate) error {
	if err := v.Struct(e); err != nil {
		return fmt.Errorf("evaluation failed validation: %w", err)
	}
	return nil
}
