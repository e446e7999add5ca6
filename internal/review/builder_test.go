package review

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlpeval/w5h-judge/internal/domain"
	"github.com/nlpeval/w5h-judge/internal/testutils"
)

func TestBuildResultsBundle(t *testing.T) {
	t.Run("nil totals count as zero", func(t *testing.T) {
		eval := testutils.SampleEvaluation(4)
		results := []domain.EvaluationResult{
			{DocumentID: "1", EvaluationData: &eval, TokenUsage: domain.NewTokenUsage(80, 40, 120)},
			{DocumentID: "2", Error: "request failed"}, // no usage reported
			{DocumentID: "3", EvaluationData: &eval, TokenUsage: domain.NewTokenUsage(50, 30, 80)},
		}

		bundle := BuildResultsBundle(results)
		assert.Equal(t, 200, bundle.TotalTokens)
		assert.Len(t, bundle.Results, 3)
	})

	t.Run("empty results yield zero total", func(t *testing.T) {
		bundle := BuildResultsBundle(nil)
		assert.Equal(t, 0, bundle.TotalTokens)
	})
}

func TestBuildTask(t *testing.T) {
	task := domain.Task{
		DocumentID:   "42",
		OriginalText: "full article",
		Extraction:   "the extraction",
		ModelName:    "gpt4o",
	}
	eval := testutils.SampleEvaluation(4)
	result := domain.EvaluationResult{
		DocumentID:     "42",
		ModelEvaluated: "gpt4o",
		EvaluationData: &eval,
	}

	reviewTask, err := BuildTask(task, result)
	require.NoError(t, err)

	assert.Equal(t, "42_gpt4o", reviewTask.ReviewID)
	assert.Equal(t, "42", reviewTask.DocumentInfo.DocID)
	assert.Equal(t, "full article", reviewTask.DocumentInfo.FullSourceText)
	assert.Equal(t, "gpt4o", reviewTask.ExtractionInfo.ModelEvaluated)
	assert.Equal(t, "the extraction", reviewTask.ExtractionInfo.ExtractionToEvaluate)
	assert.Equal(t, eval.ConfidenceLevel, reviewTask.ConfidenceLevel)

	require.Len(t, reviewTask.Judgments, len(domain.Criteria()))
	for _, criterion := range domain.Criteria() {
		judgment, ok := reviewTask.Judgments[criterion]
		require.True(t, ok, "missing judgment for %s", criterion)
		assert.Equal(t, 4, judgment.AIScore)
		assert.NotEmpty(t, judgment.AIJustification)
		assert.Equal(t, " ", judgment.ExpertFeedback.ScoreValidity)
		assert.Equal(t, " ", judgment.ExpertFeedback.ExplanationQuality)
		assert.Equal(t, " ", judgment.ExpertFeedback.OptionalNotes)
	}
}

func TestBuildTaskRejectsMissingEvaluation(t *testing.T) {
	_, err := BuildTask(domain.Task{DocumentID: "1"}, domain.EvaluationResult{DocumentID: "1"})
	assert.Error(t, err)
}

func TestBuildBundle(t *testing.T) {
	eval := testutils.SampleEvaluation(5)
	tasks := []domain.Task{
		{DocumentID: "1", ModelName: "gpt4o", OriginalText: "a", Extraction: "x"},
		{DocumentID: "1", ModelName: "llama3", OriginalText: "a", Extraction: "y"},
		{DocumentID: "2", ModelName: "gpt4o", OriginalText: "b", Extraction: "z"},
	}
	results := []domain.EvaluationResult{
		{DocumentID: "1", ModelEvaluated: "gpt4o", EvaluationData: &eval},
		{DocumentID: "1", ModelEvaluated: "llama3", Error: "parse failed"},
		{DocumentID: "2", ModelEvaluated: "gpt4o", EvaluationData: &eval},
	}
	info := BatchInfo{Dataset: "BASSE", Environment: "development", Provider: "openai", Model: "gpt-5-mini"}

	t.Run("failed results are skipped", func(t *testing.T) {
		bundle, err := BuildBundle(info, tasks, results)
		require.NoError(t, err)
		assert.Equal(t, info, bundle.ReviewBatchInfo)
		require.Len(t, bundle.ReviewItems, 2)
		assert.Equal(t, "1_gpt4o", bundle.ReviewItems[0].ReviewID)
		assert.Equal(t, "2_gpt4o", bundle.ReviewItems[1].ReviewID)
	})

	t.Run("count mismatch is rejected", func(t *testing.T) {
		_, err := BuildBundle(info, tasks[:2], results)
		assert.Error(t, err)
	})

	t.Run("all failures serialize to an empty items array", func(t *testing.T) {
		bundle, err := BuildBundle(info, tasks[1:2], results[1:2])
		require.NoError(t, err)

		data, err := json.Marshal(bundle)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"review_items":[]`)
	})
}
