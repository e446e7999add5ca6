package export

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/nlpeval/w5h-judge/internal/domain"
	"github.com/nlpeval/w5h-judge/internal/review"
	"github.com/nlpeval/w5h-judge/internal/testutils"
)

func reviewItem(t *testing.T, docID, model string) review.Task {
	t.Helper()
	eval := testutils.SampleEvaluation(4)
	item, err := review.BuildTask(
		domain.Task{DocumentID: docID, ModelName: model, OriginalText: "article", Extraction: "extraction"},
		domain.EvaluationResult{DocumentID: docID, ModelEvaluated: model, EvaluationData: &eval},
	)
	require.NoError(t, err)
	return item
}

func TestFlatten(t *testing.T) {
	item := reviewItem(t, "7", "gpt4o")

	rows := Flatten([]review.Task{item})
	require.Len(t, rows, 6, "one row per criterion")

	for i, criterion := range domain.Criteria() {
		row := rows[i]
		assert.Equal(t, "7_gpt4o_"+criterion, row.ReviewID)
		assert.Equal(t, criterion, row.Criterion)
		assert.Equal(t, 4, row.AIScore)
		assert.NotEmpty(t, row.AIJustification)

		// Shared context is identical across the six rows.
		assert.Equal(t, "7", row.DocID)
		assert.Equal(t, "gpt4o", row.ModelEvaluated)
		assert.Equal(t, 4, row.ConfidenceLevel)
		assert.Equal(t, "article", row.FullSourceText)
		assert.Equal(t, "extraction", row.ExtractionToEvaluate)
	}
}

func TestFlattenEmpty(t *testing.T) {
	assert.Empty(t, Flatten(nil))
}

func TestFlattenNeverDropsCriterionRows(t *testing.T) {
	// A judgment map missing a criterion cannot shrink the row set: the
	// gap surfaces as a zero-score row instead of a silently absent one.
	item := reviewItem(t, "7", "gpt4o")
	delete(item.Judgments, "completeness")

	rows := Flatten([]review.Task{item})
	require.Len(t, rows, 6)

	assert.Equal(t, "completeness", rows[1].Criterion)
	assert.Equal(t, "7_gpt4o_completeness", rows[1].ReviewID)
	assert.Zero(t, rows[1].AIScore)
	assert.Empty(t, rows[1].AIJustification)
}

func TestWriteExcel(t *testing.T) {
	rows := Flatten([]review.Task{reviewItem(t, "1", "gpt4o"), reviewItem(t, "2", "llama3")})
	path := filepath.Join(t.TempDir(), "review.xlsx")

	require.NoError(t, WriteExcel(path, rows))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, got, 13, "header plus twelve data rows")
	assert.Equal(t, headers, got[0])

	// First data row carries the first criterion of the first task.
	assert.Equal(t, "1_gpt4o_factual_accuracy", got[1][0])
	assert.Equal(t, "factual_accuracy", got[1][5])

	// Expert columns start empty for the reviewer to fill in.
	dvs, err := f.GetDataValidations(sheetName)
	require.NoError(t, err)
	require.Len(t, dvs, 1)
	assert.Equal(t, "J2:J13", dvs[0].Sqref)
}

func TestWriteExcelNoRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, WriteExcel(path, nil))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, got, 1, "header only")
}
