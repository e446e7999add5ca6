package output

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultFilename(t *testing.T) {
	ts := time.Date(2026, 8, 28, 14, 30, 5, 0, time.UTC)

	t.Run("plain identifiers", func(t *testing.T) {
		got := ResultFilename(ts, "development", "basse", "openai", "gpt-5-mini-2025-08-07")
		assert.Equal(t, "2026-08-28_14-30-05_development_BASSE_openai_gpt-5-mini-2025-08-07.json", got)
	})

	t.Run("provider and model segments are normalized", func(t *testing.T) {
		got := ResultFilename(ts, "production", "FLARES", "google genai", "models/gemini-2.5:latest")
		assert.Equal(t, "2026-08-28_14-30-05_production_FLARES_google_genai_models_gemini-2.5_latest.json", got)
	})

	t.Run("pattern is stable", func(t *testing.T) {
		got := ResultFilename(time.Now(), "development", "basse", "openai", "gpt-4.1")
		pattern := regexp.MustCompile(`^\d{4}-\d{2}-\d{2}_\d{2}-\d{2}-\d{2}_development_BASSE_openai_gpt-4\.1\.json$`)
		assert.Regexp(t, pattern, got)
	})
}

func TestReviewAndExcelFilenames(t *testing.T) {
	result := "2026-08-28_14-30-05_development_BASSE_openai_gpt-4.1.json"

	review := ReviewFilename(result)
	assert.Equal(t, "2026-08-28_14-30-05_development_BASSE_openai_gpt-4.1_review.json", review)

	excel := ExcelFilename(review)
	assert.Equal(t, "2026-08-28_14-30-05_development_BASSE_openai_gpt-4.1_review.xlsx", excel)
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "artifact.json")
	require.NoError(t, EnsureDir(filepath.Dir(path)))

	payload := map[string]any{"text": "<b>＆</b>", "n": 1}
	require.NoError(t, WriteJSON(path, payload))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	// Indented, with HTML left unescaped.
	assert.Contains(t, string(data), "  \"n\": 1")
	assert.Contains(t, string(data), "<b>")
	assert.NotContains(t, string(data), `\u003c`)
}
