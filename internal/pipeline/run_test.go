package pipeline

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlpeval/w5h-judge/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func basseConfig(t *testing.T, step string, limit int) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "basse.jsonl")
	lines := `{"idx":1,"original_document":"A","model_extractions":{"gpt4o-5w1h":{"summ":"S1"},"llama3-5w1h":{"summ":"S2"}}}
{"idx":2,"original_document":"B","model_extractions":{"gpt4o-5w1h":{"summ":"S3"}}}
`
	require.NoError(t, os.WriteFile(path, []byte(lines), 0o644))

	return &config.Config{
		Run:   config.RunConfig{Dataset: "BASSE", Step: step, Limit: limit, Environment: "development"},
		Paths: config.PathsConfig{BasseJSONL: path, ResultsDir: t.TempDir()},
	}
}

func TestRunDispatch(t *testing.T) {
	t.Run("preprocess step succeeds without an LLM", func(t *testing.T) {
		cfg := basseConfig(t, "preprocess", 0)
		assert.NoError(t, Run(context.Background(), cfg, testLogger()))
	})

	t.Run("prepare step succeeds without an LLM", func(t *testing.T) {
		cfg := basseConfig(t, "prepare", 2)
		assert.NoError(t, Run(context.Background(), cfg, testLogger()))
	})

	t.Run("unsupported step is rejected", func(t *testing.T) {
		cfg := basseConfig(t, "validate", 0)
		err := Run(context.Background(), cfg, testLogger())
		assert.ErrorContains(t, err, "unsupported step")
	})

	t.Run("unknown dataset is rejected", func(t *testing.T) {
		cfg := basseConfig(t, "preprocess", 0)
		cfg.Run.Dataset = "imaginary"
		err := Run(context.Background(), cfg, testLogger())
		assert.ErrorContains(t, err, "unknown dataset")
	})
}

func TestBuildEvaluatorConfigurationErrors(t *testing.T) {
	t.Run("unknown provider", func(t *testing.T) {
		cfg := basseConfig(t, "evaluate", 0)
		cfg.LLM = config.LLMConfig{Provider: "cohere", Model: "m", MaxOutputTokens: 100}
		_, err := buildEvaluator(cfg, testLogger())
		assert.ErrorContains(t, err, "unknown LLM provider")
	})

	t.Run("missing credential", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")
		cfg := basseConfig(t, "evaluate", 0)
		cfg.LLM = config.LLMConfig{Provider: "openai", Model: "m", MaxOutputTokens: 100}
		_, err := buildEvaluator(cfg, testLogger())
		assert.ErrorContains(t, err, "OPENAI_API_KEY")
	})

	t.Run("missing prompt file", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "test-key")
		cfg := basseConfig(t, "evaluate", 0)
		cfg.LLM = config.LLMConfig{Provider: "openai", Model: "m", MaxOutputTokens: 100}
		cfg.Prompts = config.PromptsConfig{
			SystemPromptPath: filepath.Join(t.TempDir(), "missing.txt"),
			UserPromptPath:   filepath.Join(t.TempDir(), "missing.txt"),
		}
		_, err := buildEvaluator(cfg, testLogger())
		assert.ErrorContains(t, err, "system prompt")
	})
}
