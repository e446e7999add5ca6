package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/nlpeval/w5h-judge/infrastructure/llm"
	"github.com/nlpeval/w5h-judge/internal/config"
	"github.com/nlpeval/w5h-judge/internal/engine"
	"github.com/nlpeval/w5h-judge/internal/export"
	"github.com/nlpeval/w5h-judge/internal/output"
	"github.com/nlpeval/w5h-judge/internal/review"
)

// Run executes the configured pipeline step. "all" is the full evaluate
// path; "preprocess" and "prepare" stop after their stage and report counts.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	switch cfg.Run.Step {
	case "preprocess":
		return runPreprocessOnly(cfg, logger)
	case "prepare":
		return runPrepareOnly(cfg, logger)
	case "evaluate", "all":
		return runEvaluate(ctx, cfg, logger)
	default:
		return fmt.Errorf("unsupported step: %s", cfg.Run.Step)
	}
}

func runPreprocessOnly(cfg *config.Config, logger *slog.Logger) error {
	_, docs, err := Preprocess(cfg, logger)
	if err != nil {
		return err
	}
	docs = LimitDocuments(docs, cfg.Run.Limit)
	logger.Info("preprocess complete", "dataset", cfg.Run.Dataset, "documents", len(docs))
	return nil
}

func runPrepareOnly(cfg *config.Config, logger *slog.Logger) error {
	plugin, docs, err := Preprocess(cfg, logger)
	if err != nil {
		return err
	}
	docs = LimitDocuments(docs, cfg.Run.Limit)
	tasks := Assemble(plugin, docs, cfg.Run.Limit)
	logger.Info("prepare complete", "dataset", cfg.Run.Dataset, "tasks", len(tasks))
	return nil
}

func runEvaluate(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("evaluation run starting",
		"dataset", cfg.Run.Dataset,
		"environment", cfg.Run.Environment,
		"provider", cfg.LLM.Provider,
		"model", cfg.LLM.Model,
		"limit", cfg.Run.Limit)

	evaluator, err := buildEvaluator(cfg, logger)
	if err != nil {
		return err
	}

	plugin, docs, err := Preprocess(cfg, logger)
	if err != nil {
		return err
	}
	docs = LimitDocuments(docs, cfg.Run.Limit)
	tasks := Assemble(plugin, docs, cfg.Run.Limit)
	if len(tasks) == 0 {
		logger.Warn("no tasks produced, nothing to evaluate", "dataset", cfg.Run.Dataset)
		return nil
	}

	results := evaluator.Evaluate(ctx, tasks)
	bundle := review.BuildResultsBundle(results)

	if err := output.EnsureDir(cfg.Paths.ResultsDir); err != nil {
		return err
	}
	resultsPath := filepath.Join(cfg.Paths.ResultsDir, output.ResultFilename(
		time.Now(), cfg.Run.Environment, cfg.Run.Dataset, cfg.LLM.Provider, cfg.LLM.Model))
	if err := output.WriteJSON(resultsPath, bundle); err != nil {
		return err
	}
	logger.Info("saved evaluation results", "path", resultsPath)

	if !cfg.Validation.GenerateReviewTask {
		return nil
	}

	reviewBundle, err := review.BuildBundle(review.BatchInfo{
		Dataset:     cfg.Run.Dataset,
		Environment: cfg.Run.Environment,
		Provider:    cfg.LLM.Provider,
		Model:       cfg.LLM.Model,
	}, tasks, results)
	if err != nil {
		return fmt.Errorf("build review tasks: %w", err)
	}

	reviewPath := filepath.Join(cfg.Paths.ResultsDir, output.ReviewFilename(filepath.Base(resultsPath)))
	if err := output.WriteJSON(reviewPath, reviewBundle); err != nil {
		return err
	}
	logger.Info("saved expert review tasks", "path", reviewPath, "items", len(reviewBundle.ReviewItems))

	if cfg.Validation.GenerateExcel {
		excelPath := filepath.Join(cfg.Paths.ResultsDir, output.ExcelFilename(filepath.Base(reviewPath)))
		rows := export.Flatten(reviewBundle.ReviewItems)
		if err := export.WriteExcel(excelPath, rows); err != nil {
			// The spreadsheet is a convenience artifact; the run already
			// has its JSON outputs, so a failure here is not fatal.
			logger.Warn("failed to create Excel review file", "error", err)
		} else {
			logger.Info("saved expert review spreadsheet", "path", excelPath, "rows", len(rows))
		}
	}

	return nil
}

// buildEvaluator resolves the provider, credential, and prompt files into a
// ready evaluation engine. Every failure here is a configuration error
// surfaced before any document is read or LLM call made.
func buildEvaluator(cfg *config.Config, logger *slog.Logger) (*engine.Evaluator, error) {
	providerType, err := llm.ResolveProvider(cfg.LLM.Provider)
	if err != nil {
		return nil, err
	}
	apiKey, err := llm.ResolveAPIKey(providerType, cfg.LLM.APIKey)
	if err != nil {
		return nil, err
	}
	client, err := llm.NewClient(providerType, llm.ClientConfig{
		APIKey: apiKey,
		Model:  cfg.LLM.Model,
	})
	if err != nil {
		return nil, err
	}

	systemPrompt, err := os.ReadFile(cfg.Prompts.SystemPromptPath)
	if err != nil {
		return nil, fmt.Errorf("read system prompt: %w", err)
	}
	userPrompt, err := os.ReadFile(cfg.Prompts.UserPromptPath)
	if err != nil {
		return nil, fmt.Errorf("read user prompt: %w", err)
	}

	return engine.New(client, string(systemPrompt), string(userPrompt),
		cfg.LLM.Temperature, cfg.LLM.MaxOutputTokens, logger)
}
