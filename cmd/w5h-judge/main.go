// Package main is the entry point for the w5h-judge CLI, which runs the
// 5W1H extraction evaluation pipeline: dataset preprocessing, task
// preparation, LLM-as-judge evaluation, and expert review artifacts.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nlpeval/w5h-judge/internal/config"
	"github.com/nlpeval/w5h-judge/internal/pipeline"
)

var (
	configPath string
	dataset    string
	step       string
	limit      int
)

var rootCmd = &cobra.Command{
	Use:   "w5h-judge",
	Short: "LLM-as-judge evaluation of 5W1H news extractions",
	Long: `w5h-judge evaluates automatically extracted 5W1H summaries of news
articles with a judge LLM. It preprocesses a dataset (BASSE or FLARES) into
documents, prepares one evaluation task per extraction, scores each task
against six quality criteria through a schema-constrained judge call, and
writes timestamped results, expert review tasks, and an optional review
spreadsheet.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		// Flags override the config file, matching the runner's CLI
		// contract.
		if cmd.Flags().Changed("dataset") {
			cfg.Run.Dataset = dataset
		}
		if cmd.Flags().Changed("step") {
			cfg.Run.Step = step
		}
		if cmd.Flags().Changed("limit") {
			cfg.Run.Limit = limit
		}

		logger := newLogger(cfg.Run.Verbose)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return pipeline.Run(ctx, cfg, logger)
	},
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "path to YAML config file (default: ./config.yaml, then ./config.example.yaml)")
	rootCmd.Flags().StringVar(&dataset, "dataset", "", "override dataset name (BASSE, FLARES)")
	rootCmd.Flags().StringVar(&step, "step", "", "override step: preprocess|prepare|evaluate|all")
	rootCmd.Flags().IntVar(&limit, "limit", 0, "limit number of docs (preprocess) or tasks (prepare, evaluate)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
