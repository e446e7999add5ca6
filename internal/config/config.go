// Package config loads and validates the run configuration from YAML.
// Configuration resolution follows the runner's conventions: an explicit
// --config path wins, otherwise config.yaml in the working directory,
// otherwise config.example.yaml.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// RunConfig controls which dataset and pipeline step a run executes.
type RunConfig struct {
	// Dataset names the dataset plugin, case-insensitive (BASSE, FLARES).
	Dataset string `mapstructure:"dataset" validate:"required"`
	// Step selects the pipeline stage to run.
	Step string `mapstructure:"step" validate:"required,oneof=preprocess prepare evaluate all"`
	// Limit caps how many documents (preprocess) or tasks (prepare,
	// evaluate) are produced. Zero means no limit.
	Limit int `mapstructure:"limit" validate:"min=0"`
	// Environment tags output artifacts (development, production, ...).
	Environment string `mapstructure:"environment" validate:"required"`
	// Verbose enables per-task progress logging.
	Verbose bool `mapstructure:"verbose"`
}

// LLMConfig selects the judge provider and model for the run.
type LLMConfig struct {
	Provider        string  `mapstructure:"provider" validate:"required"`
	Model           string  `mapstructure:"model" validate:"required"`
	Temperature     float64 `mapstructure:"temperature" validate:"min=0,max=2"`
	MaxOutputTokens int     `mapstructure:"max_output_tokens" validate:"required,min=1"`
	// APIKey optionally overrides the provider's environment variable.
	// The environment variable always takes precedence when set.
	APIKey string `mapstructure:"api_key"`
}

// PathsConfig locates dataset inputs and the results directory.
type PathsConfig struct {
	BasseJSONL  string `mapstructure:"basse_jsonl"`
	FlaresTrain string `mapstructure:"flares_train"`
	FlaresTrial string `mapstructure:"flares_trial"`
	ResultsDir  string `mapstructure:"results_dir" validate:"required"`
}

// PromptsConfig locates the judge prompt files.
type PromptsConfig struct {
	SystemPromptPath string `mapstructure:"system_prompt_path" validate:"required"`
	UserPromptPath   string `mapstructure:"user_prompt_path" validate:"required"`
}

// ValidationConfig toggles the human-review artifacts.
type ValidationConfig struct {
	GenerateReviewTask bool `mapstructure:"generate_review_task"`
	GenerateExcel      bool `mapstructure:"generate_excel"`
}

// Config is the complete run configuration.
type Config struct {
	Run        RunConfig        `mapstructure:"run"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Paths      PathsConfig      `mapstructure:"paths"`
	Prompts    PromptsConfig    `mapstructure:"prompts"`
	Validation ValidationConfig `mapstructure:"validation"`
}

// setDefaults mirrors the defaults the runner has always shipped with.
func setDefaults(v *viper.Viper) {
	v.SetDefault("run.dataset", "BASSE")
	v.SetDefault("run.step", "all")
	v.SetDefault("run.environment", "development")
	v.SetDefault("run.verbose", true)
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.model", "gpt-5-mini-2025-08-07")
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.max_output_tokens", 1200)
	v.SetDefault("paths.results_dir", "results")
	v.SetDefault("prompts.system_prompt_path", "prompts/system_evaluation_prompt.txt")
	v.SetDefault("prompts.user_prompt_path", "prompts/user_evaluation_prompt.txt")
}

// Load reads the configuration file at path, or discovers one when path is
// empty. Missing files and invalid values are configuration errors and fatal
// to the run.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	switch {
	case path != "":
		v.SetConfigFile(path)
	case fileExists("config.yaml"):
		v.SetConfigFile("config.yaml")
	case fileExists("config.example.yaml"):
		v.SetConfigFile("config.example.yaml")
	default:
		return nil, fmt.Errorf("no configuration file found: create config.yaml or copy config.example.yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
