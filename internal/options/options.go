// Package options loads run configuration from the environment. In a GitHub
// Action every input arrives as an INPUT_* variable; locally a .env file can
// provide the same values.
package options

import (
	"context"
	"fmt"
	"time"

	"github.com/XiaoConstantine/dspy-go/pkg/logging"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/fluxbit/prreviewer/internal/tokens"
)

// DefaultAPIBaseURL is the hosted endpoint used when INPUT_API_BASE_URL is
// not overridden. Any other value points at a self-hosted model server.
const DefaultAPIBaseURL = "https://api.openai.com/v1"

// Options holds every tunable of a review run.
type Options struct {
	GitHubToken string `env:"GITHUB_TOKEN"`
	APIKey      string `env:"LLM_API_KEY"`

	Debug                  bool          `env:"INPUT_DEBUG" envDefault:"false"`
	DisableReview          bool          `env:"INPUT_DISABLE_REVIEW" envDefault:"false"`
	DisableReleaseNotes    bool          `env:"INPUT_DISABLE_RELEASE_NOTES" envDefault:"false"`
	DisableReleaseSummary  bool          `env:"INPUT_DISABLE_RELEASE_SUMMARY" envDefault:"false"`
	MaxFiles               int           `env:"INPUT_MAX_FILES" envDefault:"0"`
	ReviewSimpleChanges    bool          `env:"INPUT_REVIEW_SIMPLE_CHANGES" envDefault:"false"`
	ReviewCommentLGTM      bool          `env:"INPUT_REVIEW_COMMENT_LGTM" envDefault:"false"`
	PathFilters            []string      `env:"INPUT_PATH_FILTERS" envSeparator:"\n"`
	SystemMessage          string        `env:"INPUT_SYSTEM_MESSAGE"`
	SummarizePrompt        string        `env:"INPUT_SUMMARIZE"`
	ReleaseNotesPrompt     string        `env:"INPUT_SUMMARIZE_RELEASE_NOTES"`
	LightModel             string        `env:"INPUT_LIGHT_MODEL" envDefault:"gpt-3.5-turbo"`
	HeavyModel             string        `env:"INPUT_HEAVY_MODEL" envDefault:"gpt-3.5-turbo"`
	ModelTemperature       float64       `env:"INPUT_MODEL_TEMPERATURE" envDefault:"0.0"`
	Retries                int           `env:"INPUT_RETRIES" envDefault:"3"`
	Timeout                time.Duration `env:"INPUT_TIMEOUT" envDefault:"2m"`
	LLMConcurrencyLimit    int           `env:"INPUT_LLM_CONCURRENCY_LIMIT" envDefault:"6"`
	GitHubConcurrencyLimit int           `env:"INPUT_GITHUB_CONCURRENCY_LIMIT" envDefault:"6"`
	APIBaseURL             string        `env:"INPUT_API_BASE_URL" envDefault:"https://api.openai.com/v1"`
	Language               string        `env:"INPUT_LANGUAGE" envDefault:"en-US"`
	BotIcon                string        `env:"INPUT_BOT_ICON" envDefault:"🤖"`

	pathFilter *PathFilter
}

// Load reads options from the environment, after sourcing an optional .env
// file for local runs.
func Load() (*Options, error) {
	_ = godotenv.Load()
	opts := &Options{}
	if err := env.Parse(opts); err != nil {
		return nil, fmt.Errorf("failed to parse options from environment: %w", err)
	}
	opts.pathFilter = NewPathFilter(opts.PathFilters)
	return opts, nil
}

// CheckPath reports whether path passes the configured filters.
func (o *Options) CheckPath(ctx context.Context, path string) bool {
	ok := o.pathFilter.Check(path)
	logging.GetLogger().Debug(ctx, "checking path: %s => %v", path, ok)
	return ok
}

// LightTokenLimits returns the budget profile of the summarize model.
func (o *Options) LightTokenLimits() *tokens.TokenLimits {
	return tokens.NewTokenLimits(o.LightModel)
}

// HeavyTokenLimits returns the budget profile of the review model.
func (o *Options) HeavyTokenLimits() *tokens.TokenLimits {
	return tokens.NewTokenLimits(o.HeavyModel)
}

// Print logs every option value, mirroring what the run will actually use.
func (o *Options) Print(ctx context.Context) {
	logger := logging.GetLogger()
	logger.Info(ctx, "debug: %v", o.Debug)
	logger.Info(ctx, "disable_review: %v", o.DisableReview)
	logger.Info(ctx, "disable_release_notes: %v", o.DisableReleaseNotes)
	logger.Info(ctx, "disable_release_summary: %v", o.DisableReleaseSummary)
	logger.Info(ctx, "max_files: %d", o.MaxFiles)
	logger.Info(ctx, "review_simple_changes: %v", o.ReviewSimpleChanges)
	logger.Info(ctx, "review_comment_lgtm: %v", o.ReviewCommentLGTM)
	logger.Info(ctx, "path_filters: %v", o.PathFilters)
	logger.Info(ctx, "system_message: %s", o.SystemMessage)
	logger.Info(ctx, "light_model: %s", o.LightModel)
	logger.Info(ctx, "heavy_model: %s", o.HeavyModel)
	logger.Info(ctx, "model_temperature: %v", o.ModelTemperature)
	logger.Info(ctx, "retries: %d", o.Retries)
	logger.Info(ctx, "timeout: %s", o.Timeout)
	logger.Info(ctx, "llm_concurrency_limit: %d", o.LLMConcurrencyLimit)
	logger.Info(ctx, "github_concurrency_limit: %d", o.GitHubConcurrencyLimit)
	logger.Info(ctx, "api_base_url: %s", o.APIBaseURL)
	logger.Info(ctx, "language: %s", o.Language)
}
