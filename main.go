package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/XiaoConstantine/dspy-go/pkg/core"
	"github.com/XiaoConstantine/dspy-go/pkg/llms"
	"github.com/XiaoConstantine/dspy-go/pkg/logging"
	"github.com/spf13/cobra"

	"github.com/fluxbit/prreviewer/internal/bot"
	"github.com/fluxbit/prreviewer/internal/commenter"
	"github.com/fluxbit/prreviewer/internal/ghclient"
	"github.com/fluxbit/prreviewer/internal/options"
	"github.com/fluxbit/prreviewer/internal/prompts"
	"github.com/fluxbit/prreviewer/internal/review"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var prNumber int
	var repository string

	cmd := &cobra.Command{
		Use:           "prreviewer",
		Short:         "AI-powered reviewer and summarizer for GitHub pull requests",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), prNumber, repository)
		},
	}
	cmd.Flags().IntVar(&prNumber, "pr", 0, "pull request number for local runs")
	cmd.Flags().StringVar(&repository, "repo", "", "owner/name repository for local runs")
	cmd.AddCommand(newVerifyCmd())
	return cmd
}

func newVerifyCmd() *cobra.Command {
	var repository string
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify GitHub token permissions and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := core.WithExecutionState(cmd.Context())
			opts, err := options.Load()
			if err != nil {
				return err
			}
			setupLogging(opts.Debug)
			event, err := loadEvent(repository, 0)
			if err != nil {
				return err
			}
			gh := ghclient.New(ctx, opts.GitHubToken, event.Owner, event.Repo)
			if err := gh.VerifyTokenPermissions(ctx); err != nil {
				return err
			}
			logging.GetLogger().Info(ctx, "Token permissions verified for %s/%s", event.Owner, event.Repo)
			return nil
		},
	}
	cmd.Flags().StringVar(&repository, "repo", "", "owner/name repository for local runs")
	return cmd
}

func run(ctx context.Context, prNumber int, repository string) error {
	ctx = core.WithExecutionState(ctx)
	opts, err := options.Load()
	if err != nil {
		return err
	}
	logger := setupLogging(opts.Debug)
	console := NewConsole(os.Stdout, logger)
	opts.Print(ctx)

	event, err := loadEvent(repository, prNumber)
	if err != nil {
		return err
	}

	gh := ghclient.New(ctx, opts.GitHubToken, event.Owner, event.Repo)
	if err := gh.VerifyTokenPermissions(ctx); err != nil {
		return fmt.Errorf("token permission verification failed: %w", err)
	}

	llm, err := configureLLM(opts)
	if err != nil {
		return err
	}

	lightBot, err := bot.New(llm, bot.Options{
		Model:         opts.LightModel,
		SystemMessage: opts.SystemMessage,
		Language:      opts.Language,
		Temperature:   opts.ModelTemperature,
		Retries:       opts.Retries,
		Timeout:       opts.Timeout,
		Limits:        opts.LightTokenLimits(),
	})
	if err != nil {
		return err
	}
	heavyBot, err := bot.New(llm, bot.Options{
		Model:         opts.HeavyModel,
		SystemMessage: opts.SystemMessage,
		Language:      opts.Language,
		Temperature:   opts.ModelTemperature,
		Retries:       opts.Retries,
		Timeout:       opts.Timeout,
		Limits:        opts.HeavyTokenLimits(),
	})
	if err != nil {
		return err
	}
	logger.Info(ctx, "light model %s: %s", opts.LightModel, lightBot.Limits())
	logger.Info(ctx, "heavy model %s: %s", opts.HeavyModel, heavyBot.Limits())

	cmt := commenter.New(gh, opts.BotIcon)
	cmt.SetAPIConcurrency(opts.GitHubConcurrencyLimit)
	reviewer := review.New(opts, prompts.New(opts.SummarizePrompt, opts.ReleaseNotesPrompt), gh, cmt, lightBot, heavyBot)

	// Local runs identify the PR by flag; fetch it so the event looks like a
	// pull_request trigger.
	if event.PullRequest == nil && prNumber > 0 {
		pr, err := gh.GetPullRequest(ctx, prNumber)
		if err != nil {
			return err
		}
		event.PullRequest = pr
	}

	switch event.EventName {
	case "pull_request", "pull_request_target":
		if event.PullRequest == nil {
			logger.Warn(ctx, "Event %s carries no pull request payload, skipping", event.EventName)
			return nil
		}
		if console.Interactive() {
			ok, err := console.ConfirmRun(event.PullRequest.GetNumber())
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
		}
		console.StartReview(event.PullRequest)
		err = console.WithSpinner(ctx, "Reviewing pull request", func() error {
			return reviewer.Run(ctx, event)
		})
		if err != nil {
			return err
		}
		console.ReviewComplete()
		return nil
	case "pull_request_review_comment":
		return reviewer.HandleComment(ctx, event)
	default:
		logger.Warn(ctx, "Skipped: unsupported event %q", event.EventName)
		return nil
	}
}

// configureLLM builds the model backend. Provider-prefixed model names
// ("ollama:llama3", "llamacpp:") run against the configured base URL;
// everything else goes through the hosted default configuration.
func configureLLM(opts *options.Options) (bot.Generator, error) {
	llms.EnsureFactory()
	endpoint := opts.APIBaseURL
	if endpoint == "" || endpoint == options.DefaultAPIBaseURL {
		endpoint = "http://localhost:11434"
	}
	switch {
	case strings.HasPrefix(opts.HeavyModel, "ollama:"):
		llm, err := llms.NewOllamaLLM(core.ModelID(opts.HeavyModel), llms.WithBaseURL(endpoint))
		if err != nil {
			return nil, fmt.Errorf("failed to configure the language model at %s: %w", endpoint, err)
		}
		return llm, nil
	case strings.HasPrefix(opts.HeavyModel, "llamacpp:"):
		llm, err := llms.NewLlamacppLLM(endpoint)
		if err != nil {
			return nil, fmt.Errorf("failed to configure the language model at %s: %w", endpoint, err)
		}
		return llm, nil
	default:
		if err := core.ConfigureDefaultLLM(opts.APIKey, core.ModelID(opts.HeavyModel)); err != nil {
			return nil, fmt.Errorf("failed to configure the language model: %w", err)
		}
		return core.GetDefaultLLM(), nil
	}
}

func setupLogging(debug bool) *logging.Logger {
	severity := logging.INFO
	if debug {
		severity = logging.DEBUG
	}
	output := logging.NewConsoleOutput(true, logging.WithColor(true))
	logger := logging.NewLogger(logging.Config{
		Severity: severity,
		Outputs:  []logging.Output{output},
	})
	logging.SetLogger(logger)
	return logger
}

// loadEvent builds the trigger context, letting the --repo/--pr flags stand in
// for the Action environment on local runs.
func loadEvent(repository string, prNumber int) (*ghclient.EventContext, error) {
	if repository != "" {
		owner, repo, ok := strings.Cut(repository, "/")
		if !ok {
			return nil, fmt.Errorf("--repo must be owner/name, got %q", repository)
		}
		name := "pull_request"
		if prNumber == 0 {
			name = ""
		}
		return &ghclient.EventContext{EventName: name, Owner: owner, Repo: repo}, nil
	}
	return ghclient.LoadEvent()
}
