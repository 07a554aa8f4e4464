// Package bot wraps the configured language model behind a small chat
// interface with per-call timeouts and bounded retries.
package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/XiaoConstantine/dspy-go/pkg/core"
	"github.com/XiaoConstantine/dspy-go/pkg/logging"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/fluxbit/prreviewer/internal/tokens"
)

// ErrNotConfigured reports that no LLM was configured before the bot was
// constructed. This is a programmer error and fails the whole run.
var ErrNotConfigured = errors.New("bot: language model is not configured")

// Generator is the slice of core.LLM the bot uses.
type Generator interface {
	Generate(ctx context.Context, prompt string, options ...core.GenerateOption) (*core.LLMResponse, error)
}

// Response is one model answer plus the ids that thread a conversation.
type Response struct {
	Text           string
	ID             string
	ConversationID string
}

// Options configure one bot instance. A run typically holds two: a light
// model for summaries and a heavy model for reviews.
type Options struct {
	Model         string
	SystemMessage string
	Language      string
	Temperature   float64
	Retries       int
	Timeout       time.Duration
	Limits        *tokens.TokenLimits
}

// Bot sends prompts to the model. Implementations must be safe for
// concurrent use by the review worker pool.
type Bot interface {
	Chat(ctx context.Context, text string) (Response, error)
	Limits() *tokens.TokenLimits
}

type llmBot struct {
	llm            Generator
	opts           Options
	systemMessage  string
	conversationID string
}

// New builds a Bot over llm, typically the process-wide default LLM. Returns
// ErrNotConfigured when llm is nil.
func New(llm Generator, opts Options) (Bot, error) {
	if llm == nil {
		return nil, ErrNotConfigured
	}
	if opts.Limits == nil {
		opts.Limits = tokens.NewTokenLimits(opts.Model)
	}
	if opts.Retries <= 0 {
		opts.Retries = 3
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Minute
	}
	return &llmBot{
		llm:            llm,
		opts:           opts,
		systemMessage:  systemMessage(opts),
		conversationID: uuid.NewString(),
	}, nil
}

// systemMessage extends the configured system message with the model's
// knowledge cutoff, today's date and the response language.
func systemMessage(opts Options) string {
	return fmt.Sprintf("%s\nKnowledge cutoff: %s\nCurrent date: %s\n\nIMPORTANT: Entire response must be in the language with ISO code: %s",
		opts.SystemMessage,
		opts.Limits.KnowledgeCutOff,
		time.Now().Format("2006-01-02"),
		opts.Language,
	)
}

func (b *llmBot) Limits() *tokens.TokenLimits {
	return b.opts.Limits
}

// Chat sends text to the model, prefixed with the augmented system message,
// and retries transient failures with exponential backoff up to the
// configured count.
func (b *llmBot) Chat(ctx context.Context, text string) (Response, error) {
	logger := logging.GetLogger()
	prompt := b.systemMessage + "\n\n" + text

	var content string
	backoff := retry.WithMaxRetries(uint64(b.opts.Retries), retry.NewExponential(time.Second))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, b.opts.Timeout)
		defer cancel()
		start := time.Now()
		resp, err := b.llm.Generate(callCtx, prompt,
			core.WithMaxTokens(b.opts.Limits.ResponseTokens),
			core.WithTemperature(b.opts.Temperature),
		)
		if err != nil {
			logger.Warn(ctx, "Model %s call failed after %s: %v", b.opts.Model, time.Since(start), err)
			return retry.RetryableError(err)
		}
		content = resp.Content
		return nil
	})
	if err != nil {
		return Response{}, fmt.Errorf("model %s did not answer after %d retries: %w",
			b.opts.Model, b.opts.Retries, err)
	}
	return Response{
		Text:           content,
		ID:             uuid.NewString(),
		ConversationID: b.conversationID,
	}, nil
}
