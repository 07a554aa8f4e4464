package bot

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/XiaoConstantine/dspy-go/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	prompts   []string
	responses []string
	errs      []error
	calls     int
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, options ...core.GenerateOption) (*core.LLMResponse, error) {
	f.prompts = append(f.prompts, prompt)
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i < len(f.responses) {
		return &core.LLMResponse{Content: f.responses[i]}, nil
	}
	return &core.LLMResponse{Content: "ok"}, nil
}

func newTestBot(t *testing.T, gen *fakeGenerator, opts Options) Bot {
	t.Helper()
	if opts.Timeout <= 0 {
		opts.Timeout = time.Second
	}
	b, err := New(gen, opts)
	require.NoError(t, err)
	return b
}

func TestNewRequiresLLM(t *testing.T) {
	_, err := New(nil, Options{Model: "gpt-4"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestChat(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"the answer"}}
	b := newTestBot(t, gen, Options{Model: "gpt-4"})

	resp, err := b.Chat(context.Background(), "the question")
	assert.NoError(t, err)
	assert.Equal(t, "the answer", resp.Text)
	assert.NotEmpty(t, resp.ConversationID)
	assert.NotEmpty(t, resp.ID)
	require.Len(t, gen.prompts, 1)
	assert.True(t, strings.HasSuffix(gen.prompts[0], "\n\nthe question"))
}

func TestChatPrependsSystemMessage(t *testing.T) {
	gen := &fakeGenerator{}
	b := newTestBot(t, gen, Options{Model: "gpt-4", SystemMessage: "act as a reviewer", Language: "en-US"})

	_, err := b.Chat(context.Background(), "the question")
	assert.NoError(t, err)
	require.Len(t, gen.prompts, 1)
	prompt := gen.prompts[0]
	assert.True(t, strings.HasPrefix(prompt, "act as a reviewer\n"))
	assert.Contains(t, prompt, "Knowledge cutoff: 2021-09-01")
	assert.Contains(t, prompt, "Current date: "+time.Now().Format("2006-01-02"))
	assert.Contains(t, prompt, "IMPORTANT: Entire response must be in the language with ISO code: en-US")
	assert.True(t, strings.HasSuffix(prompt, "\n\nthe question"))
}

func TestChatRetriesTransientFailures(t *testing.T) {
	gen := &fakeGenerator{
		errs:      []error{errors.New("503"), errors.New("503")},
		responses: []string{"", "", "recovered"},
	}
	b := newTestBot(t, gen, Options{Model: "gpt-4", Retries: 3})

	resp, err := b.Chat(context.Background(), "question")
	assert.NoError(t, err)
	assert.Equal(t, "recovered", resp.Text)
	assert.Equal(t, 3, gen.calls)
}

func TestChatGivesUpAfterRetries(t *testing.T) {
	gen := &fakeGenerator{
		errs: []error{errors.New("boom"), errors.New("boom"), errors.New("boom")},
	}
	b := newTestBot(t, gen, Options{Model: "gpt-4", Retries: 2})

	_, err := b.Chat(context.Background(), "question")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "did not answer")
}
