package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderSummarizeFileDiffTriage(t *testing.T) {
	p := New("", "")
	in := NewInputs()
	in.Title = "Fix bug"
	in.FileDiff = "diff content"

	withTriage := p.RenderSummarizeFileDiff(in, false)
	assert.Contains(t, withTriage, "[TRIAGE]:")
	assert.Contains(t, withTriage, "Fix bug")
	assert.Contains(t, withTriage, "diff content")

	withoutTriage := p.RenderSummarizeFileDiff(in, true)
	assert.NotContains(t, withoutTriage, "[TRIAGE]:")
}

func TestRenderSummarizeUsesConfiguredPrompt(t *testing.T) {
	p := New("custom summarize instructions", "")
	in := NewInputs()
	in.RawSummary = "file.go: changed stuff"

	got := p.RenderSummarize(in)
	assert.Contains(t, got, "custom summarize instructions")
	assert.Contains(t, got, "file.go: changed stuff")
}

func TestDefaultPrompts(t *testing.T) {
	p := New("", "")
	assert.Contains(t, p.Summarize, "Walkthrough")
	assert.Contains(t, p.SummarizeReleaseNotes, "release notes")
}

func TestRenderReviewFileDiff(t *testing.T) {
	p := New("", "")
	in := NewInputs()
	in.Filename = "main.go"
	in.Patches = "---new_hunk---\npacked"

	got := p.RenderReviewFileDiff(in)
	assert.Contains(t, got, "`main.go`")
	assert.Contains(t, got, "packed")
	assert.True(t, strings.Contains(got, "---new_hunk---"))
}

func TestRenderComment(t *testing.T) {
	p := New("", "")
	in := NewInputs()
	in.Filename = "main.go"
	in.CommentChain = "alice: please fix"
	in.Comment = "what about this?"

	got := p.RenderComment(in)
	assert.Contains(t, got, "alice: please fix")
	assert.Contains(t, got, "what about this?")
	assert.Contains(t, got, "Skipped: mentioning someone else")
}
