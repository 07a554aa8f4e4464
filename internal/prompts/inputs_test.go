package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewInputsDefaults(t *testing.T) {
	in := NewInputs()
	assert.Equal(t, "no title provided", in.Title)
	assert.Equal(t, "no description provided", in.Description)
	assert.Equal(t, "file contents cannot be provided", in.FileContent)
	assert.Equal(t, "file diff cannot be provided", in.FileDiff)
	assert.Equal(t, "no diff", in.Diff)
	assert.Equal(t, "no other comments on this patch", in.CommentChain)
	assert.Equal(t, "no comment provided", in.Comment)
	assert.Empty(t, in.RawSummary)
	assert.Empty(t, in.ShortSummary)
}

func TestRender(t *testing.T) {
	in := NewInputs()
	in.Title = "Add feature"
	in.Filename = "main.go"

	got := in.Render("title=$title file=$filename diff=$file_diff")
	assert.Equal(t, "title=Add feature file=main.go diff=file diff cannot be provided", got)
}

func TestRenderIsOrderStable(t *testing.T) {
	in := NewInputs()
	in.Title = "quotes $description"
	in.Description = "the description"

	// A substituted value containing another placeholder token must render
	// identically on every run.
	want := in.Render("title=$title")
	assert.Equal(t, "title=quotes the description", want)
	for i := 0; i < 20; i++ {
		assert.Equal(t, want, in.Render("title=$title"))
	}
}

func TestRenderKeepsEmptyPlaceholders(t *testing.T) {
	in := NewInputs()
	// RawSummary defaults to empty, so the placeholder must survive.
	assert.Equal(t, "summary=$raw_summary", in.Render("summary=$raw_summary"))
	assert.Equal(t, "", in.Render(""))
}

func TestCloneIsIndependent(t *testing.T) {
	in := NewInputs()
	in.Title = "original"

	copied := in.Clone()
	copied.Title = "changed"
	assert.Equal(t, "original", in.Title)
	assert.Equal(t, "changed", copied.Title)
}
