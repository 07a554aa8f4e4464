// Package prompts assembles bounded prompts for the language model: named
// placeholder inputs with graceful fallbacks, the prompt templates, and the
// greedy token-budget fitter for optional context blocks.
package prompts

import "strings"

// Inputs holds the named placeholder values substituted into prompt
// templates. Fields default to documented fallback strings so missing
// upstream data degrades to readable text instead of blank template sections.
type Inputs struct {
	SystemMessage string
	Title         string
	Description   string
	RawSummary    string
	ShortSummary  string
	Filename      string
	FileContent   string
	FileDiff      string
	Patches       string
	Diff          string
	CommentChain  string
	Comment       string
}

// NewInputs returns Inputs populated with the fallback values.
func NewInputs() *Inputs {
	return &Inputs{
		Title:        "no title provided",
		Description:  "no description provided",
		FileContent:  "file contents cannot be provided",
		FileDiff:     "file diff cannot be provided",
		Diff:         "no diff",
		CommentChain: "no other comments on this patch",
		Comment:      "no comment provided",
	}
}

// Clone returns an independent copy, used when per-file renders mutate a
// shared base.
func (in *Inputs) Clone() *Inputs {
	copied := *in
	return &copied
}

// Render substitutes placeholders in content. Only placeholders whose current
// value is non-empty are replaced; an empty value leaves the placeholder as
// literal text. That is deliberate: a template section is never silently
// blanked out, and callers can detect the leftover placeholder and react.
// Substitution runs in a fixed order so values that themselves contain a
// placeholder token produce the same output on every run.
func (in *Inputs) Render(content string) string {
	if content == "" {
		return ""
	}
	for _, sub := range []struct {
		placeholder string
		value       string
	}{
		{"$system_message", in.SystemMessage},
		{"$title", in.Title},
		{"$description", in.Description},
		{"$raw_summary", in.RawSummary},
		{"$short_summary", in.ShortSummary},
		{"$filename", in.Filename},
		{"$file_content", in.FileContent},
		{"$file_diff", in.FileDiff},
		{"$patches", in.Patches},
		{"$diff", in.Diff},
		{"$comment_chain", in.CommentChain},
		{"$comment", in.Comment},
	} {
		if sub.value != "" {
			content = strings.ReplaceAll(content, sub.placeholder, sub.value)
		}
	}
	return content
}
