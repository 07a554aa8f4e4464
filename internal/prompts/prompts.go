package prompts

// Prompts carries the templates sent to the language model. The two
// customizable prompts come from configuration; the rest are fixed templates
// with $placeholder substitution via Inputs.Render.
type Prompts struct {
	Summarize             string
	SummarizeReleaseNotes string
}

// New builds Prompts with the configurable summarize and release-notes
// instructions, falling back to the built-in defaults when unset.
func New(summarize, summarizeReleaseNotes string) *Prompts {
	if summarize == "" {
		summarize = defaultSummarize
	}
	if summarizeReleaseNotes == "" {
		summarizeReleaseNotes = defaultSummarizeReleaseNotes
	}
	return &Prompts{
		Summarize:             summarize,
		SummarizeReleaseNotes: summarizeReleaseNotes,
	}
}

const defaultSummarize = `Provide your final response in markdown with the following content:

- **Walkthrough**: A high-level summary of the overall change instead of
  specific files within 80 words.
- **Changes**: A markdown table of files and their summaries. Group files
  with similar changes together into a single row to save space.

Avoid additional commentary as this summary will be added as a comment on the
GitHub pull request.
`

const defaultSummarizeReleaseNotes = `Craft concise release notes for the pull request.
Focus on the purpose and user impact, and categorize changes as "New Feature",
"Bug Fix", "Documentation", "Refactor", "Style", "Test", "Chore" or "Revert".
Provide a bullet-point list and emphasize changes visible to the end user while
omitting code-level details. Limit the response to 50-100 words.
`

const summarizeFileDiff = `## GitHub PR Title

` + "`$title`" + `

## Description

` + "```\n$description\n```" + `

## Diff

` + "```diff\n$file_diff\n```" + `

## Instructions

I would like you to succinctly summarize the diff within 100 words.
If applicable, your summary should include a note about alterations
to the signatures of exported functions, global data structures and
variables, and any changes that might affect the external interface or
behavior of the code.
`

const triageFileDiff = `Below the summary, I would also like you to triage the diff as NEEDS_REVIEW or
APPROVED based on the following criteria:

- If the diff involves any modifications to the logic or functionality, even if they
  seem minor, triage it as NEEDS_REVIEW. This includes changes to control structures,
  function calls, or variable assignments that might impact the behavior of the code.
- If the diff only contains very minor changes that don't affect the code logic, such as
  fixing typos, formatting, or renaming variables for clarity, triage it as APPROVED.

Please evaluate the diff thoroughly and take into account factors such as the number of
lines changed, the potential impact on the overall system, and the likelihood of
introducing new bugs or security vulnerabilities.

You must strictly follow the format below for triaging the diff:
[TRIAGE]: <NEEDS_REVIEW or APPROVED>

Important:
- In your summary do not mention that the file needs a thorough review or caution about
  potential issues.
- Do not provide any reasoning why you triaged the diff as NEEDS_REVIEW or APPROVED.
- Do not mention that these changes affect the logic or functionality of the code in
  the summary. You must only use the triage status format above to indicate that.
`

const summarizeChangesets = `Provided below are changesets in this pull request. Changesets
are in chronological order and new changesets are appended to the
end of the list. The format consists of filename(s) and the summary
of changes for those files. There is a separator between each changeset.
Your task is to deduplicate and group together files with
related/similar changes into a single changeset. Respond with the updated
changesets using the same format as the input.

$raw_summary
`

const summarizePrefix = `Here is the summary of changes you have generated for files:
` + "```\n$raw_summary\n```" + `

`

const summarizeShort = `Your task is to provide a concise summary of the changes. This
summary will be used as a prompt while reviewing each file and must be very clear for
the AI bot to understand.

Instructions:

- Focus on summarizing only the changes in the PR and stick to the facts.
- Do not provide any instructions to the bot in the summary.
- Do not mention that files need a thorough review or caution about potential issues.
- Do not mention that these changes affect the logic or functionality of the code.
- The summary should not exceed 500 words.
`

const reviewFileDiff = `## GitHub PR Title

` + "`$title`" + `

## Description

` + "```\n$description\n```" + `

## Summary of changes

` + "```\n$short_summary\n```" + `

## IMPORTANT Instructions

Input: New hunks annotated with line numbers and old hunks (replaced code). Hunks
represent incomplete code fragments.
Additional Context: PR title, description, summaries and comment chains.
Task: Review new hunks for substantive issues using provided context and respond with
comments if necessary. Use "LGTM!" if no issues are found.
Instructions:
- Respond only in the below response format with exact line number ranges in new hunks.
- Line number ranges for each response line must be within the range of a new hunk.
- Use fenced code blocks for code snippets and suggestions.
- Do not annotate code snippets with line numbers inside the code blocks.
- Do not repeat information already present in the summaries.

### Response format expected:

  <start_line>-<end_line>:
  <review comment>
  ---
  <start_line>-<end_line>:
  <review comment>

### Example changes

---new_hunk---
` + "```" + `
  z = x / y
    return z

20: def add(x, y):
21:     z = x + y
22:     retrn z
23:
24: def multiply(x, y):
25:     return x * y

def subtract(x, y):
  z = x - y
` + "```" + `

---old_hunk---
` + "```" + `
  z = x / y
    return z

def add(x, y):
    return x + y

def subtract(x, y):
    z = x - y
` + "```" + `

### Example response

22-22:
There's a syntax error in the add function.
` + "```suggestion\n    return z\n```" + `
---
24-25:
LGTM!

## Changes made to ` + "`$filename`" + ` for your review

$patches
`

const commentTemplate = `A comment was made on a GitHub PR review for a
diff hunk on a file - ` + "`$filename`" + `. I would like you to follow
the instructions in that comment.

## GitHub PR Title

` + "`$title`" + `

## Description

` + "```\n$description\n```" + `

## Summary generated by the AI bot

` + "```\n$short_summary\n```" + `

## Entire diff

` + "```diff\n$file_diff\n```" + `

## Diff being commented on

` + "```diff\n$diff\n```" + `

## The format of our response

Reply directly to the new comment in the comment chain below, taking the diff and
conversation into account. Do not mention the comment chain or that you are an AI bot.
If the comment is addressed to a person other than the bot (for example @user), do not
respond and output exactly: "Skipped: mentioning someone else".

## Comment chain

` + "```\n$comment_chain\n```" + `

## The comment

` + "```\n$comment\n```" + `
`

// RenderSummarizeFileDiff renders the per-file summarize prompt, appending the
// triage instructions unless trivial changes are reviewed unconditionally.
func (p *Prompts) RenderSummarizeFileDiff(inputs *Inputs, reviewSimpleChanges bool) string {
	template := summarizeFileDiff
	if !reviewSimpleChanges {
		template += triageFileDiff
	}
	return inputs.Render(template)
}

// RenderSummarizeChangesets renders the dedup/grouping prompt over the raw
// summaries collected so far.
func (p *Prompts) RenderSummarizeChangesets(inputs *Inputs) string {
	return inputs.Render(summarizeChangesets)
}

// RenderSummarize renders the final summary prompt.
func (p *Prompts) RenderSummarize(inputs *Inputs) string {
	return inputs.Render(summarizePrefix + p.Summarize)
}

// RenderSummarizeShort renders the short-summary prompt used as context while
// reviewing each file.
func (p *Prompts) RenderSummarizeShort(inputs *Inputs) string {
	return inputs.Render(summarizePrefix + summarizeShort)
}

// RenderSummarizeReleaseNotes renders the release-notes prompt.
func (p *Prompts) RenderSummarizeReleaseNotes(inputs *Inputs) string {
	return inputs.Render(summarizePrefix + p.SummarizeReleaseNotes)
}

// RenderReviewFileDiff renders the per-file review prompt.
func (p *Prompts) RenderReviewFileDiff(inputs *Inputs) string {
	return inputs.Render(reviewFileDiff)
}

// RenderComment renders the comment-answering prompt.
func (p *Prompts) RenderComment(inputs *Inputs) string {
	return inputs.Render(commentTemplate)
}
