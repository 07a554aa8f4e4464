// Package review orchestrates a review run: computing the incremental diff,
// summarizing and triaging changed files, packing hunks into bounded review
// prompts, and posting the results back to the pull request.
package review

import (
	"context"
	"fmt"
	"strings"

	"github.com/XiaoConstantine/dspy-go/pkg/logging"
	"github.com/google/go-github/v68/github"

	"github.com/fluxbit/prreviewer/internal/bot"
	"github.com/fluxbit/prreviewer/internal/commenter"
	"github.com/fluxbit/prreviewer/internal/ghclient"
	"github.com/fluxbit/prreviewer/internal/options"
	"github.com/fluxbit/prreviewer/internal/prompts"
	"github.com/fluxbit/prreviewer/internal/tokens"
)

// Reviewer drives one run against a single pull request.
type Reviewer struct {
	opts     *options.Options
	prompts  *prompts.Prompts
	gh       *ghclient.Client
	cmt      *commenter.Commenter
	lightBot bot.Bot
	heavyBot bot.Bot
}

// New assembles a Reviewer from its collaborators.
func New(opts *options.Options, p *prompts.Prompts, gh *ghclient.Client, cmt *commenter.Commenter, light, heavy bot.Bot) *Reviewer {
	return &Reviewer{
		opts:     opts,
		prompts:  p,
		gh:       gh,
		cmt:      cmt,
		lightBot: light,
		heavyBot: heavy,
	}
}

// fileReview is the per-file state carried through the summarize and review
// phases. Each worker writes only its own entry.
type fileReview struct {
	filename    string
	patch       string
	summary     string
	needsReview bool
	findings    []Finding
}

// Run executes a full review of the pull request in the event: summaries,
// triage, per-hunk review comments, release notes and the persistent summary
// comment with commit tracking.
func (r *Reviewer) Run(ctx context.Context, event *ghclient.EventContext) error {
	logger := logging.GetLogger()
	pr := event.PullRequest
	if pr == nil {
		logger.Info(ctx, "Event %s carries no pull request, skipping", event.EventName)
		return nil
	}
	number := pr.GetNumber()

	inputs := prompts.NewInputs()
	inputs.SystemMessage = r.opts.SystemMessage
	if title := pr.GetTitle(); title != "" {
		inputs.Title = title
	}
	if desc := strings.TrimSpace(r.cmt.GetDescription(pr.GetBody())); desc != "" {
		inputs.Description = desc
	}

	existing, err := r.cmt.FindCommentWithTag(ctx, commenter.SummarizeTag, number)
	if err != nil {
		return fmt.Errorf("failed to look up the summary comment on PR #%d: %w", number, err)
	}
	existingBody := ""
	if existing != nil {
		existingBody = existing.GetBody()
	}
	if raw := r.cmt.GetRawSummary(existingBody); raw != "" {
		inputs.RawSummary = raw
	}
	if short := r.cmt.GetShortSummary(existingBody); short != "" {
		inputs.ShortSummary = short
	}

	allCommitIDs, err := r.cmt.GetAllCommitIDs(ctx, number)
	if err != nil {
		return err
	}
	reviewedIDs := r.cmt.GetReviewedCommitIDs(existingBody)
	highest := r.cmt.GetHighestReviewedCommitID(allCommitIDs, reviewedIDs)
	head := pr.GetHead().GetSHA()
	if highest != "" && highest == head {
		logger.Info(ctx, "PR #%d has no new commits since %s, skipping", number, shortSHA(head))
		return nil
	}
	base := highest
	if base == "" {
		base = pr.GetBase().GetSHA()
	}

	comparison, err := r.gh.CompareCommits(ctx, base, head)
	if err != nil {
		return err
	}
	files := comparison.Files
	if len(files) == 0 {
		files, err = r.gh.ListFiles(ctx, number)
		if err != nil {
			return err
		}
	}

	selected := make([]*fileReview, 0, len(files))
	filteredOut := make([]string, 0)
	for _, file := range files {
		if file.GetPatch() == "" {
			continue
		}
		if !r.opts.CheckPath(ctx, file.GetFilename()) {
			filteredOut = append(filteredOut, file.GetFilename())
			continue
		}
		selected = append(selected, &fileReview{
			filename: file.GetFilename(),
			patch:    file.GetPatch(),
		})
	}
	overLimit := make([]string, 0)
	if r.opts.MaxFiles > 0 && len(selected) > r.opts.MaxFiles {
		for _, f := range selected[r.opts.MaxFiles:] {
			overLimit = append(overLimit, f.filename)
		}
		selected = selected[:r.opts.MaxFiles]
	}
	if len(selected) == 0 {
		logger.Info(ctx, "PR #%d has no reviewable files in %s..%s", number, shortSHA(base), shortSHA(head))
		return nil
	}
	logger.Info(ctx, "Reviewing PR #%d: %s..%s, %d files selected, %d filtered out, %d over limit",
		number, shortSHA(base), shortSHA(head), len(selected), len(filteredOut), len(overLimit))

	statusText := fmt.Sprintf("Reviewing changes from %s to %s. %d files selected.",
		shortSHA(base), shortSHA(head), len(selected))
	if existingBody != "" {
		r.cmt.Replace(ctx, r.cmt.AddInProgressStatus(existingBody, statusText), commenter.SummarizeTag, number)
	} else {
		r.cmt.Comment(ctx, r.cmt.AddInProgressStatus("", statusText), commenter.SummarizeTag, commenter.ModeCreate, number)
	}

	// Fill the review comment cache before workers read it concurrently.
	r.cmt.ListReviewComments(ctx, number)

	pool := NewPool(r.opts.LLMConcurrencyLimit)
	for _, file := range selected {
		file := file
		pool.Go(func() {
			file.needsReview, file.summary = r.summarizeFile(ctx, inputs, file)
		})
	}
	pool.Wait()

	inputs.RawSummary = r.collectRawSummary(ctx, inputs, selected)

	summary := "No summary available."
	if r.opts.DisableReleaseSummary {
		logger.Info(ctx, "Release summary is disabled, skipping the final summary generation")
	} else if resp, err := r.lightBot.Chat(ctx, r.prompts.RenderSummarize(inputs)); err != nil {
		logger.Warn(ctx, "Failed to generate the final summary: %v", err)
	} else {
		summary = strings.TrimSpace(resp.Text)
	}
	if resp, err := r.lightBot.Chat(ctx, r.prompts.RenderSummarizeShort(inputs)); err != nil {
		logger.Warn(ctx, "Failed to generate the short summary: %v", err)
	} else {
		inputs.ShortSummary = strings.TrimSpace(resp.Text)
	}

	if !r.opts.DisableReleaseNotes {
		if resp, err := r.lightBot.Chat(ctx, r.prompts.RenderSummarizeReleaseNotes(inputs)); err != nil {
			logger.Warn(ctx, "Failed to generate release notes: %v", err)
		} else {
			r.cmt.UpdateDescription(ctx, number, strings.TrimSpace(resp.Text))
		}
	}

	skippedTrivial := make([]string, 0)
	if !r.opts.DisableReview {
		toReview := make([]*fileReview, 0, len(selected))
		for _, file := range selected {
			if file.needsReview {
				toReview = append(toReview, file)
			} else {
				skippedTrivial = append(skippedTrivial, file.filename)
			}
		}
		pool = NewPool(r.opts.LLMConcurrencyLimit)
		for _, file := range toReview {
			file := file
			pool.Go(func() {
				file.findings = r.reviewFile(ctx, inputs, number, file)
			})
		}
		pool.Wait()

		total := 0
		for _, file := range toReview {
			for _, finding := range file.findings {
				r.cmt.BufferReviewComment(file.filename, finding.StartLine, finding.EndLine, finding.Comment)
				total++
			}
		}
		r.cmt.DeletePendingReview(ctx, number)
		status := buildStatus(total, base, head, selected, filteredOut, overLimit, skippedTrivial)
		r.cmt.SubmitReview(ctx, number, head, status)
	}

	finalBody := r.buildSummarizeComment(summary, inputs.RawSummary, inputs.ShortSummary, existingBody, head)
	r.cmt.Comment(ctx, finalBody, commenter.SummarizeTag, commenter.ModeReplace, number)
	return nil
}

// summarizeFile asks the light model for a per-file summary and triage
// verdict. Failures and oversized diffs degrade to needing review with no
// summary.
func (r *Reviewer) summarizeFile(ctx context.Context, base *prompts.Inputs, file *fileReview) (bool, string) {
	logger := logging.GetLogger()
	in := base.Clone()
	in.Filename = file.filename
	in.FileDiff = file.patch
	prompt := r.prompts.RenderSummarizeFileDiff(in, r.opts.ReviewSimpleChanges)
	if tokens.Count(prompt) > r.lightBot.Limits().RequestTokens {
		logger.Info(ctx, "Diff of %s is too large to summarize, skipping summary", file.filename)
		return true, ""
	}
	resp, err := r.lightBot.Chat(ctx, prompt)
	if err != nil {
		logger.Warn(ctx, "Failed to summarize %s: %v", file.filename, err)
		return true, ""
	}
	if r.opts.ReviewSimpleChanges {
		return true, strings.TrimSpace(resp.Text)
	}
	return ParseTriage(resp.Text)
}

// collectRawSummary appends the new per-file summaries to the persisted raw
// summary, deduplicating through the model every ten changesets.
func (r *Reviewer) collectRawSummary(ctx context.Context, base *prompts.Inputs, files []*fileReview) string {
	raw := base.RawSummary
	batch := 0
	for _, file := range files {
		if file.summary == "" {
			continue
		}
		if raw != "" {
			raw += "\n---\n"
		}
		raw += file.filename + ": " + file.summary
		batch++
		if batch%10 == 0 {
			raw = r.dedupeChangesets(ctx, base, raw)
		}
	}
	return raw
}

func (r *Reviewer) dedupeChangesets(ctx context.Context, base *prompts.Inputs, raw string) string {
	logger := logging.GetLogger()
	in := base.Clone()
	in.RawSummary = raw
	prompt := r.prompts.RenderSummarizeChangesets(in)
	if tokens.Count(prompt) > r.lightBot.Limits().RequestTokens {
		return raw
	}
	resp, err := r.lightBot.Chat(ctx, prompt)
	if err != nil {
		logger.Warn(ctx, "Failed to deduplicate changesets: %v", err)
		return raw
	}
	if text := strings.TrimSpace(resp.Text); text != "" {
		return text
	}
	return raw
}

// reviewFile packs as many hunks as the heavy model's request budget admits
// and parses the response into findings.
func (r *Reviewer) reviewFile(ctx context.Context, base *prompts.Inputs, number int, file *fileReview) []Finding {
	logger := logging.GetLogger()
	hunks := ParsePatch(file.patch)
	if len(hunks) == 0 {
		return nil
	}
	in := base.Clone()
	in.Filename = file.filename

	fitter := prompts.NewBudgetFitter(
		tokens.Count(r.prompts.RenderReviewFileDiff(in)),
		r.heavyBot.Limits().RequestTokens,
		tokens.Count,
	)
	var packed strings.Builder
	ranges := make([]LineRange, 0, len(hunks))
	for _, hunk := range hunks {
		chains := r.cmt.GetCommentChainsWithinRange(ctx, number, file.filename,
			hunk.StartLine, hunk.EndLine, commenter.CommentTag)
		section := FormatHunk(hunk, chains)
		if !fitter.TryAdd(section) {
			if chains == "" {
				logger.Info(ctx, "Hunk %s:%d-%d does not fit the request budget, skipping",
					file.filename, hunk.StartLine, hunk.EndLine)
				continue
			}
			// Retry without the chains before giving up on the hunk.
			section = FormatHunk(hunk, "")
			if !fitter.TryAdd(section) {
				continue
			}
		}
		packed.WriteString(section)
		ranges = append(ranges, LineRange{Start: hunk.StartLine, End: hunk.EndLine})
	}
	if packed.Len() == 0 {
		return nil
	}
	in.Patches = packed.String()
	resp, err := r.heavyBot.Chat(ctx, r.prompts.RenderReviewFileDiff(in))
	if err != nil {
		logger.Warn(ctx, "Failed to review %s: %v", file.filename, err)
		return nil
	}
	return ParseReview(resp.Text, ranges, r.opts.ReviewCommentLGTM)
}

// buildSummarizeComment assembles the persistent summary comment: the visible
// summary, the machine-readable raw and short summary blocks, and the
// reviewed-commit block carried over from the previous body plus the new head.
func (r *Reviewer) buildSummarizeComment(summary, raw, short, existingBody, head string) string {
	var b strings.Builder
	b.WriteString(summary)
	b.WriteString("\n\n")
	b.WriteString(commenter.RawSummaryStartTag + "\n" + raw + "\n" + commenter.RawSummaryEndTag + "\n")
	b.WriteString(commenter.ShortSummaryStartTag + "\n" + short + "\n" + commenter.ShortSummaryEndTag)
	if block := r.cmt.GetReviewedCommitIDsBlock(existingBody); block != "" {
		b.WriteString("\n\n" + block)
	}
	return r.cmt.AddReviewedCommitID(b.String(), head)
}

func buildStatus(actionable int, base, head string, selected []*fileReview, filteredOut, overLimit, skippedTrivial []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Actionable comments posted: %d**\n\n", actionable)
	b.WriteString("<details>\n<summary>Review details</summary>\n\n")
	fmt.Fprintf(&b, "**Commits reviewed**: %s..%s\n\n", shortSHA(base), shortSHA(head))
	fmt.Fprintf(&b, "**Files selected for review (%d)**\n\n", len(selected))
	for _, file := range selected {
		fmt.Fprintf(&b, "* %s\n", file.filename)
	}
	writeFileSection(&b, "Files ignored due to path filters", filteredOut)
	writeFileSection(&b, "Files not reviewed due to the max files limit", overLimit)
	writeFileSection(&b, "Files skipped from review (trivial changes)", skippedTrivial)
	b.WriteString("\n</details>")
	return b.String()
}

func writeFileSection(b *strings.Builder, title string, files []string) {
	if len(files) == 0 {
		return
	}
	fmt.Fprintf(b, "\n**%s (%d)**\n\n", title, len(files))
	for _, file := range files {
		fmt.Fprintf(b, "* %s\n", file)
	}
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

// HandleComment answers a new review comment on a thread the assistant
// participates in.
func (r *Reviewer) HandleComment(ctx context.Context, event *ghclient.EventContext) error {
	logger := logging.GetLogger()
	comment := event.Comment
	pr := event.PullRequest
	if comment == nil || pr == nil {
		logger.Info(ctx, "Event %s carries no review comment, skipping", event.EventName)
		return nil
	}
	number := pr.GetNumber()
	body := comment.GetBody()
	if strings.Contains(body, commenter.CommentTag) || strings.Contains(body, commenter.CommentReplyTag) {
		logger.Info(ctx, "Comment %d was posted by this assistant, skipping", comment.GetID())
		return nil
	}

	all := r.cmt.ListReviewComments(ctx, number)
	topLevel := comment
	if parent := comment.GetInReplyTo(); parent != 0 {
		for _, candidate := range all {
			if candidate.GetID() == parent {
				topLevel = candidate
				break
			}
		}
	}
	replies := make([]*github.PullRequestComment, 0)
	for _, candidate := range all {
		if candidate.GetInReplyTo() == topLevel.GetID() {
			replies = append(replies, candidate)
		}
	}
	chain := r.cmt.ComposeCommentChain(replies, topLevel)
	if !strings.Contains(chain, commenter.CommentTag) && !strings.Contains(chain, commenter.CommentReplyTag) {
		logger.Info(ctx, "Thread %d has no assistant comment, skipping", topLevel.GetID())
		return nil
	}

	inputs := prompts.NewInputs()
	inputs.SystemMessage = r.opts.SystemMessage
	if title := pr.GetTitle(); title != "" {
		inputs.Title = title
	}
	if desc := strings.TrimSpace(r.cmt.GetDescription(pr.GetBody())); desc != "" {
		inputs.Description = desc
	}
	inputs.Filename = comment.GetPath()
	if hunk := comment.GetDiffHunk(); hunk != "" {
		inputs.Diff = hunk
	}
	inputs.CommentChain = chain
	inputs.Comment = body
	if summarize, err := r.cmt.FindCommentWithTag(ctx, commenter.SummarizeTag, number); err == nil && summarize != nil {
		if short := r.cmt.GetShortSummary(summarize.GetBody()); short != "" {
			inputs.ShortSummary = short
		}
	}

	fitter := prompts.NewBudgetFitter(
		tokens.Count(r.prompts.RenderComment(inputs)),
		r.heavyBot.Limits().RequestTokens,
		tokens.Count,
	)
	if files, err := r.gh.ListFiles(ctx, number); err == nil {
		for _, file := range files {
			if file.GetFilename() == comment.GetPath() && file.GetPatch() != "" {
				if fitter.TryAdd(file.GetPatch()) {
					inputs.FileDiff = file.GetPatch()
				}
				break
			}
		}
	}

	resp, err := r.heavyBot.Chat(ctx, r.prompts.RenderComment(inputs))
	if err != nil {
		logger.Warn(ctx, "Failed to answer comment %d on PR #%d: %v", comment.GetID(), number, err)
		r.cmt.ReviewCommentReply(ctx, number, topLevel,
			fmt.Sprintf("Could not answer this comment due to the following error: %v", err))
		return nil
	}
	r.cmt.ReviewCommentReply(ctx, number, topLevel, strings.TrimSpace(resp.Text))
	return nil
}
