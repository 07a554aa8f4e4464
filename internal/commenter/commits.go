package commenter

import (
	"context"
	"fmt"
	"strings"

	"github.com/XiaoConstantine/dspy-go/pkg/logging"
)

// Commit ids are stored inside the commit block as individually wrapped
// tokens: <!-- sha -->. Shas are hex strings and can never contain the
// wrapper delimiters; AddReviewedCommitID still refuses ids that would break
// the format.
const (
	commitWrapStart = "<!-- "
	commitWrapEnd   = " -->"
)

// GetReviewedCommitIDs extracts the ordered commit ids recorded in the commit
// block of body. A missing or empty block yields an empty slice.
func (c *Commenter) GetReviewedCommitIDs(body string) []string {
	content := c.GetBlock(body, BlockCommitIDs)
	if content == "" {
		return []string{}
	}
	ids := make([]string, 0)
	for _, segment := range strings.Split(content, "<!--") {
		closing := strings.Index(segment, "-->")
		if closing == -1 {
			continue
		}
		if id := strings.TrimSpace(segment[:closing]); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// GetReviewedCommitIDsBlock returns the whole commit block including its
// delimiters, or an empty string when body has none.
func (c *Commenter) GetReviewedCommitIDsBlock(body string) string {
	start := strings.Index(body, CommitIDStartTag)
	end := strings.Index(body, CommitIDEndTag)
	if start == -1 || end == -1 {
		return ""
	}
	return body[start : end+len(CommitIDEndTag)]
}

// AddReviewedCommitID records id as reviewed, inserting it before the block's
// end delimiter or appending a fresh block when body has none. Existing ids
// and their order are preserved.
func (c *Commenter) AddReviewedCommitID(body, id string) string {
	if strings.Contains(id, commitWrapEnd) || strings.Contains(id, "<!--") {
		// Cannot happen for real shas; refuse rather than corrupt the block.
		return body
	}
	token := commitWrapStart + id + commitWrapEnd
	start := strings.Index(body, CommitIDStartTag)
	end := strings.Index(body, CommitIDEndTag)
	if start == -1 || end == -1 {
		return fmt.Sprintf("%s\n%s\n%s\n%s", body, CommitIDStartTag, token, CommitIDEndTag)
	}
	return body[:end] + token + "\n" + body[end:]
}

// GetHighestReviewedCommitID scans allCommitIDs from the most recent commit
// backwards and returns the first id also present in reviewedCommitIDs.
// Commit order from the API is chronological, so the match is the base for
// the next incremental diff. Returns "" when nothing has been reviewed.
func (c *Commenter) GetHighestReviewedCommitID(allCommitIDs, reviewedCommitIDs []string) string {
	reviewed := make(map[string]struct{}, len(reviewedCommitIDs))
	for _, id := range reviewedCommitIDs {
		reviewed[id] = struct{}{}
	}
	for i := len(allCommitIDs) - 1; i >= 0; i-- {
		if _, ok := reviewed[allCommitIDs[i]]; ok {
			return allCommitIDs[i]
		}
	}
	return ""
}

// GetAllCommitIDs paginates the PR's commit list into a flat ordered slice of
// sha values.
func (c *Commenter) GetAllCommitIDs(ctx context.Context, number int) ([]string, error) {
	logger := logging.GetLogger()
	ids := make([]string, 0)
	for page := 1; ; page++ {
		commits, err := c.api.ListCommits(ctx, number, page, commentsPerPage)
		if err != nil {
			return nil, fmt.Errorf("failed to list commits of PR #%d: %w", number, err)
		}
		for _, commit := range commits {
			ids = append(ids, commit.GetSHA())
		}
		if len(commits) < commentsPerPage {
			break
		}
	}
	logger.Debug(ctx, "PR #%d has %d commits", number, len(ids))
	return ids, nil
}
