package commenter

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-github/v68/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) CreateIssueComment(ctx context.Context, number int, body string) (*github.IssueComment, error) {
	args := m.Called(ctx, number, body)
	if c := args.Get(0); c != nil {
		return c.(*github.IssueComment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAPI) UpdateIssueComment(ctx context.Context, commentID int64, body string) (*github.IssueComment, error) {
	args := m.Called(ctx, commentID, body)
	if c := args.Get(0); c != nil {
		return c.(*github.IssueComment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAPI) ListIssueComments(ctx context.Context, number, page, perPage int) ([]*github.IssueComment, error) {
	args := m.Called(ctx, number, page, perPage)
	if c := args.Get(0); c != nil {
		return c.([]*github.IssueComment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAPI) GetPullRequest(ctx context.Context, number int) (*github.PullRequest, error) {
	args := m.Called(ctx, number)
	if pr := args.Get(0); pr != nil {
		return pr.(*github.PullRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAPI) UpdatePullRequestBody(ctx context.Context, number int, body string) error {
	return m.Called(ctx, number, body).Error(0)
}

func (m *mockAPI) ListCommits(ctx context.Context, number, page, perPage int) ([]*github.RepositoryCommit, error) {
	args := m.Called(ctx, number, page, perPage)
	if c := args.Get(0); c != nil {
		return c.([]*github.RepositoryCommit), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAPI) ListReviewComments(ctx context.Context, number, page, perPage int) ([]*github.PullRequestComment, error) {
	args := m.Called(ctx, number, page, perPage)
	if c := args.Get(0); c != nil {
		return c.([]*github.PullRequestComment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAPI) CreateReviewCommentReply(ctx context.Context, number int, commentID int64, body string) error {
	return m.Called(ctx, number, commentID, body).Error(0)
}

func (m *mockAPI) UpdateReviewComment(ctx context.Context, commentID int64, body string) error {
	return m.Called(ctx, commentID, body).Error(0)
}

func (m *mockAPI) DeleteReviewComment(ctx context.Context, commentID int64) error {
	return m.Called(ctx, commentID).Error(0)
}

func (m *mockAPI) ListReviews(ctx context.Context, number int) ([]*github.PullRequestReview, error) {
	args := m.Called(ctx, number)
	if r := args.Get(0); r != nil {
		return r.([]*github.PullRequestReview), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAPI) DeletePendingReview(ctx context.Context, number int, reviewID int64) error {
	return m.Called(ctx, number, reviewID).Error(0)
}

func (m *mockAPI) CreateReview(ctx context.Context, number int, review *github.PullRequestReviewRequest) (*github.PullRequestReview, error) {
	args := m.Called(ctx, number, review)
	if r := args.Get(0); r != nil {
		return r.(*github.PullRequestReview), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAPI) SubmitReview(ctx context.Context, number int, reviewID int64, event, body string) error {
	return m.Called(ctx, number, reviewID, event, body).Error(0)
}

func issueComment(id int64, body string) *github.IssueComment {
	return &github.IssueComment{ID: github.Ptr(id), Body: github.Ptr(body)}
}

func TestCommentCreate(t *testing.T) {
	api := &mockAPI{}
	c := New(api, "🤖")

	api.On("CreateIssueComment", mock.Anything, 42, "🤖\n\nhello\n\n"+CommentTag).
		Return(issueComment(1, "posted"), nil).Once()

	c.Comment(context.Background(), "hello", "", ModeCreate, 42)
	api.AssertExpectations(t)
}

func TestCommentReplaceUpdatesTagged(t *testing.T) {
	api := &mockAPI{}
	c := New(api, "🤖")

	existing := issueComment(7, "🤖\n\nold summary\n\n"+SummarizeTag)
	api.On("ListIssueComments", mock.Anything, 42, 1, 100).
		Return([]*github.IssueComment{existing}, nil).Once()
	api.On("UpdateIssueComment", mock.Anything, int64(7), "🤖\n\nnew summary\n\n"+SummarizeTag).
		Return(issueComment(7, "updated"), nil).Once()

	c.Comment(context.Background(), "new summary", SummarizeTag, ModeReplace, 42)
	api.AssertExpectations(t)
}

func TestCommentReplaceCreatesWhenMissing(t *testing.T) {
	api := &mockAPI{}
	c := New(api, "🤖")

	api.On("ListIssueComments", mock.Anything, 42, 1, 100).
		Return([]*github.IssueComment{issueComment(1, "unrelated")}, nil).Once()
	api.On("CreateIssueComment", mock.Anything, 42, mock.MatchedBy(func(body string) bool {
		return strings.Contains(body, SummarizeTag)
	})).Return(issueComment(2, "created"), nil).Once()

	c.Comment(context.Background(), "summary", SummarizeTag, ModeReplace, 42)
	api.AssertExpectations(t)
}

func TestListCommentsPaginatesAndCaches(t *testing.T) {
	api := &mockAPI{}
	c := New(api, "🤖")

	page1 := make([]*github.IssueComment, 100)
	for i := range page1 {
		page1[i] = issueComment(int64(i), fmt.Sprintf("comment %d", i))
	}
	page2 := []*github.IssueComment{issueComment(100, "last")}

	api.On("ListIssueComments", mock.Anything, 42, 1, 100).Return(page1, nil).Once()
	api.On("ListIssueComments", mock.Anything, 42, 2, 100).Return(page2, nil).Once()

	comments, err := c.ListComments(context.Background(), 42)
	assert.NoError(t, err)
	assert.Len(t, comments, 101)

	// Second call is served from the cache.
	cached, err := c.ListComments(context.Background(), 42)
	assert.NoError(t, err)
	assert.Len(t, cached, 101)
	api.AssertExpectations(t)
}

func TestGetContentWithinTags(t *testing.T) {
	c := New(nil, "")
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "present",
			content: "before " + RawSummaryStartTag + "inner" + RawSummaryEndTag + " after",
			want:    "inner",
		},
		{
			name:    "missing start",
			content: "inner" + RawSummaryEndTag,
			want:    "",
		},
		{
			name:    "missing end",
			content: RawSummaryStartTag + "inner",
			want:    "",
		},
		{
			name:    "end before start",
			content: RawSummaryEndTag + "inner" + RawSummaryStartTag,
			want:    "",
		},
		{
			name:    "empty block",
			content: RawSummaryStartTag + RawSummaryEndTag,
			want:    "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.GetContentWithinTags(tt.content, RawSummaryStartTag, RawSummaryEndTag))
		})
	}
}

func TestRemoveContentWithinTags(t *testing.T) {
	c := New(nil, "")

	content := "keep " + DescriptionStartTag + "\nnotes\n" + DescriptionEndTag + " tail"
	assert.Equal(t, "keep  tail", c.RemoveContentWithinTags(content, DescriptionStartTag, DescriptionEndTag))

	assert.Equal(t, "no tags here", c.RemoveContentWithinTags("no tags here", DescriptionStartTag, DescriptionEndTag))
}

func TestGetReleaseNotesDropsQuotedLines(t *testing.T) {
	c := New(nil, "")
	description := "intro\n" + DescriptionStartTag + "\n> quoted disclaimer\n- New Feature: search\n" + DescriptionEndTag
	notes := c.GetReleaseNotes(description)
	assert.NotContains(t, notes, "quoted disclaimer")
	assert.Contains(t, notes, "- New Feature: search")
}

func TestUpdateDescriptionPreservesHumanPart(t *testing.T) {
	api := &mockAPI{}
	c := New(api, "🤖")

	body := "human text\n\n" + DescriptionStartTag + "\nold notes\n" + DescriptionEndTag
	api.On("GetPullRequest", mock.Anything, 42).Return(&github.PullRequest{Body: github.Ptr(body)}, nil).Once()
	api.On("UpdatePullRequestBody", mock.Anything, 42, mock.MatchedBy(func(updated string) bool {
		return strings.Contains(updated, "human text") &&
			strings.Contains(updated, "new notes") &&
			!strings.Contains(updated, "old notes")
	})).Return(nil).Once()

	c.UpdateDescription(context.Background(), 42, "new notes")
	api.AssertExpectations(t)
}
