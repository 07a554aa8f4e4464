package commenter

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-github/v68/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestGetReviewedCommitIDs(t *testing.T) {
	c := New(nil, "")

	body := "content " + CommitIDStartTag + "<!-- abc123 -->" + CommitIDEndTag + " more"
	assert.Equal(t, []string{"abc123"}, c.GetReviewedCommitIDs(body))

	body = CommitIDStartTag + "\n<!-- abc123 -->\n<!-- def456 -->\n" + CommitIDEndTag
	assert.Equal(t, []string{"abc123", "def456"}, c.GetReviewedCommitIDs(body))

	assert.Empty(t, c.GetReviewedCommitIDs("no block at all"))
	assert.Empty(t, c.GetReviewedCommitIDs(CommitIDStartTag+"\n"+CommitIDEndTag))
}

func TestGetReviewedCommitIDsBlock(t *testing.T) {
	c := New(nil, "")

	block := CommitIDStartTag + "\n<!-- abc123 -->\n" + CommitIDEndTag
	assert.Equal(t, block, c.GetReviewedCommitIDsBlock("before\n"+block+"\nafter"))
	assert.Equal(t, "", c.GetReviewedCommitIDsBlock("no block"))
}

func TestAddReviewedCommitID(t *testing.T) {
	c := New(nil, "")

	t.Run("fresh block", func(t *testing.T) {
		got := c.AddReviewedCommitID("summary", "abc123")
		assert.Equal(t, []string{"abc123"}, c.GetReviewedCommitIDs(got))
	})

	t.Run("appends preserving order", func(t *testing.T) {
		body := c.AddReviewedCommitID("summary", "abc123")
		body = c.AddReviewedCommitID(body, "def456")
		assert.Equal(t, []string{"abc123", "def456"}, c.GetReviewedCommitIDs(body))
	})

	t.Run("refuses delimiter in id", func(t *testing.T) {
		assert.Equal(t, "summary", c.AddReviewedCommitID("summary", "bad -->"))
	})
}

func TestGetHighestReviewedCommitID(t *testing.T) {
	c := New(nil, "")
	tests := []struct {
		name     string
		all      []string
		reviewed []string
		want     string
	}{
		{
			name:     "most recent reviewed wins",
			all:      []string{"a", "b", "c", "d"},
			reviewed: []string{"a", "c"},
			want:     "c",
		},
		{
			name:     "nothing reviewed",
			all:      []string{"a", "b"},
			reviewed: nil,
			want:     "",
		},
		{
			name:     "reviewed commit no longer on branch",
			all:      []string{"a", "b"},
			reviewed: []string{"z"},
			want:     "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.GetHighestReviewedCommitID(tt.all, tt.reviewed))
		})
	}
}

func TestGetAllCommitIDsPaginates(t *testing.T) {
	api := &mockAPI{}
	c := New(api, "")

	page1 := make([]*github.RepositoryCommit, 100)
	for i := range page1 {
		page1[i] = &github.RepositoryCommit{SHA: github.Ptr(fmt.Sprintf("sha%d", i))}
	}
	page2 := []*github.RepositoryCommit{{SHA: github.Ptr("sha100")}}

	api.On("ListCommits", mock.Anything, 42, 1, 100).Return(page1, nil).Once()
	api.On("ListCommits", mock.Anything, 42, 2, 100).Return(page2, nil).Once()

	ids, err := c.GetAllCommitIDs(context.Background(), 42)
	assert.NoError(t, err)
	assert.Len(t, ids, 101)
	assert.Equal(t, "sha0", ids[0])
	assert.Equal(t, "sha100", ids[100])
	api.AssertExpectations(t)
}
