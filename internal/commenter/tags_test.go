package commenter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlockKindDelimiters(t *testing.T) {
	tests := []struct {
		kind  BlockKind
		start string
		end   string
	}{
		{BlockInProgress, InProgressStartTag, InProgressEndTag},
		{BlockReleaseNotes, DescriptionStartTag, DescriptionEndTag},
		{BlockRawSummary, RawSummaryStartTag, RawSummaryEndTag},
		{BlockShortSummary, ShortSummaryStartTag, ShortSummaryEndTag},
		{BlockCommitIDs, CommitIDStartTag, CommitIDEndTag},
	}
	for _, tt := range tests {
		start, end := tt.kind.Delimiters()
		assert.Equal(t, tt.start, start)
		assert.Equal(t, tt.end, end)
	}
}

func TestGetBlock(t *testing.T) {
	c := New(nil, "")
	body := "summary\n" + RawSummaryStartTag + "\nraw content\n" + RawSummaryEndTag
	assert.Equal(t, "\nraw content\n", c.GetBlock(body, BlockRawSummary))
	assert.Equal(t, "", c.GetBlock(body, BlockShortSummary))
}
