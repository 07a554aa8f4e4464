package commenter

// Marker strings embedded in comment bodies. They are part of the persisted
// wire format: re-parsing a body depends on exact substring matches, so these
// literals must never change once comments exist in the wild.
const (
	CommentTag      = "<!-- auto-generated comment -->"
	CommentReplyTag = "<!-- auto-generated reply -->"
	SummarizeTag    = "<!-- summarize -->"

	InProgressStartTag = "<!-- summarize:in-progress:start -->"
	InProgressEndTag   = "<!-- summarize:in-progress:end -->"

	DescriptionStartTag = "<!-- release-notes:start -->"
	DescriptionEndTag   = "<!-- release-notes:end -->"

	RawSummaryStartTag = "<!-- raw-summary:start -->"
	RawSummaryEndTag   = "<!-- raw-summary:end -->"

	ShortSummaryStartTag = "<!-- short-summary:start -->"
	ShortSummaryEndTag   = "<!-- short-summary:end -->"

	CommitIDStartTag = "<!-- commit_ids_reviewed_start -->"
	CommitIDEndTag   = "<!-- commit_ids_reviewed_end -->"
)

// BlockKind names a delimited marker block, so the writer and reader of a
// block always share one delimiter definition.
type BlockKind int

const (
	BlockInProgress BlockKind = iota
	BlockReleaseNotes
	BlockRawSummary
	BlockShortSummary
	BlockCommitIDs
)

// Delimiters returns the start and end literals of the block.
func (k BlockKind) Delimiters() (start, end string) {
	switch k {
	case BlockInProgress:
		return InProgressStartTag, InProgressEndTag
	case BlockReleaseNotes:
		return DescriptionStartTag, DescriptionEndTag
	case BlockRawSummary:
		return RawSummaryStartTag, RawSummaryEndTag
	case BlockShortSummary:
		return ShortSummaryStartTag, ShortSummaryEndTag
	case BlockCommitIDs:
		return CommitIDStartTag, CommitIDEndTag
	default:
		return "", ""
	}
}
