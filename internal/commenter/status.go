package commenter

import "strings"

const inProgressBanner = "Currently reviewing new changes in this PR..."

// AddInProgressStatus prepends an in-progress block to body. Idempotent: a
// body that already carries the start delimiter is returned unchanged so
// repeated runs never stack status blocks.
func (c *Commenter) AddInProgressStatus(body, statusText string) string {
	if strings.Contains(body, InProgressStartTag) {
		return body
	}
	return InProgressStartTag + "\n\n" + inProgressBanner + "\n\n" + statusText + "\n\n" +
		InProgressEndTag + "\n\n---\n\n" + body
}

// RemoveInProgressStatus deletes the in-progress block, delimiters included.
// Bodies without one pass through untouched.
func (c *Commenter) RemoveInProgressStatus(body string) string {
	start := strings.Index(body, InProgressStartTag)
	end := strings.Index(body, InProgressEndTag)
	if start == -1 || end == -1 {
		return body
	}
	rest := body[end+len(InProgressEndTag):]
	// Also strip the separator AddInProgressStatus placed after the block so
	// add followed by remove restores the original body byte for byte.
	rest = strings.TrimPrefix(rest, "\n\n---\n\n")
	return body[:start] + rest
}
