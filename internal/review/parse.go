package review

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Finding is one reviewable issue the model reported for a line range on the
// new side of the diff.
type Finding struct {
	StartLine int
	EndLine   int
	Comment   string
}

// LineRange is an inclusive new-side line range of a hunk.
type LineRange struct {
	Start int
	End   int
}

var (
	findingHeader = regexp.MustCompile(`^(\d+)-(\d+):\s*$`)
	annotatedLine = regexp.MustCompile(`^\s*\d+: `)
	triagePattern = regexp.MustCompile(`(?m)^\[TRIAGE\]:\s*(NEEDS_REVIEW|APPROVED)\s*$`)
)

// ParseReview extracts findings from a model review response. The response is
// a sequence of "<start>-<end>:" sections separated by "---" lines. Findings
// that only say LGTM are dropped unless keepLGTM is set; findings outside
// every valid hunk range are remapped to the nearest range with a note.
func ParseReview(response string, validRanges []LineRange, keepLGTM bool) []Finding {
	findings := make([]Finding, 0)
	var current *Finding
	var body []string

	flush := func() {
		if current == nil {
			return
		}
		comment := strings.TrimSpace(strings.Join(body, "\n"))
		if finding, ok := storeFinding(current.StartLine, current.EndLine, comment, validRanges, keepLGTM); ok {
			findings = append(findings, finding)
		}
		current = nil
		body = nil
	}

	for _, line := range strings.Split(response, "\n") {
		trimmed := strings.TrimSpace(line)
		if match := findingHeader.FindStringSubmatch(trimmed); match != nil {
			flush()
			start, _ := strconv.Atoi(match[1])
			end, _ := strconv.Atoi(match[2])
			current = &Finding{StartLine: start, EndLine: end}
			continue
		}
		if trimmed == "---" {
			flush()
			continue
		}
		if current != nil {
			body = append(body, line)
		}
	}
	flush()
	return findings
}

func storeFinding(start, end int, comment string, validRanges []LineRange, keepLGTM bool) (Finding, bool) {
	if comment == "" {
		return Finding{}, false
	}
	if !keepLGTM && strings.Contains(comment, "LGTM") {
		return Finding{}, false
	}
	comment = sanitizeCodeBlock(comment, "suggestion")
	comment = sanitizeCodeBlock(comment, "diff")

	if len(validRanges) == 0 || withinRanges(start, end, validRanges) {
		return Finding{StartLine: start, EndLine: end, Comment: comment}, true
	}
	nearest := nearestRange(start, validRanges)
	comment = fmt.Sprintf(
		"> Note: This review was outside of the patch, so it was mapped to the patch with a minimum distance. Please review the original lines %d-%d in the file.\n\n%s",
		start, end, comment)
	return Finding{StartLine: nearest.Start, EndLine: nearest.End, Comment: comment}, true
}

func withinRanges(start, end int, ranges []LineRange) bool {
	for _, r := range ranges {
		if start >= r.Start && end <= r.End {
			return true
		}
	}
	return false
}

func nearestRange(start int, ranges []LineRange) LineRange {
	best := ranges[0]
	bestDistance := distance(start, best)
	for _, r := range ranges[1:] {
		if d := distance(start, r); d < bestDistance {
			best, bestDistance = r, d
		}
	}
	return best
}

func distance(line int, r LineRange) int {
	if line < r.Start {
		return r.Start - line
	}
	if line > r.End {
		return line - r.End
	}
	return 0
}

// sanitizeCodeBlock strips new-side line number annotations from fenced
// blocks of the given language, so suggestions apply cleanly.
func sanitizeCodeBlock(comment, language string) string {
	fence := "```" + language
	result := comment
	searchFrom := 0
	for {
		open := strings.Index(result[searchFrom:], fence)
		if open == -1 {
			return result
		}
		open += searchFrom
		bodyStart := open + len(fence)
		end := strings.Index(result[bodyStart:], "```")
		if end == -1 {
			return result
		}
		end += bodyStart

		block := result[bodyStart:end]
		lines := strings.Split(block, "\n")
		annotated := false
		for _, line := range lines {
			if annotatedLine.MatchString(line) {
				annotated = true
				break
			}
		}
		if annotated {
			for i, line := range lines {
				lines[i] = annotatedLine.ReplaceAllString(line, "")
			}
			block = strings.Join(lines, "\n")
			result = result[:bodyStart] + block + result[end:]
			end = bodyStart + len(block)
		}
		searchFrom = end + 3
		if searchFrom > len(result) {
			return result
		}
	}
}

// ParseTriage extracts the triage verdict from a summary response and returns
// the response with the verdict line removed. Responses without a verdict
// default to needing review.
func ParseTriage(response string) (needsReview bool, summary string) {
	match := triagePattern.FindStringSubmatch(response)
	if match == nil {
		return true, strings.TrimSpace(response)
	}
	summary = strings.TrimSpace(triagePattern.ReplaceAllString(response, ""))
	return match[1] == "NEEDS_REVIEW", summary
}
