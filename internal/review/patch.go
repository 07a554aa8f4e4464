package review

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// hunkHeader matches a unified-diff hunk header and captures the old and new
// side start/length.
var hunkHeader = regexp.MustCompile(`(?m)^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// Hunk is one change section of a file patch. NewHunk carries added and
// context lines with the changed region annotated with new-side line numbers;
// OldHunk carries the replaced code without annotations.
type Hunk struct {
	StartLine int
	EndLine   int
	NewHunk   string
	OldHunk   string
}

// SplitPatch cuts a file patch into per-hunk sections, each starting at its
// @@ header.
func SplitPatch(patch string) []string {
	if patch == "" {
		return nil
	}
	locations := hunkHeader.FindAllStringIndex(patch, -1)
	if len(locations) == 0 {
		return nil
	}
	sections := make([]string, 0, len(locations))
	for i, loc := range locations {
		end := len(patch)
		if i+1 < len(locations) {
			end = locations[i+1][0]
		}
		sections = append(sections, strings.TrimSuffix(patch[loc[0]:end], "\n"))
	}
	return sections
}

// ParseHunk parses one patch section into a Hunk. The first and last three
// context lines are left unannotated so the model focuses on the changed
// region.
func ParseHunk(section string) (Hunk, bool) {
	match := hunkHeader.FindStringSubmatch(section)
	if match == nil {
		return Hunk{}, false
	}
	newStart, _ := strconv.Atoi(match[3])
	newLen := 1
	if match[4] != "" {
		newLen, _ = strconv.Atoi(match[4])
	}
	hunk := Hunk{
		StartLine: newStart,
		EndLine:   newStart + newLen - 1,
	}

	lines := strings.Split(section, "\n")[1:]
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	removalOnly := true
	for _, line := range lines {
		if strings.HasPrefix(line, "+") {
			removalOnly = false
			break
		}
	}

	const skipStart, skipEnd = 3, 3
	oldLines := make([]string, 0, len(lines))
	newLines := make([]string, 0, len(lines))
	newLine := newStart
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "-"):
			oldLines = append(oldLines, line[1:])
		case strings.HasPrefix(line, "+"):
			newLines = append(newLines, fmt.Sprintf("%d: %s", newLine, line[1:]))
			newLine++
		default:
			oldLines = append(oldLines, line)
			if removalOnly || (i+1 > skipStart && i+1 <= len(lines)-skipEnd) {
				newLines = append(newLines, fmt.Sprintf("%d: %s", newLine, line))
			} else {
				newLines = append(newLines, line)
			}
			newLine++
		}
	}
	hunk.OldHunk = strings.Join(oldLines, "\n")
	hunk.NewHunk = strings.Join(newLines, "\n")
	return hunk, true
}

// ParsePatch parses a whole file patch into its hunks.
func ParsePatch(patch string) []Hunk {
	sections := SplitPatch(patch)
	hunks := make([]Hunk, 0, len(sections))
	for _, section := range sections {
		if hunk, ok := ParseHunk(section); ok {
			hunks = append(hunks, hunk)
		}
	}
	return hunks
}

// FormatHunk renders one hunk as a change section of the review prompt,
// including any existing comment chains on its range.
func FormatHunk(hunk Hunk, commentChains string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n---new_hunk---\n```\n%s\n```\n", hunk.NewHunk)
	if hunk.OldHunk != "" {
		fmt.Fprintf(&b, "\n---old_hunk---\n```\n%s\n```\n", hunk.OldHunk)
	}
	if commentChains != "" {
		fmt.Fprintf(&b, "\n---comment_chains---\n```\n%s\n```\n", commentChains)
	}
	b.WriteString("\n---end_change_section---\n")
	return b.String()
}
