package options

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// PathFilter matches changed file paths against glob rules. Rules prefixed
// with "!" exclude; the rest include. Exclusion wins over inclusion, and when
// at least one inclusion rule exists a path must match one of them.
type PathFilter struct {
	rules []filterRule
}

type filterRule struct {
	pattern string
	exclude bool
}

// NewPathFilter parses rules, skipping blank lines.
func NewPathFilter(rules []string) *PathFilter {
	f := &PathFilter{}
	for _, rule := range rules {
		rule = strings.TrimSpace(rule)
		if rule == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(rule, "!"); ok {
			f.rules = append(f.rules, filterRule{pattern: strings.TrimSpace(rest), exclude: true})
		} else {
			f.rules = append(f.rules, filterRule{pattern: rule})
		}
	}
	return f
}

// Check reports whether path passes the filter. With no rules everything
// passes.
func (f *PathFilter) Check(path string) bool {
	if len(f.rules) == 0 {
		return true
	}
	included := false
	hasInclusion := false
	for _, rule := range f.rules {
		matched, err := doublestar.Match(rule.pattern, path)
		if err != nil {
			continue
		}
		if rule.exclude {
			if matched {
				return false
			}
			continue
		}
		hasInclusion = true
		if matched {
			included = true
		}
	}
	if !hasInclusion {
		return true
	}
	return included
}
