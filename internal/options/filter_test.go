package options

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathFilter(t *testing.T) {
	tests := []struct {
		name  string
		rules []string
		path  string
		want  bool
	}{
		{"no rules allows everything", nil, "src/main.go", true},
		{"blank rules are skipped", []string{"", "  "}, "src/main.go", true},
		{"inclusion match", []string{"**/*.go"}, "src/main.go", true},
		{"inclusion miss", []string{"**/*.go"}, "docs/readme.md", false},
		{"exclusion wins over inclusion", []string{"**/*.go", "!vendor/**"}, "vendor/lib/a.go", false},
		{"exclusion only keeps the rest", []string{"!**/*_test.go"}, "src/main.go", true},
		{"exclusion only drops matches", []string{"!**/*_test.go"}, "src/main_test.go", false},
		{"multiple inclusions", []string{"src/**", "docs/**"}, "docs/readme.md", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewPathFilter(tt.rules)
			assert.Equal(t, tt.want, f.Check(tt.path))
		})
	}
}
