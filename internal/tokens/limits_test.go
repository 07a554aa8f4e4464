package tokens

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTokenLimits(t *testing.T) {
	tests := []struct {
		model          string
		maxTokens      int
		responseTokens int
		requestTokens  int
	}{
		{"gpt-4-32k", 32600, 4000, 28500},
		{"gpt-3.5-turbo-16k", 16300, 3000, 13200},
		{"gpt-4", 8000, 2000, 5900},
		{"gpt-4o", 128000, 4096, 123804},
		{"gpt-3.5-turbo", 4000, 1000, 2900},
		{"gpt-6", 4000, 1000, 2900},
		{"", 4000, 1000, 2900},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			l := NewTokenLimits(tt.model)
			assert.Equal(t, tt.maxTokens, l.MaxTokens)
			assert.Equal(t, tt.responseTokens, l.ResponseTokens)
			assert.Equal(t, tt.requestTokens, l.RequestTokens)
			assert.Equal(t, "2021-09-01", l.KnowledgeCutOff)
		})
	}
}

func TestTokenLimitsString(t *testing.T) {
	l := NewTokenLimits("gpt-4")
	assert.Equal(t, "max_tokens=8000, request_tokens=5900, response_tokens=2000", l.String())
}
