// Package tokens provides model token budgets and text token counting for
// prompt assembly.
package tokens

import "fmt"

// responseMargin is reserved on top of the response allowance so a request
// that measures exactly at the limit still goes through.
const responseMargin = 100

// TokenLimits describes the budget split for one model: the hard ceiling,
// the slice reserved for the response, and the derived request capacity.
type TokenLimits struct {
	MaxTokens       int
	ResponseTokens  int
	RequestTokens   int
	KnowledgeCutOff string
}

// NewTokenLimits looks up the budget profile for model. Unknown or malformed
// names fall back to the smallest profile. RequestTokens is always derived
// from the other two fields, never stored independently.
func NewTokenLimits(model string) *TokenLimits {
	l := &TokenLimits{KnowledgeCutOff: "2021-09-01"}
	switch model {
	case "gpt-4-32k":
		l.MaxTokens = 32600
		l.ResponseTokens = 4000
	case "gpt-3.5-turbo-16k":
		l.MaxTokens = 16300
		l.ResponseTokens = 3000
	case "gpt-4":
		l.MaxTokens = 8000
		l.ResponseTokens = 2000
	case "gpt-4o":
		l.MaxTokens = 128000
		l.ResponseTokens = 4096
	default:
		l.MaxTokens = 4000
		l.ResponseTokens = 1000
	}
	l.RequestTokens = l.MaxTokens - l.ResponseTokens - responseMargin
	return l
}

func (l *TokenLimits) String() string {
	return fmt.Sprintf("max_tokens=%d, request_tokens=%d, response_tokens=%d",
		l.MaxTokens, l.RequestTokens, l.ResponseTokens)
}
