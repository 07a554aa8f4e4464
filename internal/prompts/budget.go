package prompts

// TokenCounter measures the token cost of a candidate block. Provided by the
// tokenizer in production and by plain functions in tests.
type TokenCounter func(text string) int

// BudgetFitter greedily admits optional context blocks into a prompt while
// they fit the remaining request budget. Evaluation order is the caller's
// priority order; a block that does not fit is omitted entirely, never
// truncated, and later (smaller) blocks may still be admitted.
type BudgetFitter struct {
	used   int
	budget int
	count  TokenCounter
}

// NewBudgetFitter starts a fitter with the tokens already consumed by the
// required parts of the prompt.
func NewBudgetFitter(used, budget int, count TokenCounter) *BudgetFitter {
	return &BudgetFitter{used: used, budget: budget, count: count}
}

// TryAdd admits text when it fits the remaining budget and reports whether it
// was admitted. Empty candidates are never admitted.
func (f *BudgetFitter) TryAdd(text string) bool {
	if text == "" {
		return false
	}
	cost := f.count(text)
	if f.used+cost > f.budget {
		return false
	}
	f.used += cost
	return true
}

// Used reports the tokens consumed so far, required parts included.
func (f *BudgetFitter) Used() int { return f.used }

// Remaining reports the budget still available.
func (f *BudgetFitter) Remaining() int { return f.budget - f.used }
