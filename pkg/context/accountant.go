package context

import (
	"sync/atomic"

	"github.com/hoosh-sh/hoosh/pkg/agent"
	"github.com/hoosh-sh/hoosh/pkg/llm"
)

// Accountant tracks running token usage across a conversation, layered
// on top of the per-call TokenBudget snapshot (pkg/agent.TokenBudget):
// where TokenBudget answers "how full is the context window right now",
// Accountant answers "how many tokens have flowed through this
// conversation in total", which neither TokenBudget nor TokenEstimator
// track on their own.
type Accountant struct {
	estimator TokenEstimator

	currentContextTokens int64 // tokens currently occupying the context window
	totalConsumed         int64 // cumulative tokens ever added, including compacted-away history
	recordCount           int64 // number of Record calls
}

// NewAccountant creates an Accountant using the given estimator, or
// SimpleEstimator if nil.
func NewAccountant(estimator TokenEstimator) *Accountant {
	if estimator == nil {
		estimator = &SimpleEstimator{}
	}
	return &Accountant{estimator: estimator}
}

// Record adds a single message's estimated token count to the running
// totals. Called once per message appended to the conversation.
func (a *Accountant) Record(msg llm.ChatMessage) int {
	tokens := a.estimator.Estimate(ContentString(msg)) + 4 // per-message overhead, matches SimpleEstimator
	atomic.AddInt64(&a.currentContextTokens, int64(tokens))
	atomic.AddInt64(&a.totalConsumed, int64(tokens))
	atomic.AddInt64(&a.recordCount, 1)
	return tokens
}

// Reduce lowers current_context_tokens by freedTokens without touching
// total_consumed, e.g. after a compaction replaces a long prefix with a
// short summary message (the summary itself should be Record'd
// separately).
func (a *Accountant) Reduce(freedTokens int) {
	newVal := atomic.AddInt64(&a.currentContextTokens, -int64(freedTokens))
	if newVal < 0 {
		atomic.StoreInt64(&a.currentContextTokens, 0)
	}
}

// Reset recomputes current_context_tokens from scratch against the given
// messages (e.g. after a sliding-window cut or compaction), leaving
// total_consumed and record_count untouched since they are
// cumulative-since-start counters.
func (a *Accountant) Reset(messages []llm.ChatMessage) {
	atomic.StoreInt64(&a.currentContextTokens, int64(a.estimator.EstimateMessages(messages)))
}

// CurrentContextTokens returns the tokens currently occupying the
// context window.
func (a *Accountant) CurrentContextTokens() int {
	return int(atomic.LoadInt64(&a.currentContextTokens))
}

// TotalConsumed returns the cumulative token count ever recorded,
// including tokens later compacted or truncated away.
func (a *Accountant) TotalConsumed() int {
	return int(atomic.LoadInt64(&a.totalConsumed))
}

// RecordCount returns the number of Record calls made so far.
func (a *Accountant) RecordCount() int {
	return int(atomic.LoadInt64(&a.recordCount))
}

// Budget builds a TokenBudget snapshot from the accountant's current
// running total plus the given system prompt and output reservation.
func (a *Accountant) Budget(contextLimit int, systemPromptTokens, maxOutputTokens int) agent.TokenBudget {
	return agent.TokenBudget{
		ContextLimit:     contextLimit,
		SystemPromptTkns: systemPromptTokens,
		MaxOutputTkns:    maxOutputTokens,
		MessageTkns:      a.CurrentContextTokens(),
	}
}
