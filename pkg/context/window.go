package context

import "github.com/hoosh-sh/hoosh/pkg/llm"

// StrategyOutcome is the contract every context management strategy
// returns: whether it changed the conversation, and whether the target
// (e.g. a token budget) was reached as a result.
type StrategyOutcome int

const (
	OutcomeNoChange StrategyOutcome = iota
	OutcomeApplied
	OutcomeTargetReached
)

// SlidingWindowConfig configures the sliding window strategy.
type SlidingWindowConfig struct {
	// WindowSize is the total number of messages to keep, including any
	// preserved ones.
	WindowSize int
	// MinMessagesBeforeWindowing: the strategy is a no-op while the
	// conversation has this many messages or fewer.
	MinMessagesBeforeWindowing int
	// PreserveSystem keeps every system-role message regardless of age.
	PreserveSystem bool
	// PreserveInitialTask keeps the first user message (the task the
	// conversation started from), at index 0 or 1.
	PreserveInitialTask bool
}

// ApplySlidingWindow marks system/initial-task messages (per config) as
// preserved, then fills the remaining window budget with the most recent
// non-preserved messages, keeping everyone's original relative order.
//
// Unlike the index-based filter this is originally modeled on, this
// implementation treats tool-call/tool-result pairing as a required
// invariant: if the naive keep set would split an assistant message with
// tool_calls from its tool results (or vice versa), the paired message is
// pulled back in too.
func ApplySlidingWindow(messages []llm.ChatMessage, cfg SlidingWindowConfig) ([]llm.ChatMessage, StrategyOutcome) {
	n := len(messages)
	if cfg.WindowSize <= 0 || n <= cfg.MinMessagesBeforeWindowing || n <= cfg.WindowSize {
		return messages, OutcomeNoChange
	}

	keep := make([]bool, n)
	preservedCount := 0
	for i, m := range messages {
		if cfg.PreserveSystem && m.Role == "system" {
			keep[i] = true
			preservedCount++
			continue
		}
		if cfg.PreserveInitialTask && m.Role == "user" && i <= 1 {
			keep[i] = true
			preservedCount++
		}
	}

	if preservedCount < cfg.WindowSize {
		regularToKeep := cfg.WindowSize - preservedCount
		kept := 0
		for i := n - 1; i >= 0 && kept < regularToKeep; i-- {
			if keep[i] {
				continue
			}
			keep[i] = true
			kept++
		}
	}

	fixToolPairs(messages, keep)

	out := make([]llm.ChatMessage, 0, n)
	for i, k := range keep {
		if k {
			out = append(out, messages[i])
		}
	}

	if len(out) == n {
		return messages, OutcomeNoChange
	}
	return out, OutcomeApplied
}

// fixToolPairs extends a keep mask so that a kept tool result always keeps
// the assistant message that called it, and a kept assistant message with
// tool_calls always keeps its tool results — generalizing
// adjustSplitForToolPairs's contiguous-split invariant to an arbitrary
// keep mask, since sliding-window preservation is not always a single
// contiguous cut (preserved system/initial-task messages can sit apart
// from the kept recent suffix).
func fixToolPairs(messages []llm.ChatMessage, keep []bool) {
	n := len(messages)
	for i := 0; i < n; i++ {
		if !keep[i] || messages[i].Role != "tool" {
			continue
		}
		j := i
		for j > 0 && messages[j].Role == "tool" {
			j--
		}
		if messages[j].Role == "assistant" && len(messages[j].ToolCalls) > 0 {
			keep[j] = true
		}
	}
	for i := 0; i < n; i++ {
		if !keep[i] || messages[i].Role != "assistant" || len(messages[i].ToolCalls) == 0 {
			continue
		}
		for j := i + 1; j < n && messages[j].Role == "tool"; j++ {
			keep[j] = true
		}
	}
}
