package agent

import "github.com/hoosh-sh/hoosh/pkg/llm"

// pruneOldToolResults replaces verbose tool result content (>1000 chars)
// with a truncated version, except for the most recent preserveRecent
// messages. It is a lightweight, unconditional safety net run every step
// after tool results are appended — distinct from the declared-order,
// policy-configurable pkg/context.ToolOutputTruncationStrategy, which
// pkg/agent cannot import directly (pkg/context already imports pkg/agent
// for TokenBudget/HookRunner/CompactRequest).
func pruneOldToolResults(messages []llm.ChatMessage, preserveRecent int) []llm.ChatMessage {
	if preserveRecent < 0 {
		preserveRecent = 0
	}

	result := make([]llm.ChatMessage, len(messages))
	copy(result, messages)

	pruneEnd := len(result) - preserveRecent
	if pruneEnd < 0 {
		pruneEnd = 0
	}

	for i := 0; i < pruneEnd; i++ {
		if result[i].Role != "tool" {
			continue
		}
		content, ok := result[i].Content.(string)
		if !ok || len(content) <= 1000 {
			continue
		}
		result[i] = llm.ChatMessage{
			Role:       "tool",
			ToolCallID: result[i].ToolCallID,
			Content:    truncateOldToolOutput(content, 200),
		}
	}

	return result
}

// truncateOldToolOutput truncates content to maxLen characters, appending
// a truncation indicator.
func truncateOldToolOutput(content string, maxLen int) string {
	if len(content) <= maxLen {
		return content
	}
	return content[:maxLen] + "\n... [output truncated]"
}
