package context

import (
	"encoding/json"

	"github.com/hoosh-sh/hoosh/pkg/llm"
)

// TruncationConfig configures the tool output truncation strategy.
type TruncationConfig struct {
	MaxLength           int
	ShowTruncationNotice bool
	SmartTruncate        bool
	HeadLength            int
	TailLength            int
}

// DefaultTruncationConfig mirrors the teacher/source's default settings.
func DefaultTruncationConfig() TruncationConfig {
	return TruncationConfig{
		MaxLength:            4000,
		ShowTruncationNotice: true,
		SmartTruncate:        false,
		HeadLength:           3000,
		TailLength:           1000,
	}
}

// ApplyToolOutputTruncation shortens oversized tool-result content and
// oversized assistant tool-call arguments, leaving the most recent tool
// result message untouched so the model always sees its latest
// observation in full.
//
// For assistant tool-call arguments, only the "content" and "command"
// fields inside the argument JSON are truncated — the rest of the JSON
// envelope (e.g. "path", "file_path") is preserved verbatim.
func ApplyToolOutputTruncation(messages []llm.ChatMessage, cfg TruncationConfig) ([]llm.ChatMessage, StrategyOutcome) {
	if len(messages) < 2 {
		return messages, OutcomeNoChange
	}

	lastToolResultIdx := -1
	for i := len(messages) - 1; i >= 0; i-- {
		if isToolResult(messages[i]) {
			lastToolResultIdx = i
			break
		}
	}

	out := make([]llm.ChatMessage, len(messages))
	copy(out, messages)
	changed := false

	for i := range out {
		if i == lastToolResultIdx {
			continue
		}

		if isToolResult(out[i]) {
			content := ContentString(out[i])
			if len(content) > cfg.MaxLength {
				out[i].Content = truncateText(content, cfg)
				changed = true
			}
		}

		if isAssistantWithTools(out[i]) {
			newCalls := make([]llm.ToolCall, len(out[i].ToolCalls))
			copy(newCalls, out[i].ToolCalls)
			for j, tc := range newCalls {
				if truncated, ok := truncateArguments(tc.Function.Arguments, cfg); ok {
					newCalls[j].Function.Arguments = truncated
					changed = true
				}
			}
			out[i].ToolCalls = newCalls
		}
	}

	if !changed {
		return messages, OutcomeNoChange
	}
	return out, OutcomeApplied
}

func isToolResult(m llm.ChatMessage) bool {
	return m.Role == "tool" && m.ToolCallID != ""
}

func isAssistantWithTools(m llm.ChatMessage) bool {
	return m.Role == "assistant" && len(m.ToolCalls) > 0
}

func truncateText(content string, cfg TruncationConfig) string {
	if len(content) <= cfg.MaxLength {
		return content
	}
	if cfg.SmartTruncate {
		return smartTruncate(content, cfg)
	}
	return simpleTruncate(content, cfg)
}

func simpleTruncate(content string, cfg TruncationConfig) string {
	cut := cfg.MaxLength
	if cut > len(content) {
		cut = len(content)
	}
	truncated := content[:cut]
	if !cfg.ShowTruncationNotice {
		return truncated
	}
	removed := len(content) - len(truncated)
	return truncated + notice(removed)
}

func smartTruncate(content string, cfg TruncationConfig) string {
	totalKeep := cfg.HeadLength + cfg.TailLength
	if totalKeep >= len(content) {
		return content
	}

	headEnd := cfg.HeadLength
	if headEnd > len(content) {
		headEnd = len(content)
	}
	head := content[:headEnd]

	tailStart := len(content) - cfg.TailLength
	if tailStart < 0 {
		tailStart = 0
	}
	tail := content[tailStart:]

	if !cfg.ShowTruncationNotice {
		return head + tail
	}
	removed := len(content) - totalKeep
	return head + notice(removed) + "\n\n" + tail
}

func notice(removedChars int) string {
	return "\n\n[... truncated " + itoa(removedChars) + " characters ...]"
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// truncateArguments parses a tool call's JSON argument string and, if its
// "content" or "command" fields exceed MaxLength, truncates those fields
// in place and re-serializes. Returns ok=false if no truncation was
// needed or the arguments could not be parsed as a JSON object.
func truncateArguments(argsJSON string, cfg TruncationConfig) (string, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(argsJSON), &obj); err != nil {
		return argsJSON, false
	}

	modified := false
	for _, field := range []string{"content", "command"} {
		raw, ok := obj[field]
		if !ok {
			continue
		}
		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			continue
		}
		if len(value) <= cfg.MaxLength {
			continue
		}
		truncated := truncateText(value, cfg)
		encoded, err := json.Marshal(truncated)
		if err != nil {
			continue
		}
		obj[field] = encoded
		modified = true
	}

	if !modified {
		return argsJSON, false
	}

	out, err := json.Marshal(obj)
	if err != nil {
		return argsJSON, false
	}
	return string(out), true
}
