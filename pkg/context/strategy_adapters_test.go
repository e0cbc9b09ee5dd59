package context

import (
	"testing"

	"github.com/hoosh-sh/hoosh/pkg/agent"
	"github.com/hoosh-sh/hoosh/pkg/llm"
)

func TestSlidingWindowStrategy_ImplementsContextStrategy(t *testing.T) {
	var _ agent.ContextStrategy = (*SlidingWindowStrategy)(nil)

	s := &SlidingWindowStrategy{Config: SlidingWindowConfig{WindowSize: 1}}
	messages := []llm.ChatMessage{msg("user", "1"), msg("assistant", "2"), msg("user", "3")}

	out, outcome := s.Apply(messages)
	if outcome != agent.StrategyApplied {
		t.Fatalf("expected StrategyApplied, got %v", outcome)
	}
	if len(out) != 1 {
		t.Errorf("expected 1 message, got %d", len(out))
	}
}

func TestToolOutputTruncationStrategy_ImplementsContextStrategy(t *testing.T) {
	var _ agent.ContextStrategy = (*ToolOutputTruncationStrategy)(nil)

	cfg := DefaultTruncationConfig()
	cfg.MaxLength = 10
	s := &ToolOutputTruncationStrategy{Config: cfg}

	messages := []llm.ChatMessage{
		toolResultMsg("call_1", "this is a very long tool result that exceeds the max length"),
		msg("user", "next"),
		toolResultMsg("call_2", "short"),
	}
	out, outcome := s.Apply(messages)
	if outcome != agent.StrategyApplied {
		t.Fatalf("expected StrategyApplied, got %v", outcome)
	}
	if ContentString(out[0]) == ContentString(messages[0]) {
		t.Error("expected the non-final tool result's content to be truncated")
	}
	if ContentString(out[2]) != "short" {
		t.Error("expected the most recent tool result to be left untouched")
	}
}
