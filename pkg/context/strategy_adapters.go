package context

import (
	"github.com/hoosh-sh/hoosh/pkg/agent"
	"github.com/hoosh-sh/hoosh/pkg/llm"
)

// SlidingWindowStrategy adapts ApplySlidingWindow to agent.ContextStrategy
// so AgentConfig.ContextStrategies can hold it alongside other strategies
// without pkg/agent importing pkg/context (which already imports
// pkg/agent for TokenBudget/HookRunner).
type SlidingWindowStrategy struct {
	Config SlidingWindowConfig
}

func (s *SlidingWindowStrategy) Name() string { return "sliding_window" }

func (s *SlidingWindowStrategy) Apply(messages []llm.ChatMessage) ([]llm.ChatMessage, agent.StrategyOutcome) {
	out, outcome := ApplySlidingWindow(messages, s.Config)
	return out, agent.StrategyOutcome(outcome)
}

// ToolOutputTruncationStrategy adapts ApplyToolOutputTruncation to
// agent.ContextStrategy.
type ToolOutputTruncationStrategy struct {
	Config TruncationConfig
}

func (s *ToolOutputTruncationStrategy) Name() string { return "tool_output_truncation" }

func (s *ToolOutputTruncationStrategy) Apply(messages []llm.ChatMessage) ([]llm.ChatMessage, agent.StrategyOutcome) {
	out, outcome := ApplyToolOutputTruncation(messages, s.Config)
	return out, agent.StrategyOutcome(outcome)
}
