package agent

import "github.com/hoosh-sh/hoosh/pkg/llm"

// discardTruncatedToolBlocks removes tool_use content blocks whose arguments
// could not be parsed as JSON — the signature a stream cut off mid-argument
// by stop_reason=max_tokens leaves behind (see Stream.AccumulateWithCallback's
// "_raw" fallback). Keeping a half-written tool call in the conversation
// would send the model (and any downstream tool executor) unparseable input
// on the next turn, so it is dropped rather than retried.
func discardTruncatedToolBlocks(resp *llm.CompletionResponse) {
	kept := resp.Content[:0]
	for _, block := range resp.Content {
		if block.Type == "tool_use" {
			if _, truncated := block.Input["_raw"]; truncated {
				continue
			}
		}
		kept = append(kept, block)
	}
	resp.Content = kept
}
