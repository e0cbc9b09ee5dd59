package permission

import (
	"context"

	"github.com/hoosh-sh/hoosh/pkg/agent"
	"github.com/hoosh-sh/hoosh/pkg/events"
	"github.com/hoosh-sh/hoosh/pkg/types"
)

// Pauser is implemented by anything that should stop counting against a
// turn's execution budget while a tool waits on an interactive approval
// (e.g. budget.ExecutionBudget). Optional — EventPrompter works without one.
type Pauser interface {
	Pause()
	Resume()
}

// EventPrompter implements UserPrompter by publishing a
// KindToolPermissionRequest event on a Bus and blocking on the matching
// ApprovalRegistry channel until a frontend resolves it. This is the
// interactive-CLI counterpart to StubPrompter's headless denial.
type EventPrompter struct {
	Bus      *events.Bus
	Registry *events.ApprovalRegistry
	Budget   Pauser // nil = no budget pausing
}

// PromptForPermission publishes the request and waits for a decision. It
// uses context.Background, so the wait ends only when the request is resolved.
func (p *EventPrompter) PromptForPermission(toolName string, input map[string]any, suggestions []types.PermissionUpdate) (agent.PermissionResult, error) {
	return p.PromptForPermissionContext(context.Background(), toolName, input, suggestions)
}

// PromptForPermissionContext is the context-aware variant: it also returns
// (deny, interrupted) when ctx is cancelled, e.g. because the turn was interrupted.
func (p *EventPrompter) PromptForPermissionContext(ctx context.Context, toolName string, input map[string]any, suggestions []types.PermissionUpdate) (agent.PermissionResult, error) {
	requestID, ch := p.Registry.Register()

	suggested := ""
	if len(suggestions) > 0 && suggestions[0].Rule != nil {
		suggested = suggestions[0].Rule.ToolName
	}

	if p.Budget != nil {
		p.Budget.Pause()
		defer p.Budget.Resume()
	}

	p.Bus.Publish(events.KindToolPermissionRequest, events.ToolPermissionRequest{
		RequestID: requestID,
		ToolName:  toolName,
		Input:     input,
		Suggested: suggested,
	})

	select {
	case decision := <-ch:
		if !decision.Approved {
			return agent.PermissionResult{Behavior: "deny", Message: "denied by user"}, nil
		}
		result := agent.PermissionResult{Behavior: "allow"}
		if decision.RememberAs != "" {
			result.UpdatedPermissions = []types.PermissionUpdate{{
				Type: "addRules",
				Rule: &types.PermissionRuleValue{ToolName: toolName, RuleContent: decision.RememberAs},
			}}
		}
		return result, nil
	case <-ctx.Done():
		p.Registry.Resolve(requestID, events.ApprovalDecision{Approved: false})
		return agent.PermissionResult{Behavior: "deny", Message: "interrupted", Interrupt: true}, nil
	}
}
