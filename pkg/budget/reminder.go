package budget

import (
	"fmt"
	"strings"
)

// Outcome is what a reminder strategy wants the turn loop to do next.
type Outcome int

const (
	// Continue means no action was needed, or a reminder was injected and
	// the loop should proceed to the next backend call as usual.
	Continue Outcome = iota
	// ExitTurn means the strategy has decided the turn must end now.
	ExitTurn
)

// Result is the return value of a Strategy's Apply call.
type Result struct {
	Outcome Outcome

	// SystemMessage, if non-empty, should be appended to the conversation
	// as a system-role reminder before the loop continues.
	SystemMessage string

	// InjectUserMessage, set only when Outcome == ExitTurn, is a
	// synthetic user message asking the model for a final summary before
	// the turn actually ends.
	InjectUserMessage string

	// ErrorMessage, set only when Outcome == ExitTurn, tags why the turn
	// ended (e.g. "Time budget exhausted").
	ErrorMessage string

	// AppendToLastUserMessage, if non-empty, is appended to the most
	// recent user-role message instead of being injected as a separate
	// system message (used by SkillInventoryReminderStrategy).
	AppendToLastUserMessage string
}

// Context carries the information a Strategy needs to decide what to do
// this step.
type Context struct {
	AgentStep    int
	TodoChanged  bool
	TodoEmpty    bool
	ActiveSkill  string
}

// Strategy decides, once per turn-loop step, whether a reminder should be
// injected or the turn should end.
type Strategy interface {
	Name() string
	Apply(ctx Context) Result
}

// BudgetReminderStrategy watches an ExecutionBudget and warns the model
// to wrap up once pressure crosses the wrap-up threshold, or ends the
// turn outright once the budget is fully exhausted.
type BudgetReminderStrategy struct {
	Budget   *ExecutionBudget
	MaxSteps int
}

func (s *BudgetReminderStrategy) Name() string { return "budget_reminder" }

func (s *BudgetReminderStrategy) Apply(ctx Context) Result {
	if s.Budget.RemainingSeconds() == 0 {
		return Result{
			Outcome:           ExitTurn,
			InjectUserMessage: "Time budget has been exhausted. Please provide a brief summary of what you've accomplished so far.",
			ErrorMessage:      "Time budget exhausted",
		}
	}

	if s.Budget.ShouldWrapUp() {
		msg := fmt.Sprintf(
			"BUDGET ALERT: You have approximately %d seconds and %d steps remaining. "+
				"Please prioritize wrapping up your work and providing a final answer.",
			s.Budget.RemainingSeconds(), s.Budget.RemainingSteps())
		return Result{Outcome: Continue, SystemMessage: msg}
	}

	return Result{Outcome: Continue}
}

// PeriodicCoreInstructionsStrategy re-injects a condensed reminder of the
// system prompt's core instructions every N steps, so that instructions
// near the start of a long conversation do not get lost to the model's
// recency bias.
type PeriodicCoreInstructionsStrategy struct {
	EveryNSteps int
	Reminder    string
}

func (s *PeriodicCoreInstructionsStrategy) Name() string { return "periodic_core_instructions" }

func (s *PeriodicCoreInstructionsStrategy) Apply(ctx Context) Result {
	if s.EveryNSteps <= 0 || s.Reminder == "" {
		return Result{Outcome: Continue}
	}
	if ctx.AgentStep > 0 && ctx.AgentStep%s.EveryNSteps == 0 {
		return Result{Outcome: Continue, SystemMessage: s.Reminder}
	}
	return Result{Outcome: Continue}
}

// SkillReminderStrategy surfaces the name of the active skill, if any, so
// the model keeps following its handoff contract instead of improvising.
type SkillReminderStrategy struct{}

func (s *SkillReminderStrategy) Name() string { return "skill_reminder" }

func (s *SkillReminderStrategy) Apply(ctx Context) Result {
	if ctx.ActiveSkill == "" {
		return Result{Outcome: Continue}
	}
	return Result{Outcome: Continue, SystemMessage: fmt.Sprintf("Active skill: %s", ctx.ActiveSkill)}
}

// SkillSummary is the minimal description of one discoverable skill shown
// in the skill inventory reminder.
type SkillSummary struct {
	Name        string
	Description string
}

// SkillInventoryProvider supplies the current set of discoverable skills,
// decoupling this package from the skill registry that builds the list
// (pkg/prompt.SkillRegistry implements this).
type SkillInventoryProvider interface {
	SkillInventory() []SkillSummary
}

// SkillInventoryReminderStrategy appends the inventory of discoverable
// skills to the most recent user message, rather than injecting a system
// message, so the model sees it as part of what the user just asked.
// A no-op when the provider is nil or reports no skills.
type SkillInventoryReminderStrategy struct {
	Provider SkillInventoryProvider
}

func (s *SkillInventoryReminderStrategy) Name() string { return "skill_inventory_reminder" }

func (s *SkillInventoryReminderStrategy) Apply(ctx Context) Result {
	if s.Provider == nil {
		return Result{Outcome: Continue}
	}
	skills := s.Provider.SkillInventory()
	if len(skills) == 0 {
		return Result{Outcome: Continue}
	}

	var b strings.Builder
	b.WriteString("Available skills:\n")
	for _, sk := range skills {
		if sk.Description != "" {
			fmt.Fprintf(&b, "- %s: %s\n", sk.Name, sk.Description)
		} else {
			fmt.Fprintf(&b, "- %s\n", sk.Name)
		}
	}
	return Result{Outcome: Continue, AppendToLastUserMessage: b.String()}
}

// TodoReminderStrategy reminds the model about its todo list state when
// it has changed or gone empty, mirroring the teacher's
// todo_list_changed/todo_list_empty reminders.
type TodoReminderStrategy struct{}

func (s *TodoReminderStrategy) Name() string { return "todo_reminder" }

func (s *TodoReminderStrategy) Apply(ctx Context) Result {
	switch {
	case ctx.TodoEmpty:
		return Result{Outcome: Continue, SystemMessage: "Your todo list is empty. If the task has remaining steps, track them with TodoWrite."}
	case ctx.TodoChanged:
		return Result{Outcome: Continue, SystemMessage: "Your todo list was updated."}
	default:
		return Result{Outcome: Continue}
	}
}

// Chain runs a set of strategies in order and returns the first ExitTurn
// result, or a Continue result aggregating every SystemMessage and
// AppendToLastUserMessage fragment produced along the way.
func Chain(ctx Context, strategies []Strategy) Result {
	var messages []string
	var userAppends []string
	for _, s := range strategies {
		r := s.Apply(ctx)
		if r.Outcome == ExitTurn {
			return r
		}
		if r.SystemMessage != "" {
			messages = append(messages, r.SystemMessage)
		}
		if r.AppendToLastUserMessage != "" {
			userAppends = append(userAppends, r.AppendToLastUserMessage)
		}
	}
	return Result{
		Outcome:                 Continue,
		SystemMessage:           strings.Join(messages, "\n\n"),
		AppendToLastUserMessage: strings.Join(userAppends, "\n\n"),
	}
}
