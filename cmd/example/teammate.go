package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/hoosh-sh/hoosh/pkg/agent"
	"github.com/hoosh-sh/hoosh/pkg/llm"
	"github.com/hoosh-sh/hoosh/pkg/prompt"
	"github.com/hoosh-sh/hoosh/pkg/teams"
	"github.com/hoosh-sh/hoosh/pkg/types"
)

// runTeammate is the entrypoint for a process spawned by teams.TeamManager's
// self re-invocation (see pkg/teams/spawn.go): it reads the team/agent
// identity the lead passed via flags and environment variables, then uses
// teams.TeammateRuntime to watch its mailbox and run one agentic turn per
// message until a shutdown_request arrives or the process is interrupted.
func runTeammate(ctx context.Context, teamName, agentName, agentType string, rc resolvedConfig) error {
	baseDir := envOr("HOOSH_BASE_DIR", ".")
	agentID := envOr("HOOSH_AGENT_ID", agentName)

	rt := teams.NewTeammateRuntime(teamName, agentName, agentType, baseDir)
	if err := rt.LoadConfig(); err != nil {
		return fmt.Errorf("load team config: %w", err)
	}

	msgs, err := rt.WatchMessages(ctx)
	if err != nil {
		return fmt.Errorf("watch mailbox: %w", err)
	}

	fmt.Printf("[teammate %s/%s] watching mailbox, agent_id=%s\n", teamName, agentName, agentID)
	rt.NotifyIdle()

	client := llm.NewClient(rc.ClientConfig)
	cwd, _ := os.Getwd()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			if teams.IsShutdownRequest(msg) {
				rt.RespondToShutdown(true, "")
				fmt.Printf("[teammate %s] shutdown requested by %s\n", agentName, msg.From)
				return nil
			}

			lastText := runTeammateTurn(ctx, client, rc.Model, cwd, agentType, msg.Content)

			if lastText != "" {
				rt.SendToLead(lastText, "message")
			} else {
				rt.NotifyIdle()
			}

			claimUnblockedTask(rt)
		}
	}
}

// envOr returns the named environment variable, or fallback if it is unset
// or empty.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// extractText concatenates the text blocks of an assistant message, the
// reply a teammate sends back to its lead.
func extractText(m types.AssistantMessage) string {
	var sb strings.Builder
	for _, block := range m.Message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String()
}

// claimUnblockedTask looks for a pending task whose dependencies are all
// satisfied and claims it for this teammate, so a lead delegating work via
// the shared task list sees the claim without an extra mailbox round trip.
func claimUnblockedTask(rt *teams.TeammateRuntime) {
	tasks, err := rt.GetUnblockedTasks()
	if err != nil || len(tasks) == 0 {
		return
	}
	for _, t := range tasks {
		if t.ClaimedBy != "" {
			continue
		}
		if err := rt.ClaimTask(t.ID); err == nil {
			rt.SendToLead(fmt.Sprintf("Claimed task %s: %s", t.ID, t.Subject), "message")
			return
		}
	}
}

// runTeammateTurn runs one agentic loop turn over a teammate's slim tool
// registry and returns the final assistant text.
func runTeammateTurn(ctx context.Context, client llm.Client, model, cwd, agentType, userPrompt string) string {
	config := agent.DefaultConfig()
	config.LLMClient = client
	config.Model = model
	config.MaxTurns = 20
	config.CWD = cwd
	config.OS = runtime.GOOS
	config.CurrentDate = time.Now().Format("2006-01-02")
	config.AgentType = agentType
	config.ToolRegistry = buildToolRegistry(cwd)
	config.Permissions = &agent.AllowAllChecker{}
	config.Hooks = &agent.NoOpHookRunner{}
	config.Compactor = &agent.NoOpCompactor{}
	config.Prompter = &prompt.Assembler{}

	query := agent.RunLoop(ctx, userPrompt, config)
	var lastText string
	for m := range query.Messages() {
		if am, ok := m.(types.AssistantMessage); ok {
			lastText = extractText(am)
		}
	}
	query.Wait()
	return lastText
}
