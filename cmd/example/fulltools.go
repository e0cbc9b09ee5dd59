package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hoosh-sh/hoosh/pkg/agent"
	"github.com/hoosh-sh/hoosh/pkg/hooks"
	"github.com/hoosh-sh/hoosh/pkg/llm"
	"github.com/hoosh-sh/hoosh/pkg/mcp"
	"github.com/hoosh-sh/hoosh/pkg/prompt"
	"github.com/hoosh-sh/hoosh/pkg/subagent"
	"github.com/hoosh-sh/hoosh/pkg/teams"
	"github.com/hoosh-sh/hoosh/pkg/tools"
	"github.com/hoosh-sh/hoosh/pkg/types"
)

// fullToolSet bundles the registry and the live collaborators -full-tools
// constructs around it, so main can tear them down cleanly on exit.
type fullToolSet struct {
	Registry   *tools.Registry
	HookRunner *hooks.Runner
	MCPClient  *mcp.Client
	TeamMgr    *teams.TeamManager
}

func (f *fullToolSet) Close() {
	if f.MCPClient != nil {
		f.MCPClient.Close()
	}
	if f.TeamMgr != nil {
		f.TeamMgr.Cleanup(context.Background())
	}
}

// buildFullToolRegistry wires every Hoosh collaborator package into a single
// registry: hook lifecycle logging (pkg/hooks), MCP server tool discovery
// (pkg/mcp), subagent spawning (pkg/subagent), and agent team coordination
// (pkg/teams, gated by HOOSH_EXPERIMENTAL_AGENT_TEAMS like the slim registry).
func buildFullToolRegistry(ctx context.Context, cwd string, client llm.Client, model string, mcpConfigPath string) (*fullToolSet, error) {
	tm := tools.NewTaskManager()
	registry := tools.NewRegistry(
		tools.WithAllowed("Read", "Glob", "Grep", "ListMcpResources", "ReadMcpResource"),
	)

	registry.Register(&tools.BashTool{CWD: cwd, TaskManager: tm})
	registry.Register(&tools.FileReadTool{})
	registry.Register(&tools.FileWriteTool{})
	registry.Register(&tools.FileEditTool{})
	registry.Register(&tools.GlobTool{CWD: cwd})
	registry.Register(&tools.GrepTool{CWD: cwd})

	hookRunner := hooks.NewRunner(hooks.RunnerConfig{
		CWD: cwd,
		Hooks: map[types.HookEvent][]hooks.CallbackMatcher{
			types.HookEventPreToolUse: {{Hooks: []hooks.HookCallback{logToolUseHook}}},
		},
	})

	var mcpClient *mcp.Client
	if mcpConfigPath != "" {
		servers, err := mcp.LoadConfig(mcpConfigPath)
		if err != nil {
			return nil, fmt.Errorf("load MCP config: %w", err)
		}
		mcpClient = mcp.NewClient(registry)
		for name, cfg := range servers {
			if err := mcpClient.Connect(ctx, name, cfg); err != nil {
				fmt.Fprintf(os.Stderr, "warning: MCP server %q failed to connect: %v\n", name, err)
			}
		}
	} else {
		mcpClient = mcp.NewClient(registry)
	}
	registry.Register(&tools.ListMcpResourcesTool{Client: mcpClient})
	registry.Register(&tools.ReadMcpResourceTool{Client: mcpClient})

	subagentMgr := subagent.NewManager(subagent.ManagerOpts{
		HookRunner:      hookRunner,
		LLMClient:       client,
		PromptAssembler: &prompt.Assembler{},
		CostTracker:     llm.NewCostTracker(),
		ParentRegistry:  registry,
		ParentConfig: &agent.AgentConfig{
			Model: model,
			CWD:   cwd,
		},
	}, nil)
	registry.Register(&tools.AgentTool{Spawner: subagentMgr})

	var teamMgr *teams.TeamManager
	if teams.IsEnabled() {
		baseDir := os.Getenv("HOOSH_BASE_DIR")
		if baseDir == "" {
			baseDir = cwd
		}
		teamMgr = teams.NewTeamManager(hookRunner, baseDir)
		adapter := &teams.TeamManagerAdapter{
			TM: teamMgr,
			SpawnFunc: func(ctx context.Context, name, agentType, prompt string) (tools.TeamMemberInfo, error) {
				member, err := teamMgr.SpawnTeammate(ctx, name, agentType, prompt)
				if err != nil {
					return tools.TeamMemberInfo{}, err
				}
				return tools.TeamMemberInfo{Name: member.Name, AgentID: member.AgentID}, nil
			},
		}
		registry.Register(&tools.TeamCreateTool{Coordinator: adapter})
		registry.Register(&tools.SendMessageTool{Coordinator: adapter})
		registry.Register(&tools.TeamDeleteTool{Coordinator: adapter})
	}

	return &fullToolSet{Registry: registry, HookRunner: hookRunner, MCPClient: mcpClient, TeamMgr: teamMgr}, nil
}

// logToolUseHook prints each tool invocation to stderr as it fires, giving
// -full-tools runs the same lifecycle visibility the hooks package provides
// to scripted shell-command hooks.
func logToolUseHook(input any, toolUseID string, _ context.Context) (hooks.HookJSONOutput, error) {
	if pre, ok := input.(*hooks.PreToolUseHookInput); ok {
		fmt.Fprintf(os.Stderr, "[hook] PreToolUse %s (%s)\n", pre.ToolName, toolUseID)
	}
	return hooks.HookJSONOutput{Sync: &hooks.SyncHookJSONOutput{}}, nil
}
