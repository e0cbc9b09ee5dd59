package main

import (
	"github.com/hoosh-sh/hoosh/pkg/mcp"
	"github.com/hoosh-sh/hoosh/pkg/types"
)

// loadMCPConfig reads a .mcp.json-style file (a flat map of server name to
// McpServerConfig) and returns the decoded servers, for -mcp-config.
func loadMCPConfig(path string) (map[string]types.McpServerConfig, error) {
	return mcp.LoadConfig(path)
}
