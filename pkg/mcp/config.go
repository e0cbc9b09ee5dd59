package mcp

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/hoosh-sh/hoosh/pkg/types"
)

// LoadConfig reads a .mcp.json-style file (a flat map of server name to
// McpServerConfig) and returns the decoded servers.
func LoadConfig(path string) (map[string]types.McpServerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var servers map[string]types.McpServerConfig
	if err := json.Unmarshal(data, &servers); err != nil {
		return nil, fmt.Errorf("parsing MCP config: %w", err)
	}

	if len(servers) == 0 {
		return nil, fmt.Errorf("MCP config is empty (no servers defined)")
	}

	return servers, nil
}
