package agent

import (
	"strings"

	"github.com/hoosh-sh/hoosh/pkg/command"
)

// builtinCommands are CLI commands that should NOT be intercepted as
// skills. Kept as an alias of command.BuiltinNames so the two command
// lists (the skill dispatcher here, the full registry in pkg/command)
// never drift apart.
var builtinCommands = command.BuiltinNames

// ParseSlashCommand detects if input is a slash command and extracts the skill name and args.
// Returns skillName, args, and whether the input is a slash command.
// Built-in CLI commands (e.g., /help, /clear) are excluded and return isSlash=false.
func ParseSlashCommand(input string, knownCommands []string) (skillName, args string, isSlash bool) {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return "", "", false
	}

	// Strip the leading "/"
	rest := input[1:]
	if rest == "" {
		return "", "", false
	}

	// Split on first space
	var name, remainder string
	if idx := strings.IndexByte(rest, ' '); idx >= 0 {
		name = rest[:idx]
		remainder = strings.TrimSpace(rest[idx+1:])
	} else {
		name = rest
	}

	// Exclude built-in CLI commands
	if builtinCommands[name] {
		return "", "", false
	}

	return name, remainder, true
}
