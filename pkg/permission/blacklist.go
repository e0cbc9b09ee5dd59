package permission

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// blacklistPatterns are glob-style command patterns that make ClassifyBash
// return ClassifyNeedsReview before any per-segment analysis. These describe
// commands with no legitimate place in an assisted coding session. Checker
// does not consult them, so an allow rule or allowed-tools entry for Bash
// still permits a matching command.
var blacklistPatterns = []string{
	"rm -rf /*",
	"rm -rf ~*",
	"sudo rm -rf*",
	"dd if=*of=/dev/*",
	"mkfs*",
	"*> /dev/sd*",
	":(){ :|:& };:",
	"chmod -R 777 /*",
	"curl * | sudo*",
}

// MatchesBlacklist reports whether command matches one of the hard-coded
// deny patterns, regardless of any permission rule state.
func MatchesBlacklist(command string) bool {
	normalized := strings.Join(strings.Fields(command), " ")
	for _, pattern := range blacklistPatterns {
		if ok, err := doublestar.Match(pattern, normalized); err == nil && ok {
			return true
		}
		if strings.Contains(normalized, strings.TrimSuffix(strings.TrimPrefix(pattern, "*"), "*")) && !strings.ContainsAny(pattern, "*?[{") {
			return true
		}
	}
	return false
}
