package permission

import (
	"os"
	"path/filepath"
	"strings"
)

// Classification is the outcome of classifying a shell command's risk.
type Classification int

const (
	ClassifySafe Classification = iota
	ClassifyNeedsReview
)

// BashVerdict carries a classification plus the reason a human can read in
// an approval prompt.
type BashVerdict struct {
	Classification Classification
	Reason         string
}

// ClassifyBash inspects a shell command line and decides whether it can
// auto-approve (Safe) or must go through the permission prompt
// (NeedsReview). workDir anchors relative-path reasoning for commands like
// rm.
func ClassifyBash(command string, workDir string) BashVerdict {
	command = strings.TrimSpace(command)
	if command == "" {
		return BashVerdict{ClassifyNeedsReview, "empty command"}
	}

	if MatchesBlacklist(command) {
		return BashVerdict{ClassifyNeedsReview, "matches bash blacklist"}
	}

	segments := splitCompound(command)

	worst := ClassifySafe
	reason := ""
	for i, seg := range segments {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		if i > 0 && pipesToShellInterpreter(seg) {
			return BashVerdict{ClassifyNeedsReview, "pipes into a shell interpreter: " + seg}
		}
		if looksLikeHeredocOrSubshell(seg) {
			return BashVerdict{ClassifyNeedsReview, "contains heredoc or subshell: " + seg}
		}

		v := classifySegment(seg, workDir)
		if v.Classification > worst {
			worst = v.Classification
			reason = v.Reason
		}
	}

	return BashVerdict{worst, reason}
}

// splitCompound splits a command line on &&, ||, ;, and | while respecting
// single and double quotes, so that quoted operators inside a string
// argument are not mistaken for command separators.
func splitCompound(command string) []string {
	var segments []string
	var cur strings.Builder
	inSingle, inDouble := false, false

	runes := []rune(command)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]

		switch {
		case ch == '\'' && !inDouble:
			inSingle = !inSingle
			cur.WriteRune(ch)
			continue
		case ch == '"' && !inSingle:
			inDouble = !inDouble
			cur.WriteRune(ch)
			continue
		}

		if inSingle || inDouble {
			cur.WriteRune(ch)
			continue
		}

		switch {
		case ch == '&' && i+1 < len(runes) && runes[i+1] == '&':
			segments = append(segments, cur.String())
			cur.Reset()
			i++
			continue
		case ch == '|' && i+1 < len(runes) && runes[i+1] == '|':
			segments = append(segments, cur.String())
			cur.Reset()
			i++
			continue
		case ch == '|' || ch == ';':
			segments = append(segments, cur.String())
			cur.Reset()
			continue
		}

		cur.WriteRune(ch)
	}
	if cur.Len() > 0 {
		segments = append(segments, cur.String())
	}
	return segments
}

func looksLikeHeredocOrSubshell(segment string) bool {
	return strings.Contains(segment, "<<") ||
		strings.Contains(segment, "$(") ||
		strings.Contains(segment, "`")
}

func pipesToShellInterpreter(segment string) bool {
	switch baseCommand(segment) {
	case "bash", "sh", "zsh", "fish", "python", "python3", "perl", "ruby", "node":
		return true
	}
	return false
}

// baseCommand extracts the first command word of a segment, skipping
// leading environment-variable assignments (FOO=bar cmd ...) and an `env`
// prefix, and stripping any directory component.
func baseCommand(segment string) string {
	words := strings.Fields(segment)
	words = skipAssignments(words)
	if len(words) == 0 {
		return ""
	}
	if words[0] == "env" {
		for _, w := range words[1:] {
			if !strings.Contains(w, "=") {
				return filepath.Base(w)
			}
		}
		return ""
	}
	return filepath.Base(words[0])
}

func commandArgs(segment string) []string {
	words := strings.Fields(segment)
	words = skipAssignments(words)
	if len(words) == 0 {
		return nil
	}
	if words[0] == "env" {
		for i, w := range words[1:] {
			if !strings.Contains(w, "=") {
				return words[i+2:]
			}
		}
		return nil
	}
	return words[1:]
}

func skipAssignments(words []string) []string {
	for i, w := range words {
		looksLikeAssignment := strings.Contains(w, "=") &&
			!strings.HasPrefix(w, "-") && !strings.HasPrefix(w, "/") && !strings.HasPrefix(w, ".")
		if !looksLikeAssignment {
			return words[i:]
		}
	}
	return nil
}

func classifySegment(segment, workDir string) BashVerdict {
	cmd := baseCommand(segment)
	if cmd == "" {
		return BashVerdict{ClassifyNeedsReview, "could not determine base command"}
	}
	args := commandArgs(segment)

	if alwaysReviewCommands[cmd] {
		return BashVerdict{ClassifyNeedsReview, "sensitive command: " + cmd}
	}
	if alwaysSafeCommands[cmd] {
		return BashVerdict{ClassifySafe, "safe command: " + cmd}
	}

	switch cmd {
	case "git":
		return classifyGit(args)
	case "rm":
		return classifyRm(args, workDir)
	case "chmod", "chown":
		return BashVerdict{ClassifyNeedsReview, cmd + " changes file permissions/ownership"}
	case "kubectl", "gcloud", "aws", "gh", "bq", "docker":
		return classifyCloudCLI(cmd, args)
	}

	// Unknown command: conservative default is to require review.
	return BashVerdict{ClassifyNeedsReview, "unrecognized command: " + cmd}
}

func classifyGit(args []string) BashVerdict {
	if len(args) == 0 {
		return BashVerdict{ClassifySafe, "git (no subcommand)"}
	}
	safe := map[string]bool{
		"status": true, "diff": true, "log": true, "show": true, "branch": true,
		"fetch": true, "stash": true, "rev-parse": true, "ls-files": true,
		"remote": true, "reflog": true, "blame": true, "shortlog": true,
		"describe": true, "config": true,
	}
	sub := args[0]
	if safe[sub] {
		return BashVerdict{ClassifySafe, "git " + sub}
	}
	if sub == "push" {
		for _, a := range args[1:] {
			if a == "--force" || a == "-f" || a == "--force-with-lease" {
				return BashVerdict{ClassifyNeedsReview, "git push --force"}
			}
		}
		return BashVerdict{ClassifyNeedsReview, "git push"}
	}
	return BashVerdict{ClassifyNeedsReview, "git " + sub}
}

func classifyRm(args []string, workDir string) BashVerdict {
	recursive := false
	var targets []string
	for _, a := range args {
		if strings.HasPrefix(a, "-") {
			if strings.ContainsAny(a, "rR") {
				recursive = true
			}
			continue
		}
		targets = append(targets, a)
	}
	if len(targets) == 0 {
		return BashVerdict{ClassifySafe, "rm with no targets"}
	}
	for _, t := range targets {
		abs := t
		if !filepath.IsAbs(t) {
			abs = filepath.Join(workDir, t)
		}
		abs = filepath.Clean(abs)
		if abs == "/" || abs == workDir || isSystemPath(abs) {
			return BashVerdict{ClassifyNeedsReview, "rm targets a protected path: " + abs}
		}
	}
	if recursive {
		return BashVerdict{ClassifyNeedsReview, "recursive rm"}
	}
	return BashVerdict{ClassifySafe, "rm"}
}

func classifyCloudCLI(cmd string, args []string) BashVerdict {
	mutating := map[string]bool{
		"delete": true, "create": true, "apply": true, "destroy": true,
		"rm": true, "update": true, "patch": true, "scale": true, "run": true,
	}
	for _, a := range args {
		if mutating[a] {
			return BashVerdict{ClassifyNeedsReview, cmd + " " + a}
		}
	}
	return BashVerdict{ClassifySafe, cmd + " (read-only)"}
}

func isSystemPath(path string) bool {
	path = filepath.Clean(path)
	prefixes := []string{"/etc", "/usr", "/var", "/sys", "/proc", "/boot", "/sbin"}
	for _, p := range prefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	home := os.Getenv("HOME")
	if home == "" {
		return false
	}
	for _, sensitive := range []string{".ssh", ".gnupg", ".aws", ".bashrc", ".zshrc", ".profile"} {
		if path == filepath.Join(home, sensitive) || strings.HasPrefix(path, filepath.Join(home, sensitive)+"/") {
			return true
		}
	}
	return false
}

var alwaysSafeCommands = map[string]bool{
	"cat": true, "head": true, "tail": true, "less": true, "more": true,
	"file": true, "stat": true, "wc": true, "ls": true, "tree": true,
	"du": true, "df": true, "grep": true, "rg": true, "awk": true,
	"cut": true, "sort": true, "uniq": true, "tr": true, "diff": true,
	"jq": true, "whoami": true, "id": true, "hostname": true, "uname": true,
	"date": true, "which": true, "env": true, "echo": true, "printf": true,
	"pwd": true, "realpath": true, "dirname": true, "basename": true,
	"true": true, "false": true, "test": true, "ping": true, "ps": true,
	"go": true, "npm": true, "cargo": true, "pytest": true,
}

var alwaysReviewCommands = map[string]bool{
	"sudo": true, "eval": true, "dd": true, "systemctl": true, "launchctl": true,
}
