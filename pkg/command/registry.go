// Package command implements the slash-command registry: the fixed
// built-in command set plus custom commands loaded from
// <project>/.hoosh/commands/*.md.
package command

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// BuiltinNames is the fixed set of built-in slash commands. Custom
// commands may never shadow one of these; on a name collision the
// built-in wins and the custom definition is rejected.
var BuiltinNames = map[string]bool{
	"help":            true,
	"clear":           true,
	"status":          true,
	"tools":           true,
	"agents":          true,
	"exit":            true,
	"switch-agent":    true,
	"permissions":     true,
	"untrust":         true,
}

// Custom is a user-defined slash command loaded from a markdown file with
// YAML frontmatter.
type Custom struct {
	Name        string
	Description string
	Handoffs    []string
	Body        string // may contain the literal token $ARGUMENTS
	FilePath    string
}

// frontmatter is the YAML schema of a custom command file's header.
type frontmatter struct {
	Description string   `yaml:"description"`
	Handoffs    []string `yaml:"handoffs"`
}

// Registry holds the loaded custom commands, keyed by name.
type Registry struct {
	custom map[string]*Custom
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{custom: make(map[string]*Custom)}
}

// LoadDir loads every *.md file in dir as a custom command, skipping (and
// collecting a warning for) any file whose derived name collides with a
// built-in command.
func (r *Registry) LoadDir(dir string) (warnings []string, err error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read commands directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".md" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		cmd, err := parseFile(path)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", path, err))
			continue
		}
		if BuiltinNames[cmd.Name] {
			warnings = append(warnings, fmt.Sprintf("%s: command name %q collides with a built-in command and was ignored", path, cmd.Name))
			continue
		}
		r.custom[cmd.Name] = cmd
	}
	return warnings, nil
}

// Lookup returns the custom command named name, if any.
func (r *Registry) Lookup(name string) (*Custom, bool) {
	c, ok := r.custom[name]
	return c, ok
}

// Names returns every loaded custom command name.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.custom))
	for n := range r.custom {
		names = append(names, n)
	}
	return names
}

// parseFile reads one custom command file: YAML frontmatter delimited by
// "---" lines, followed by a markdown body.
func parseFile(path string) (*Custom, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	yamlPart, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}

	var fm frontmatter
	if len(yamlPart) > 0 {
		if err := yaml.Unmarshal(yamlPart, &fm); err != nil {
			return nil, fmt.Errorf("parsing frontmatter: %w", err)
		}
	}
	if fm.Description == "" {
		return nil, fmt.Errorf("missing required field 'description'")
	}

	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))

	return &Custom{
		Name:        name,
		Description: fm.Description,
		Handoffs:    fm.Handoffs,
		Body:        strings.TrimSpace(body),
		FilePath:    path,
	}, nil
}

// splitFrontmatter extracts YAML frontmatter and body from markdown
// content delimited by "---" lines at the start of the file.
func splitFrontmatter(data []byte) (yamlPart []byte, body string, err error) {
	content := string(data)
	if !strings.HasPrefix(content, "---") {
		return nil, content, nil
	}

	rest := content[3:]
	rest = strings.TrimPrefix(rest, "\n")
	rest = strings.TrimPrefix(rest, "\r\n")

	endIdx := strings.Index(rest, "\n---")
	if endIdx < 0 {
		return nil, content, nil
	}

	yamlContent := rest[:endIdx]
	remaining := rest[endIdx+4:]
	remaining = strings.TrimPrefix(remaining, "\n")
	remaining = strings.TrimPrefix(remaining, "\r\n")

	return []byte(yamlContent), remaining, nil
}

// Render substitutes the literal token $ARGUMENTS in the command body
// with the user-supplied argument string.
func (c *Custom) Render(args string) string {
	return strings.ReplaceAll(c.Body, "$ARGUMENTS", args)
}

// Parse splits a raw slash-command input line ("/name rest of line")
// into its command name and argument string. Returns isSlash=false if
// input does not begin with "/".
func Parse(input string) (name, args string, isSlash bool) {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return "", "", false
	}
	rest := input[1:]
	if rest == "" {
		return "", "", false
	}
	if idx := strings.IndexByte(rest, ' '); idx >= 0 {
		return rest[:idx], strings.TrimSpace(rest[idx+1:]), true
	}
	return rest, "", true
}
