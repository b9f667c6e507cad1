// Package tools maps AI coding assistants to the config files they
// read and the format those files use.
package tools

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/wgergely/repoman/internal/format"
)

// Target is one config file owned by a tool. Path is relative to the
// workspace root. For directory formats Path names the directory.
type Target struct {
	ToolID string
	Path   string
	Format format.Kind
}

// builtins lists the tools supported out of the box.
var builtins = []Target{
	{ToolID: "aider", Path: ".aider.conf.yml", Format: format.YAML},
	{ToolID: "claude", Path: "CLAUDE.md", Format: format.Markdown},
	{ToolID: "cline", Path: ".clinerules", Format: format.Markdown},
	{ToolID: "codex", Path: filepath.Join(".codex", "config.toml"), Format: format.TOML},
	{ToolID: "copilot", Path: filepath.Join(".github", "copilot-instructions.md"), Format: format.Markdown},
	{ToolID: "cursor", Path: ".cursorrules", Format: format.Markdown},
	{ToolID: "gemini", Path: "GEMINI.md", Format: format.Markdown},
	{ToolID: "opencode", Path: filepath.Join(".opencode", "rules"), Format: format.DirectoryPerRule},
	{ToolID: "vscode", Path: filepath.Join(".vscode", "settings.json"), Format: format.JSON},
	{ToolID: "windsurf", Path: ".windsurfrules", Format: format.Markdown},
	{ToolID: "zed", Path: ".rules", Format: format.Markdown},
}

// Builtin returns the builtin target for a tool id.
func Builtin(toolID string) (Target, bool) {
	for _, t := range builtins {
		if t.ToolID == toolID {
			return t, true
		}
	}
	return Target{}, false
}

// BuiltinIDs returns the ids of all builtin tools, sorted.
func BuiltinIDs() []string {
	ids := make([]string, 0, len(builtins))
	for _, t := range builtins {
		ids = append(ids, t.ToolID)
	}
	sort.Strings(ids)
	return ids
}

// DefaultTargets returns a copy of every builtin target.
func DefaultTargets() []Target {
	out := make([]Target, len(builtins))
	copy(out, builtins)
	return out
}

// Validate reports whether the target is usable.
func (t Target) Validate() error {
	if t.ToolID == "" {
		return fmt.Errorf("target missing tool id")
	}
	if t.Path == "" {
		return fmt.Errorf("target %s missing path", t.ToolID)
	}
	if !format.Valid(t.Format) {
		return fmt.Errorf("target %s: %w: %s", t.ToolID, format.ErrUnsupportedFormat, t.Format)
	}
	return nil
}
