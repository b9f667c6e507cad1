package mcptools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// DiffTool handles the repo_diff MCP tool.
type DiffTool struct {
	deps Deps
}

// NewDiffTool creates a DiffTool.
func NewDiffTool(deps Deps) *DiffTool {
	return &DiffTool{deps: deps}
}

// Definition returns the MCP tool definition for registration.
func (t *DiffTool) Definition() mcp.Tool {
	return mcp.NewTool("repo_diff",
		mcp.WithDescription(
			"Preview what repo_sync would change: a line diff per pending managed "+
				"block, structural change paths for JSON targets. Read-only.",
		),
	)
}

// Handle renders the pending-change preview.
func (t *DiffTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rules, targets, err := t.deps.loadState()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := t.deps.newEngine().Diff(rules, targets)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if out == "" {
		out = "No changes pending; all targets healthy.\n"
	}
	return mcp.NewToolResultText(out), nil
}
