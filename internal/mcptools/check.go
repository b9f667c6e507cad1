package mcptools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// CheckTool handles the repo_check MCP tool. Read-only: it classifies
// every rule/tool projection without modifying files or the ledger.
type CheckTool struct {
	deps Deps
}

// NewCheckTool creates a CheckTool.
func NewCheckTool(deps Deps) *CheckTool {
	return &CheckTool{deps: deps}
}

// Definition returns the MCP tool definition for registration.
func (t *CheckTool) Definition() mcp.Tool {
	return mcp.NewTool("repo_check",
		mcp.WithDescription(
			"Classify every rule projection into the configured AI tool config files "+
				"as healthy, missing, drifted, or broken. Read-only: it modifies "+
				"nothing. Use repo_sync or repo_fix to apply repairs.",
		),
	)
}

// Handle runs the check pass.
func (t *CheckTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rules, targets, err := t.deps.loadState()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rep, err := t.deps.newEngine().Check(rules, targets)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(renderCheckReport(rep)), nil
}
