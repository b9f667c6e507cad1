package mcptools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/wgergely/repoman/internal/engine"
	"github.com/wgergely/repoman/internal/rule"
	"github.com/wgergely/repoman/internal/tools"
)

// SyncTool handles the repo_sync MCP tool. It projects the latest
// desired rule content into every configured tool config file.
type SyncTool struct {
	deps Deps
}

// NewSyncTool creates a SyncTool.
func NewSyncTool(deps Deps) *SyncTool {
	return &SyncTool{deps: deps}
}

// Definition returns the MCP tool definition for registration.
func (t *SyncTool) Definition() mcp.Tool {
	return mcp.NewTool("repo_sync",
		mcp.WithDescription(
			"Project the current rules into every configured AI tool config file, "+
				"installing missing managed blocks, updating stale ones, and removing "+
				"blocks for retired rules. Writes are atomic per file.",
		),
		mcp.WithBoolean("dry_run",
			mcp.Description("Report intended actions without touching any file."),
		),
	)
}

// Handle runs the sync pass.
func (t *SyncTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return runApply(t.deps, req, (*engine.Engine).Sync)
}

// FixTool handles the repo_fix MCP tool. Fix and sync converge on the
// same state; fix is the vocabulary for repairing reported drift.
type FixTool struct {
	deps Deps
}

// NewFixTool creates a FixTool.
func NewFixTool(deps Deps) *FixTool {
	return &FixTool{deps: deps}
}

// Definition returns the MCP tool definition for registration.
func (t *FixTool) Definition() mcp.Tool {
	return mcp.NewTool("repo_fix",
		mcp.WithDescription(
			"Repair drifted or missing managed blocks reported by repo_check, "+
				"restoring each tool config file to the desired rule content. "+
				"Broken files are reported, never rewritten.",
		),
		mcp.WithBoolean("dry_run",
			mcp.Description("Report intended repairs without touching any file."),
		),
	)
}

// Handle runs the fix pass.
func (t *FixTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return runApply(t.deps, req, (*engine.Engine).Fix)
}

type applyFunc func(*engine.Engine, []rule.Rule, []tools.Target, engine.ApplyOptions) (engine.ApplyReport, error)

func runApply(deps Deps, req mcp.CallToolRequest, apply applyFunc) (*mcp.CallToolResult, error) {
	rules, targets, err := deps.loadState()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	opts := engine.ApplyOptions{DryRun: req.GetBool("dry_run", false)}
	rep, err := apply(deps.newEngine(), rules, targets, opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(renderApplyReport(rep)), nil
}
