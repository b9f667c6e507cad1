// Package server wires the MCP components and creates the server
// instance. This is the composition root: it resolves concrete
// dependencies and injects them into the tools. No business logic
// lives here, only wiring.
package server

import (
	"log"

	"github.com/mark3labs/mcp-go/server"

	"github.com/wgergely/repoman/internal/history"
	"github.com/wgergely/repoman/internal/mcptools"
	"github.com/wgergely/repoman/internal/workspace"
)

// Version is set at build time via ldflags.
var Version = "dev"

func noop() {}

// New creates the MCP server with every tool registered, rooted at
// the workspace containing root.
//
// The returned cleanup function closes the history database and must
// be called on shutdown (typically via defer). It is always non-nil
// and safe to call even if history init failed.
func New(root string) (*server.MCPServer, func(), error) {
	s := server.NewMCPServer(
		"repoman",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	deps := mcptools.Deps{Root: root}

	// History is an independent subsystem: if it fails to open, the
	// reconciliation tools keep working without an apply log.
	cleanup := noop
	hist, histErr := history.Open(workspace.HistoryPath(root))
	if histErr != nil {
		log.Printf("WARNING: apply history disabled: %v", histErr)
	} else {
		deps.Recorder = hist
		cleanup = func() {
			if err := hist.Close(); err != nil {
				log.Printf("WARNING: history store close: %v", err)
			}
		}
	}

	checkTool := mcptools.NewCheckTool(deps)
	s.AddTool(checkTool.Definition(), checkTool.Handle)

	syncTool := mcptools.NewSyncTool(deps)
	s.AddTool(syncTool.Definition(), syncTool.Handle)

	fixTool := mcptools.NewFixTool(deps)
	s.AddTool(fixTool.Definition(), fixTool.Handle)

	diffTool := mcptools.NewDiffTool(deps)
	s.AddTool(diffTool.Definition(), diffTool.Handle)

	ruleAddTool := mcptools.NewRuleAddTool(deps)
	s.AddTool(ruleAddTool.Definition(), ruleAddTool.Handle)

	ruleRemoveTool := mcptools.NewRuleRemoveTool(deps)
	s.AddTool(ruleRemoveTool.Definition(), ruleRemoveTool.Handle)

	ruleListTool := mcptools.NewRuleListTool(deps)
	s.AddTool(ruleListTool.Definition(), ruleListTool.Handle)

	return s, cleanup, nil
}

func serverInstructions() string {
	return `repoman keeps AI coding assistant config files (.cursorrules, CLAUDE.md,
.github/copilot-instructions.md, and others) in sync from a single rule registry.

Workflow:
1. repo_rule_add / repo_rule_remove / repo_rule_list manage the registry.
2. repo_check classifies every projection: healthy, missing, drifted, or broken.
3. repo_diff previews pending changes without writing.
4. repo_sync projects the rules into every configured tool file.
5. repo_fix repairs drift reported by repo_check.

Managed blocks are delimited by repo:block markers; content outside them is
never touched. Broken files (unclosed or malformed markers) are reported and
left for manual repair.`
}
