// Package mcptools exposes the reconciliation engine and the rule
// registry as MCP tools.
package mcptools

import (
	"fmt"
	"time"

	"github.com/wgergely/repoman/internal/engine"
	"github.com/wgergely/repoman/internal/rule"
	"github.com/wgergely/repoman/internal/tools"
	"github.com/wgergely/repoman/internal/workspace"
)

// Deps carries everything the tools need to run a pass. The engine is
// constructed fresh per call; only the root and options are shared.
type Deps struct {
	Root        string
	LockTimeout time.Duration
	Recorder    engine.Recorder // nullable
}

func (d Deps) newEngine() *engine.Engine {
	var opts []engine.Option
	if d.LockTimeout > 0 {
		opts = append(opts, engine.WithLockTimeout(d.LockTimeout))
	}
	if d.Recorder != nil {
		opts = append(opts, engine.WithRecorder(d.Recorder))
	}
	return engine.New(d.Root, opts...)
}

// loadState reads the rule registry and the tool configuration from
// the workspace.
func (d Deps) loadState() ([]rule.Rule, []tools.Target, error) {
	reg, err := rule.LoadRegistry(workspace.RegistryPath(d.Root))
	if err != nil {
		return nil, nil, fmt.Errorf("loading rule registry: %w", err)
	}
	cfg, err := tools.LoadConfig(workspace.ToolsPath(d.Root))
	if err != nil {
		return nil, nil, fmt.Errorf("loading tool config: %w", err)
	}
	return reg.List(), cfg.Targets(), nil
}
