// Package engine reconciles declared rules against the tool config
// files they are projected into. It classifies every rule/target pair,
// installs or repairs managed blocks, and keeps the ledger as the
// authoritative record of what it last wrote.
package engine

import (
	"path/filepath"
	"sort"
	"time"

	"github.com/wgergely/repoman/internal/format"
	"github.com/wgergely/repoman/internal/ledger"
	"github.com/wgergely/repoman/internal/rule"
	"github.com/wgergely/repoman/internal/tools"
	"github.com/wgergely/repoman/internal/workspace"
)

// Recorder receives a best-effort event for every applied change.
// Failures inside a Recorder must not affect the reconciliation pass.
type Recorder interface {
	Record(event, ruleID, toolID, file, detail string)
}

// Engine runs one reconciliation pass. Construct a fresh Engine per
// command; it carries no state between invocations beyond the ledger
// file on disk.
type Engine struct {
	root        string
	ledgerPath  string
	lockTimeout time.Duration
	recorder    Recorder
}

// Option configures an Engine.
type Option func(*Engine)

// WithLockTimeout bounds how long ledger lock acquisition may block.
func WithLockTimeout(d time.Duration) Option {
	return func(e *Engine) { e.lockTimeout = d }
}

// WithRecorder attaches an apply-event recorder.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// New returns an Engine rooted at the workspace directory.
func New(root string, opts ...Option) *Engine {
	e := &Engine{
		root:        root,
		ledgerPath:  workspace.LedgerPath(root),
		lockTimeout: ledger.DefaultLockTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) loadLedger() (*ledger.Ledger, error) {
	return ledger.Load(e.ledgerPath, ledger.WithLockTimeout(e.lockTimeout))
}

func (e *Engine) record(event, ruleID, toolID, file, detail string) {
	if e.recorder != nil {
		e.recorder.Record(event, ruleID, toolID, file, detail)
	}
}

// targetFile returns the workspace-relative file a rule lands in. For
// directory formats each rule owns its own file inside the target
// directory.
func targetFile(t tools.Target, ruleID string) string {
	if t.Format == format.DirectoryPerRule {
		return filepath.Join(t.Path, ruleID+".md")
	}
	return t.Path
}

func (e *Engine) absPath(rel string) string {
	return filepath.Join(e.root, rel)
}

func sortRules(rules []rule.Rule) []rule.Rule {
	out := make([]rule.Rule, len(rules))
	copy(out, rules)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortTargets(targets []tools.Target) []tools.Target {
	out := make([]tools.Target, len(targets))
	copy(out, targets)
	sort.Slice(out, func(i, j int) bool { return out[i].ToolID < out[j].ToolID })
	return out
}

// expectedUUIDs returns the block ids the current rule and target sets
// should produce. Ledger records outside this set belong to retired
// rules or tools.
func expectedUUIDs(rules []rule.Rule, targets []tools.Target) map[string]bool {
	out := make(map[string]bool, len(rules)*len(targets))
	for _, t := range targets {
		for _, r := range rules {
			out[BlockUUID(r.ID, t.ToolID, t.Path).String()] = true
		}
	}
	return out
}
