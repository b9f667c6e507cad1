package engine

import (
	"fmt"
	"os"
	"time"

	"github.com/wgergely/repoman/internal/format"
	"github.com/wgergely/repoman/internal/fsutil"
	"github.com/wgergely/repoman/internal/ledger"
	"github.com/wgergely/repoman/internal/rule"
	"github.com/wgergely/repoman/internal/tools"
)

// ApplyOptions controls sync and fix passes.
type ApplyOptions struct {
	// DryRun reports intended actions without touching files or the
	// ledger.
	DryRun bool
}

// Sync applies the latest desired state to every target.
func (e *Engine) Sync(rules []rule.Rule, targets []tools.Target, opts ApplyOptions) (ApplyReport, error) {
	return e.apply(rules, targets, opts)
}

// Fix repairs drift. It shares Sync's implementation: both converge
// the targets on the desired state, the verb differs only at the
// command surface.
func (e *Engine) Fix(rules []rule.Rule, targets []tools.Target, opts ApplyOptions) (ApplyReport, error) {
	return e.apply(rules, targets, opts)
}

func (e *Engine) apply(rules []rule.Rule, targets []tools.Target, opts ApplyOptions) (ApplyReport, error) {
	ld, err := e.loadLedger()
	if err != nil {
		return ApplyReport{}, fmt.Errorf("loading ledger: %w", err)
	}

	rep := ApplyReport{Success: true}
	now := time.Now().UTC()
	sortedRules := sortRules(rules)
	for _, t := range sortTargets(targets) {
		if verr := t.Validate(); verr != nil {
			rep.fail(fmt.Sprintf("%s: %v", t.ToolID, verr))
			continue
		}
		h, _ := format.ForKind(t.Format)
		for _, r := range sortedRules {
			if perr := e.applyPair(ld, r, t, h, opts.DryRun, &rep, now); perr != nil {
				rep.fail(fmt.Sprintf("%s/%s: %v", t.ToolID, r.ID, perr))
				e.record("error", r.ID, t.ToolID, targetFile(t, r.ID), perr.Error())
			}
		}
	}

	e.removeRetired(ld, rules, targets, opts.DryRun, &rep)

	if !opts.DryRun {
		if serr := ld.Save(e.ledgerPath); serr != nil {
			rep.Success = false
			return rep, fmt.Errorf("saving ledger: %w", serr)
		}
	}
	return rep, nil
}

func (e *Engine) applyPair(ld *ledger.Ledger, r rule.Rule, t tools.Target, h format.Handler, dryRun bool, rep *ApplyReport, now time.Time) error {
	rel := targetFile(t, r.ID)
	abs := e.absPath(rel)
	id := BlockUUID(r.ID, t.ToolID, t.Path).String()

	content, exists, err := fsutil.ReadFileString(abs)
	if err != nil {
		return fmt.Errorf("reading %s: %w", rel, err)
	}

	status, detail := classifyPair(ld, r, t, h, content, exists)
	switch status {
	case StatusHealthy:
		return nil
	case StatusBroken:
		return fmt.Errorf("%s: %s; manual intervention required", rel, detail)
	}

	newContent, err := h.UpsertBlock(content, id, r.Content)
	if err != nil {
		return fmt.Errorf("updating %s: %w", rel, err)
	}
	if newContent == content {
		blks, perr := h.ParseBlocks(newContent)
		if perr != nil {
			return fmt.Errorf("re-reading %s: %w", rel, perr)
		}
		if _, found := findBlock(blks, id, t.Format); !found {
			rep.Actions = append(rep.Actions,
				fmt.Sprintf("Skipped rule %q for %s: %s cannot host a managed block", r.ID, t.ToolID, rel))
			return nil
		}
	}

	verb := "install"
	if status == StatusDrifted {
		verb = "update"
	}
	if dryRun {
		rep.Actions = append(rep.Actions, fmt.Sprintf("[dry-run] Would %s rule %q in %s", verb, r.ID, rel))
		return nil
	}

	if err := fsutil.WriteFileAtomic(abs, []byte(newContent)); err != nil {
		return fmt.Errorf("writing %s: %w", rel, err)
	}
	ld.Upsert(ledger.Record{
		UUID:      id,
		RuleID:    r.ID,
		ToolID:    t.ToolID,
		File:      rel,
		Checksum:  fsutil.Checksum(r.Content),
		AppliedAt: now,
	})
	action := fmt.Sprintf("Installed rule %q into %s", r.ID, rel)
	if verb == "update" {
		action = fmt.Sprintf("Updated rule %q in %s", r.ID, rel)
	}
	rep.Actions = append(rep.Actions, action)
	e.record(verb, r.ID, t.ToolID, rel, detail)
	return nil
}

// removeRetired clears ledger records whose rule or tool is no longer
// active, deleting their blocks from the files they were written to.
func (e *Engine) removeRetired(ld *ledger.Ledger, rules []rule.Rule, targets []tools.Target, dryRun bool, rep *ApplyReport) {
	expected := expectedUUIDs(rules, targets)
	formats := make(map[string]format.Kind, len(targets))
	for _, t := range targets {
		formats[t.ToolID] = t.Format
	}

	for _, rec := range ld.All() {
		if expected[rec.UUID] {
			continue
		}
		if dryRun {
			rep.Actions = append(rep.Actions, fmt.Sprintf("[dry-run] Would remove rule %q from %s", rec.RuleID, rec.File))
			continue
		}
		if err := e.removeRecord(rec, formats[rec.ToolID]); err != nil {
			rep.fail(fmt.Sprintf("%s/%s: %v", rec.ToolID, rec.RuleID, err))
			continue
		}
		ld.Remove(rec.UUID)
		rep.Actions = append(rep.Actions, fmt.Sprintf("Removed rule %q from %s", rec.RuleID, rec.File))
		e.record("remove", rec.RuleID, rec.ToolID, rec.File, "")
	}
}

func (e *Engine) removeRecord(rec ledger.Record, kind format.Kind) error {
	abs := e.absPath(rec.File)
	content, exists, err := fsutil.ReadFileString(abs)
	if err != nil {
		return fmt.Errorf("reading %s: %w", rec.File, err)
	}
	if !exists {
		return nil
	}

	if !format.Valid(kind) {
		kind = inferKind(rec.File)
	}
	if kind == format.DirectoryPerRule {
		if err := os.Remove(abs); err != nil {
			return fmt.Errorf("deleting %s: %w", rec.File, err)
		}
		return nil
	}

	h, err := format.ForKind(kind)
	if err != nil {
		return err
	}
	newContent, err := h.RemoveBlock(content, rec.UUID)
	if err != nil {
		return fmt.Errorf("removing block from %s: %w", rec.File, err)
	}
	if newContent == content {
		return nil
	}
	if err := fsutil.WriteFileAtomic(abs, []byte(newContent)); err != nil {
		return fmt.Errorf("writing %s: %w", rec.File, err)
	}
	return nil
}
