package engine

import (
	"fmt"

	"github.com/wgergely/repoman/internal/format"
	"github.com/wgergely/repoman/internal/fsutil"
	"github.com/wgergely/repoman/internal/rule"
	"github.com/wgergely/repoman/internal/tools"
)

// Check classifies every rule/target pair without mutating anything.
// Only a ledger load failure aborts the pass; per-pair problems are
// folded into the report.
func (e *Engine) Check(rules []rule.Rule, targets []tools.Target) (CheckReport, error) {
	ld, err := e.loadLedger()
	if err != nil {
		return CheckReport{}, fmt.Errorf("loading ledger: %w", err)
	}

	rep := CheckReport{Status: StatusHealthy}
	sortedRules := sortRules(rules)
	for _, t := range sortTargets(targets) {
		if verr := t.Validate(); verr != nil {
			for _, r := range sortedRules {
				rep.add(StatusBroken, Discrepancy{RuleID: r.ID, ToolID: t.ToolID, File: t.Path, Detail: verr.Error()})
			}
			continue
		}
		h, _ := format.ForKind(t.Format)
		for _, r := range sortedRules {
			rel := targetFile(t, r.ID)
			content, exists, rerr := fsutil.ReadFileString(e.absPath(rel))
			if rerr != nil {
				rep.add(StatusBroken, Discrepancy{RuleID: r.ID, ToolID: t.ToolID, File: rel, Detail: rerr.Error()})
				continue
			}
			status, detail := classifyPair(ld, r, t, h, content, exists)
			if status == StatusHealthy {
				continue
			}
			rep.add(status, Discrepancy{RuleID: r.ID, ToolID: t.ToolID, File: rel, Detail: detail})
		}
	}

	expected := expectedUUIDs(rules, targets)
	for _, rec := range ld.All() {
		if !expected[rec.UUID] {
			rep.Messages = append(rep.Messages,
				fmt.Sprintf("rule %q is no longer projected into %s; sync will remove it", rec.RuleID, rec.File))
		}
	}
	return rep, nil
}
