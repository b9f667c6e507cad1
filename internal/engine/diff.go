package engine

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/wgergely/repoman/internal/format"
	"github.com/wgergely/repoman/internal/fsutil"
	"github.com/wgergely/repoman/internal/rule"
	"github.com/wgergely/repoman/internal/tools"
)

// Diff renders a preview of what Sync would change. Pure read: no file
// or ledger mutation. An empty string means everything is healthy.
func (e *Engine) Diff(rules []rule.Rule, targets []tools.Target) (string, error) {
	ld, err := e.loadLedger()
	if err != nil {
		return "", fmt.Errorf("loading ledger: %w", err)
	}

	var out strings.Builder
	sortedRules := sortRules(rules)
	for _, t := range sortTargets(targets) {
		if verr := t.Validate(); verr != nil {
			for _, r := range sortedRules {
				fmt.Fprintf(&out, "!! %s / %s: %v\n", t.ToolID, r.ID, verr)
			}
			continue
		}
		h, _ := format.ForKind(t.Format)
		for _, r := range sortedRules {
			rel := targetFile(t, r.ID)
			content, exists, rerr := fsutil.ReadFileString(e.absPath(rel))
			if rerr != nil {
				fmt.Fprintf(&out, "!! %s / %s: %v\n", t.ToolID, r.ID, rerr)
				continue
			}
			status, detail := classifyPair(ld, r, t, h, content, exists)
			if status == StatusHealthy {
				continue
			}
			fmt.Fprintf(&out, "-- %s / %s (%s): %s\n", t.ToolID, r.ID, rel, status)
			if status == StatusBroken {
				fmt.Fprintf(&out, "   %s\n", detail)
				continue
			}
			e.renderPairDiff(&out, r, t, h, content)
		}
	}

	expected := expectedUUIDs(rules, targets)
	for _, rec := range ld.All() {
		if !expected[rec.UUID] {
			fmt.Fprintf(&out, "-- %s / %s (%s): retired, block will be removed\n", rec.ToolID, rec.RuleID, rec.File)
		}
	}
	return out.String(), nil
}

func (e *Engine) renderPairDiff(out *strings.Builder, r rule.Rule, t tools.Target, h format.Handler, content string) {
	id := BlockUUID(r.ID, t.ToolID, t.Path).String()

	if t.Format == format.JSON {
		newContent, err := h.UpsertBlock(content, id, r.Content)
		if err != nil {
			fmt.Fprintf(out, "   %v\n", err)
			return
		}
		changes, err := jsonChanges(content, newContent)
		if err != nil {
			fmt.Fprintf(out, "   %v\n", err)
			return
		}
		for _, c := range changes {
			fmt.Fprintf(out, "   %s\n", c)
		}
		return
	}

	var current string
	if blks, err := h.ParseBlocks(content); err == nil {
		if b, found := findBlock(blks, id, t.Format); found {
			current = b.Content
		}
	}
	out.WriteString(textDiff(current, r.Content))
}

// textDiff renders a line diff with +/- prefixes.
func textDiff(before, after string) string {
	dmp := diffmatchpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	var out strings.Builder
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		}
		for _, line := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			out.WriteString(prefix)
			out.WriteString(line)
			out.WriteByte('\n')
		}
	}
	return out.String()
}
