package mcptools

import (
	"fmt"
	"strings"

	"github.com/wgergely/repoman/internal/engine"
	"github.com/wgergely/repoman/internal/rule"
)

func renderCheckReport(rep engine.CheckReport) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Status: %s\n", rep.Status)
	renderDiscrepancies(&sb, "Missing", rep.Missing)
	renderDiscrepancies(&sb, "Drifted", rep.Drifted)
	renderDiscrepancies(&sb, "Broken", rep.Broken)
	for _, m := range rep.Messages {
		fmt.Fprintf(&sb, "Note: %s\n", m)
	}
	return sb.String()
}

func renderDiscrepancies(sb *strings.Builder, title string, ds []engine.Discrepancy) {
	if len(ds) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n%s:\n", title)
	for _, d := range ds {
		fmt.Fprintf(sb, "  %s / %s (%s): %s\n", d.ToolID, d.RuleID, d.File, d.Detail)
	}
}

func renderApplyReport(rep engine.ApplyReport) string {
	var sb strings.Builder
	if rep.Success {
		sb.WriteString("Success\n")
	} else {
		sb.WriteString("Completed with errors\n")
	}
	if len(rep.Actions) == 0 && len(rep.Errors) == 0 {
		sb.WriteString("Nothing to do; all targets healthy.\n")
		return sb.String()
	}
	for _, a := range rep.Actions {
		fmt.Fprintf(&sb, "  %s\n", a)
	}
	for _, e := range rep.Errors {
		fmt.Fprintf(&sb, "  error: %s\n", e)
	}
	return sb.String()
}

func renderRules(rules []rule.Rule) string {
	if len(rules) == 0 {
		return "No rules defined.\n"
	}
	var sb strings.Builder
	for _, r := range rules {
		fmt.Fprintf(&sb, "%s", r.ID)
		if len(r.Tags) > 0 {
			fmt.Fprintf(&sb, " [%s]", strings.Join(r.Tags, ", "))
		}
		sb.WriteString("\n")
		for _, line := range strings.Split(strings.TrimRight(r.Content, "\n"), "\n") {
			fmt.Fprintf(&sb, "  %s\n", line)
		}
	}
	return sb.String()
}
