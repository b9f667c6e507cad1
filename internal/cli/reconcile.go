package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wgergely/repoman/internal/engine"
	"github.com/wgergely/repoman/internal/rule"
	"github.com/wgergely/repoman/internal/tools"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Classify every rule projection without modifying anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := resolveRoot()
			if err != nil {
				return err
			}
			rules, targets, err := loadState(root)
			if err != nil {
				return err
			}
			eng := engine.New(root, engine.WithLockTimeout(flagLockTimeout))
			rep, err := eng.Check(rules, targets)
			if err != nil {
				return err
			}
			printCheckReport(cmd.OutOrStdout(), rep)
			if rep.Status != engine.StatusHealthy {
				return fmt.Errorf("status: %s", rep.Status)
			}
			return nil
		},
	}
}

func newSyncCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Project the current rules into every configured tool file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd, dryRun, (*engine.Engine).Sync)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report intended actions without writing")
	return cmd
}

func newFixCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "fix",
		Short: "Repair drifted or missing managed blocks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd, dryRun, (*engine.Engine).Fix)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report intended repairs without writing")
	return cmd
}

func newDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff",
		Short: "Preview what sync would change",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := resolveRoot()
			if err != nil {
				return err
			}
			rules, targets, err := loadState(root)
			if err != nil {
				return err
			}
			eng := engine.New(root, engine.WithLockTimeout(flagLockTimeout))
			out, err := eng.Diff(rules, targets)
			if err != nil {
				return err
			}
			if out == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "No changes pending; all targets healthy.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func runApply(cmd *cobra.Command, dryRun bool, apply func(*engine.Engine, []rule.Rule, []tools.Target, engine.ApplyOptions) (engine.ApplyReport, error)) error {
	root, err := resolveRoot()
	if err != nil {
		return err
	}
	rules, targets, err := loadState(root)
	if err != nil {
		return err
	}
	eng, cleanup := newEngine(root)
	defer cleanup()

	rep, err := apply(eng, rules, targets, engine.ApplyOptions{DryRun: dryRun})
	if err != nil {
		return err
	}
	printApplyReport(cmd.OutOrStdout(), rep)
	if !rep.Success {
		return fmt.Errorf("completed with %d error(s)", len(rep.Errors))
	}
	return nil
}

func printCheckReport(w io.Writer, rep engine.CheckReport) {
	fmt.Fprintf(w, "Status: %s\n", rep.Status)
	printDiscrepancies(w, "Missing", rep.Missing)
	printDiscrepancies(w, "Drifted", rep.Drifted)
	printDiscrepancies(w, "Broken", rep.Broken)
	for _, m := range rep.Messages {
		fmt.Fprintf(w, "Note: %s\n", m)
	}
}

func printDiscrepancies(w io.Writer, title string, ds []engine.Discrepancy) {
	if len(ds) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, d := range ds {
		fmt.Fprintf(w, "  %s / %s (%s): %s\n", d.ToolID, d.RuleID, d.File, d.Detail)
	}
}

func printApplyReport(w io.Writer, rep engine.ApplyReport) {
	if len(rep.Actions) == 0 && len(rep.Errors) == 0 {
		fmt.Fprintln(w, "Nothing to do; all targets healthy.")
		return
	}
	for _, a := range rep.Actions {
		fmt.Fprintln(w, a)
	}
	for _, e := range rep.Errors {
		fmt.Fprintf(w, "error: %s\n", e)
	}
}
