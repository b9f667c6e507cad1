// Package cli implements the repoman command tree.
package cli

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/wgergely/repoman/internal/engine"
	"github.com/wgergely/repoman/internal/history"
	"github.com/wgergely/repoman/internal/rule"
	"github.com/wgergely/repoman/internal/server"
	"github.com/wgergely/repoman/internal/tools"
	"github.com/wgergely/repoman/internal/workspace"
)

// Version is set at build time via ldflags.
var Version = "dev"

var (
	flagRoot        string
	flagLockTimeout time.Duration
)

// NewRootCmd builds the full command tree. Each invocation returns a
// fresh tree so tests do not share flag state.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "repoman",
		Short: "Keep AI coding assistant config files in sync from one rule registry",
		Long: `repoman projects declarative rules into the config files AI coding
assistants read (.cursorrules, CLAUDE.md, .vscode/settings.json and
others), inside clearly marked managed blocks. Content outside a
block is never touched.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&flagRoot, "root", "", "workspace root (default: walk up from the current directory)")
	root.PersistentFlags().DurationVar(&flagLockTimeout, "lock-timeout", 10*time.Second, "how long to wait for the ledger lock")

	root.AddCommand(
		newInitCmd(),
		newCheckCmd(),
		newSyncCmd(),
		newFixCmd(),
		newDiffCmd(),
		newRuleCmd(),
		newHistoryCmd(),
		newServeCmd(),
	)
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		return 1
	}
	return 0
}

// resolveRoot locates the workspace root from --root or the current
// directory.
func resolveRoot() (string, error) {
	if flagRoot != "" {
		return workspace.FindRoot(flagRoot)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolving working directory: %w", err)
	}
	return workspace.FindRoot(cwd)
}

// newEngine builds an engine for root with the apply history attached
// when it opens. The returned cleanup is always safe to call.
func newEngine(root string) (*engine.Engine, func()) {
	opts := []engine.Option{engine.WithLockTimeout(flagLockTimeout)}
	cleanup := func() {}
	hist, err := history.Open(workspace.HistoryPath(root))
	if err != nil {
		log.Printf("WARNING: apply history disabled: %v", err)
	} else {
		opts = append(opts, engine.WithRecorder(hist))
		cleanup = func() { hist.Close() }
	}
	return engine.New(root, opts...), cleanup
}

// loadState reads the rule registry and tool targets for root.
func loadState(root string) ([]rule.Rule, []tools.Target, error) {
	reg, err := rule.LoadRegistry(workspace.RegistryPath(root))
	if err != nil {
		return nil, nil, fmt.Errorf("loading rule registry: %w", err)
	}
	cfg, err := tools.LoadConfig(workspace.ToolsPath(root))
	if err != nil {
		return nil, nil, fmt.Errorf("loading tool config: %w", err)
	}
	return reg.List(), cfg.Targets(), nil
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a repoman workspace in the current directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := flagRoot
			if dir == "" {
				var err error
				if dir, err = os.Getwd(); err != nil {
					return err
				}
			}
			if err := workspace.Init(dir); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized repoman workspace in %s\n", dir)
			return nil
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := resolveRoot()
			if err != nil {
				return err
			}
			s, cleanup, err := server.New(root)
			if err != nil {
				return fmt.Errorf("creating server: %w", err)
			}
			defer cleanup()
			return mcpserver.ServeStdio(s)
		},
	}
}

func newHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent applies, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := resolveRoot()
			if err != nil {
				return err
			}
			hist, err := history.Open(workspace.HistoryPath(root))
			if err != nil {
				return err
			}
			defer hist.Close()

			events, err := hist.Recent(limit)
			if err != nil {
				return err
			}
			if len(events) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No history recorded yet.")
				return nil
			}
			for _, e := range events {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-8s %s -> %s (%s)\n",
					e.CreatedAt, e.Event, e.RuleID, e.ToolID, e.File)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of events to show")
	return cmd
}
