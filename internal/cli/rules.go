package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wgergely/repoman/internal/rule"
	"github.com/wgergely/repoman/internal/workspace"
)

func newRuleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rule",
		Short: "Manage the rule registry",
	}
	cmd.AddCommand(
		newRuleAddCmd(),
		newRuleEditCmd(),
		newRuleRemoveCmd(),
		newRuleListCmd(),
		newRuleShowCmd(),
	)
	return cmd
}

func openRegistry() (*rule.Registry, error) {
	root, err := resolveRoot()
	if err != nil {
		return nil, err
	}
	return rule.LoadRegistry(workspace.RegistryPath(root))
}

func newRuleAddCmd() *cobra.Command {
	var tags []string
	var fromFile string
	cmd := &cobra.Command{
		Use:   "add <id> [content]",
		Short: "Add a rule to the registry",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := ruleContent(args, fromFile)
			if err != nil {
				return err
			}
			reg, err := openRegistry()
			if err != nil {
				return err
			}
			if err := reg.Add(rule.New(args[0], content, tags)); err != nil {
				return err
			}
			if err := reg.Save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added rule %q. Run 'repoman sync' to project it.\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "tag to attach (repeatable)")
	cmd.Flags().StringVar(&fromFile, "from-file", "", "read the rule content from a file instead of the argument")
	return cmd
}

func newRuleEditCmd() *cobra.Command {
	var tags []string
	var fromFile string
	cmd := &cobra.Command{
		Use:   "edit <id> [content]",
		Short: "Replace a rule's content",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := ruleContent(args, fromFile)
			if err != nil {
				return err
			}
			reg, err := openRegistry()
			if err != nil {
				return err
			}
			var newTags []string
			if cmd.Flags().Changed("tag") {
				newTags = tags
			}
			if err := reg.Update(args[0], content, newTags); err != nil {
				return err
			}
			if err := reg.Save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated rule %q. Run 'repoman sync' to project it.\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "replace the rule's tags (repeatable)")
	cmd.Flags().StringVar(&fromFile, "from-file", "", "read the rule content from a file instead of the argument")
	return cmd
}

func newRuleRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a rule from the registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := openRegistry()
			if err != nil {
				return err
			}
			if !reg.Remove(args[0]) {
				return fmt.Errorf("rule %q not found", args[0])
			}
			if err := reg.Save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed rule %q. Run 'repoman sync' to clear its blocks.\n", args[0])
			return nil
		},
	}
}

func newRuleListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every rule in the registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := openRegistry()
			if err != nil {
				return err
			}
			rules := reg.List()
			if len(rules) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No rules defined.")
				return nil
			}
			for _, r := range rules {
				line := r.ID
				if len(r.Tags) > 0 {
					line += " [" + strings.Join(r.Tags, ", ") + "]"
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
}

func newRuleShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a rule's content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := openRegistry()
			if err != nil {
				return err
			}
			r, ok := reg.Get(args[0])
			if !ok {
				return fmt.Errorf("rule %q not found", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), r.Content)
			return nil
		},
	}
}

func ruleContent(args []string, fromFile string) (string, error) {
	if fromFile != "" {
		data, err := os.ReadFile(fromFile)
		if err != nil {
			return "", fmt.Errorf("reading rule content: %w", err)
		}
		return strings.TrimRight(string(data), "\n"), nil
	}
	if len(args) < 2 || args[1] == "" {
		return "", fmt.Errorf("rule content required (argument or --from-file)")
	}
	return args[1], nil
}
