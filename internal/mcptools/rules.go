package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/wgergely/repoman/internal/rule"
	"github.com/wgergely/repoman/internal/workspace"
)

// RuleAddTool handles the repo_rule_add MCP tool. It creates or
// replaces a rule in the registry; the projection happens on the next
// repo_sync.
type RuleAddTool struct {
	deps Deps
}

// NewRuleAddTool creates a RuleAddTool.
func NewRuleAddTool(deps Deps) *RuleAddTool {
	return &RuleAddTool{deps: deps}
}

// Definition returns the MCP tool definition for registration.
func (t *RuleAddTool) Definition() mcp.Tool {
	return mcp.NewTool("repo_rule_add",
		mcp.WithDescription(
			"Add a rule to the registry, or update its content if the id already "+
				"exists. Run repo_sync afterwards to project it into the tool config files.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Unique rule id, e.g. 'style' or 'naming'."),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("The instructional content projected into each tool config file."),
		),
		mcp.WithString("tags",
			mcp.Description("Comma-separated tags for grouping rules. Optional."),
		),
	)
}

// Handle adds or updates the rule.
func (t *RuleAddTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(req.GetString("id", ""))
	content := req.GetString("content", "")
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}
	if content == "" {
		return mcp.NewToolResultError("'content' is required"), nil
	}
	tags := splitTags(req.GetString("tags", ""))

	reg, err := rule.LoadRegistry(workspace.RegistryPath(t.deps.Root))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	verb := "Added"
	if _, exists := reg.Get(id); exists {
		err = reg.Update(id, content, tags)
		verb = "Updated"
	} else {
		err = reg.Add(rule.New(id, content, tags))
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := reg.Save(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s rule %q. Run repo_sync to project it.\n", verb, id)), nil
}

// RuleRemoveTool handles the repo_rule_remove MCP tool.
type RuleRemoveTool struct {
	deps Deps
}

// NewRuleRemoveTool creates a RuleRemoveTool.
func NewRuleRemoveTool(deps Deps) *RuleRemoveTool {
	return &RuleRemoveTool{deps: deps}
}

// Definition returns the MCP tool definition for registration.
func (t *RuleRemoveTool) Definition() mcp.Tool {
	return mcp.NewTool("repo_rule_remove",
		mcp.WithDescription(
			"Remove a rule from the registry. Its managed blocks stay in place "+
				"until the next repo_sync, which deletes them from every tool config file.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Id of the rule to remove."),
		),
	)
}

// Handle removes the rule.
func (t *RuleRemoveTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(req.GetString("id", ""))
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}

	reg, err := rule.LoadRegistry(workspace.RegistryPath(t.deps.Root))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !reg.Remove(id) {
		return mcp.NewToolResultError(fmt.Sprintf("rule %q not found", id)), nil
	}
	if err := reg.Save(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Removed rule %q. Run repo_sync to clear its blocks.\n", id)), nil
}

// RuleListTool handles the repo_rule_list MCP tool.
type RuleListTool struct {
	deps Deps
}

// NewRuleListTool creates a RuleListTool.
func NewRuleListTool(deps Deps) *RuleListTool {
	return &RuleListTool{deps: deps}
}

// Definition returns the MCP tool definition for registration.
func (t *RuleListTool) Definition() mcp.Tool {
	return mcp.NewTool("repo_rule_list",
		mcp.WithDescription("List every rule in the registry with its tags and content."),
	)
}

// Handle lists the rules.
func (t *RuleListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reg, err := rule.LoadRegistry(workspace.RegistryPath(t.deps.Root))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(renderRules(reg.List())), nil
}

func splitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
