package mcptools

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/wgergely/repoman/internal/rule"
	"github.com/wgergely/repoman/internal/workspace"
)

func newTestDeps(t *testing.T) Deps {
	t.Helper()
	root := t.TempDir()
	if err := workspace.Init(root); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	// Narrow the projection to one tool so tests stay focused.
	if err := os.WriteFile(workspace.ToolsPath(root), []byte("enabled:\n  - cursor\n"), 0644); err != nil {
		t.Fatal(err)
	}
	return Deps{Root: root}
}

func addRule(t *testing.T, deps Deps, id, content string) {
	t.Helper()
	reg, err := rule.LoadRegistry(workspace.RegistryPath(deps.Root))
	if err != nil {
		t.Fatalf("LoadRegistry failed: %v", err)
	}
	if err := reg.Add(rule.New(id, content, nil)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := reg.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
}

func toolReq(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// getResultText extracts the text content from a CallToolResult.
func getResultText(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestCheckTool_ReportsMissing(t *testing.T) {
	deps := newTestDeps(t)
	addRule(t, deps, "style", "Use snake_case")

	res, err := NewCheckTool(deps).Handle(context.Background(), toolReq(nil))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", getResultText(res))
	}
	text := getResultText(res)
	if !strings.Contains(text, "Status: missing") {
		t.Errorf("output = %q, want missing status", text)
	}
	if !strings.Contains(text, "cursor / style") {
		t.Errorf("output = %q, want pair listed", text)
	}
}

func TestSyncTool_InstallsAndCheckGoesHealthy(t *testing.T) {
	deps := newTestDeps(t)
	addRule(t, deps, "style", "Use snake_case")

	res, err := NewSyncTool(deps).Handle(context.Background(), toolReq(nil))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	text := getResultText(res)
	if !strings.Contains(text, "Success") || !strings.Contains(text, `Installed rule "style"`) {
		t.Errorf("output = %q", text)
	}

	data, err := os.ReadFile(filepath.Join(deps.Root, ".cursorrules"))
	if err != nil {
		t.Fatalf("reading target: %v", err)
	}
	if !strings.Contains(string(data), "Use snake_case") {
		t.Errorf("target = %q", data)
	}

	res, err = NewCheckTool(deps).Handle(context.Background(), toolReq(nil))
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !strings.Contains(getResultText(res), "Status: healthy") {
		t.Errorf("check output = %q", getResultText(res))
	}
}

func TestSyncTool_DryRun(t *testing.T) {
	deps := newTestDeps(t)
	addRule(t, deps, "style", "Use snake_case")

	res, err := NewSyncTool(deps).Handle(context.Background(), toolReq(map[string]interface{}{"dry_run": true}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !strings.Contains(getResultText(res), "[dry-run]") {
		t.Errorf("output = %q", getResultText(res))
	}
	if _, err := os.Stat(filepath.Join(deps.Root, ".cursorrules")); !os.IsNotExist(err) {
		t.Error("dry run wrote the target file")
	}
}

func TestFixTool_SharesSyncSemantics(t *testing.T) {
	deps := newTestDeps(t)
	addRule(t, deps, "style", "Use snake_case")

	res, err := NewFixTool(deps).Handle(context.Background(), toolReq(nil))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !strings.Contains(getResultText(res), `Installed rule "style"`) {
		t.Errorf("output = %q", getResultText(res))
	}
}

func TestDiffTool(t *testing.T) {
	deps := newTestDeps(t)
	addRule(t, deps, "style", "Use snake_case")

	res, err := NewDiffTool(deps).Handle(context.Background(), toolReq(nil))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !strings.Contains(getResultText(res), "+ Use snake_case") {
		t.Errorf("output = %q", getResultText(res))
	}

	if _, err := NewSyncTool(deps).Handle(context.Background(), toolReq(nil)); err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	res, err = NewDiffTool(deps).Handle(context.Background(), toolReq(nil))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !strings.Contains(getResultText(res), "No changes pending") {
		t.Errorf("output = %q", getResultText(res))
	}
}

func TestRuleAddTool(t *testing.T) {
	deps := newTestDeps(t)

	res, err := NewRuleAddTool(deps).Handle(context.Background(), toolReq(map[string]interface{}{
		"id":      "style",
		"content": "Use snake_case",
		"tags":    "python, naming",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", getResultText(res))
	}

	reg, err := rule.LoadRegistry(workspace.RegistryPath(deps.Root))
	if err != nil {
		t.Fatalf("LoadRegistry failed: %v", err)
	}
	r, ok := reg.Get("style")
	if !ok || len(r.Tags) != 2 {
		t.Errorf("rule = %+v, %v", r, ok)
	}
}

func TestRuleAddTool_MissingID(t *testing.T) {
	deps := newTestDeps(t)
	res, err := NewRuleAddTool(deps).Handle(context.Background(), toolReq(map[string]interface{}{
		"content": "x",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !res.IsError {
		t.Error("missing id should produce a tool error")
	}
}

func TestRuleAddTool_UpdatesExisting(t *testing.T) {
	deps := newTestDeps(t)
	addRule(t, deps, "style", "old")

	res, err := NewRuleAddTool(deps).Handle(context.Background(), toolReq(map[string]interface{}{
		"id":      "style",
		"content": "new content",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !strings.Contains(getResultText(res), "Updated") {
		t.Errorf("output = %q", getResultText(res))
	}

	reg, _ := rule.LoadRegistry(workspace.RegistryPath(deps.Root))
	r, _ := reg.Get("style")
	if r.Content != "new content" {
		t.Errorf("content = %q", r.Content)
	}
}

func TestRuleRemoveTool(t *testing.T) {
	deps := newTestDeps(t)
	addRule(t, deps, "style", "Use snake_case")

	res, err := NewRuleRemoveTool(deps).Handle(context.Background(), toolReq(map[string]interface{}{"id": "style"}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", getResultText(res))
	}

	res, err = NewRuleRemoveTool(deps).Handle(context.Background(), toolReq(map[string]interface{}{"id": "style"}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !res.IsError {
		t.Error("removing a missing rule should produce a tool error")
	}
}

func TestRuleListTool(t *testing.T) {
	deps := newTestDeps(t)

	res, err := NewRuleListTool(deps).Handle(context.Background(), toolReq(nil))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !strings.Contains(getResultText(res), "No rules defined") {
		t.Errorf("output = %q", getResultText(res))
	}

	addRule(t, deps, "style", "Use snake_case")
	res, err = NewRuleListTool(deps).Handle(context.Background(), toolReq(nil))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	text := getResultText(res)
	if !strings.Contains(text, "style") || !strings.Contains(text, "Use snake_case") {
		t.Errorf("output = %q", text)
	}
}
