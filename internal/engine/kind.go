package engine

import (
	"path/filepath"
	"strings"

	"github.com/wgergely/repoman/internal/format"
)

// inferKind guesses a format from a file extension. Used only when a
// retired ledger record's tool is no longer configured, so the real
// format is unknown. Extensionless files and .md default to Markdown,
// which is also the right removal behavior for marker-style blocks.
func inferKind(path string) format.Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return format.JSON
	case ".yaml", ".yml":
		return format.YAML
	case ".toml":
		return format.TOML
	default:
		return format.Markdown
	}
}
