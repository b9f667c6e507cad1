// Package format implements one handler per target file format. Handlers
// are pure text/data transforms: they read and produce content strings and
// never touch the disk. The format set is closed; dispatch goes through
// ForKind so adding a format means adding a variant here.
package format

import (
	"errors"
	"fmt"

	"github.com/wgergely/repoman/internal/blocks"
)

// ErrUnsupportedFormat reports a target with an unknown format name.
// It is fatal for that target only, never for the whole run.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Kind names a target file format.
type Kind string

const (
	// Markdown uses HTML-comment block markers.
	Markdown Kind = "markdown"
	// JSON stores managed regions under a reserved top-level key.
	JSON Kind = "json"
	// YAML uses hash-comment block markers.
	YAML Kind = "yaml"
	// TOML uses hash-comment block markers.
	TOML Kind = "toml"
	// DirectoryPerRule writes one whole file per rule, no inline markers.
	DirectoryPerRule Kind = "directory"
)

// Handler is the per-format block capability. Implementations must leave
// every byte outside block boundaries untouched.
type Handler interface {
	// Kind identifies the format this handler serves.
	Kind() Kind
	// ParseBlocks scans content for managed blocks. Malformed markers
	// are returned as an error (the caller classifies the target Broken);
	// they never panic.
	ParseBlocks(content string) ([]blocks.Block, error)
	// UpsertBlock replaces the block's interior or appends a new block at
	// the format's deterministic insertion point.
	UpsertBlock(content, uuid, newContent string) (string, error)
	// RemoveBlock deletes the block and its markers. Removing a uuid that
	// is not present is a no-op.
	RemoveBlock(content, uuid string) (string, error)
}

// ForKind returns the handler for a format kind.
func ForKind(k Kind) (Handler, error) {
	switch k {
	case Markdown:
		return markdownHandler{}, nil
	case JSON:
		return jsonHandler{}, nil
	case YAML:
		return hashCommentHandler{kind: YAML}, nil
	case TOML:
		return hashCommentHandler{kind: TOML}, nil
	case DirectoryPerRule:
		return directoryHandler{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, k)
	}
}

// Valid reports whether k names a known format.
func Valid(k Kind) bool {
	_, err := ForKind(k)
	return err == nil
}
