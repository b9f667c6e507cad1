package format

import (
	"strings"

	"github.com/wgergely/repoman/internal/blocks"
)

// directoryHandler serves tools that take one file per rule (e.g. a rules
// directory of .md files). The whole file is the managed region, so there
// are no inline markers and no user content to preserve. The engine owns
// the file naming and deletes the file when RemoveBlock yields empty
// content.
type directoryHandler struct{}

func (directoryHandler) Kind() Kind { return DirectoryPerRule }

// ParseBlocks treats the entire file as a single block. The uuid cannot
// be recovered from the content and is left empty; the engine matches
// directory targets by path, not by marker.
func (directoryHandler) ParseBlocks(content string) ([]blocks.Block, error) {
	if content == "" {
		return nil, nil
	}
	return []blocks.Block{{Content: strings.TrimSuffix(content, "\n")}}, nil
}

// UpsertBlock appends exactly one newline terminator and ParseBlocks
// strips exactly one, so block content round-trips byte-identically
// even when it already ends in a newline.
func (directoryHandler) UpsertBlock(_, _, newContent string) (string, error) {
	return newContent + "\n", nil
}

func (directoryHandler) RemoveBlock(_, _ string) (string, error) {
	return "", nil
}
