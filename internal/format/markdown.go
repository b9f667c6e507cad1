package format

import "github.com/wgergely/repoman/internal/blocks"

// markdownHandler manages HTML-comment delimited blocks in Markdown and
// other comment-tolerant text files (.cursorrules, CLAUDE.md, ...).
type markdownHandler struct{}

func (markdownHandler) Kind() Kind { return Markdown }

func (markdownHandler) ParseBlocks(content string) ([]blocks.Block, error) {
	return blocks.Parse(content, blocks.StyleHTML)
}

func (markdownHandler) UpsertBlock(content, uuid, newContent string) (string, error) {
	return blocks.Upsert(content, uuid, newContent, blocks.StyleHTML)
}

func (markdownHandler) RemoveBlock(content, uuid string) (string, error) {
	return blocks.Remove(content, uuid, blocks.StyleHTML), nil
}

// hashCommentHandler manages #-comment delimited blocks. YAML and TOML
// share it: boundary detection is line-based text scanning, deliberately
// not a structural parse, so markers inside string scalars are never
// mistaken for boundaries.
type hashCommentHandler struct {
	kind Kind
}

func (h hashCommentHandler) Kind() Kind { return h.kind }

func (hashCommentHandler) ParseBlocks(content string) ([]blocks.Block, error) {
	return blocks.Parse(content, blocks.StyleHash)
}

func (hashCommentHandler) UpsertBlock(content, uuid, newContent string) (string, error) {
	return blocks.Upsert(content, uuid, newContent, blocks.StyleHash)
}

func (hashCommentHandler) RemoveBlock(content, uuid string) (string, error) {
	return blocks.Remove(content, uuid, blocks.StyleHash), nil
}
