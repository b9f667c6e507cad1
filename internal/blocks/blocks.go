// Package blocks implements uuid-addressed managed regions inside text
// content. A block is delimited by an opening and a closing comment marker
// carrying the same uuid, one marker per line:
//
//	<!-- repo:block:550e8400-e29b-41d4-a716-446655440000 -->
//	content
//	<!-- /repo:block:550e8400-e29b-41d4-a716-446655440000 -->
//
// Boundary detection is line-based: a marker is only recognized when it is
// the sole content of its line (leading whitespace allowed). Marker-like
// text embedded mid-line, e.g. inside a YAML string scalar, is ignored.
//
// All operations are pure text transforms — no disk I/O. Byte content
// outside block boundaries is never modified.
package blocks

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrUnclosedBlock reports an opening marker with no matching close.
	ErrUnclosedBlock = errors.New("unclosed block")
	// ErrInvalidUUID reports a marker whose uuid does not parse.
	ErrInvalidUUID = errors.New("invalid block uuid")
	// ErrMalformedMarkers reports content that would corrupt marker
	// boundaries if written (e.g. a close-marker sequence inside a block).
	ErrMalformedMarkers = errors.New("malformed block markers")
)

// Style selects the comment syntax used for block markers.
type Style int

const (
	// StyleHTML uses HTML comments: <!-- repo:block:uuid -->.
	StyleHTML Style = iota
	// StyleHash uses hash comments: # repo:block:uuid.
	StyleHash
)

// Block is a parsed managed region.
type Block struct {
	// UUID identifies the block across runs.
	UUID string
	// Content is the text between the marker lines.
	Content string
	// start and end are byte offsets of the whole block (markers
	// included, trailing newline of the close line excluded) within the
	// source content.
	start int
	end   int
}

// OpenMarker renders the opening marker for a uuid.
func (s Style) OpenMarker(id string) string {
	if s == StyleHash {
		return "# repo:block:" + id
	}
	return fmt.Sprintf("<!-- repo:block:%s -->", id)
}

// CloseMarker renders the closing marker for a uuid.
func (s Style) CloseMarker(id string) string {
	if s == StyleHash {
		return "# /repo:block:" + id
	}
	return fmt.Sprintf("<!-- /repo:block:%s -->", id)
}

// matchMarker extracts the id from a marker line, or returns ok=false.
// prefix/suffix depend on style and open/close direction.
func (s Style) matchMarker(line string, closing bool) (id string, ok bool) {
	line = strings.TrimSpace(line)
	slash := ""
	if closing {
		slash = "/"
	}
	if s == StyleHash {
		id, ok = strings.CutPrefix(line, "# "+slash+"repo:block:")
		if !ok || id == "" || strings.ContainsAny(id, " \t") {
			return "", false
		}
		return id, true
	}
	id, ok = strings.CutPrefix(line, "<!-- "+slash+"repo:block:")
	if !ok {
		return "", false
	}
	id, ok = strings.CutSuffix(id, " -->")
	if !ok || id == "" || strings.ContainsAny(id, " \t") {
		return "", false
	}
	return id, true
}

// lineSpan records a line's byte offsets within the source content.
// end excludes the terminating newline.
type lineSpan struct {
	start, end int
}

func splitLines(content string) []lineSpan {
	var spans []lineSpan
	start := 0
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			spans = append(spans, lineSpan{start, i})
			start = i + 1
		}
	}
	if start < len(content) {
		spans = append(spans, lineSpan{start, len(content)})
	}
	return spans
}

// Parse scans content for block marker pairs and returns them in order of
// appearance. An opening marker whose uuid does not parse yields
// ErrInvalidUUID; an opening marker with no matching close yields
// ErrUnclosedBlock. Closing markers without an opener are ignored.
func Parse(content string, style Style) ([]Block, error) {
	lines := splitLines(content)
	var out []Block

	for i := 0; i < len(lines); i++ {
		line := content[lines[i].start:lines[i].end]
		id, ok := style.matchMarker(line, false)
		if !ok {
			continue
		}
		if _, err := uuid.Parse(id); err != nil {
			return out, fmt.Errorf("%w: %q", ErrInvalidUUID, id)
		}

		closeAt := -1
		for j := i + 1; j < len(lines); j++ {
			cid, cok := style.matchMarker(content[lines[j].start:lines[j].end], true)
			if cok && cid == id {
				closeAt = j
				break
			}
		}
		if closeAt < 0 {
			return out, fmt.Errorf("%w: %s", ErrUnclosedBlock, id)
		}

		interior := ""
		if closeAt > i+1 {
			interior = content[lines[i+1].start:lines[closeAt].start]
			interior = strings.TrimSuffix(interior, "\n")
		}

		out = append(out, Block{
			UUID:    id,
			Content: interior,
			start:   lines[i].start,
			end:     lines[closeAt].end,
		})
		i = closeAt
	}
	return out, nil
}

// Find returns the first block with the given uuid.
func Find(content, id string, style Style) (Block, bool) {
	bs, err := Parse(content, style)
	if err != nil {
		return Block{}, false
	}
	for _, b := range bs {
		if b.UUID == id {
			return b, true
		}
	}
	return Block{}, false
}

// Has reports whether a block with the given uuid exists.
func Has(content, id string, style Style) bool {
	_, ok := Find(content, id, style)
	return ok
}

func render(id, blockContent string, style Style) string {
	return style.OpenMarker(id) + "\n" + blockContent + "\n" + style.CloseMarker(id)
}

// Upsert replaces the interior of the block with the given uuid, or
// appends a new block at the end of the content. Bytes outside the block
// boundaries are left untouched. Content that itself contains a
// close-marker sequence is rejected with ErrMalformedMarkers since the
// markers are not nestable.
func Upsert(content, id, blockContent string, style Style) (string, error) {
	if strings.Contains(blockContent, style.CloseMarker(id)) {
		return "", fmt.Errorf("%w: content contains closing marker for %s", ErrMalformedMarkers, id)
	}

	bs, err := Parse(content, style)
	if err != nil {
		return "", err
	}
	for _, b := range bs {
		if b.UUID == id {
			return content[:b.start] + render(id, blockContent, style) + content[b.end:], nil
		}
	}

	block := render(id, blockContent, style)
	switch {
	case content == "":
		return block + "\n", nil
	case strings.HasSuffix(content, "\n"):
		return content + "\n" + block + "\n", nil
	default:
		// Content without a trailing newline gets one before the blank
		// separator; Remove later restores "X\n", not "X".
		return content + "\n\n" + block + "\n", nil
	}
}

// Remove deletes the block with the given uuid including its markers.
// Removing a uuid that is not present is a no-op. The newline terminating
// the closing marker line is consumed, and for a block at end of file the
// separator blank line added by Upsert is dropped when still present, so
// appending a block and removing it restores a newline-terminated
// original exactly. Appending to content without a trailing newline first
// terminates that line, so the remove path hands back the original plus
// that one terminator.
func Remove(content, id string, style Style) string {
	b, ok := Find(content, id, style)
	if !ok {
		return content
	}

	before := content[:b.start]
	after := strings.TrimPrefix(content[b.end:], "\n")

	if after == "" && strings.HasSuffix(before, "\n\n") {
		// Drop the separator blank line Upsert added before the block,
		// but only if the user has not deleted it themselves.
		return strings.TrimSuffix(before, "\n")
	}
	return before + after
}
