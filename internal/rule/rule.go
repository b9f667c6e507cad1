// Package rule implements the central rule registry: the single source
// of truth for the declarative instruction units the engine projects
// into tool config files. The registry persists to
// .repository/rules/registry.toml.
package rule

import (
	"fmt"
	"sort"
	"time"

	"github.com/wgergely/repoman/internal/fsutil"
)

// Rule is a named unit of desired instructional content. Once read by the
// engine for a reconciliation pass it is treated as immutable.
type Rule struct {
	// ID is the unique human-readable identifier (e.g. "python-style").
	ID string `toml:"id"`
	// Content is the rule body, typically Markdown prose.
	Content string `toml:"content"`
	// Tags categorize the rule; they do not affect projection.
	Tags []string `toml:"tags,omitempty"`
	// ContentHash is the canonical checksum of Content, recomputed on
	// every edit.
	ContentHash string    `toml:"content_hash"`
	Created     time.Time `toml:"created"`
	Updated     time.Time `toml:"updated"`
}

// New creates a rule with its content hash computed.
func New(id, content string, tags []string) Rule {
	now := time.Now().UTC()
	return Rule{
		ID:          id,
		Content:     content,
		Tags:        normalizeTags(tags),
		ContentHash: fsutil.Checksum(content),
		Created:     now,
		Updated:     now,
	}
}

// Validate checks the rule is storable.
func (r Rule) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("rule id must not be empty")
	}
	if r.Content == "" {
		return fmt.Errorf("rule %q has empty content", r.ID)
	}
	return nil
}

// normalizeTags dedupes and sorts tags so two rules with the same tag set
// serialize identically.
func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(tags))
	var out []string
	for _, tag := range tags {
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}
