package engine

import (
	"fmt"

	"github.com/wgergely/repoman/internal/blocks"
	"github.com/wgergely/repoman/internal/format"
	"github.com/wgergely/repoman/internal/fsutil"
	"github.com/wgergely/repoman/internal/ledger"
	"github.com/wgergely/repoman/internal/rule"
	"github.com/wgergely/repoman/internal/tools"
)

// findBlock locates the managed block for a pair. Directory formats
// carry exactly one unaddressed block per file.
func findBlock(blks []blocks.Block, id string, kind format.Kind) (blocks.Block, bool) {
	if kind == format.DirectoryPerRule {
		if len(blks) > 0 {
			return blks[0], true
		}
		return blocks.Block{}, false
	}
	for _, b := range blks {
		if b.UUID == id {
			return b, true
		}
	}
	return blocks.Block{}, false
}

// classifyPair computes the state of one rule/target pair from the
// target file content and the ledger. The ledger is authoritative for
// ownership: without a record the pair is Missing even if a block with
// the right id happens to exist.
func classifyPair(ld *ledger.Ledger, r rule.Rule, t tools.Target, h format.Handler, content string, exists bool) (Status, string) {
	id := BlockUUID(r.ID, t.ToolID, t.Path).String()

	if !exists {
		return StatusMissing, fmt.Sprintf("file %s does not exist", targetFile(t, r.ID))
	}

	// Parse before consulting the ledger: an unparsable file is Broken
	// even for pairs the engine never wrote, so nothing appends into it.
	blks, err := h.ParseBlocks(content)
	if err != nil {
		return StatusBroken, err.Error()
	}
	rec, ok := ld.Find(id)
	if !ok {
		return StatusMissing, "no ledger record"
	}
	b, found := findBlock(blks, id, t.Format)
	if !found {
		return StatusMissing, "managed block not present"
	}

	current := fsutil.Checksum(b.Content)
	if current != rec.Checksum {
		return StatusDrifted, fmt.Sprintf("block content edited outside the engine (have %s, recorded %s)", shortHash(current), shortHash(rec.Checksum))
	}
	if fsutil.Checksum(r.Content) != rec.Checksum {
		return StatusDrifted, "rule content updated since last apply"
	}
	return StatusHealthy, ""
}

func shortHash(sum string) string {
	const prefix = "sha256:"
	h := sum
	if len(h) > len(prefix)+12 {
		h = h[:len(prefix)+12]
	}
	return h
}
