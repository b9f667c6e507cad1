package engine

import "github.com/google/uuid"

// blockNamespace seeds deterministic block ids so that re-running on a
// clean checkout reproduces identical ids for the same rule and target.
var blockNamespace = uuid.MustParse("5e9cbf23-4b71-4c53-9d2a-08f6f4a6d6c1")

// BlockUUID derives the stable block id for a rule projected into a
// target file.
func BlockUUID(ruleID, toolID, path string) uuid.UUID {
	name := ruleID + "\x00" + toolID + "\x00" + path
	return uuid.NewSHA1(blockNamespace, []byte(name))
}
