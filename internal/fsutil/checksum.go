package fsutil

import (
	"crypto/sha256"
	"fmt"
	"os"
)

// checksumPrefix is part of the persisted ledger format; changing it
// invalidates every recorded projection.
const checksumPrefix = "sha256:"

// Checksum returns the canonical checksum of content: "sha256:<hex>".
func Checksum(content string) string {
	sum := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%s%x", checksumPrefix, sum)
}

// ChecksumFile returns the canonical checksum of a file's bytes.
func ChecksumFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s%x", checksumPrefix, sum), nil
}
