package listing

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// ComputeID derives the listing id from its full text: the 64-bit xxHash of the
// UTF-8 bytes as 16 lowercase hex digits. Stable across processes and releases;
// not a security primitive.
func ComputeID(fullText string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(fullText))
}
