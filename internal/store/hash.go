package store

import "github.com/cespare/xxhash/v2"

// ContentHash returns a stable content hash used to detect whether a file
// changed between runs (spec §4.6 step 1). xxhash is chosen over crypto
// hashes for speed; collisions are acceptable since a hash mismatch only
// ever triggers a re-parse, never a correctness decision beyond that.
func ContentHash(data []byte) uint64 {
	return xxhash.Sum64(data)
}
