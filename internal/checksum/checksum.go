// Package checksum computes content fingerprints for change detection.
package checksum

import "hash/crc32"

// castagnoli is shared by every Sum call; crc32 tables are immutable.
var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// Sum returns a fast, non-cryptographic fingerprint of data.
// Same bytes always yield the same value; a collision only causes an
// unnecessary re-embed, never data loss.
func Sum(data []byte) uint32 {
	return crc32.Checksum(data, castagnoli)
}
