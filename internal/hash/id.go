// Package hash computes the 64-bit identifiers jobscan attaches to metric
// names. Identifiers are xxHash64 digests, so they are deterministic across
// processes and cheap enough to compute once per discovered payload.
package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 identifier of a metric name.
func ID(name string) uint64 {
	return xxhash.Sum64String(name)
}

// Sum computes the xxHash64 identifier of a raw metric name span. It avoids
// the string conversion when the name is still a slice of the source buffer.
func Sum(name []byte) uint64 {
	return xxhash.Sum64(name)
}
