package domain

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// HashLen is the number of hex digits in a content hash.
const HashLen = 16

// ContentHash returns the xxhash64 of b as a fixed-width hex string.
func ContentHash(b []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(b))
}

// Fingerprint hashes an ordered list of parts. Parts are separated by a zero
// byte so that ("ab", "c") and ("a", "bc") differ.
func Fingerprint(parts ...string) string {
	h := xxhash.New()
	for _, p := range parts {
		_, _ = h.WriteString(p)
		_, _ = h.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
