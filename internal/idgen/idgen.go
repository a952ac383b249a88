// Package idgen generates random identifiers for stored records.
package idgen

import (
	"crypto/rand"
	"encoding/hex"
)

// randHex returns n random bytes as lowercase hex. Random generation only
// fails when the OS entropy source is broken, which is not recoverable.
func randHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic("idgen: crypto/rand failed: " + err.Error())
	}
	return hex.EncodeToString(b)
}

// WithPrefix returns prefix + 24 hex chars, e.g. WithPrefix("txn_").
// The prefix makes record kinds distinguishable in logs and API payloads.
func WithPrefix(prefix string) string {
	return prefix + randHex(12)
}

// Hex returns a random hex string of the given byte length.
func Hex(numBytes int) string {
	return randHex(numBytes)
}
