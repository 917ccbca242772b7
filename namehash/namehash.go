// Package namehash computes the single hash identity names are keyed by
// throughout the engine: SHA3-256 of the raw ASCII name bytes (spec.md §3).
// It is split out of package names to let the reserved-name table hash
// candidate names without importing the (heavier, covenant-aware) rules
// package and creating an import cycle.
package namehash

import "golang.org/x/crypto/sha3"

// Hash is the 32-byte SHA3-256 digest of a name's raw bytes. Callers that
// already validated the name with names.VerifyName should prefer
// names.HashName, which enforces that precondition.
func Hash(name []byte) [32]byte {
	return sha3.Sum256(name)
}
