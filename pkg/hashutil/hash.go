// Package hashutil computes the content hashes used to chain operations
// together into a document history.
package hashutil

import "crypto/sha1"

// Size is the byte length of a hash produced by SHA1.
const Size = sha1.Size

// SHA1 hashes data and returns the raw 20-byte digest.
func SHA1(data []byte) [Size]byte {
	return sha1.Sum(data)
}
