// Package digest produces cryptographic hashes of the VDP's pixel stream
// and the mixer's audio stream, chained frame-to-frame. Comparing hashes
// across emulation runs is the basis for regression tests and playback
// verification.
package digest

// Digest implementations should return a cryptographic hash in response to a
// Hash() request. Generation of the hash achieved via another interface.
type Digest interface {
	Hash() string
	ResetDigest()
}
