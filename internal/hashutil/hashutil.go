// Package hashutil computes content digests used for job deduplication
// and artifact audit trails.
package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Prefix identifies the digest algorithm in rendered digests.
const Prefix = "sha256:"

// Unavailable is returned when a file cannot be read. Callers must treat
// a job containing this digest as uncacheable rather than failing.
const Unavailable = Prefix + "unavailable"

// NoTemplate is the sentinel digest mixed into a dedup key when the job
// carries no template.
const NoTemplate = Prefix + "none"

// chunkSize bounds memory during streaming; files are never fully buffered.
const chunkSize = 1 << 20

// File streams the file at path through SHA-256 and returns "sha256:<hex>".
// An unreadable path yields Unavailable instead of an error so callers
// degrade to "never cached".
func File(path string) string {
	f, err := os.Open(path) // #nosec G304 -- caller-provided input path
	if err != nil {
		return Unavailable
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return Unavailable
	}
	return Prefix + hex.EncodeToString(h.Sum(nil))
}

// Bytes returns the SHA-256 digest of data as "sha256:<hex>".
func Bytes(data []byte) string {
	sum := sha256.Sum256(data)
	return Prefix + hex.EncodeToString(sum[:])
}

// Available reports whether digest is a real content digest rather than
// the Unavailable sentinel.
func Available(digest string) bool {
	return digest != Unavailable
}

// Key derives a dedup key from a source digest and a template digest
// (NoTemplate when absent). Identical digest pairs always produce the
// same key; any byte change in either input changes it.
func Key(sourceDigest, templateDigest string) string {
	return Bytes(fmt.Appendf(nil, "%s|%s", sourceDigest, templateDigest))
}
