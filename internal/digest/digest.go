// Package digest provides content fingerprints for captured tool output.
//
// Every verification in the harness compares a SHA-256 digest of captured
// stdout against the digest of a recorded golden file. Output is treated as
// an opaque byte stream: a single differing byte is a mismatch, and no
// fuzzy comparison is ever attempted.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Digest is a hex-encoded SHA-256 fingerprint of a byte stream.
type Digest string

// Sum computes the digest of the given bytes.
//
// The digest is deterministic: identical input always yields an identical
// Digest, which is what makes golden comparison byte-exact without keeping
// full payloads around.
func Sum(data []byte) Digest {
	sum := sha256.Sum256(data)
	return Digest(hex.EncodeToString(sum[:]))
}

// ReadFile reads a file and returns its content together with its digest.
// Used for loading golden reference files.
func ReadFile(path string) ([]byte, Digest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read golden file: %w", err)
	}
	return data, Sum(data), nil
}

// WriteMismatch emits both payloads framed by clear delimiters so an
// engineer can eyeball the difference. Each payload is followed by a
// newline regardless of its own trailing bytes, keeping the frame markers
// on their own lines.
func WriteMismatch(w io.Writer, golden, actual []byte) {
	fmt.Fprintln(w, "=======Golden output:=======")
	fmt.Fprintf(w, "%s\n", golden)
	fmt.Fprintln(w, "=======Test output:=======")
	fmt.Fprintf(w, "%s\n", actual)
	fmt.Fprintln(w, "=======END=======")
}
