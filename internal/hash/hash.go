// Package hash wraps xxHash64 for layout fingerprints and payload checksums.
package hash

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// String returns the xxHash64 of s.
func String(s string) uint64 {
	return xxhash.Sum64String(s)
}

// Bytes returns the xxHash64 of data.
func Bytes(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Fingerprint accumulates the identity of a sequence of fields.
// The zero value is not usable; create one with NewFingerprint.
type Fingerprint struct {
	d   *xxhash.Digest
	buf [9]byte
}

// NewFingerprint returns an empty fingerprint.
func NewFingerprint() *Fingerprint {
	return &Fingerprint{d: xxhash.New()}
}

// Add mixes one field into the fingerprint.
//
// Each field contributes its name, a NUL separator, its type name, a NUL
// separator, its kind byte and its width as a little-endian uint64, so
// ("ab", "c") and ("a", "bc") never produce the same stream.
func (f *Fingerprint) Add(name, typeName string, kind uint8, width int) {
	_, _ = f.d.WriteString(name)
	_, _ = f.d.Write([]byte{0})
	_, _ = f.d.WriteString(typeName)

	f.buf[0] = 0
	_, _ = f.d.Write(f.buf[:1])

	f.buf[0] = kind
	binary.LittleEndian.PutUint64(f.buf[1:], uint64(width))
	_, _ = f.d.Write(f.buf[:])
}

// Sum returns the fingerprint of the fields added so far.
func (f *Fingerprint) Sum() uint64 {
	return f.d.Sum64()
}
