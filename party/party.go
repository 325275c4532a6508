// Package party defines the opaque identifier of a DKG participant.
package party

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Size is the width of an [Index] in bytes.
const Size = 32

// Index identifies a participant. Indices are ordered by comparing their
// raw bytes lexicographically, most significant (lowest address) byte
// first. The zero Index is a sentinel and never names a participant.
type Index [Size]byte

// FromUint64 writes n little-endian into the first eight bytes.
//
// Because ordering is byte-lexicographic, indices built this way do not
// sort by n: FromUint64(256) < FromUint64(1).
func FromUint64(n uint64) Index {
	var idx Index
	binary.LittleEndian.PutUint64(idx[:8], n)
	return idx
}

// FromSlice copies a 32-byte slice into an Index.
func FromSlice(b []byte) (Index, error) {
	var idx Index
	if len(b) != Size {
		return idx, fmt.Errorf("party index must be %d bytes, got %d", Size, len(b))
	}
	copy(idx[:], b)
	return idx, nil
}

// FromPublicKey derives an Index from a participant's long-term public key
// as its BLAKE2b-256 digest.
func FromPublicKey(pub []byte) Index {
	return Index(blake2b.Sum256(pub))
}

// Compare returns -1, 0 or +1 as i is less than, equal to or greater
// than j.
func (i Index) Compare(j Index) int {
	return bytes.Compare(i[:], j[:])
}

// Less reports whether i sorts before j.
func (i Index) Less(j Index) bool {
	return i.Compare(j) < 0
}

// Equal reports whether i and j are byte-wise identical.
func (i Index) Equal(j Index) bool {
	return i == j
}

// IsZero reports whether i is the sentinel zero Index.
func (i Index) IsZero() bool {
	return i == Index{}
}

// Bytes returns a copy of the raw bytes.
func (i Index) Bytes() []byte {
	return slices.Clone(i[:])
}

// String renders the bytes in reverse order as uppercase hex, so small
// integer indices read naturally: FromUint64(1) ends in "01".
func (i Index) String() string {
	rev := i
	slices.Reverse(rev[:])
	return strings.ToUpper(hex.EncodeToString(rev[:]))
}

// MarshalText implements encoding.TextMarshaler using plain hex in byte
// order.
func (i Index) MarshalText() ([]byte, error) {
	out := make([]byte, hex.EncodedLen(Size))
	hex.Encode(out, i[:])
	return out, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *Index) UnmarshalText(text []byte) error {
	raw, err := hex.DecodeString(string(text))
	if err != nil {
		return fmt.Errorf("decode party index: %w", err)
	}
	idx, err := FromSlice(raw)
	if err != nil {
		return err
	}
	*i = idx
	return nil
}

// Sort orders ids in place.
func Sort(ids []Index) {
	slices.SortFunc(ids, Index.Compare)
}

// Dedup returns a sorted copy of ids with duplicates removed, and reports
// whether any duplicate was present.
func Dedup(ids []Index) ([]Index, bool) {
	out := slices.Clone(ids)
	Sort(out)
	out = slices.Compact(out)
	return out, len(out) != len(ids)
}

// Contains reports whether ids holds id.
func Contains(ids []Index, id Index) bool {
	return slices.Contains(ids, id)
}
