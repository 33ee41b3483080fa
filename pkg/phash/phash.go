// Package phash implements a DCT-based perceptual hash: a fixed-length bit
// vector whose Hamming distance approximates visual similarity between two
// images.
package phash

import (
	"math/bits"
	"strconv"
	"strings"

	"github.com/imagedupe/phashcluster/pkg/errs"
)

// PHash is an ordered sequence of 64-bit words. Bit i of the fingerprint
// lives in word i/64 at bit position i%64, least-significant bit first.
//
// A zero word 0 is the sentinel for "no hash" (undecodable or unhashed
// image); this overlaps in principle with a theoretically valid all-zero
// hash, which is benign on realistic DCT coefficients.
type PHash []uint64

// WordsForBits returns the word count needed to hold a bit budget B, i.e.
// ceil(B/64).
func WordsForBits(bits int) int {
	return (bits + 63) / 64
}

// Bit returns the value of bit i.
func (p PHash) Bit(i int) bool {
	return p[i/64]&(1<<uint(i%64)) != 0
}

// Empty reports whether this is the sentinel "no hash" fingerprint, i.e.
// word 0 is zero.
func (p PHash) Empty() bool {
	return len(p) == 0 || p[0] == 0
}

// Equal reports whether two fingerprints are bitwise identical. Fingerprints
// of unequal length are never equal.
func (p PHash) Equal(other PHash) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the fingerprint.
func (p PHash) Clone() PHash {
	c := make(PHash, len(p))
	copy(c, p)
	return c
}

// Hamming computes the Hamming distance between two equal-length
// fingerprints. Comparing fingerprints of unequal length is a programmer
// error and returns errs.ErrLengthMismatch.
func Hamming(a, b PHash) (uint32, error) {
	if len(a) != len(b) {
		return 0, errs.ErrLengthMismatch
	}
	var dist uint32
	for i := range a {
		dist += uint32(bits.OnesCount64(a[i] ^ b[i]))
	}
	return dist, nil
}

// Within reports whether the Hamming distance between a and b is at most
// threshold, exiting the summation early once the running distance exceeds
// it.
func Within(a, b PHash, threshold uint32) (bool, error) {
	if len(a) != len(b) {
		return false, errs.ErrLengthMismatch
	}
	var dist uint32
	for i := range a {
		dist += uint32(bits.OnesCount64(a[i] ^ b[i]))
		if dist > threshold {
			return false, nil
		}
	}
	return dist <= threshold, nil
}

// Delimiter is the ASCII character separating fingerprint words in the
// intermediate-file and SQLite text representation.
const Delimiter = ','

// Encode renders the fingerprint as "<w0><Delimiter><w1>...<wK-1>".
func (p PHash) Encode() string {
	parts := make([]string, len(p))
	for i, w := range p {
		parts[i] = strconv.FormatUint(w, 10)
	}
	return strings.Join(parts, string(Delimiter))
}

// Decode parses the text representation written by Encode. It fails with
// errs.ErrParseFingerprint on a non-numeric word.
func Decode(text string) (PHash, error) {
	fields := strings.Split(text, string(Delimiter))
	p := make(PHash, len(fields))
	for i, f := range fields {
		w, err := strconv.ParseUint(f, 10, 64)
		if err != nil {
			return nil, errs.ErrParseFingerprint
		}
		p[i] = w
	}
	return p, nil
}
