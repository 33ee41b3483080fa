package phash

import "io"

// DefaultSize is the DCT grid dimension N used when none is configured.
const DefaultSize = 32

// DefaultBits is the bit budget B used when none is configured; with
// PolicyBlock this yields an 8x8 low-frequency block (S=8, S^2=64).
const DefaultBits = 64

// Hasher computes perceptual hashes for decoded images. A Hasher amortizes
// the NxN DCT-II basis construction across every image it hashes, so it
// should be built once per process and reused.
type Hasher struct {
	n      int
	bits   int
	policy ExtractionPolicy
	dct    *dctMatrix
}

// New creates a Hasher with the given DCT grid size, bit budget and
// coefficient-selection policy. The DCT basis matrix is built once here.
func New(n, bits int, policy ExtractionPolicy) *Hasher {
	return &Hasher{
		n:      n,
		bits:   bits,
		policy: policy,
		dct:    newDCTMatrix(n),
	}
}

// NewDefault creates a Hasher using DefaultSize, DefaultBits and PolicyBlock.
func NewDefault() *Hasher {
	return New(DefaultSize, DefaultBits, PolicyBlock)
}

// Size returns the configured DCT grid dimension.
func (h *Hasher) Size() int { return h.n }

// Bits returns the configured bit budget.
func (h *Hasher) Bits() int { return h.bits }

// Policy returns the configured coefficient-selection policy.
func (h *Hasher) Policy() ExtractionPolicy { return h.policy }

// Compute decodes the image in r and returns its fingerprint. A decode
// failure returns (nil, false, err) without panicking; the caller should
// record it as a recovered per-image failure rather than aborting a batch.
func (h *Hasher) Compute(r io.Reader) (PHash, bool, error) {
	pixels, err := Preprocess(r, h.n)
	if err != nil {
		return nil, false, err
	}

	coeffs := h.dct.apply(pixels)
	selected, err := selectCoefficients(coeffs, h.bits, h.policy)
	if err != nil {
		return nil, false, err
	}

	return pack(selected), true, nil
}
