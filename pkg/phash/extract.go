package phash

import (
	"sort"

	"github.com/imagedupe/phashcluster/pkg/errs"
)

// ExtractionPolicy selects which DCT coefficients feed the hash.
type ExtractionPolicy int

const (
	// PolicyBlock takes the top-left SxS sub-block in row-major order,
	// where S = ceil(sqrt(bits)). This is the preferred policy.
	PolicyBlock ExtractionPolicy = iota
	// PolicyDiagonal walks anti-diagonals outward from (0,0). Kept for
	// reading legacy hashes written by that policy; do not mix policies
	// across hashers writing to the same store.
	PolicyDiagonal
)

// selectCoefficients picks `bits` coefficients from an NxN DCT matrix
// according to policy.
func selectCoefficients(c [][]float32, bits int, policy ExtractionPolicy) ([]float32, error) {
	switch policy {
	case PolicyBlock:
		return selectBlock(c, bits)
	case PolicyDiagonal:
		return selectDiagonal(c, bits), nil
	default:
		return selectBlock(c, bits)
	}
}

// blockSize returns S = ceil(sqrt(bits)).
func blockSize(bits int) int {
	s := 1
	for s*s < bits {
		s++
	}
	return s
}

func selectBlock(c [][]float32, bits int) ([]float32, error) {
	n := len(c)
	s := blockSize(bits)
	if s*s < bits || s > n {
		return nil, errs.ErrInvalidBitBudget
	}

	coeffs := make([]float32, 0, s*s)
	for y := 0; y < s; y++ {
		for x := 0; x < s; x++ {
			coeffs = append(coeffs, c[y][x])
		}
	}
	return coeffs[:bits], nil
}

// selectDiagonal walks anti-diagonals from (0,0) outward: (0,0); (0,1),(1,0);
// (0,2),(1,1),(2,0); ... emitting coefficients until `bits` are collected.
func selectDiagonal(c [][]float32, bits int) []float32 {
	n := len(c)
	coeffs := make([]float32, 0, bits)
	for d := 0; d < 2*n-1 && len(coeffs) < bits; d++ {
		for y := 0; y <= d && len(coeffs) < bits; y++ {
			x := d - y
			if x < 0 || x >= n || y >= n {
				continue
			}
			coeffs = append(coeffs, c[y][x])
		}
	}
	return coeffs
}

// median computes (sorted[B/2] + sorted[B/2-1]) / 2 as specified.
func median(coeffs []float32) float32 {
	sorted := make([]float32, len(coeffs))
	copy(sorted, coeffs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	b := len(sorted)
	return (sorted[b/2] + sorted[b/2-1]) / 2
}

// pack thresholds each coefficient against the median (bit is 1 iff
// coeff > median, strict) and packs the result little-endian by bit index
// into 64-bit words.
func pack(coeffs []float32) PHash {
	m := median(coeffs)

	words := make(PHash, WordsForBits(len(coeffs)))
	for i, v := range coeffs {
		if v > m {
			words[i/64] |= 1 << uint(i%64)
		}
	}
	return words
}
