package phash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHammingSymmetricAndZero(t *testing.T) {
	a := PHash{0xAA, 0x01}
	b := PHash{0x55, 0x01}

	dab, err := Hamming(a, b)
	require.NoError(t, err)
	dba, err := Hamming(b, a)
	require.NoError(t, err)
	assert.Equal(t, dab, dba)

	dzero, err := Hamming(a, a)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), dzero)
}

func TestHammingLengthMismatch(t *testing.T) {
	_, err := Hamming(PHash{1}, PHash{1, 2})
	require.Error(t, err)
}

func TestHammingTriangleInequality(t *testing.T) {
	a := PHash{0xF0F0F0F0}
	b := PHash{0x0F0F0F0F}
	c := PHash{0xFF00FF00}

	dab, _ := Hamming(a, b)
	dbc, _ := Hamming(b, c)
	dac, _ := Hamming(a, c)

	assert.LessOrEqual(t, dac, dab+dbc)
}

func TestWithinEarlyExit(t *testing.T) {
	a := PHash{0xF0}
	b := PHash{0x0F}

	within, err := Within(a, b, 2)
	require.NoError(t, err)
	assert.False(t, within)

	within, err = Within(a, b, 8)
	require.NoError(t, err)
	assert.True(t, within)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	original := PHash{1, 2, 18446744073709551615, 0}

	text := original.Encode()
	decoded, err := Decode(text)
	require.NoError(t, err)

	assert.True(t, original.Equal(decoded))
}

func TestDecodeMalformed(t *testing.T) {
	_, err := Decode("12,not-a-number,34")
	require.Error(t, err)
}

func TestWordsForBits(t *testing.T) {
	assert.Equal(t, 1, WordsForBits(64))
	assert.Equal(t, 2, WordsForBits(65))
	assert.Equal(t, 2, WordsForBits(128))
}

func TestEmptySentinel(t *testing.T) {
	assert.True(t, PHash{0, 7}.Empty())
	assert.False(t, PHash{1, 0}.Empty())
}

func TestBlockSize(t *testing.T) {
	assert.Equal(t, 8, blockSize(64))
	assert.Equal(t, 4, blockSize(16))
}

func TestSelectBlockTruncatesAndOrdersRowMajor(t *testing.T) {
	n := 4
	c := make([][]float32, n)
	val := float32(0)
	for y := 0; y < n; y++ {
		c[y] = make([]float32, n)
		for x := 0; x < n; x++ {
			c[y][x] = val
			val++
		}
	}

	// bits=3 -> S=2: block (0,0),(0,1),(1,0),(1,1) = 0,1,4,5, truncated to 3.
	coeffs, err := selectBlock(c, 3)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1, 4}, coeffs)
}

func TestSelectDiagonalOrder(t *testing.T) {
	n := 3
	c := [][]float32{
		{0, 1, 2},
		{3, 4, 5},
		{6, 7, 8},
	}

	coeffs := selectDiagonal(c, 6)
	// (0,0); (0,1),(1,0); (0,2),(1,1),(2,0)
	assert.Equal(t, []float32{0, 1, 3, 2, 4, 6}, coeffs)
}

func TestMedianThresholdStrict(t *testing.T) {
	coeffs := []float32{1, 2, 3, 4}
	m := median(coeffs)
	assert.Equal(t, float32(2.5), m)

	h := pack(coeffs)
	// bits: 1>2.5 false, 2>2.5 false, 3>2.5 true, 4>2.5 true
	assert.False(t, h.Bit(0))
	assert.False(t, h.Bit(1))
	assert.True(t, h.Bit(2))
	assert.True(t, h.Bit(3))
}

func TestDCTConstantImageIsolatesDCComponent(t *testing.T) {
	n := 8
	p := make([][]float32, n)
	for y := range p {
		p[y] = make([]float32, n)
		for x := range p[y] {
			p[y][x] = 100
		}
	}

	m := newDCTMatrix(n)
	c := m.apply(p)

	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			if x == 0 && y == 0 {
				assert.NotZero(t, c[y][x])
				continue
			}
			assert.InDelta(t, 0, c[y][x], 1e-2)
		}
	}
}

func TestNewDefaultBuildsUsableHasher(t *testing.T) {
	h := NewDefault()
	assert.Equal(t, DefaultSize, h.Size())
	assert.Equal(t, DefaultBits, h.Bits())
	assert.Equal(t, PolicyBlock, h.Policy())
}
