package phash

import "math"

// dctMatrix holds the NxN Type-II DCT basis and its transpose, built once
// per hasher instance and reused for every image it processes.
type dctMatrix struct {
	n  int
	d  [][]float32 // D[k][i]
	dt [][]float32 // D transposed
}

// newDCTMatrix constructs the DCT-II basis matrix for an N x N transform:
//
//	D[0][i]  = sqrt(1/N)
//	D[k][i]  = sqrt(2/N) * cos( (pi/(2N)) * k * (2i+1) )   for k in [1,N)
func newDCTMatrix(n int) *dctMatrix {
	d := make([][]float32, n)
	for k := range d {
		d[k] = make([]float32, n)
	}

	c0 := float32(math.Sqrt(1.0 / float64(n)))
	c1 := float32(math.Sqrt(2.0 / float64(n)))

	for i := 0; i < n; i++ {
		d[0][i] = c0
	}
	for k := 1; k < n; k++ {
		for i := 0; i < n; i++ {
			angle := (math.Pi / (2 * float64(n))) * float64(k) * float64(2*i+1)
			d[k][i] = c1 * float32(math.Cos(angle))
		}
	}

	return &dctMatrix{n: n, d: d, dt: transpose(d)}
}

func transpose(m [][]float32) [][]float32 {
	n := len(m)
	t := make([][]float32, n)
	for i := range t {
		t[i] = make([]float32, n)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			t[j][i] = m[i][j]
		}
	}
	return t
}

// apply computes the 2D DCT of pixel matrix P as C = D * P * D^T.
func (m *dctMatrix) apply(p [][]float32) [][]float32 {
	n := m.n
	// tmp = D * P
	tmp := make([][]float32, n)
	for k := range tmp {
		tmp[k] = make([]float32, n)
	}
	for k := 0; k < n; k++ {
		for j := 0; j < n; j++ {
			var sum float32
			for i := 0; i < n; i++ {
				sum += m.d[k][i] * p[i][j]
			}
			tmp[k][j] = sum
		}
	}

	// c = tmp * D^T
	c := make([][]float32, n)
	for k := range c {
		c[k] = make([]float32, n)
	}
	for k := 0; k < n; k++ {
		for j := 0; j < n; j++ {
			var sum float32
			for i := 0; i < n; i++ {
				sum += tmp[k][i] * m.dt[i][j]
			}
			c[k][j] = sum
		}
	}

	return c
}
