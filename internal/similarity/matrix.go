// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package similarity

// Matrix is a symmetric N x N dissimilarity matrix with a zero diagonal.
// Values lie in [0, 1].
type Matrix struct {
	n    int
	data []float64
}

// NewMatrix returns a zeroed n x n matrix.
func NewMatrix(n int) *Matrix {
	return &Matrix{n: n, data: make([]float64, n*n)}
}

// N returns the matrix dimension.
func (m *Matrix) N() int { return m.n }

// At returns the distance between documents i and j.
func (m *Matrix) At(i, j int) float64 {
	return m.data[i*m.n+j]
}

// Set stores a distance symmetrically. The diagonal stays zero.
func (m *Matrix) Set(i, j int, v float64) {
	if i == j {
		return
	}
	m.data[i*m.n+j] = v
	m.data[j*m.n+i] = v
}

// setRow stores one cell without mirroring. Used by the row-partitioned
// build so each worker writes only its own rows.
func (m *Matrix) setRow(i, j int, v float64) {
	m.data[i*m.n+j] = v
}
