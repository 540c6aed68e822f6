package eigenface

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// extractBasis factorises the centred faces as U·Σ·Vᵀ and keeps U and Σ.
// Singular values are stored raw, in the solver's descending order.
func (m *Model) extractBasis() error {
	var svd mat.SVD
	if ok := svd.Factorize(m.centered, mat.SVDThin); !ok {
		return ErrFactorization
	}

	var u mat.Dense
	svd.UTo(&u)
	m.basis = &u
	m.sigma = svd.Values(nil)
	return nil
}

// SingularValues returns a copy of the raw singular values, descending.
func (m *Model) SingularValues() []float64 {
	return append([]float64(nil), m.sigma...)
}

// NormalizedEigenvalues returns the singular values divided by their
// Euclidean norm. All zeros if the database has no variation.
func (m *Model) NormalizedEigenvalues() []float64 {
	out := m.SingularValues()
	if norm := floats.Norm(out, 2); norm > 0 {
		floats.Scale(1/norm, out)
	}
	return out
}

// Energy returns the squared normalised eigenvalues: the fraction of total
// variance captured by each eigenface. The values sum to 1.
func (m *Model) Energy() []float64 {
	out := m.NormalizedEigenvalues()
	for i, v := range out {
		out[i] = v * v
	}
	return out
}
