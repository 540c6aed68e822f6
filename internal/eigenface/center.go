package eigenface

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// computeMean averages the face columns element-wise.
func (m *Model) computeMean() {
	rows, n := m.faces.Dims()
	m.mean = make([]float64, rows)
	col := make([]float64, rows)
	for j := 0; j < n; j++ {
		mat.Col(col, j, m.faces)
		floats.Add(m.mean, col)
	}
	floats.Scale(1/float64(n), m.mean)
}

// center subtracts the mean face from every column, preserving column order.
func (m *Model) center() {
	rows, n := m.faces.Dims()
	m.centered = mat.NewDense(rows, n, nil)
	col := make([]float64, rows)
	for j := 0; j < n; j++ {
		mat.Col(col, j, m.faces)
		floats.Sub(col, m.mean)
		m.centered.SetCol(j, col)
	}
}
