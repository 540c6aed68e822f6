package eigenface

import (
	"fmt"
	"image"

	"github.com/andresmejia3/eigenfaces/internal/imaging"
	"github.com/andresmejia3/eigenfaces/internal/types"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// components resolves a requested coordinate count. Zero means every
// eigenface and anything above Rank is clamped to Rank.
func (m *Model) components(op string, k int) (int, error) {
	if k < 0 {
		return 0, mismatch(op, "component count", k, fmt.Sprintf("0..%d", m.Rank()))
	}
	if k == 0 || k > m.Rank() {
		return m.Rank(), nil
	}
	return k, nil
}

// project centres face in place and returns its first k coordinates.
func (m *Model) project(op string, face []float64, k int) ([]float64, error) {
	k, err := m.components(op, k)
	if err != nil {
		return nil, err
	}

	floats.Sub(face, m.mean)
	centered := mat.NewVecDense(len(face), face)

	coords := make([]float64, 0, k)
	for i := 0; i < k; i++ {
		coords = append(coords, mat.Dot(m.basis.ColView(i), centered))
	}
	return coords, nil
}

// Coordinates projects img onto the first k eigenfaces. img must have the
// database's size. k follows the clamping rule of components.
func (m *Model) Coordinates(img *image.Gray, k int) ([]float64, error) {
	if err := m.checkSize("Coordinates", img); err != nil {
		return nil, err
	}
	return m.project("Coordinates", flatten(img), k)
}

// FaceCoordinates reads the database file of ref again and projects it.
func (m *Model) FaceCoordinates(ref types.FaceRef, k int) ([]float64, error) {
	if _, err := m.column("FaceCoordinates", ref); err != nil {
		return nil, err
	}
	img, err := m.read(ref)
	if err != nil {
		return nil, err
	}
	return m.Coordinates(img, k)
}

// ProjectColumn projects the stored face of ref without touching the source.
func (m *Model) ProjectColumn(ref types.FaceRef, k int) ([]float64, error) {
	col, err := m.column("ProjectColumn", ref)
	if err != nil {
		return nil, err
	}
	return m.project("ProjectColumn", mat.Col(nil, col, m.faces), k)
}

// Reconstruct maps coordinates back to image space:
// mean + Σ coords[i]·eigenface[i], as a Height x Width matrix.
func (m *Model) Reconstruct(coords []float64) (*mat.Dense, error) {
	if len(coords) > m.Rank() {
		return nil, mismatch("Reconstruct", "coordinate count", len(coords), fmt.Sprintf("<= %d", m.Rank()))
	}

	face := append([]float64(nil), m.mean...)
	v := mat.NewVecDense(len(face), face)
	for i, c := range coords {
		v.AddScaledVec(v, c, m.basis.ColView(i))
	}
	return mat.NewDense(m.height, m.width, face), nil
}

// ReconstructImage is Reconstruct rescaled for display.
func (m *Model) ReconstructImage(coords []float64) (*image.Gray, error) {
	face, err := m.Reconstruct(coords)
	if err != nil {
		return nil, err
	}
	return imaging.Normalize(face), nil
}

// ReconstructionError is the Euclidean distance between the stored face of
// ref and its reconstruction from k coordinates.
func (m *Model) ReconstructionError(ref types.FaceRef, k int) (float64, error) {
	coords, err := m.ProjectColumn(ref, k)
	if err != nil {
		return 0, err
	}
	rec, err := m.Reconstruct(coords)
	if err != nil {
		return 0, err
	}
	col, _ := m.column("ReconstructionError", ref)
	return floats.Distance(mat.Col(nil, col, m.faces), rec.RawMatrix().Data, 2), nil
}
