package eigenface

import (
	"fmt"
	"image"

	"github.com/andresmejia3/eigenfaces/internal/imaging"
	"github.com/andresmejia3/eigenfaces/internal/types"
	"gonum.org/v1/gonum/mat"
)

// MeanFace returns the mean face as a Height x Width matrix.
func (m *Model) MeanFace() *mat.Dense {
	return m.reshape(m.mean)
}

// MeanFaceImage is the mean face rounded to 8-bit pixels.
func (m *Model) MeanFaceImage() *image.Gray {
	return imaging.Clamp(m.MeanFace())
}

// Face returns the raw database face of ref.
func (m *Model) Face(ref types.FaceRef) (*mat.Dense, error) {
	col, err := m.column("Face", ref)
	if err != nil {
		return nil, err
	}
	return m.reshape(mat.Col(nil, col, m.faces)), nil
}

// FaceImage returns the raw database face of ref as stored pixels.
func (m *Model) FaceImage(ref types.FaceRef) (*image.Gray, error) {
	face, err := m.Face(ref)
	if err != nil {
		return nil, err
	}
	return imaging.Clamp(face), nil
}

// CenteredFace returns the face of ref minus the mean face.
func (m *Model) CenteredFace(ref types.FaceRef) (*mat.Dense, error) {
	col, err := m.column("CenteredFace", ref)
	if err != nil {
		return nil, err
	}
	return m.reshape(mat.Col(nil, col, m.centered)), nil
}

// CenteredFaceImage is CenteredFace rescaled for display.
func (m *Model) CenteredFaceImage(ref types.FaceRef) (*image.Gray, error) {
	face, err := m.CenteredFace(ref)
	if err != nil {
		return nil, err
	}
	return imaging.Normalize(face), nil
}

// eigenColumn maps ref to a basis column, which must also be below Rank.
func (m *Model) eigenColumn(op string, ref types.FaceRef) (int, error) {
	col, err := m.column(op, ref)
	if err != nil {
		return 0, err
	}
	if col >= m.Rank() {
		return 0, mismatch(op, "component", col, fmt.Sprintf("0..%d", m.Rank()-1))
	}
	return col, nil
}

// Eigenface returns the eigenface stored at the column of ref.
func (m *Model) Eigenface(ref types.FaceRef) (*mat.Dense, error) {
	col, err := m.eigenColumn("Eigenface", ref)
	if err != nil {
		return nil, err
	}
	return m.reshape(mat.Col(nil, col, m.basis)), nil
}

// EigenfaceImage is Eigenface rescaled for display.
func (m *Model) EigenfaceImage(ref types.FaceRef) (*image.Gray, error) {
	face, err := m.Eigenface(ref)
	if err != nil {
		return nil, err
	}
	return imaging.Normalize(face), nil
}

// Eigenvalue returns the squared normalised eigenvalue at the column of ref,
// which is the share of the total energy held by that eigenface.
func (m *Model) Eigenvalue(ref types.FaceRef) (float64, error) {
	col, err := m.eigenColumn("Eigenvalue", ref)
	if err != nil {
		return 0, err
	}
	return m.Energy()[col], nil
}

// I returns a copy of the raw face matrix, one face per column.
func (m *Model) I() *mat.Dense { return mat.DenseCopyOf(m.faces) }

// A returns a copy of the centred face matrix.
func (m *Model) A() *mat.Dense { return mat.DenseCopyOf(m.centered) }

// U returns a copy of the eigenface basis.
func (m *Model) U() *mat.Dense { return mat.DenseCopyOf(m.basis) }

// S returns the normalised eigenvalues as a vector.
func (m *Model) S() *mat.VecDense {
	s := m.NormalizedEigenvalues()
	return mat.NewVecDense(len(s), s)
}

// IImage renders the raw face matrix with one face per column.
func (m *Model) IImage() *image.Gray { return imaging.Clamp(m.faces) }

// AImage renders the centred face matrix rescaled for display.
func (m *Model) AImage() *image.Gray { return imaging.Normalize(m.centered) }

// UImage renders the basis rescaled for display.
func (m *Model) UImage() *image.Gray { return imaging.Normalize(m.basis) }
