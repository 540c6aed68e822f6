package eigenface

import (
	"context"
	"fmt"
	"image"

	"github.com/andresmejia3/eigenfaces/internal/types"
	"gonum.org/v1/gonum/mat"
)

// probe fixes the face size from subject 1, image 1.
func (m *Model) probe() error {
	img, err := m.read(types.FaceRef{Subject: 1, Image: 1})
	if err != nil {
		return err
	}
	b := img.Bounds()
	if b.Empty() {
		return &DatabaseAccessError{Path: m.src.Path(types.FaceRef{Subject: 1, Image: 1}), Err: fmt.Errorf("empty image")}
	}
	m.width, m.height = b.Dx(), b.Dy()
	return nil
}

// load fills the face matrix, subjects in the outer loop and images in the
// inner loop, so that column = (subject-1)*Images + image-1.
func (m *Model) load(ctx context.Context, obs Observer) error {
	n := m.cfg.Len()
	m.faces = mat.NewDense(m.Pixels(), n, nil)

	for s := 1; s <= m.cfg.Subjects; s++ {
		for i := 1; i <= m.cfg.Images; i++ {
			if err := ctx.Err(); err != nil {
				m.faces = nil
				return err
			}

			ref := types.FaceRef{Subject: s, Image: i}
			col := ref.Column(m.cfg.Images)
			obs.Loading(Progress{Ref: ref, Index: col, Total: n, Path: m.src.Path(ref)})

			img, err := m.read(ref)
			if err == nil {
				err = m.checkSize("load "+ref.String(), img)
			}
			if err != nil {
				m.faces = nil
				return err
			}
			m.faces.SetCol(col, flatten(img))
		}
	}
	return nil
}

// read loads ref through the source, reporting failures as DatabaseAccessError.
func (m *Model) read(ref types.FaceRef) (*image.Gray, error) {
	img, err := m.src.Load(ref)
	if err != nil {
		return nil, &DatabaseAccessError{Path: m.src.Path(ref), Err: err}
	}
	return img, nil
}

func (m *Model) checkSize(op string, img *image.Gray) error {
	b := img.Bounds()
	if b.Dx() != m.width || b.Dy() != m.height {
		return mismatch(op, "image size", fmt.Sprintf("%dx%d", b.Dx(), b.Dy()), fmt.Sprintf("%dx%d", m.width, m.height))
	}
	return nil
}

// flatten copies img into a row-major vector: index = y*width + x.
func flatten(img *image.Gray) []float64 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	v := make([]float64, w*h)
	for y := 0; y < h; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):]
		for x := 0; x < w; x++ {
			v[y*w+x] = float64(row[x])
		}
	}
	return v
}

// reshape is the inverse of flatten. The returned matrix owns a copy of v.
func (m *Model) reshape(v []float64) *mat.Dense {
	data := make([]float64, len(v))
	copy(data, v)
	return mat.NewDense(m.height, m.width, data)
}
