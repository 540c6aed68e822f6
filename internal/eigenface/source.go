package eigenface

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/andresmejia3/eigenfaces/internal/pgm"
	"github.com/andresmejia3/eigenfaces/internal/types"
)

// Source resolves database faces to greyscale rasters.
type Source interface {
	// Path identifies the face in error messages and progress events.
	Path(ref types.FaceRef) string
	Load(ref types.FaceRef) (*image.Gray, error)
}

// DirSource reads the on-disk layout <Root>/s<subject>/<image>.pgm.
type DirSource struct {
	Root string
}

func (d DirSource) Path(ref types.FaceRef) string {
	return filepath.Join(d.Root, fmt.Sprintf("s%d", ref.Subject), fmt.Sprintf("%d.pgm", ref.Image))
}

// Load opens, decodes and closes the file of ref.
func (d DirSource) Load(ref types.FaceRef) (*image.Gray, error) {
	return pgm.ReadFile(d.Path(ref))
}
