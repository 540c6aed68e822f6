package eigenface

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/andresmejia3/eigenfaces/internal/pgm"
	"github.com/andresmejia3/eigenfaces/internal/types"
	"github.com/stretchr/testify/require"
)

type pixelFunc func(subject, image, x, y int) uint8

// writeDatabase lays out a PGM database under a fresh temp dir and returns its root.
func writeDatabase(t *testing.T, subjects, images, w, h int, px pixelFunc) string {
	t.Helper()
	root := t.TempDir()
	for s := 1; s <= subjects; s++ {
		dir := filepath.Join(root, fmt.Sprintf("s%d", s))
		require.NoError(t, os.MkdirAll(dir, 0o755))
		for i := 1; i <= images; i++ {
			img := image.NewGray(image.Rect(0, 0, w, h))
			for y := 0; y < h; y++ {
				for x := 0; x < w; x++ {
					img.Pix[y*img.Stride+x] = px(s, i, x, y)
				}
			}
			require.NoError(t, pgm.WriteFile(filepath.Join(dir, fmt.Sprintf("%d.pgm", i)), img))
		}
	}
	return root
}

// uniformSubjects is the 2x2 database of flat 4x4 images used throughout:
// subject 1 is 50 everywhere, subject 2 is 200.
func uniformSubjects(subject, _, _, _ int) uint8 {
	if subject == 1 {
		return 50
	}
	return 200
}

// noisyFaces returns deterministic pseudo-random pixels.
func noisyFaces(seed int64) pixelFunc {
	rng := rand.New(rand.NewSource(seed))
	cache := map[[4]int]uint8{}
	return func(s, i, x, y int) uint8 {
		k := [4]int{s, i, x, y}
		if v, ok := cache[k]; ok {
			return v
		}
		v := uint8(rng.Intn(256))
		cache[k] = v
		return v
	}
}

func buildModel(t *testing.T, subjects, images, w, h int, px pixelFunc, opts ...Option) *Model {
	t.Helper()
	root := writeDatabase(t, subjects, images, w, h, px)
	m, err := New(context.Background(), Config{Root: root, Subjects: subjects, Images: images}, opts...)
	require.NoError(t, err)
	return m
}

func allRefs(m *Model) []types.FaceRef {
	var refs []types.FaceRef
	for s := 1; s <= m.Config().Subjects; s++ {
		for i := 1; i <= m.Config().Images; i++ {
			refs = append(refs, types.FaceRef{Subject: s, Image: i})
		}
	}
	return refs
}

// memSource serves images from memory and can inject failures.
type memSource struct {
	images map[types.FaceRef]*image.Gray
}

func (m memSource) Path(ref types.FaceRef) string { return "mem:" + ref.String() }

func (m memSource) Load(ref types.FaceRef) (*image.Gray, error) {
	img, ok := m.images[ref]
	if !ok {
		return nil, fmt.Errorf("no image for %s: %w", ref, fs.ErrNotExist)
	}
	return img, nil
}

func flatImage(w, h int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

func requireMismatch(t *testing.T, err error) *DimensionMismatchError {
	t.Helper()
	var dm *DimensionMismatchError
	require.True(t, errors.As(err, &dm), "expected DimensionMismatchError, got %v", err)
	return dm
}
