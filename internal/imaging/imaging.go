// Package imaging converts between gonum matrices and 8-bit greyscale rasters
// and handles reading and writing those rasters on disk.
package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/andresmejia3/eigenfaces/internal/pgm"
	"golang.org/x/image/draw"
	"gonum.org/v1/gonum/mat"
)

// Normalize linearly rescales the value range of m onto [0,255] and returns
// the result as a greyscale image with one pixel per matrix element.
// A constant matrix maps to an all-black image.
func Normalize(m mat.Matrix) *image.Gray {
	r, c := m.Dims()
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}

	img := image.NewGray(image.Rect(0, 0, c, r))
	span := hi - lo
	if span == 0 || math.IsInf(span, 0) || math.IsNaN(span) {
		return img
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			img.Pix[i*img.Stride+j] = uint8(math.Round((m.At(i, j) - lo) / span * 255))
		}
	}
	return img
}

// Clamp rounds every element of m to the nearest integer in [0,255]
// without rescaling.
func Clamp(m mat.Matrix) *image.Gray {
	r, c := m.Dims()
	img := image.NewGray(image.Rect(0, 0, c, r))
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := math.Round(m.At(i, j))
			img.Pix[i*img.Stride+j] = uint8(math.Max(0, math.Min(255, v)))
		}
	}
	return img
}

// ToGray converts any image to *image.Gray using the standard luma weights.
func ToGray(src image.Image) *image.Gray {
	if g, ok := src.(*image.Gray); ok && g.Bounds().Min == (image.Point{}) {
		return g
	}
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.SetGray(x-b.Min.X, y-b.Min.Y, color.GrayModel.Convert(src.At(x, y)).(color.Gray))
		}
	}
	return dst
}

// Resize scales src to width x height with Catmull-Rom interpolation.
// The image is returned unchanged when it already has that size.
func Resize(src *image.Gray, width, height int) *image.Gray {
	b := src.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return src
	}
	dst := image.NewGray(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

// Load decodes a PGM, PNG or JPEG file into greyscale. If width and height
// are positive and differ from the file's size, the image is resized.
func Load(path string, width, height int) (*image.Gray, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	g := ToGray(src)
	if width > 0 && height > 0 {
		g = Resize(g, width, height)
	}
	return g, nil
}

// Save writes img to path, choosing the encoder from the file extension
// (.pgm, .png, .jpg/.jpeg). Parent directories are created as needed.
func Save(path string, img *image.Gray) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".pgm" {
		return pgm.WriteFile(path, img)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	switch ext {
	case ".png":
		err = png.Encode(f, img)
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 95})
	default:
		err = fmt.Errorf("unsupported image extension %q", ext)
	}
	if err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
