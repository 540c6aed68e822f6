// Package pgm reads and writes Netpbm greymap (PGM) rasters as *image.Gray.
//
// Decoding is done by github.com/spakin/netpbm, which accepts both the raw
// (P5) and plain (P2) variants with any maxval up to 65535; samples are
// rescaled to 8 bits. Encode always writes raw P5 with maxval 255.
// Importing the package registers the Netpbm formats with the image package.
package pgm

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"

	"github.com/spakin/netpbm"
)

var (
	// ErrFormat is returned for anything that is not a well-formed PGM stream.
	ErrFormat = errors.New("pgm: invalid format")
)

// DecodeGray reads a PGM image from r and returns it as *image.Gray.
//
// The header is checked against the stream length before any raster is
// allocated: every sample takes at least one byte in both variants.
func DecodeGray(r io.Reader) (*image.Gray, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	cfg, err := netpbm.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: bad dimensions %dx%d", ErrFormat, cfg.Width, cfg.Height)
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(len(data)) {
		return nil, fmt.Errorf("%w: truncated raster: %dx%d image in %d bytes", ErrFormat, cfg.Width, cfg.Height, len(data))
	}

	img, err := netpbm.Decode(bytes.NewReader(data), &netpbm.DecodeOptions{Target: netpbm.PGM, Exact: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if img.Format() != netpbm.PGM {
		return nil, fmt.Errorf("%w: not a greymap", ErrFormat)
	}
	return toGray(img), nil
}

// DecodeConfig returns the dimensions of a PGM image without reading the raster.
func DecodeConfig(r io.Reader) (image.Config, error) {
	cfg, err := netpbm.DecodeConfig(r)
	if err != nil {
		return image.Config{}, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return cfg, nil
}

// toGray rescales a decoded greymap of any maxval to 8-bit samples.
func toGray(src image.Image) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			dst.SetGray(x, y, color.GrayModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.Gray))
		}
	}
	return dst
}

// ReadFile opens path, decodes it and closes the file before returning.
func ReadFile(path string) (*image.Gray, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return DecodeGray(f)
}

// Encode writes img as a binary (P5) PGM with maxval 255.
func Encode(w io.Writer, img *image.Gray) error {
	return netpbm.Encode(w, img, &netpbm.EncodeOptions{Format: netpbm.PGM, MaxValue: 255})
}

// WriteFile encodes img to path, replacing any existing file.
func WriteFile(path string, img *image.Gray) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
