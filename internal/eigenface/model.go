// Package eigenface builds a PCA face space from a database of greyscale
// faces and projects faces into and out of it.
//
// A Model is built once by New, which reads every database image, computes
// the mean face, centres the faces and extracts the eigenfaces with a thin
// SVD. After New returns the model is immutable, so queries may run
// concurrently.
package eigenface

import (
	"context"
	"fmt"

	"github.com/andresmejia3/eigenfaces/internal/types"
	"github.com/go-playground/validator/v10"
	"gonum.org/v1/gonum/mat"
)

var validate = validator.New()

// Config locates a face database and gives its shape.
type Config struct {
	Root     string `validate:"required"`
	Subjects int    `validate:"gte=1"`
	Images   int    `validate:"gte=1"`
}

// Validate checks that the database has a location and at least one face.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Len is the number of faces in the database.
func (c Config) Len() int { return c.Subjects * c.Images }

// Option customises construction.
type Option func(*options)

type options struct {
	source   Source
	observer Observer
}

// WithSource replaces the default DirSource rooted at Config.Root.
func WithSource(s Source) Option {
	return func(o *options) { o.source = s }
}

// WithObserver receives stage and per-image progress events.
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observer = obs }
}

// Model is a trained eigenface space. All fields are written by New only.
type Model struct {
	cfg    Config
	src    Source
	width  int
	height int

	faces    *mat.Dense // pixels x N, raw intensities
	mean     []float64  // pixels
	centered *mat.Dense // pixels x N
	basis    *mat.Dense // pixels x rank, orthonormal columns
	sigma    []float64  // rank, descending
}

// New reads the database described by cfg and computes its eigenfaces.
// It either returns a complete model or an error; no partial model is kept.
// ctx is checked between image reads.
func New(ctx context.Context, cfg Config, opts ...Option) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{
		source:   DirSource{Root: cfg.Root},
		observer: NopObserver{},
	}
	for _, fn := range opts {
		fn(&o)
	}

	m := &Model{cfg: cfg, src: o.source}
	obs := o.observer

	obs.Stage(StageProbe)
	if err := m.probe(); err != nil {
		return nil, err
	}

	obs.Stage(StageLoad)
	if err := m.load(ctx, obs); err != nil {
		return nil, err
	}

	obs.Stage(StageMean)
	m.computeMean()

	obs.Stage(StageCenter)
	m.center()

	obs.Stage(StageBasis)
	if err := m.extractBasis(); err != nil {
		return nil, err
	}

	obs.Stage(StageDone)
	return m, nil
}

// Config returns the parameters the model was built from.
func (m *Model) Config() Config { return m.cfg }

// Width of every face, in pixels.
func (m *Model) Width() int { return m.width }

// Height of every face, in pixels.
func (m *Model) Height() int { return m.height }

// Pixels is the length of a face vector.
func (m *Model) Pixels() int { return m.width * m.height }

// Len is the number of faces N.
func (m *Model) Len() int { return m.cfg.Len() }

// Rank is the number of eigenfaces, min(Pixels, Len). Coordinates never
// have more elements than this.
func (m *Model) Rank() int { return len(m.sigma) }

// column validates ref and converts it to a face-matrix column.
func (m *Model) column(op string, ref types.FaceRef) (int, error) {
	if ref.Subject < 1 || ref.Subject > m.cfg.Subjects {
		return 0, mismatch(op, "subject", ref.Subject, fmt.Sprintf("1..%d", m.cfg.Subjects))
	}
	if ref.Image < 1 || ref.Image > m.cfg.Images {
		return 0, mismatch(op, "image", ref.Image, fmt.Sprintf("1..%d", m.cfg.Images))
	}
	return ref.Column(m.cfg.Images), nil
}
