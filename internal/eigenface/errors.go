package eigenface

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig wraps validation failures of Config.
	ErrInvalidConfig = errors.New("eigenface: invalid configuration")

	// ErrFactorization is returned when the SVD of the centred faces does not converge.
	ErrFactorization = errors.New("eigenface: singular value decomposition failed")
)

// DatabaseAccessError reports a database image that is missing, unreadable
// or malformed. Construction fails as a whole when one is encountered.
type DatabaseAccessError struct {
	Path string
	Err  error
}

func (e *DatabaseAccessError) Error() string {
	return fmt.Sprintf("eigenface: cannot read database image %s: %v", e.Path, e.Err)
}

func (e *DatabaseAccessError) Unwrap() error { return e.Err }

// DimensionMismatchError reports an input whose shape or index does not fit
// the model: a wrongly sized image, a coordinate vector longer than the
// basis, or a (subject, image) pair outside the database.
type DimensionMismatchError struct {
	Op   string
	What string
	Got  string
	Want string
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("eigenface: %s: %s mismatch: got %s, want %s", e.Op, e.What, e.Got, e.Want)
}

func mismatch(op, what string, got, want any) error {
	return &DimensionMismatchError{Op: op, What: what, Got: fmt.Sprint(got), Want: fmt.Sprint(want)}
}
