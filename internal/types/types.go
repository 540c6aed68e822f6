package types

import (
	"fmt"
	"strconv"
	"strings"
)

// FaceRef addresses one database image by 1-based subject and image number.
type FaceRef struct {
	Subject int `json:"subject"`
	Image   int `json:"image"`
}

// Column is the 0-based face-matrix column of r for a database with
// imagesPerSubject images per subject.
func (r FaceRef) Column(imagesPerSubject int) int {
	return (r.Subject-1)*imagesPerSubject + r.Image - 1
}

func (r FaceRef) String() string {
	return fmt.Sprintf("s%d/%d", r.Subject, r.Image)
}

// ParseFaceRef parses the "s<subject>/<image>" form produced by String.
// The leading "s" is optional.
func ParseFaceRef(s string) (FaceRef, error) {
	subj, img, ok := strings.Cut(strings.TrimPrefix(s, "s"), "/")
	if !ok {
		return FaceRef{}, fmt.Errorf("invalid face reference %q (want s<subject>/<image>)", s)
	}
	si, err := strconv.Atoi(subj)
	if err != nil {
		return FaceRef{}, fmt.Errorf("invalid subject in %q: %w", s, err)
	}
	ii, err := strconv.Atoi(img)
	if err != nil {
		return FaceRef{}, fmt.Errorf("invalid image in %q: %w", s, err)
	}
	return FaceRef{Subject: si, Image: ii}, nil
}

// ProjectTask represents a single probe image sent to a worker for projection
type ProjectTask struct {
	Index int
	Path  string
}

// Projection is the coordinate vector of one face in eigenface space
type Projection struct {
	Index       int       `json:"index"`
	Path        string    `json:"path,omitempty"`
	Ref         *FaceRef  `json:"ref,omitempty"`
	Coordinates []float64 `json:"coordinates"`
	Err         error     `json:"-"`
}
