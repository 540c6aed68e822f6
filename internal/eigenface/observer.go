package eigenface

import "github.com/andresmejia3/eigenfaces/internal/types"

// Stage names a construction step of a Model.
type Stage string

const (
	StageProbe  Stage = "probe"
	StageLoad   Stage = "load"
	StageMean   Stage = "mean"
	StageCenter Stage = "center"
	StageBasis  Stage = "basis"
	StageDone   Stage = "done"
)

// Progress is emitted once per database image, just before it is read.
// Index is 0-based and equals the face-matrix column; Total is N.
type Progress struct {
	Ref   types.FaceRef
	Index int
	Total int
	Path  string
}

// Observer receives construction events. It is purely informational:
// nothing it does can influence the numerical result.
type Observer interface {
	Stage(s Stage)
	Loading(p Progress)
}

// NopObserver discards every event.
type NopObserver struct{}

func (NopObserver) Stage(Stage)      {}
func (NopObserver) Loading(Progress) {}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	OnStage   func(Stage)
	OnLoading func(Progress)
}

func (o ObserverFuncs) Stage(s Stage) {
	if o.OnStage != nil {
		o.OnStage(s)
	}
}

func (o ObserverFuncs) Loading(p Progress) {
	if o.OnLoading != nil {
		o.OnLoading(p)
	}
}

// MultiObserver fans every event out to each observer in order.
type MultiObserver []Observer

func (m MultiObserver) Stage(s Stage) {
	for _, o := range m {
		o.Stage(s)
	}
}

func (m MultiObserver) Loading(p Progress) {
	for _, o := range m {
		o.Loading(p)
	}
}
