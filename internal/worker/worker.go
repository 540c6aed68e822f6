package worker

import (
	"context"
	"fmt"
	"image"
	"sort"
	"sync"

	"github.com/andresmejia3/eigenfaces/internal/imaging"
	"github.com/andresmejia3/eigenfaces/internal/types"
)

// Projector is the read-only view of a trained model that workers share.
type Projector interface {
	Width() int
	Height() int
	Coordinates(img *image.Gray, k int) ([]float64, error)
}

// Loader reads a probe image. Positive width/height request a resize.
type Loader func(path string, width, height int) (*image.Gray, error)

// ProjectWorker turns probe image paths into coordinate vectors.
type ProjectWorker struct {
	ID     int
	Model  Projector
	Load   Loader
	K      int
	Resize bool
}

// Process loads and projects a single task. Failures are reported in the
// returned Projection rather than aborting the worker.
func (w *ProjectWorker) Process(task types.ProjectTask) types.Projection {
	res := types.Projection{Index: task.Index, Path: task.Path}

	width, height := 0, 0
	if w.Resize {
		width, height = w.Model.Width(), w.Model.Height()
	}

	img, err := w.Load(task.Path, width, height)
	if err != nil {
		res.Err = fmt.Errorf("worker %d: %w", w.ID, err)
		return res
	}

	coords, err := w.Model.Coordinates(img, w.K)
	if err != nil {
		res.Err = fmt.Errorf("worker %d: %s: %w", w.ID, task.Path, err)
		return res
	}
	res.Coordinates = coords
	return res
}

// Pool fans tasks out to Engines workers sharing one model.
type Pool struct {
	Engines int
	Model   Projector
	K       int
	Resize  bool
	Load    Loader

	// OnResult, if set, is called from the collecting goroutine after every task.
	OnResult func(types.Projection)
}

// Run projects every task and returns the results ordered by task index.
// Tasks not yet dispatched when ctx is cancelled are skipped.
func (p *Pool) Run(ctx context.Context, tasks []types.ProjectTask) ([]types.Projection, error) {
	engines := p.Engines
	if engines < 1 {
		engines = 1
	}
	load := p.Load
	if load == nil {
		load = imaging.Load
	}

	taskChan := make(chan types.ProjectTask, engines)
	resultsChan := make(chan types.Projection, engines*2)
	var wg sync.WaitGroup

	for i := 0; i < engines; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			w := &ProjectWorker{ID: workerID, Model: p.Model, Load: load, K: p.K, Resize: p.Resize}
			for task := range taskChan {
				resultsChan <- w.Process(task)
			}
		}(i)
	}

	// Producer runs concurrently so the collector below never blocks it.
	go func() {
		defer close(taskChan)
		for _, task := range tasks {
			if ctx.Err() != nil {
				return
			}
			select {
			case taskChan <- task:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	results := make([]types.Projection, 0, len(tasks))
	for res := range resultsChan {
		if p.OnResult != nil {
			p.OnResult(res)
		}
		results = append(results, res)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Index < results[j].Index })
	return results, ctx.Err()
}
