package worker

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/andresmejia3/eigenfaces/internal/types"
)

// mockModel projects an image to its mean intensity repeated k times.
type mockModel struct {
	w, h int
}

func (m mockModel) Width() int  { return m.w }
func (m mockModel) Height() int { return m.h }

func (m mockModel) Coordinates(img *image.Gray, k int) ([]float64, error) {
	if img.Bounds().Dx() != m.w || img.Bounds().Dy() != m.h {
		return nil, errors.New("size mismatch")
	}
	sum := 0.0
	for _, p := range img.Pix {
		sum += float64(p)
	}
	out := make([]float64, k)
	for i := range out {
		out[i] = sum / float64(len(img.Pix))
	}
	return out, nil
}

// mockLoader builds a flat image whose value is parsed from the path ("img-42").
func mockLoader(sizes map[string][2]int) Loader {
	return func(path string, width, height int) (*image.Gray, error) {
		if strings.HasPrefix(path, "missing") {
			return nil, fmt.Errorf("open %s: no such file", path)
		}
		var v int
		fmt.Sscanf(path, "img-%d", &v)

		w, h := 2, 2
		if s, ok := sizes[path]; ok {
			w, h = s[0], s[1]
		}
		if width > 0 && height > 0 {
			w, h = width, height
		}
		img := image.NewGray(image.Rect(0, 0, w, h))
		for i := range img.Pix {
			img.Pix[i] = uint8(v)
		}
		return img, nil
	}
}

func TestProcess(t *testing.T) {
	w := &ProjectWorker{ID: 1, Model: mockModel{w: 2, h: 2}, Load: mockLoader(nil), K: 3}

	res := w.Process(types.ProjectTask{Index: 4, Path: "img-42"})
	if res.Err != nil {
		t.Fatalf("Process failed: %v", res.Err)
	}
	if res.Index != 4 || res.Path != "img-42" {
		t.Errorf("Task identity lost: %+v", res)
	}
	if len(res.Coordinates) != 3 || res.Coordinates[0] != 42 {
		t.Errorf("Expected [42 42 42], got %v", res.Coordinates)
	}
}

func TestProcess_Error(t *testing.T) {
	w := &ProjectWorker{ID: 7, Model: mockModel{w: 2, h: 2}, Load: mockLoader(nil), K: 1}

	res := w.Process(types.ProjectTask{Index: 0, Path: "missing.pgm"})
	if res.Err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(res.Err.Error(), "worker 7") {
		t.Errorf("Expected worker ID in error, got %v", res.Err)
	}
}

func TestProcess_Resize(t *testing.T) {
	sizes := map[string][2]int{"img-9": {5, 3}}
	model := mockModel{w: 2, h: 2}

	plain := &ProjectWorker{Model: model, Load: mockLoader(sizes), K: 1}
	if res := plain.Process(types.ProjectTask{Path: "img-9"}); res.Err == nil {
		t.Error("Expected size mismatch without resize")
	}

	resized := &ProjectWorker{Model: model, Load: mockLoader(sizes), K: 1, Resize: true}
	if res := resized.Process(types.ProjectTask{Path: "img-9"}); res.Err != nil {
		t.Errorf("Expected resize to fix the size, got %v", res.Err)
	}
}

func TestPoolRun(t *testing.T) {
	var tasks []types.ProjectTask
	for i := 0; i < 20; i++ {
		path := fmt.Sprintf("img-%d", i)
		if i == 13 {
			path = "missing-13"
		}
		tasks = append(tasks, types.ProjectTask{Index: i, Path: path})
	}

	var seen atomic.Int32
	pool := &Pool{
		Engines:  4,
		Model:    mockModel{w: 2, h: 2},
		Load:     mockLoader(nil),
		K:        2,
		OnResult: func(types.Projection) { seen.Add(1) },
	}

	results, err := pool.Run(context.Background(), tasks)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(results) != len(tasks) || int(seen.Load()) != len(tasks) {
		t.Fatalf("Expected %d results, got %d (callback saw %d)", len(tasks), len(results), seen.Load())
	}

	for i, res := range results {
		if res.Index != i {
			t.Fatalf("Results not ordered: position %d has index %d", i, res.Index)
		}
		if i == 13 {
			if res.Err == nil {
				t.Error("Expected error for missing image")
			}
			continue
		}
		if res.Err != nil || res.Coordinates[0] != float64(i) {
			t.Errorf("Task %d: got %v, err %v", i, res.Coordinates, res.Err)
		}
	}
}

func TestPoolRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tasks := make([]types.ProjectTask, 100)
	for i := range tasks {
		tasks[i] = types.ProjectTask{Index: i, Path: fmt.Sprintf("img-%d", i)}
	}

	pool := &Pool{Engines: 2, Model: mockModel{w: 2, h: 2}, Load: mockLoader(nil), K: 1}
	results, err := pool.Run(ctx, tasks)

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if len(results) == len(tasks) {
		t.Error("Expected cancelled run to skip tasks")
	}
}
