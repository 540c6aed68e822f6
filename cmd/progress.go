package cmd

import (
	"fmt"
	"os"

	"github.com/andresmejia3/eigenfaces/internal/eigenface"
	"github.com/schollz/progressbar/v3"
)

// barObserver renders model construction on stderr: a progress bar while
// images load and one status line per numeric stage.
type barObserver struct {
	total int
	bar   *progressbar.ProgressBar
}

func newBarObserver(total int) *barObserver {
	return &barObserver{total: total}
}

func (o *barObserver) Stage(s eigenface.Stage) {
	switch s {
	case eigenface.StageProbe:
		fmt.Fprintln(os.Stderr, "📐 Probing image size...")
	case eigenface.StageLoad:
		o.bar = newBar(o.total, "🖼️  Loading faces")
	case eigenface.StageMean:
		o.finish()
		fmt.Fprintln(os.Stderr, "➗ Computing mean face...")
	case eigenface.StageCenter:
		fmt.Fprintln(os.Stderr, "🎯 Centering faces...")
	case eigenface.StageBasis:
		fmt.Fprintln(os.Stderr, "🧮 Computing eigenfaces (SVD)...")
	case eigenface.StageDone:
		fmt.Fprintln(os.Stderr, "✅ Initialization done")
	}
}

func (o *barObserver) Loading(p eigenface.Progress) {
	if o.bar == nil {
		return
	}
	o.bar.Describe(fmt.Sprintf("🖼️  Loading face %d expression %d", p.Ref.Subject, p.Ref.Image))
	o.bar.Add(1)
}

func (o *barObserver) finish() {
	if o.bar != nil {
		o.bar.Finish()
		fmt.Fprintln(os.Stderr)
		o.bar = nil
	}
}

func newBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr), // Write bar to Stderr
		progressbar.OptionShowCount(),
	)
}
