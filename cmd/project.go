package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/andresmejia3/eigenfaces/internal/types"
	"github.com/andresmejia3/eigenfaces/internal/worker"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// ProjectOptions configures the project command
type ProjectOptions struct {
	Components int `validate:"gte=0"`
	NumEngines int `validate:"gte=1"`
	Resize     bool
	JSON       bool
}

var projectOpts ProjectOptions

var projectCmd = &cobra.Command{
	Use:   "project <image>...",
	Short: "Project images onto the eigenfaces and print their coordinates",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runProject(cmd.Context(), args, projectOpts)
	},
}

func init() {
	projectCmd.Flags().IntVarP(&projectOpts.Components, "components", "k", 0, "Number of eigenfaces to project onto (0 = all, larger values are clamped)")
	projectCmd.Flags().IntVarP(&projectOpts.NumEngines, "engines", "e", 1, "Number of parallel projection workers")
	projectCmd.Flags().BoolVar(&projectOpts.Resize, "resize", false, "Resize images to the database size instead of rejecting them")
	projectCmd.Flags().BoolVar(&projectOpts.JSON, "json", false, "Print results as JSON")
	rootCmd.AddCommand(projectCmd)
}

func runProject(ctx context.Context, paths []string, po ProjectOptions) error {
	if err := validate.Struct(po); err != nil {
		return fmt.Errorf("invalid project flags: %w", err)
	}

	model, err := loadModel(ctx)
	if err != nil {
		return err
	}

	tasks := make([]types.ProjectTask, len(paths))
	for i, p := range paths {
		tasks[i] = types.ProjectTask{Index: i, Path: p}
	}

	pool := &worker.Pool{
		Engines: po.NumEngines,
		Model:   model,
		K:       po.Components,
		Resize:  po.Resize,
	}
	if !opts.Quiet && len(tasks) > 1 {
		bar := newBar(len(tasks), "🔍 Projecting")
		pool.OnResult = func(types.Projection) { bar.Add(1) }
		defer finishBar(bar)
	}

	fmt.Fprintf(os.Stderr, "⚙️  Spawning %d projection workers...\n", po.NumEngines)
	results, err := pool.Run(ctx, tasks)
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "⚠️  %v\n", r.Err)
		}
	}

	if po.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.Err == nil {
				fmt.Printf("%s\t%s\n", r.Path, formatCoords(r.Coordinates))
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d images could not be projected", failed, len(results))
	}
	return nil
}

func finishBar(bar *progressbar.ProgressBar) {
	bar.Finish()
	fmt.Fprintln(os.Stderr)
}

// formatCoords renders a coordinate vector as space-separated values.
func formatCoords(coords []float64) string {
	parts := make([]string, len(coords))
	for i, c := range coords {
		parts[i] = strconv.FormatFloat(c, 'f', 4, 64)
	}
	return strings.Join(parts, " ")
}
