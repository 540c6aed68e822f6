package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/andresmejia3/eigenfaces/internal/store"
	"github.com/andresmejia3/eigenfaces/internal/types"
	"github.com/andresmejia3/eigenfaces/internal/utils"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var storeComponents int

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Project every database face and save the coordinates to PostgreSQL",
	Long: "Builds the face space, projects each database face onto the first k eigenfaces and stores " +
		"the coordinates as pgvector vectors. Re-running on the same database replaces its projections.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		if storeComponents < 0 {
			utils.Die("Invalid flags", fmt.Errorf("--components must not be negative"))
		}

		model, err := loadModel(ctx)
		if err != nil {
			utils.Die("Failed to build face space", err)
		}

		cfg := model.Config()
		dbID, err := utils.GenerateDatabaseID(cfg.Root, cfg.Subjects, cfg.Images)
		if err != nil {
			utils.Die("Failed to fingerprint face database", err)
		}

		if err := openStore(ctx); err != nil {
			utils.Die("Failed to connect to database", err)
		}

		k := storeComponents
		if k == 0 || k > model.Rank() {
			k = model.Rank()
		}

		var bar *progressbar.ProgressBar
		if !opts.Quiet {
			bar = newBar(cfg.Len(), "🧬 Projecting faces")
		}

		projections := make([]types.Projection, 0, cfg.Len())
		for s := 1; s <= cfg.Subjects; s++ {
			for i := 1; i <= cfg.Images; i++ {
				if ctx.Err() != nil {
					utils.Die("Interrupted", ctx.Err())
				}
				ref := types.FaceRef{Subject: s, Image: i}
				coords, err := model.ProjectColumn(ref, k)
				if err != nil {
					utils.Die(fmt.Sprintf("Failed to project %s", ref), err)
				}
				projections = append(projections, types.Projection{
					Index:       ref.Column(cfg.Images),
					Path:        filepath.Join(cfg.Root, fmt.Sprintf("s%d", s), fmt.Sprintf("%d.pgm", i)),
					Ref:         &ref,
					Coordinates: coords,
				})
				if bar != nil {
					bar.Add(1)
				}
			}
		}
		if bar != nil {
			finishBar(bar)
		}

		abs, _ := filepath.Abs(cfg.Root)
		db := store.Database{
			ID:         dbID,
			Root:       abs,
			Subjects:   cfg.Subjects,
			Images:     cfg.Images,
			Width:      model.Width(),
			Height:     model.Height(),
			Components: k,
		}
		if err := DB.SaveDatabase(ctx, db, projections); err != nil {
			utils.Die("Failed to save projections", err)
		}
		logger.Info("projections stored", zap.String("database_id", dbID), zap.Int("faces", len(projections)), zap.Int("components", k))
		fmt.Fprintf(os.Stderr, "✅ Stored %d projections (%d components) for database %s\n", len(projections), k, shortID(dbID))
	},
}

func init() {
	storeCmd.Flags().IntVarP(&storeComponents, "components", "k", 0, "Number of eigenfaces to keep per face (0 = all)")
	rootCmd.AddCommand(storeCmd)
}
