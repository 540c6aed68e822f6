package cmd

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/andresmejia3/eigenfaces/internal/eigenface"
	"github.com/andresmejia3/eigenfaces/internal/imaging"
	"github.com/andresmejia3/eigenfaces/internal/types"
	"github.com/spf13/cobra"
)

var (
	exportDir      string
	exportFormat   string
	exportMatrices bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the mean face, eigenfaces and centered faces as images",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		if exportFormat != "png" && exportFormat != "pgm" {
			return fmt.Errorf("invalid --format %q (want png or pgm)", exportFormat)
		}
		model, err := loadModel(cmd.Context())
		if err != nil {
			return err
		}
		n, err := runExport(cmd.Context(), model, exportDir, exportFormat, exportMatrices)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote %d files to %s\n", n, exportDir)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportDir, "output", "o", "eigenfaces_out", "Output directory")
	exportCmd.Flags().StringVar(&exportFormat, "format", "png", "Image format: png, pgm")
	exportCmd.Flags().BoolVar(&exportMatrices, "matrices", true, "Also write the I, A and U matrix images")
	rootCmd.AddCommand(exportCmd)
}

// runExport writes every displayable view of the model below dir and
// returns the number of files written.
func runExport(ctx context.Context, model *eigenface.Model, dir, format string, matrices bool) (int, error) {
	written := 0
	save := func(name string, img *image.Gray) error {
		if err := imaging.Save(filepath.Join(dir, name+"."+format), img); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		written++
		return nil
	}

	if err := save("mean", model.MeanFaceImage()); err != nil {
		return written, err
	}

	cfg := model.Config()
	for s := 1; s <= cfg.Subjects; s++ {
		for i := 1; i <= cfg.Images; i++ {
			if err := ctx.Err(); err != nil {
				return written, err
			}
			ref := types.FaceRef{Subject: s, Image: i}
			name := fmt.Sprintf("s%d_%d", s, i)

			centered, err := model.CenteredFaceImage(ref)
			if err != nil {
				return written, err
			}
			if err := save(filepath.Join("centered", name), centered); err != nil {
				return written, err
			}

			if ref.Column(cfg.Images) >= model.Rank() {
				continue
			}
			eig, err := model.EigenfaceImage(ref)
			if err != nil {
				return written, err
			}
			if err := save(filepath.Join("eigenfaces", name), eig); err != nil {
				return written, err
			}
		}
	}

	if matrices {
		for name, img := range map[string]*image.Gray{"I": model.IImage(), "A": model.AImage(), "U": model.UImage()} {
			if err := save(name, img); err != nil {
				return written, err
			}
		}
	}

	// Normalised eigenvalues, one per line, in component order
	var b strings.Builder
	for _, v := range model.NormalizedEigenvalues() {
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		b.WriteByte('\n')
	}
	if err := os.WriteFile(filepath.Join(dir, "S.txt"), []byte(b.String()), 0o644); err != nil {
		return written, err
	}
	written++
	return written, nil
}
