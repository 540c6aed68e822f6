package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/andresmejia3/eigenfaces/internal/imaging"
	"github.com/andresmejia3/eigenfaces/internal/types"
	"github.com/spf13/cobra"
)

var (
	reconFace       string
	reconImage      string
	reconOutput     string
	reconComponents int
)

var reconstructCmd = &cobra.Command{
	Use:   "reconstruct",
	Short: "Rebuild a face from its first k eigenface coordinates",
	Long: "Projects a database face (--face s<subject>/<image>) or any image (--image) onto the first k eigenfaces " +
		"and writes the image reconstructed from those coordinates.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runReconstruct(cmd.Context())
	},
}

func init() {
	reconstructCmd.Flags().StringVarP(&reconFace, "face", "f", "", "Database face to reconstruct, e.g. s3/7")
	reconstructCmd.Flags().StringVarP(&reconImage, "image", "i", "", "Image file to reconstruct (resized to the database size)")
	reconstructCmd.Flags().StringVarP(&reconOutput, "output", "o", "reconstruction.png", "Output image (.png, .pgm or .jpg)")
	reconstructCmd.Flags().IntVarP(&reconComponents, "components", "k", 0, "Number of eigenfaces to use (0 = all)")
	reconstructCmd.MarkFlagsMutuallyExclusive("face", "image")
	reconstructCmd.MarkFlagsOneRequired("face", "image")
	rootCmd.AddCommand(reconstructCmd)
}

func runReconstruct(ctx context.Context) error {
	if reconComponents < 0 {
		return errors.New("--components must not be negative")
	}
	var ref types.FaceRef
	if reconFace != "" {
		var err error
		if ref, err = types.ParseFaceRef(reconFace); err != nil {
			return err
		}
	}

	model, err := loadModel(ctx)
	if err != nil {
		return err
	}

	var coords []float64
	if reconFace != "" {
		coords, err = model.ProjectColumn(ref, reconComponents)
		if err != nil {
			return err
		}
		dist, err := model.ReconstructionError(ref, reconComponents)
		if err != nil {
			return err
		}
		fmt.Printf("Reconstruction error for %s with %d components: %.4f\n", ref, len(coords), dist)
	} else {
		img, err := imaging.Load(reconImage, model.Width(), model.Height())
		if err != nil {
			return err
		}
		if coords, err = model.Coordinates(img, reconComponents); err != nil {
			return err
		}
	}

	out, err := model.ReconstructImage(coords)
	if err != nil {
		return err
	}
	if err := imaging.Save(reconOutput, out); err != nil {
		return fmt.Errorf("failed to write %s: %w", reconOutput, err)
	}
	fmt.Fprintf(os.Stderr, "💾 Wrote %s (%d components)\n", reconOutput, len(coords))
	return nil
}
