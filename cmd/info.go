package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var infoTop int

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Build the face space and print its dimensions and energy spectrum",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		model, err := loadModel(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("Faces:      %d\n", model.Len())
		fmt.Printf("Image size: %dx%d (%d pixels)\n", model.Width(), model.Height(), model.Pixels())
		fmt.Printf("Eigenfaces: %d\n\n", model.Rank())

		rows := energyTable(model.SingularValues(), model.NormalizedEigenvalues(), model.Energy(), infoTop)
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "#\tSIGMA\tNORMALIZED\tENERGY\tCUMULATIVE")
		fmt.Fprintln(w, "-\t-----\t----------\t------\t----------")
		for _, r := range rows {
			fmt.Fprintf(w, "%d\t%.4f\t%.6f\t%.4f%%\t%.4f%%\n", r.Component, r.Sigma, r.Normalized, 100*r.Energy, 100*r.Cumulative)
		}
		return w.Flush()
	},
}

func init() {
	infoCmd.Flags().IntVarP(&infoTop, "top", "t", 10, "Number of components to list (0 = all)")
	rootCmd.AddCommand(infoCmd)
}

type energyRow struct {
	Component  int
	Sigma      float64
	Normalized float64
	Energy     float64
	Cumulative float64
}

// energyTable lists the first top components (all when top <= 0) with their
// running share of the total energy.
func energyTable(sigma, normalized, energy []float64, top int) []energyRow {
	if top <= 0 || top > len(sigma) {
		top = len(sigma)
	}
	rows := make([]energyRow, 0, top)
	cum := 0.0
	for i := 0; i < top; i++ {
		cum += energy[i]
		rows = append(rows, energyRow{
			Component:  i + 1,
			Sigma:      sigma[i],
			Normalized: normalized[i],
			Energy:     energy[i],
			Cumulative: cum,
		})
	}
	return rows
}
