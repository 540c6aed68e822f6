package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/andresmejia3/eigenfaces/internal/store"
	"github.com/andresmejia3/eigenfaces/internal/utils"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list [database_id]",
	Short: "List stored face databases, or the projections of one of them",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		if err := openStore(ctx); err != nil {
			utils.Die("Failed to connect to database", err)
		}

		dbs, err := DB.ListDatabases(ctx)
		if err != nil {
			utils.Die("Failed to list face databases", err)
		}

		if len(args) == 1 {
			d, err := findDatabase(dbs, args[0])
			if err != nil {
				utils.Die("Unknown face database", err)
			}
			projections, err := DB.GetProjections(ctx, d.ID)
			if err != nil {
				utils.Die("Failed to load projections", err)
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "FACE\tCOORDINATES")
			fmt.Fprintln(w, "----\t-----------")
			for _, p := range projections {
				fmt.Fprintf(w, "%s\t%s\n", p.Ref, formatCoords(p.Coordinates))
			}
			w.Flush()
			return
		}

		if len(dbs) == 0 {
			fmt.Println("No face databases stored.")
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tROOT\tSHAPE\tSIZE\tK\tFACES\tINDEXED")
		fmt.Fprintln(w, "--\t----\t-----\t----\t-\t-----\t-------")

		for _, d := range dbs {
			fmt.Fprintf(w, "%s\t%s\t%dx%d\t%dx%d\t%d\t%d\t%s\n",
				shortID(d.ID), d.Root, d.Subjects, d.Images, d.Width, d.Height, d.Components, d.Count,
				d.IndexedAt.Local().Format("2006-01-02 15:04"))
		}
		w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

// findDatabase resolves a full or abbreviated database ID. Ambiguous
// prefixes are rejected.
func findDatabase(dbs []store.Database, prefix string) (store.Database, error) {
	var found []store.Database
	for _, d := range dbs {
		if strings.HasPrefix(d.ID, prefix) {
			found = append(found, d)
		}
	}
	switch len(found) {
	case 0:
		return store.Database{}, fmt.Errorf("no database with id %q", prefix)
	case 1:
		return found[0], nil
	default:
		return store.Database{}, fmt.Errorf("id prefix %q matches %d databases", prefix, len(found))
	}
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
