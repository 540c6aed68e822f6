package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/andresmejia3/eigenfaces/internal/utils"
	"github.com/spf13/cobra"
)

var (
	resetDB    bool
	resetFiles bool
	resetDir   string
	resetYes   bool
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset stored state (PostgreSQL tables, exported images)",
	Long:  "Clears stored data. By default, it resets everything. Use flags to clear specific components.",
	Run: func(cmd *cobra.Command, args []string) {
		// If no flags are set, default to clearing EVERYTHING
		if !resetDB && !resetFiles {
			resetDB = true
			resetFiles = true
		}

		reader := bufio.NewReader(os.Stdin)

		if resetDB {
			if resetYes || confirm(reader, "⚠️  Are you sure you want to DROP all database tables?") {
				if err := openStore(cmd.Context()); err != nil {
					utils.Die("Failed to connect to database", err)
				}
				fmt.Println("🗑️  Clearing Database...")
				if err := DB.Reset(cmd.Context()); err != nil {
					utils.Die("Failed to reset database", err)
				}
			}
		}

		if resetFiles {
			if resetYes || confirm(reader, fmt.Sprintf("⚠️  Are you sure you want to delete %s?", resetDir)) {
				fmt.Println("🗑️  Clearing Exported Images...")
				removeDir(resetDir)
			}
		}

		fmt.Println("✨ Reset Complete.")
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetDB, "db", false, "Clear PostgreSQL database")
	resetCmd.Flags().BoolVar(&resetFiles, "files", false, "Clear exported images")
	resetCmd.Flags().StringVar(&resetDir, "dir", "eigenfaces_out", "Export directory removed by --files")
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "Do not ask for confirmation")
	rootCmd.AddCommand(resetCmd)
}

func confirm(r *bufio.Reader, prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	res, _ := r.ReadString('\n')
	res = strings.TrimSpace(strings.ToLower(res))
	return res == "y" || res == "yes"
}

func removeDir(path string) {
	if err := os.RemoveAll(path); err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  Failed to remove %s: %v\n", path, err)
	}
}
