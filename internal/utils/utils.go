package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// Die is the unified exit strategy for the CLI.
// It prints a formatted error box and exits with status 1.
func Die(context string, err error) {
	ShowError(context, err)
	os.Exit(1)
}

// ShowError prints the formatted error box without exiting.
func ShowError(context string, err error) {
	fmt.Fprintf(os.Stderr, "\n---------------------------------------------------------\n")
	fmt.Fprintf(os.Stderr, "🚨 EIGENFACES ERROR: %s\n", context)
	if err != nil {
		fmt.Fprintf(os.Stderr, "DETAILS: %v\n", err)
	}
	fmt.Fprintf(os.Stderr, "---------------------------------------------------------\n")
}

// GenerateDatabaseID creates a deterministic hash for a face database
// based on its absolute root, its shape and the size and modification time
// of its first image.
func GenerateDatabaseID(root string, subjects, images int) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(filepath.Join(abs, "s1", "1.pgm"))
	if err != nil {
		return "", err
	}
	input := fmt.Sprintf("%s-%d-%d-%d-%d", abs, subjects, images, info.Size(), info.ModTime().UnixNano())
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:]), nil
}
