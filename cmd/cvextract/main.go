// Command cvextract runs the resume extraction pipeline from the command line
// and manages a local SQLite store of extracted profiles.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cvextract",
		Short:         "Extract structured candidate profiles from resume documents",
		Long:          "cvextract reads PDF, DOCX and image resumes (local files or s3:// objects), runs text extraction with OCR fallback and prints the structured profile.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newExtractCmd(), newListCmd(), newExportCmd(), newSchemaCmd(), newHashPasswordCmd())
	return root
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
