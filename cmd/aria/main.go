// Package main provides the aria CLI: tailored résumé and cover letter
// generation from a personal catalog of experiences, skills, and projects.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "aria",
	Short: "Tailored resume and cover letter generation",
	Long:  "Aria generates LaTeX resumes and cover letters tailored to a job posting, grounded in a personal catalog of experiences, skills, and projects, and in previously written cover letters.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
