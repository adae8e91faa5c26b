package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amirrezaskh/aria/internal/fetch"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a tailored resume and cover letter",
	Long: `Runs the full workflow against a job posting: tailored experiences, skills,
project selection and summaries, highlights, a compiled resume, and a cover
letter grounded in previously written ones.

The posting comes from --job (a text file) or --job-url (fetched from the
web). Configuration can be loaded from a JSON file using --config;
command-line flags override config file values.`,
	RunE: runGenerate,
}

var (
	genConfigPath string
	genJob        string
	genJobURL     string
	genCompany    string
	genPosition   string
	genBrowser    bool
	genVerbose    bool
)

func init() {
	generateCmd.Flags().StringVar(&genConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	generateCmd.Flags().StringVarP(&genJob, "job", "j", "", "Path to job posting text file (mutually exclusive with --job-url)")
	generateCmd.Flags().StringVar(&genJobURL, "job-url", "", "URL to fetch job posting from (mutually exclusive with --job)")
	generateCmd.Flags().StringVarP(&genCompany, "company", "c", "", "Company name (required)")
	generateCmd.Flags().StringVarP(&genPosition, "position", "p", "", "Position title (required)")
	generateCmd.Flags().BoolVar(&genBrowser, "browser", false, "Use headless browser for JavaScript-rendered job pages (requires Chrome)")
	generateCmd.Flags().BoolVarP(&genVerbose, "verbose", "v", false, "Print stage progress and run summary details")

	_ = generateCmd.MarkFlagRequired("company")
	_ = generateCmd.MarkFlagRequired("position")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	posting, err := loadPosting(ctx, genJob, genJobURL, genBrowser)
	if err != nil {
		return err
	}

	a, cleanup, err := buildApp(ctx, genConfigPath, genVerbose)
	if err != nil {
		return err
	}
	defer cleanup()

	state, err := a.generator.GenerateDocuments(ctx, posting, genCompany, genPosition)
	if err != nil {
		if state != nil {
			a.printer.PrintIssues(state)
		}
		return err
	}

	a.printer.PrintRunSummary(state)
	return nil
}

// loadPosting resolves the job posting text from a file or a URL.
func loadPosting(ctx context.Context, jobPath, jobURL string, browser bool) (string, error) {
	switch {
	case jobPath != "" && jobURL != "":
		return "", fmt.Errorf("--job and --job-url are mutually exclusive")
	case jobPath != "":
		data, err := os.ReadFile(jobPath)
		if err != nil {
			return "", fmt.Errorf("failed to read job posting file: %w", err)
		}
		if strings.TrimSpace(string(data)) == "" {
			return "", fmt.Errorf("job posting file %s is empty", jobPath)
		}
		return string(data), nil
	case jobURL != "":
		return fetch.Posting(ctx, jobURL, &fetch.Options{AllowBrowser: browser})
	default:
		return "", fmt.Errorf("either --job or --job-url is required")
	}
}
