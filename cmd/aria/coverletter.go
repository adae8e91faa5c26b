package main

import (
	"context"

	"github.com/spf13/cobra"
)

var coverLetterCmd = &cobra.Command{
	Use:   "cover-letter",
	Short: "Generate a cover letter for an existing resume",
	Long: `Writes a cover letter for a job posting against an already generated
resume, without regenerating any resume sections. The resume is referenced
by path; a .pdf path resolves to the .tex source written next to it.`,
	RunE: runCoverLetter,
}

var (
	clConfigPath string
	clJob        string
	clJobURL     string
	clCompany    string
	clPosition   string
	clResume     string
	clBrowser    bool
	clVerbose    bool
)

func init() {
	coverLetterCmd.Flags().StringVar(&clConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	coverLetterCmd.Flags().StringVarP(&clJob, "job", "j", "", "Path to job posting text file (mutually exclusive with --job-url)")
	coverLetterCmd.Flags().StringVar(&clJobURL, "job-url", "", "URL to fetch job posting from (mutually exclusive with --job)")
	coverLetterCmd.Flags().StringVarP(&clCompany, "company", "c", "", "Company name (required)")
	coverLetterCmd.Flags().StringVarP(&clPosition, "position", "p", "", "Position title (required)")
	coverLetterCmd.Flags().StringVarP(&clResume, "resume", "r", "", "Path to the existing resume artifact (required)")
	coverLetterCmd.Flags().BoolVar(&clBrowser, "browser", false, "Use headless browser for JavaScript-rendered job pages (requires Chrome)")
	coverLetterCmd.Flags().BoolVarP(&clVerbose, "verbose", "v", false, "Print stage progress and run summary details")

	_ = coverLetterCmd.MarkFlagRequired("company")
	_ = coverLetterCmd.MarkFlagRequired("position")
	_ = coverLetterCmd.MarkFlagRequired("resume")

	rootCmd.AddCommand(coverLetterCmd)
}

func runCoverLetter(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	posting, err := loadPosting(ctx, clJob, clJobURL, clBrowser)
	if err != nil {
		return err
	}

	a, cleanup, err := buildApp(ctx, clConfigPath, clVerbose)
	if err != nil {
		return err
	}
	defer cleanup()

	state, err := a.generator.GenerateCoverLetter(ctx, posting, clCompany, clPosition, clResume)
	if err != nil {
		if state != nil {
			a.printer.PrintIssues(state)
		}
		return err
	}

	a.printer.PrintRunSummary(state)
	return nil
}
