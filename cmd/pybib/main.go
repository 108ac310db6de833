// Package main provides the pybib CLI entry point.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pybib",
	Short: "Fetch and normalize BibTeX entries for DOIs and arXiv IDs",
	Long: `pybib turns bibliographic identifiers into clean BibTeX.

It extracts DOIs and arXiv IDs from free-form text, URLs, and PDF files,
fetches entry metadata from doi.org and the arXiv API, normalizes the
records, and prints them, copies them to the clipboard, or appends them
to a .bib file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Version = Version
}
