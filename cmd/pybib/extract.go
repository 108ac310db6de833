package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pybib/pybib/internal/identifier"
	"github.com/pybib/pybib/internal/pdfscan"
)

func init() {
	rootCmd.AddCommand(extractCmd)
}

var extractCmd = &cobra.Command{
	Use:   "extract <doi|arxiv> <text-url-or-file>...",
	Short: "Extract identifiers from text, URLs, or files",
	Long: `Extract identifiers of one kind from each argument and print them,
one per line, in the order found.

An argument naming an existing file is read first: PDF files are scanned
with the PDF text extractor, anything else is read as plain text. Other
arguments are treated as literal text.

Examples:
  pybib extract arxiv "see https://arxiv.org/pdf/1803.07119.pdf"
  pybib extract doi paper.pdf
  pybib extract doi references.txt`,
	Args: cobra.MinimumNArgs(2),
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	kind, ok := identifier.ParseKind(args[0])
	if !ok {
		exitWithError(ExitInputError, "unknown identifier kind %q (want doi or arxiv)", args[0])
	}

	var ids []identifier.Identifier
	seen := make(map[string]bool)
	inputErrors := 0

	for _, arg := range args[1:] {
		found, err := extractFromArg(kind, arg)
		if err != nil {
			inputErrors++
			fmt.Fprintf(os.Stderr, "error: %s: %v\n", arg, err)
			continue
		}
		for _, id := range found {
			if !seen[id.Value] {
				seen[id.Value] = true
				ids = append(ids, id)
			}
		}
	}

	for _, id := range ids {
		fmt.Println(id.Value)
	}

	if inputErrors > 0 {
		os.Exit(ExitInputError)
	}
	return nil
}

// extractFromArg scans one argument. Existing files are read; everything
// else is treated as literal text.
func extractFromArg(kind identifier.Kind, arg string) ([]identifier.Identifier, error) {
	info, err := os.Stat(arg)
	if err != nil || info.IsDir() {
		return identifier.ExtractKind(arg, kind), nil
	}

	if strings.HasSuffix(strings.ToLower(arg), ".pdf") {
		return pdfscan.ScanFileKind(arg, kind, pdfscan.DefaultMaxPages)
	}

	data, err := os.ReadFile(arg)
	if err != nil {
		return nil, err
	}
	return identifier.ExtractKind(string(data), kind), nil
}
