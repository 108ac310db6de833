package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pybib/pybib/internal/bibtex"
	"github.com/pybib/pybib/internal/clipboard"
	"github.com/pybib/pybib/internal/identifier"
)

var (
	printCopy    bool
	printNoCache bool
)

func init() {
	rootCmd.AddCommand(printCmd)
	printCmd.Flags().BoolVar(&printCopy, "copy", false, "Also copy the output to the system clipboard")
	printCmd.Flags().BoolVar(&printNoCache, "no-cache", false, "Bypass the lookup cache")
}

var printCmd = &cobra.Command{
	Use:   "print <doi|arxiv> <identifier>...",
	Short: "Fetch and print BibTeX entries",
	Long: `Fetch BibTeX entries for the given identifiers and print them to stdout.

Identifiers may be given bare, as URLs, or embedded in text; the extractor
pulls them out. Entries are printed in input order with normalized fields
and citation keys. Identifiers that fail to resolve are reported on stderr
and the rest of the batch continues.

Examples:
  pybib print doi 10.1103/PhysRevLett.116.061102
  pybib print arxiv 1803.07119 quant-ph/0410100
  pybib print doi https://doi.org/10.22331/q-2021-04-26-438 --copy`,
	Args: cobra.MinimumNArgs(2),
	RunE: runPrint,
}

func runPrint(cmd *cobra.Command, args []string) error {
	kind, ok := identifier.ParseKind(args[0])
	if !ok {
		exitWithError(ExitInputError, "unknown identifier kind %q (want doi or arxiv)", args[0])
	}

	ids, bad := collectIdentifiers(kind, args[1:])

	r, err := newResolver(printNoCache)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	defer r.close()

	entries, failed := r.resolveAll(cmd.Context(), ids, bibtex.NewKeySet())
	warnIncomplete(entries)

	if len(entries) > 0 {
		out := bibtex.FormatList(entries)
		fmt.Print(out)

		if printCopy {
			if err := clipboard.Copy(out); err != nil {
				warn("copying to clipboard: %v", err)
			}
		}
	}

	if failed > 0 {
		exitWithError(ExitLookupError, "%d of %d lookups failed", failed, len(ids))
	}
	if bad > 0 {
		exitWithError(ExitInputError, "%d of %d arguments had no %s identifier", bad, len(args)-1, kind)
	}
	return nil
}
