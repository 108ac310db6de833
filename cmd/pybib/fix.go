package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pybib/pybib/internal/bibtex"
)

var fixDrop []string

func init() {
	rootCmd.AddCommand(fixCmd)
	fixCmd.Flags().StringSliceVar(&fixDrop, "drop", nil, "Remove this field from every entry (repeatable)")
}

var fixCmd = &cobra.Command{
	Use:   "fix <bibfile>",
	Short: "Normalize every entry in a .bib file",
	Long: `Parse a bibliography file, normalize every entry, and rewrite the file.

Normalization applies the same rules used for fetched entries: canonical
field names, "Last, First" authors, collapsed whitespace, numeric months,
double-brace fixes, LaTeX escaping, and consistent arXiv eprint fields.
Citation keys are kept as they are; entries without a key get one. --drop
removes a field from every entry, for example a bulky abstract.

Examples:
  pybib fix refs.bib
  pybib fix refs.bib --drop abstract --drop keywords`,
	Args: cobra.ExactArgs(1),
	RunE: runFix,
}

func runFix(cmd *cobra.Command, args []string) error {
	path := args[0]

	count, err := sanitizeFile(path, fixDrop)
	if err != nil {
		if os.IsNotExist(err) {
			exitWithError(ExitInputError, "%s: no such file", path)
		}
		exitWithError(ExitError, "fixing %s: %v", path, err)
	}

	fmt.Printf("%s: %d entries rewritten\n", path, count)
	return nil
}

// sanitizeFile normalizes every record in a .bib file in place and returns
// the number of entries rewritten. Existing citation keys are preserved;
// keyless entries get one, avoiding the keys already in the file.
func sanitizeFile(path string, drop []string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	records, err := bibtex.ParseRecords(string(data))
	if err != nil {
		return 0, err
	}

	keys := bibtex.NewKeySet()
	for _, e := range records {
		if e.Key != "" {
			keys.Seed(e.Key)
		}
	}

	for _, e := range records {
		bibtex.Normalize(e)
		// Drop after normalizing so canonical names match provider spellings.
		for _, name := range drop {
			e.Delete(strings.ToLower(strings.TrimSpace(name)))
		}
		if e.Key == "" {
			keys.Assign(e)
		}
	}

	if err := os.WriteFile(path, []byte(bibtex.FormatList(records)), 0644); err != nil {
		return 0, err
	}
	return len(records), nil
}
