package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pybib/pybib/internal/bibtex"
	"github.com/pybib/pybib/internal/identifier"
)

var (
	addBibfile string
	addNoCache bool
)

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVar(&addBibfile, "bibfile", "", "Bibliography file to append to (default: the single *.bib in the working directory)")
	addCmd.Flags().BoolVar(&addNoCache, "no-cache", false, "Bypass the lookup cache")
}

var addCmd = &cobra.Command{
	Use:   "add <doi|arxiv> <identifier>...",
	Short: "Fetch entries and append them to a .bib file",
	Long: `Fetch BibTeX entries for the given identifiers and append them to a
bibliography file.

Entries already present in the file (matched by DOI or arXiv eprint) are
skipped. New citation keys avoid collisions with the keys already in the
file. Without --bibfile, the single *.bib file in the working directory is
used; zero or several candidates is an error.

Examples:
  pybib add doi 10.22331/q-2021-04-26-438
  pybib add arxiv 2106.15928 --bibfile refs.bib`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	kind, ok := identifier.ParseKind(args[0])
	if !ok {
		exitWithError(ExitInputError, "unknown identifier kind %q (want doi or arxiv)", args[0])
	}

	ids, bad := collectIdentifiers(kind, args[1:])

	bibfile, code := findBibfile(addBibfile)
	if code != 0 {
		os.Exit(code)
	}

	idx, err := bibtex.ParseFileIndex(bibfile)
	if err != nil {
		exitWithError(ExitError, "reading %s: %v", bibfile, err)
	}

	keys := bibtex.NewKeySet()
	keys.Seed(idx.AllKeys()...)

	r, err := newResolver(addNoCache)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	defer r.close()

	added, skipped, failed := addEntries(cmd.Context(), r, ids, idx, keys, bibfile)

	fmt.Printf("%s: %d added, %d already present\n", bibfile, added, skipped)

	if failed > 0 {
		exitWithError(ExitLookupError, "%d of %d lookups failed", failed, len(ids))
	}
	if bad > 0 {
		exitWithError(ExitInputError, "%d of %d arguments had no %s identifier", bad, len(args)-1, kind)
	}
	return nil
}

// addEntries resolves each identifier and appends the new ones. Entries are
// appended one at a time so a failure late in the batch loses nothing.
func addEntries(ctx context.Context, r *resolver, ids []identifier.Identifier, idx *bibtex.FileIndex, keys *bibtex.KeySet, bibfile string) (added, skipped, failed int) {
	for _, id := range ids {
		if alreadyIndexed(idx, id) {
			skipped++
			fmt.Fprintf(os.Stderr, "skipping %s: already in %s\n", id.Value, bibfile)
			continue
		}

		entry, err := r.resolveOne(ctx, id)
		if err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "error: %s: %v\n", id.Value, err)
			continue
		}

		// An arXiv lookup can come back with the published DOI; recheck so
		// a preprint never duplicates its published entry.
		doi, _ := entry.Get("doi")
		eprint, _ := entry.Get("eprint")
		if idx.HasEntry(doi, eprint) {
			skipped++
			fmt.Fprintf(os.Stderr, "skipping %s: already in %s\n", id.Value, bibfile)
			continue
		}

		keys.Assign(entry)
		if err := bibtex.AppendToFile(bibfile, bibtex.Format(entry)); err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "error: appending %s: %v\n", id.Value, err)
			continue
		}

		idx.Keys[entry.Key] = true
		if doi != "" {
			idx.DOIs[strings.ToLower(doi)] = entry.Key
		}
		if eprint != "" {
			idx.Eprints[eprint] = entry.Key
		}
		added++
	}
	return added, skipped, failed
}

func alreadyIndexed(idx *bibtex.FileIndex, id identifier.Identifier) bool {
	switch id.Kind {
	case identifier.KindDOI:
		return idx.HasEntry(id.Value, "")
	case identifier.KindArXiv:
		return idx.HasEntry("", id.Value)
	}
	return false
}

// findBibfile resolves the target bibliography file. With no explicit path,
// exactly one *.bib in the working directory is required.
func findBibfile(explicit string) (string, int) {
	if explicit != "" {
		return explicit, 0
	}

	matches, err := filepath.Glob("*.bib")
	if err != nil {
		return "", outputError(ExitError, "scanning for .bib files: %v", err)
	}
	switch len(matches) {
	case 0:
		return "", outputError(ExitInputError, "no .bib file in the working directory; use --bibfile")
	case 1:
		return matches[0], 0
	default:
		return "", outputError(ExitInputError, "several .bib files in the working directory; use --bibfile")
	}
}
