package bibtex

import (
	"bufio"
	"os"
	"regexp"
	"strings"

	"github.com/pybib/pybib/internal/identifier"
)

// FileIndex indexes an existing .bib file for deduplication and citation-key
// collision seeding.
type FileIndex struct {
	// Keys maps citation keys to true for existence checks.
	Keys map[string]bool
	// DOIs maps normalized DOI values to citation keys.
	DOIs map[string]string
	// Eprints maps normalized arXiv IDs to citation keys.
	Eprints map[string]string
}

// NewFileIndex creates an empty index.
func NewFileIndex() *FileIndex {
	return &FileIndex{
		Keys:    make(map[string]bool),
		DOIs:    make(map[string]string),
		Eprints: make(map[string]string),
	}
}

// HasEntry reports whether an entry with the given DOI or eprint is already
// indexed. DOI is the primary match; eprint covers arXiv-only entries.
func (idx *FileIndex) HasEntry(doi, eprint string) bool {
	if doi != "" {
		if _, ok := idx.DOIs[strings.ToLower(identifier.NormalizeDOI(doi))]; ok {
			return true
		}
	}
	if eprint != "" {
		if _, ok := idx.Eprints[identifier.NormalizeArxiv(eprint)]; ok {
			return true
		}
	}
	return false
}

// AllKeys returns every citation key in the index.
func (idx *FileIndex) AllKeys() []string {
	keys := make([]string, 0, len(idx.Keys))
	for k := range idx.Keys {
		keys = append(keys, k)
	}
	return keys
}

var (
	entryStartRegex  = regexp.MustCompile(`@\w+\{([^,]+),`)
	doiFieldRegex    = regexp.MustCompile(`(?i)^\s*doi\s*=\s*[\{"]([^\}"]+)[\}"]`)
	eprintFieldRegex = regexp.MustCompile(`(?i)^\s*eprint\s*=\s*[\{"]([^\}"]+)[\}"]`)
)

// ParseFileIndex builds an index from an existing .bib file. A missing file
// yields an empty index: appending to a fresh file is not an error.
func ParseFileIndex(path string) (*FileIndex, error) {
	idx := NewFileIndex()

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var currentKey string

	for scanner.Scan() {
		line := scanner.Text()

		if m := entryStartRegex.FindStringSubmatch(line); len(m) > 1 {
			currentKey = strings.TrimSpace(m[1])
			idx.Keys[currentKey] = true
		}
		if currentKey == "" {
			continue
		}
		if m := doiFieldRegex.FindStringSubmatch(line); len(m) > 1 {
			if doi := strings.ToLower(identifier.NormalizeDOI(m[1])); doi != "" {
				idx.DOIs[doi] = currentKey
			}
		}
		if m := eprintFieldRegex.FindStringSubmatch(line); len(m) > 1 {
			if eprint := identifier.NormalizeArxiv(m[1]); eprint != "" {
				idx.Eprints[eprint] = currentKey
			}
		}
	}

	return idx, scanner.Err()
}

// AppendToFile appends BibTeX content to a file, creating it if needed.
// Records appended to a non-empty file start on a fresh line so they never
// run together; a new file starts with the record itself.
func AppendToFile(path, content string) error {
	needSep := false
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		needSep = true
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	if needSep {
		content = "\n" + content
	}
	_, err = file.WriteString(content)
	return err
}
