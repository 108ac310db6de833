// Package identifier extracts and normalizes bibliographic identifiers
// (DOIs and arXiv IDs) from free-form text.
package identifier

import (
	"regexp"
	"strings"
)

// Kind distinguishes the supported identifier families.
type Kind string

const (
	KindDOI   Kind = "doi"
	KindArXiv Kind = "arxiv"
)

// ParseKind converts a user-supplied kind string to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "doi":
		return KindDOI, true
	case "arxiv":
		return KindArXiv, true
	}
	return "", false
}

// Identifier is a tagged, normalized identifier value.
type Identifier struct {
	Kind  Kind
	Value string
}

func (id Identifier) String() string {
	return id.Value
}

// DOI pattern: 10.XXXX/... where XXXX is 4+ digits. The suffix excludes
// characters that never appear in DOIs so matches stop at URL delimiters.
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// arXiv patterns. New style is yymm.number (4-5 digits), old style is
// archive[.SUB]/yymmnnn. Both may carry a vN version suffix.
var (
	arxivNewPattern = regexp.MustCompile(`\d{4}\.\d{4,5}(?:v\d+)?`)
	arxivOldPattern = regexp.MustCompile(`[a-z][a-z-]*(?:\.[A-Z]{2})?/\d{7}(?:v\d+)?`)
	arxivVersion    = regexp.MustCompile(`v\d+$`)
)

// NormalizeArxiv strips prefixes and version suffixes from an arXiv ID so
// that every spelling of one paper maps to the same canonical form.
func NormalizeArxiv(id string) string {
	id = strings.TrimSpace(id)
	for _, prefix := range []string{"arXiv:", "arxiv:", "ARXIV:"} {
		id = strings.TrimPrefix(id, prefix)
	}
	return arxivVersion.ReplaceAllString(id, "")
}

// NormalizeDOI strips URL and label prefixes from a DOI and trims trailing
// punctuation picked up from surrounding prose.
func NormalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "https://dx.doi.org/", "http://dx.doi.org/", "doi.org/", "DOI:", "doi:"} {
		doi = strings.TrimPrefix(doi, prefix)
	}
	return strings.TrimRight(doi, ".,;:)")
}

// IsValidDOI performs basic lexical validation on a normalized DOI.
func IsValidDOI(doi string) bool {
	if len(doi) < 10 || !strings.HasPrefix(doi, "10.") {
		return false
	}
	slash := strings.Index(doi, "/")
	return slash > 0 && slash < len(doi)-1
}

// IsValidArxiv reports whether id is a well-formed arXiv ID in either style.
func IsValidArxiv(id string) bool {
	return IsNewStyleArxiv(id) || isOldStyleArxiv(id)
}

// IsNewStyleArxiv reports whether id uses the post-2007 yymm.number form.
func IsNewStyleArxiv(id string) bool {
	matched, _ := regexp.MatchString(`^\d{4}\.\d{4,5}$`, id)
	return matched
}

func isOldStyleArxiv(id string) bool {
	matched, _ := regexp.MatchString(`^[a-z][a-z-]*(?:\.[A-Z]{2})?/\d{7}$`, id)
	return matched
}
