package bibtex

import (
	"strings"

	"github.com/pybib/pybib/internal/identifier"
)

// fieldRenames maps provider field spellings to the canonical vocabulary.
// Names are compared lowercase.
var fieldRenames = map[string]string{
	"authors":           "author",
	"journal_reference": "journal",
	"journal-ref":       "journal",
	"arxivid":           "eprint",
	"adsurl":            "url",
	"link":              "url",
}

// months maps BibTeX month names to their numeric form.
var months = map[string]string{
	"jan": "1", "feb": "2", "mar": "3", "apr": "4",
	"may": "5", "jun": "6", "jul": "7", "aug": "8",
	"sep": "9", "oct": "10", "nov": "11", "dec": "12",
	"january": "1", "february": "2", "march": "3", "april": "4",
	"june": "6", "july": "7", "august": "8", "september": "9",
	"october": "10", "november": "11", "december": "12",
}

// textFields are the fields whose values get LaTeX special escaping.
// Identifier-like fields (doi, url, eprint) must keep their raw characters.
var textFields = map[string]bool{
	"author":    true,
	"title":     true,
	"journal":   true,
	"booktitle": true,
	"publisher": true,
	"abstract":  true,
}

// Normalize rewrites the entry into the canonical form: lowercase vocabulary
// field names, "Last, First and Last, First" authors, collapsed whitespace,
// numeric months, consistent arXiv eprint fields, safe LaTeX escaping.
//
// Normalize is idempotent: running it on an already-normalized entry leaves
// the entry unchanged.
func Normalize(e *Entry) *Entry {
	e.Type = strings.ToLower(strings.TrimSpace(e.Type))
	if e.Type == "" {
		e.Type = "article"
	}

	renameFields(e)

	for _, f := range e.Fields() {
		v := collapseWhitespace(f.Value)
		switch f.Name {
		case "title":
			v = stripDoubleBraces(v)
		case "author":
			v = NormalizeAuthors(v)
		case "month":
			if n, ok := months[strings.ToLower(v)]; ok {
				v = n
			}
		case "doi":
			v = identifier.NormalizeDOI(v)
		case "eprint":
			v = identifier.NormalizeArxiv(v)
		}
		if textFields[f.Name] {
			v = escapeValue(v)
		}
		if v == "" {
			e.Delete(f.Name)
		} else {
			e.Set(f.Name, v)
		}
	}

	fixArxivFields(e)

	return e
}

// renameFields lowercases every field name and applies the canonical
// renames. When two spellings collapse to one name the first value wins.
func renameFields(e *Entry) {
	for _, f := range e.Fields() {
		name := strings.ToLower(f.Name)
		if canonical, ok := fieldRenames[name]; ok {
			name = canonical
		}
		if name == f.Name {
			continue
		}
		e.Delete(f.Name)
		if !e.Has(name) {
			e.Set(name, f.Value)
		}
	}
}

// fixArxivFields enforces the eprint field conventions: an eprint implies
// archiveprefix = arXiv, and old-style eprints carry no primaryclass.
func fixArxivFields(e *Entry) {
	eprint, ok := e.Get("eprint")
	if !ok {
		return
	}
	e.Set("archiveprefix", "arXiv")
	if !identifier.IsNewStyleArxiv(eprint) {
		e.Delete("primaryclass")
	}
}

// NormalizeAuthors rewrites an author list to the "Last, First and
// Last, First" convention. Names already in comma form and brace-protected
// corporate names pass through untouched.
func NormalizeAuthors(value string) string {
	names := strings.Split(value, " and ")
	for i, name := range names {
		names[i] = normalizeAuthorName(strings.TrimSpace(name))
	}
	return strings.Join(names, " and ")
}

func normalizeAuthorName(name string) string {
	if name == "" {
		return name
	}
	// Corporate names like {World Health Organization} stay as written.
	if strings.HasPrefix(name, "{") && strings.HasSuffix(name, "}") {
		return name
	}
	if i := strings.Index(name, ","); i >= 0 {
		last := strings.TrimSpace(name[:i])
		first := strings.TrimSpace(name[i+1:])
		if first == "" {
			return last
		}
		return last + ", " + first
	}
	parts := strings.Fields(name)
	if len(parts) == 1 {
		return parts[0]
	}
	last := parts[len(parts)-1]
	first := strings.Join(parts[:len(parts)-1], " ")
	return last + ", " + first
}

// collapseWhitespace trims the value and squeezes internal runs of
// whitespace (including newlines from wrapped provider responses).
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// stripDoubleBraces reduces a fully double-braced value {{X}} to {X}.
func stripDoubleBraces(s string) string {
	for strings.HasPrefix(s, "{{") && strings.HasSuffix(s, "}}") {
		inner := s[1 : len(s)-1]
		if !balancedBraces(inner) {
			break
		}
		s = inner
	}
	return s
}

func balancedBraces(s string) bool {
	depth := 0
	for _, r := range s {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

// escapeValue escapes LaTeX special characters that are not already
// escaped, so the value embeds safely in a bibliography file. Braces are
// left alone: BibTeX uses them for grouping.
func escapeValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	escaped := false
	for _, r := range s {
		if escaped {
			b.WriteRune(r)
			escaped = false
			continue
		}
		switch r {
		case '\\':
			b.WriteRune(r)
			escaped = true
		case '&', '%', '$', '#', '_':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
