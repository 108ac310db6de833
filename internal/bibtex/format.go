package bibtex

import (
	"fmt"
	"strings"
)

// fieldOrder is the canonical emission order. Fields not listed here are
// appended afterwards in insertion order.
var fieldOrder = []string{
	"author",
	"title",
	"journal",
	"booktitle",
	"volume",
	"number",
	"pages",
	"year",
	"month",
	"publisher",
	"isbn",
	"doi",
	"url",
	"archiveprefix",
	"eprint",
	"primaryclass",
	"abstract",
}

var fieldRank = func() map[string]int {
	m := make(map[string]int, len(fieldOrder))
	for i, n := range fieldOrder {
		m[n] = i
	}
	return m
}()

// Format renders the entry as a BibTeX record block.
func Format(e *Entry) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("@%s{%s,\n", e.Type, e.Key))
	for _, f := range orderedFields(e) {
		if f.Value == "" {
			continue
		}
		b.WriteString(fmt.Sprintf("  %s = {%s},\n", f.Name, f.Value))
	}
	b.WriteString("}\n")

	return b.String()
}

// FormatList renders multiple entries separated by blank lines.
func FormatList(entries []*Entry) string {
	var blocks []string
	for _, e := range entries {
		blocks = append(blocks, Format(e))
	}
	return strings.Join(blocks, "\n")
}

func orderedFields(e *Entry) []Field {
	fields := e.Fields()

	var known, rest []Field
	for _, f := range fields {
		if _, ok := fieldRank[f.Name]; ok {
			known = append(known, f)
		} else {
			rest = append(rest, f)
		}
	}

	// Insertion sort keeps this dependency-free and stable for short lists.
	for i := 1; i < len(known); i++ {
		for j := i; j > 0 && fieldRank[known[j].Name] < fieldRank[known[j-1].Name]; j-- {
			known[j], known[j-1] = known[j-1], known[j]
		}
	}

	return append(known, rest...)
}
