// Package pdfscan pulls bibliographic identifiers out of PDF files.
package pdfscan

import (
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/pybib/pybib/internal/identifier"
)

// DefaultMaxPages bounds the scan. Identifiers almost always sit on the
// first page, but references sections push some to the end of short papers.
const DefaultMaxPages = 10

// ScanFile extracts the text of the first maxPages pages and returns every
// identifier found, in reading order. maxPages <= 0 scans the whole file.
func ScanFile(path string, maxPages int) ([]identifier.Identifier, error) {
	text, err := extractText(path, maxPages)
	if err != nil {
		return nil, err
	}
	return identifier.Extract(text), nil
}

// ScanFileKind is ScanFile restricted to one identifier kind.
func ScanFileKind(path string, kind identifier.Kind, maxPages int) ([]identifier.Identifier, error) {
	text, err := extractText(path, maxPages)
	if err != nil {
		return nil, err
	}
	return identifier.ExtractKind(text, kind), nil
}

func extractText(path string, maxPages int) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if maxPages <= 0 || maxPages > r.NumPage() {
		maxPages = r.NumPage()
	}

	var builder strings.Builder
	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}

	return builder.String(), nil
}
