package identifier

import (
	"sort"
	"strings"
)

// match is a candidate identifier with its position in the scanned text.
type match struct {
	id    Identifier
	start int
	end   int
}

// Extract scans text left to right and returns every identifier found, in
// order of first appearance, without duplicates. The DOI pattern is applied
// first; arXiv candidates overlapping a DOI match are discarded, so the
// earliest valid match at each position wins.
//
// Input with no recognizable identifier yields an empty slice. That is not
// an error: batch callers are expected to filter.
func Extract(text string) []Identifier {
	var matches []match

	for _, loc := range doiPattern.FindAllStringIndex(text, -1) {
		raw := text[loc[0]:loc[1]]
		raw = strings.TrimSuffix(raw, ".pdf")
		doi := NormalizeDOI(raw)
		if !IsValidDOI(doi) {
			continue
		}
		matches = append(matches, match{
			id:    Identifier{Kind: KindDOI, Value: doi},
			start: loc[0],
			end:   loc[0] + len(doi),
		})
	}

	matches = append(matches, arxivMatches(text, matches)...)

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].start < matches[j].start })

	seen := make(map[Identifier]bool)
	var ids []Identifier
	for _, m := range matches {
		if seen[m.id] {
			continue
		}
		seen[m.id] = true
		ids = append(ids, m.id)
	}
	return ids
}

// ExtractKind returns only the identifiers of the requested kind.
func ExtractKind(text string, kind Kind) []Identifier {
	var ids []Identifier
	for _, id := range Extract(text) {
		if id.Kind == kind {
			ids = append(ids, id)
		}
	}
	return ids
}

// arxivMatches collects arXiv candidates that do not collide with an
// already-accepted DOI region.
func arxivMatches(text string, taken []match) []match {
	var matches []match

	add := func(loc []int, value string) {
		if overlapsAny(loc[0], loc[1], taken) {
			return
		}
		id := NormalizeArxiv(value)
		if !IsValidArxiv(id) {
			return
		}
		matches = append(matches, match{
			id:    Identifier{Kind: KindArXiv, Value: id},
			start: loc[0],
			end:   loc[1],
		})
	}

	for _, loc := range arxivNewPattern.FindAllStringIndex(text, -1) {
		// Reject matches embedded in a longer number or dotted sequence.
		if loc[0] > 0 {
			prev := text[loc[0]-1]
			if prev >= '0' && prev <= '9' || prev == '.' {
				continue
			}
		}
		add(loc, text[loc[0]:loc[1]])
	}

	for _, loc := range arxivOldPattern.FindAllStringIndex(text, -1) {
		if loc[0] > 0 {
			prev := text[loc[0]-1]
			if prev >= 'a' && prev <= 'z' || prev >= 'A' && prev <= 'Z' || prev == '-' || prev == '.' {
				continue
			}
		}
		if loc[1] < len(text) {
			next := text[loc[1]]
			if next >= '0' && next <= '9' {
				continue
			}
		}
		add(loc, text[loc[0]:loc[1]])
	}

	return matches
}

func overlapsAny(start, end int, taken []match) bool {
	for _, t := range taken {
		if start < t.end && t.start < end {
			return true
		}
	}
	return false
}
