package bibtex

import (
	"fmt"
	"strings"
	"unicode"
)

// KeySet tracks the citation keys handed out within one batch so collisions
// get a deterministic disambiguating suffix.
type KeySet struct {
	used map[string]bool
}

// NewKeySet creates an empty key set.
func NewKeySet() *KeySet {
	return &KeySet{used: make(map[string]bool)}
}

// Seed marks keys as taken, e.g. keys already present in a .bib file.
func (ks *KeySet) Seed(keys ...string) {
	for _, k := range keys {
		ks.used[k] = true
	}
}

// Assign generates a citation key for the entry, records it as taken, and
// stores it on the entry. The base key is the lowercased first-author
// surname plus the publication year; the second entry that would produce
// the same key gets a "b" suffix, the third "c", and so on.
func (ks *KeySet) Assign(e *Entry) string {
	base := baseKey(e)

	key := base
	for i := 0; ks.used[key]; i++ {
		key = base + suffix(i)
	}

	ks.used[key] = true
	e.Key = key
	return key
}

func suffix(i int) string {
	if i < 25 {
		return string(rune('b' + i))
	}
	return fmt.Sprintf("%d", i+2)
}

func baseKey(e *Entry) string {
	surname := "anon"
	if author, ok := e.Get("author"); ok {
		if s := firstAuthorSurname(author); s != "" {
			surname = s
		}
	}
	year, _ := e.Get("year")
	return surname + year
}

// firstAuthorSurname extracts the surname of the first author from a
// normalized "Last, First and ..." author string.
func firstAuthorSurname(author string) string {
	first := author
	if i := strings.Index(first, " and "); i >= 0 {
		first = first[:i]
	}
	if i := strings.Index(first, ","); i >= 0 {
		first = first[:i]
	} else if parts := strings.Fields(first); len(parts) > 0 {
		first = parts[len(parts)-1]
	}

	var b strings.Builder
	for _, r := range strings.ToLower(first) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
