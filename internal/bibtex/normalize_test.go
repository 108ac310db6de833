package bibtex

import "testing"

func TestNormalizeRenamesFields(t *testing.T) {
	e := NewEntry("Article")
	e.Set("Authors", "Smith, John")
	e.Set("Journal-Ref", "Phys. Rev. A 12, 34")
	e.Set("arxivid", "2106.15928")

	Normalize(e)

	if e.Type != "article" {
		t.Errorf("Type = %q, want article", e.Type)
	}
	if v, _ := e.Get("author"); v != "Smith, John" {
		t.Errorf("author = %q", v)
	}
	if v, _ := e.Get("journal"); v != "Phys. Rev. A 12, 34" {
		t.Errorf("journal = %q", v)
	}
	if v, _ := e.Get("eprint"); v != "2106.15928" {
		t.Errorf("eprint = %q", v)
	}
	if e.Has("Authors") || e.Has("Journal-Ref") || e.Has("arxivid") {
		t.Error("old field spellings survived normalization")
	}
}

func TestNormalizeAuthors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"first last", "John Smith", "Smith, John"},
		{"two authors", "John Smith and Jane Doe", "Smith, John and Doe, Jane"},
		{"already comma form", "Smith, John and Doe, Jane", "Smith, John and Doe, Jane"},
		{"middle name", "John Q. Smith", "Smith, John Q."},
		{"single token", "Aristotle", "Aristotle"},
		{"corporate name", "{LIGO Scientific Collaboration}", "{LIGO Scientific Collaboration}"},
		{"mixed forms", "Doe, Jane and John Smith", "Doe, Jane and Smith, John"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeAuthors(tt.input); got != tt.want {
				t.Errorf("NormalizeAuthors(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeMonth(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"jan", "1"},
		{"Feb", "2"},
		{"September", "9"},
		{"12", "12"},
	}

	for _, tt := range tests {
		e := NewEntry("article")
		e.Set("month", tt.input)
		Normalize(e)
		if v, _ := e.Get("month"); v != tt.want {
			t.Errorf("month %q normalized to %q, want %q", tt.input, v, tt.want)
		}
	}
}

func TestNormalizeWhitespaceAndBraces(t *testing.T) {
	e := NewEntry("article")
	e.Set("title", "{{Gravitational   Wave\n Observations}}")
	e.Set("author", "  John   Smith ")

	Normalize(e)

	if v, _ := e.Get("title"); v != "{Gravitational Wave Observations}" {
		t.Errorf("title = %q", v)
	}
	if v, _ := e.Get("author"); v != "Smith, John" {
		t.Errorf("author = %q", v)
	}
}

func TestStripDoubleBraces(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"{{Title}}", "{Title}"},
		{"{Title}", "{Title}"},
		{"Title", "Title"},
		// Not a single double-braced group, must stay untouched.
		{"{{A}} and {{B}}", "{{A}} and {{B}}"},
	}

	for _, tt := range tests {
		if got := stripDoubleBraces(tt.input); got != tt.want {
			t.Errorf("stripDoubleBraces(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestEscapeValue(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"specials", "Dollars $ and 100% of #tags_here & more", `Dollars \$ and 100\% of \#tags\_here \& more`},
		{"already escaped", `A \& B`, `A \& B`},
		{"mixed", `A \& B & C`, `A \& B \& C`},
		{"plain", "nothing special", "nothing special"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := escapeValue(tt.input); got != tt.want {
				t.Errorf("escapeValue(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeLeavesIdentifierFieldsRaw(t *testing.T) {
	e := NewEntry("article")
	e.Set("doi", "10.1000/under_score")
	e.Set("url", "https://example.org/a_b?x=1&y=2")

	Normalize(e)

	if v, _ := e.Get("doi"); v != "10.1000/under_score" {
		t.Errorf("doi = %q, identifier fields must not be escaped", v)
	}
	if v, _ := e.Get("url"); v != "https://example.org/a_b?x=1&y=2" {
		t.Errorf("url = %q, identifier fields must not be escaped", v)
	}
}

func TestFixArxivFields(t *testing.T) {
	e := NewEntry("article")
	e.Set("eprint", "arXiv:2106.15928v2")
	e.Set("primaryclass", "quant-ph")

	Normalize(e)

	if v, _ := e.Get("eprint"); v != "2106.15928" {
		t.Errorf("eprint = %q", v)
	}
	if v, _ := e.Get("archiveprefix"); v != "arXiv" {
		t.Errorf("archiveprefix = %q", v)
	}
	if v, _ := e.Get("primaryclass"); v != "quant-ph" {
		t.Errorf("primaryclass = %q, new-style eprints keep their class", v)
	}

	old := NewEntry("article")
	old.Set("eprint", "quant-ph/0410100")
	old.Set("primaryclass", "quant-ph")

	Normalize(old)

	if old.Has("primaryclass") {
		t.Error("old-style eprint must drop primaryclass")
	}
	if v, _ := old.Get("archiveprefix"); v != "arXiv" {
		t.Errorf("archiveprefix = %q", v)
	}
}

func TestNormalizeDropsEmptyFields(t *testing.T) {
	e := NewEntry("article")
	e.Set("author", "Smith, John")
	e.Set("note", "   ")

	Normalize(e)

	if e.Has("note") {
		t.Error("empty field survived normalization")
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	e := NewEntry("Article")
	e.Set("Authors", "John Smith and Jane Doe")
	e.Set("title", "{{Results:   50% better & faster}}")
	e.Set("month", "February")
	e.Set("eprint", "arXiv:2106.15928v2")
	e.Set("year", "2021")

	Normalize(e)
	e.Key = "smith2021"
	once := Format(e)

	Normalize(e)
	twice := Format(e)

	if once != twice {
		t.Errorf("normalize is not idempotent:\nonce:\n%s\ntwice:\n%s", once, twice)
	}
}
