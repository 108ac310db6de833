package bibtex

import (
	"fmt"
	"strings"
)

// ParseRecords parses the BibTeX records in s, in order. Providers return
// one record per identifier; .bib files hold many. Text between records is
// ignored, but a structurally broken record is an error.
func ParseRecords(s string) ([]*Entry, error) {
	var entries []*Entry

	p := &parser{input: s}
	for {
		if !p.seek('@') {
			break
		}
		e, err := p.parseEntry()
		if err != nil {
			return nil, err
		}
		// @comment and @preamble blocks carry no fields we care about.
		if e != nil {
			entries = append(entries, e)
		}
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("no BibTeX records found")
	}
	return entries, nil
}

type parser struct {
	input string
	pos   int
}

// seek advances to the next occurrence of c, consuming it. Returns false at
// end of input.
func (p *parser) seek(c byte) bool {
	i := strings.IndexByte(p.input[p.pos:], c)
	if i < 0 {
		p.pos = len(p.input)
		return false
	}
	p.pos += i + 1
	return true
}

func (p *parser) skipSpace() {
	for p.pos < len(p.input) && isSpace(p.input[p.pos]) {
		p.pos++
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// parseEntry parses one record after the leading '@'. Returns (nil, nil)
// for @comment/@preamble/@string blocks.
func (p *parser) parseEntry() (*Entry, error) {
	start := p.pos
	if !p.seek('{') {
		return nil, fmt.Errorf("record at offset %d: missing '{'", start)
	}
	entryType := strings.ToLower(strings.TrimSpace(p.input[start : p.pos-1]))

	switch entryType {
	case "comment", "preamble", "string":
		if err := p.skipBalanced(); err != nil {
			return nil, err
		}
		return nil, nil
	}

	keyStart := p.pos
	if !p.seek(',') {
		return nil, fmt.Errorf("record @%s: missing citation key", entryType)
	}
	key := strings.TrimSpace(p.input[keyStart : p.pos-1])

	e := NewEntry(entryType)
	e.Key = key

	for {
		p.skipSpace()
		if p.pos >= len(p.input) {
			return nil, fmt.Errorf("record @%s{%s: unterminated record", entryType, key)
		}
		if p.input[p.pos] == '}' {
			p.pos++
			return e, nil
		}
		if p.input[p.pos] == ',' {
			p.pos++
			continue
		}

		name, value, err := p.parseField()
		if err != nil {
			return nil, fmt.Errorf("record @%s{%s: %w", entryType, key, err)
		}
		if name != "" && !e.Has(name) {
			e.Set(name, value)
		}
	}
}

// parseField parses one "name = value" pair. Values may be brace-delimited,
// quoted, or bare (numbers and month macros).
func (p *parser) parseField() (string, string, error) {
	nameStart := p.pos
	for p.pos < len(p.input) && p.input[p.pos] != '=' && p.input[p.pos] != '}' && p.input[p.pos] != ',' {
		p.pos++
	}
	if p.pos >= len(p.input) || p.input[p.pos] != '=' {
		return "", "", fmt.Errorf("field %q: missing '='", strings.TrimSpace(p.input[nameStart:p.pos]))
	}
	name := strings.ToLower(strings.TrimSpace(p.input[nameStart:p.pos]))
	p.pos++
	p.skipSpace()

	if p.pos >= len(p.input) {
		return "", "", fmt.Errorf("field %q: missing value", name)
	}

	switch p.input[p.pos] {
	case '{':
		value, err := p.parseBraced()
		return name, value, err
	case '"':
		value, err := p.parseQuoted()
		return name, value, err
	default:
		start := p.pos
		for p.pos < len(p.input) && p.input[p.pos] != ',' && p.input[p.pos] != '}' {
			p.pos++
		}
		return name, strings.TrimSpace(p.input[start:p.pos]), nil
	}
}

// parseBraced reads a {...} value, honoring nested braces.
func (p *parser) parseBraced() (string, error) {
	p.pos++ // consume '{'
	start := p.pos
	depth := 1
	for p.pos < len(p.input) {
		switch p.input[p.pos] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				value := p.input[start:p.pos]
				p.pos++
				return value, nil
			}
		}
		p.pos++
	}
	return "", fmt.Errorf("unterminated braced value")
}

func (p *parser) parseQuoted() (string, error) {
	p.pos++ // consume '"'
	start := p.pos
	for p.pos < len(p.input) {
		if p.input[p.pos] == '"' {
			value := p.input[start:p.pos]
			p.pos++
			return value, nil
		}
		p.pos++
	}
	return "", fmt.Errorf("unterminated quoted value")
}

// skipBalanced consumes the remainder of an already-opened {...} block.
func (p *parser) skipBalanced() error {
	depth := 1
	for p.pos < len(p.input) {
		switch p.input[p.pos] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				p.pos++
				return nil
			}
		}
		p.pos++
	}
	return fmt.Errorf("unterminated block")
}
