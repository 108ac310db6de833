// Package bibtex builds, normalizes and renders BibTeX entries.
package bibtex

// Field is a single name/value pair within an entry.
type Field struct {
	Name  string
	Value string
}

// Entry is one BibTeX record: an entry type, a citation key, and an ordered
// set of fields with unique names.
type Entry struct {
	Type   string
	Key    string
	names  []string
	values map[string]string
}

// NewEntry creates an empty entry of the given type.
func NewEntry(entryType string) *Entry {
	return &Entry{
		Type:   entryType,
		values: make(map[string]string),
	}
}

// Set stores a field value. A new name is appended after existing fields;
// setting an existing name replaces the value in place.
func (e *Entry) Set(name, value string) {
	if _, ok := e.values[name]; !ok {
		e.names = append(e.names, name)
	}
	e.values[name] = value
}

// Get returns a field value and whether it is present.
func (e *Entry) Get(name string) (string, bool) {
	v, ok := e.values[name]
	return v, ok
}

// Has reports whether the field is present.
func (e *Entry) Has(name string) bool {
	_, ok := e.values[name]
	return ok
}

// Delete removes a field if present.
func (e *Entry) Delete(name string) {
	if _, ok := e.values[name]; !ok {
		return
	}
	delete(e.values, name)
	for i, n := range e.names {
		if n == name {
			e.names = append(e.names[:i], e.names[i+1:]...)
			break
		}
	}
}

// Fields returns the fields in order.
func (e *Entry) Fields() []Field {
	fields := make([]Field, 0, len(e.names))
	for _, n := range e.names {
		fields = append(fields, Field{Name: n, Value: e.values[n]})
	}
	return fields
}

// Clone returns a deep copy of the entry.
func (e *Entry) Clone() *Entry {
	c := NewEntry(e.Type)
	c.Key = e.Key
	for _, f := range e.Fields() {
		c.Set(f.Name, f.Value)
	}
	return c
}

// requiredFields lists the fields an entry type needs to stand on its own.
var requiredFields = map[string][]string{
	"article": {"author", "title", "year"},
	"misc":    {"title"},
}

// MissingFields returns the required fields absent from the entry. An entry
// with missing fields is incomplete but still printable.
func (e *Entry) MissingFields() []string {
	required, ok := requiredFields[e.Type]
	if !ok {
		required = requiredFields["misc"]
	}
	var missing []string
	for _, name := range required {
		if v, ok := e.values[name]; !ok || v == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// Complete reports whether all required fields for the entry type are set.
func (e *Entry) Complete() bool {
	return len(e.MissingFields()) == 0
}
