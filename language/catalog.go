// Package language holds the table of translation target languages and the
// ranking used for autocomplete suggestions.
package language

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed languages.json
var defaultTable []byte

// ErrUnknownCode is returned by Lookup for codes that are not in the catalog.
var ErrUnknownCode = errors.New("language: unknown language code")

// Entry is one translatable language.
type Entry struct {
	Code string
	Name string
}

// Catalog is an immutable, ordered code -> name table. Iteration order is the
// order of the source document.
type Catalog struct {
	entries []Entry
	index   map[string]int
}

// NewCatalog builds a catalog from entries, keeping their order. Codes are
// normalised to upper case; duplicates are rejected.
func NewCatalog(entries []Entry) (*Catalog, error) {
	c := &Catalog{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		code := Normalize(e.Code)
		if code == "" {
			return nil, fmt.Errorf("language: empty code for %q", e.Name)
		}
		if _, dup := c.index[code]; dup {
			return nil, fmt.Errorf("language: duplicate code %q", code)
		}
		c.index[code] = len(c.entries)
		c.entries = append(c.entries, Entry{Code: code, Name: strings.TrimSpace(e.Name)})
	}
	if len(c.entries) == 0 {
		return nil, errors.New("language: catalog is empty")
	}
	return c, nil
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(defaultTable)
}

// LoadFile reads a JSON or YAML catalog. An empty path yields Default().
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read language file %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("could not parse language file %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes either a flat {"CODE": "Name"} mapping or a document with
// the table under a "language_codes" key. JSON is accepted as YAML; the node
// API is used so that key order survives decoding.
func Parse(data []byte) (*Catalog, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("language: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, errors.New("language: empty document")
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errors.New("language: top level must be a mapping")
	}
	if table := child(root, "language_codes"); table != nil {
		root = table
	}

	entries := make([]Entry, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		k, v := root.Content[i], root.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("language: value for %q must be a string (line %d)", k.Value, v.Line)
		}
		entries = append(entries, Entry{Code: k.Value, Name: v.Value})
	}
	return NewCatalog(entries)
}

func child(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key && m.Content[i+1].Kind == yaml.MappingNode {
			return m.Content[i+1]
		}
	}
	return nil
}

// Normalize returns the canonical form of a user supplied code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Lookup returns the entry for code, ignoring case.
func (c *Catalog) Lookup(code string) (Entry, error) {
	i, ok := c.index[Normalize(code)]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", ErrUnknownCode, code)
	}
	return c.entries[i], nil
}

// Contains reports whether code is in the catalog.
func (c *Catalog) Contains(code string) bool {
	_, ok := c.index[Normalize(code)]
	return ok
}

// Entries returns a copy of the catalog in source order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Codes returns every code in source order.
func (c *Catalog) Codes() []string {
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Code
	}
	return out
}

// Len returns the number of languages.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// SortedByName returns the entries ordered by display name. Equal names
// keep catalog order.
func (c *Catalog) SortedByName() []Entry {
	out := c.Entries()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}
