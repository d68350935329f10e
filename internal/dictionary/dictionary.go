package dictionary

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed phrases.yaml
var defaultPhrases []byte

// Entry is a single phrase pair of the table
type Entry struct {
	English    string `yaml:"en"`
	Portuguese string `yaml:"pt"`
}

type document struct {
	Phrases []Entry `yaml:"phrases"`
}

// Table is an immutable phrase table. Keys are kept in declaration order
// so substring matching is deterministic.
type Table struct {
	keys    []string
	entries map[string]string
}

// New builds a table from entries. Keys are trimmed and lower-cased, entries
// with an empty side are skipped and the first occurrence of a key wins.
func New(entries []Entry) *Table {
	t := &Table{
		entries: make(map[string]string, len(entries)),
	}
	for _, e := range entries {
		key := Normalize(e.English)
		value := strings.TrimSpace(e.Portuguese)
		if key == "" || value == "" {
			continue
		}
		if _, exists := t.entries[key]; exists {
			continue
		}
		t.keys = append(t.keys, key)
		t.entries[key] = value
	}
	return t
}

// Default returns the built-in phrase table
func Default() *Table {
	t, err := Parse(strings.NewReader(string(defaultPhrases)))
	if err != nil {
		// The embedded table is part of the binary; failing here is a build defect.
		panic(fmt.Sprintf("embedded phrase table is invalid: %v", err))
	}
	return t
}

// Parse reads a YAML phrase document from r
func Parse(r io.Reader) (*Table, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return New(nil), nil
		}
		return nil, fmt.Errorf("failed to parse phrase table: %w", err)
	}
	return New(doc.Phrases), nil
}

// LoadFile reads a YAML phrase document from path
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open phrase table: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Normalize trims and lower-cases text the way table keys are stored
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// Lookup maps text to a translation. An exact key match wins, otherwise the
// first key (in declaration order) contained in the normalized text is used.
func (t *Table) Lookup(text string) (string, bool) {
	normalized := Normalize(text)
	if normalized == "" {
		return "", false
	}

	if translation, ok := t.entries[normalized]; ok {
		return translation, true
	}

	for _, key := range t.keys {
		if strings.Contains(normalized, key) {
			return t.entries[key], true
		}
	}

	return "", false
}

// Len returns the number of phrases in the table
func (t *Table) Len() int {
	return len(t.keys)
}

// Entries returns a copy of the table in declaration order
func (t *Table) Entries() []Entry {
	result := make([]Entry, 0, len(t.keys))
	for _, key := range t.keys {
		result = append(result, Entry{English: key, Portuguese: t.entries[key]})
	}
	return result
}
