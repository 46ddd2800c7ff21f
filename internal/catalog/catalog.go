package catalog

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed fields.yaml
var fieldsYAML []byte

// Field is one canonical lab field
type Field struct {
	Key    string `yaml:"key"`
	Label  string `yaml:"label"`
	Prompt string `yaml:"prompt"`
	Group  string `yaml:"-"`
}

// Group is a titled set of fields rendered together in the form
type Group struct {
	Name   string  `yaml:"name"`
	Title  string  `yaml:"title"`
	Fields []Field `yaml:"fields"`
}

type document struct {
	Groups []Group `yaml:"groups"`
}

// Catalog is the canonical field dictionary shared by every rendering path
type Catalog struct {
	groups []Group
	fields []Field
	index  map[string]int
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the catalog built from the embedded dictionary
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(fieldsYAML)
		if err != nil {
			panic(fmt.Sprintf("catalog: embedded dictionary is invalid: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Parse builds a catalog from a YAML document
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal catalog: %w", err)
	}

	c := &Catalog{index: make(map[string]int)}
	for gi := range doc.Groups {
		g := &doc.Groups[gi]
		for fi := range g.Fields {
			f := &g.Fields[fi]
			f.Key = strings.TrimSpace(f.Key)
			if f.Key == "" {
				return nil, fmt.Errorf("group %q: field %d has empty key", g.Name, fi)
			}
			if _, dup := c.index[f.Key]; dup {
				return nil, fmt.Errorf("duplicate field key %q", f.Key)
			}
			if f.Label == "" {
				f.Label = GenericLabel(f.Key)
			}
			if f.Prompt == "" {
				f.Prompt = f.Label
			}
			f.Group = g.Name

			c.index[f.Key] = len(c.fields)
			c.fields = append(c.fields, *f)
		}
	}
	c.groups = doc.Groups

	return c, nil
}

// Fields returns every field in canonical order
func (c *Catalog) Fields() []Field {
	out := make([]Field, len(c.fields))
	copy(out, c.fields)
	return out
}

// Groups returns the field groups in canonical order
func (c *Catalog) Groups() []Group {
	return c.groups
}

// Known reports whether key belongs to the dictionary
func (c *Catalog) Known(key string) bool {
	_, ok := c.index[key]
	return ok
}

// Label returns the display label for key.
// Unknown keys get a generic label derived from the key itself.
func (c *Catalog) Label(key string) string {
	if i, ok := c.index[key]; ok {
		return c.fields[i].Label
	}
	return GenericLabel(key)
}

// PromptDescription returns the structuring description for key
func (c *Catalog) PromptDescription(key string) string {
	if i, ok := c.index[key]; ok {
		return c.fields[i].Prompt
	}
	return GenericLabel(key)
}

// Filter splits a mapping into the known part and the sorted list of dropped keys
func (c *Catalog) Filter(values map[string]string) (map[string]string, []string) {
	known := make(map[string]string, len(values))
	var unknown []string
	for k, v := range values {
		if c.Known(k) {
			known[k] = v
			continue
		}
		unknown = append(unknown, k)
	}
	sort.Strings(unknown)
	return known, unknown
}

// Entry is a key/value pair positioned in canonical order
type Entry struct {
	Key   string
	Label string
	Value string
}

// Ordered returns the mapping in canonical order followed by unknown keys sorted lexicographically
func (c *Catalog) Ordered(values map[string]string) []Entry {
	entries := make([]Entry, 0, len(values))
	for _, f := range c.fields {
		if v, ok := values[f.Key]; ok {
			entries = append(entries, Entry{Key: f.Key, Label: f.Label, Value: v})
		}
	}

	var extra []string
	for k := range values {
		if !c.Known(k) {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		entries = append(entries, Entry{Key: k, Label: GenericLabel(k), Value: values[k]})
	}

	return entries
}

// GenericLabel turns snake_case keys into "Snake case"
func GenericLabel(key string) string {
	s := strings.TrimSpace(strings.ReplaceAll(key, "_", " "))
	if s == "" {
		return key
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
