// Package properties holds the flat key/value configuration handed to the
// planner. Each workflow level gets its own scope: the outer run and every
// nested planning pass read separate property files with their own catalog
// file overrides.
package properties

import (
	"bytes"
	"fmt"
	"sort"
)

// Planner property keys with dedicated setters.
const (
	KeyMode                  = "planner.mode"
	KeyTransformationCatalog = "planner.catalog.transformation.file"
	KeyReplicaCatalog        = "planner.catalog.replica.file"
	KeySiteCatalog           = "planner.catalog.site.file"
)

// Properties is an explicit configuration value threaded through workflow
// construction and emission. The zero value is not usable; call New.
type Properties struct {
	values map[string]string
}

// New creates an empty property set.
func New() *Properties {
	return &Properties{values: make(map[string]string)}
}

// Set stores a key/value pair, replacing any previous value.
func (p *Properties) Set(key, value string) *Properties {
	p.values[key] = value
	return p
}

// Get returns the value for key, or "".
func (p *Properties) Get(key string) string {
	return p.values[key]
}

// Len returns the number of keys.
func (p *Properties) Len() int { return len(p.values) }

// Clone returns an independent copy. Nested scopes start from a clone of
// the outer properties and override the catalog file paths.
func (p *Properties) Clone() *Properties {
	c := New()
	for k, v := range p.values {
		c.values[k] = v
	}
	return c
}

// Keys returns all keys sorted.
func (p *Properties) Keys() []string {
	keys := make([]string, 0, len(p.values))
	for k := range p.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Render writes the properties as "key = value" lines in sorted key order,
// so rendering the same set twice is byte-identical.
func (p *Properties) Render() []byte {
	var buf bytes.Buffer
	for _, k := range p.Keys() {
		fmt.Fprintf(&buf, "%s = %s\n", k, p.values[k])
	}
	return buf.Bytes()
}
