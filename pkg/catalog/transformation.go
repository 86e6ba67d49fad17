package catalog

import (
	"fmt"
	"sort"
)

// Arch identifies a processor architecture in transformation metadata.
type Arch string

const (
	ArchX8664   Arch = "x86_64"
	ArchAarch64 Arch = "aarch64"
	ArchPPC64LE Arch = "ppc64le"
)

// OSFamily identifies an operating system family in transformation metadata.
type OSFamily string

const (
	OSLinux OSFamily = "linux"
	OSMacOS OSFamily = "macos"
	OSAIX   OSFamily = "aix"
	OSSunOS OSFamily = "sunos"
)

// Platform describes where a stageable executable can run. All fields are
// optional; an empty Platform means "any".
type Platform struct {
	Arch      Arch
	OS        OSFamily
	OSRelease string
	OSVersion string
}

// Transformation binds a logical executable name to a physical path on one
// site. A stageable transformation is transferred to the execution site by
// the planner; a non-stageable one is assumed to be installed there.
type Transformation struct {
	Name      string
	Site      string
	PFN       string // physical path of the executable on Site
	Stageable bool
	Platform  *Platform
}

func (t Transformation) key() string {
	return t.Name + "\x00" + t.Site
}

func (t Transformation) check() error {
	if t.Name == "" {
		return fmt.Errorf("transformation name must not be empty")
	}
	if t.Site == "" {
		return fmt.Errorf("transformation %q: site must not be empty", t.Name)
	}
	if t.PFN == "" {
		return fmt.Errorf("transformation %q: physical path must not be empty", t.Name)
	}
	return nil
}

// TransformationCatalog holds transformations keyed by (name, site).
// At most one entry may exist per pair.
type TransformationCatalog struct {
	entries map[string]Transformation
}

// NewTransformationCatalog creates an empty transformation catalog.
func NewTransformationCatalog() *TransformationCatalog {
	return &TransformationCatalog{entries: make(map[string]Transformation)}
}

// Add inserts one or more transformations. It fails on the first malformed
// record or (name, site) collision; entries added before the failure remain.
func (c *TransformationCatalog) Add(ts ...Transformation) error {
	for _, t := range ts {
		if err := t.check(); err != nil {
			return err
		}
		k := t.key()
		if _, ok := c.entries[k]; ok {
			return &DuplicateEntryError{
				Catalog: "transformation",
				Key:     fmt.Sprintf("%s@%s", t.Name, t.Site),
			}
		}
		c.entries[k] = t
	}
	return nil
}

// Resolve returns the transformation registered for (name, site).
func (c *TransformationCatalog) Resolve(name, site string) (Transformation, error) {
	t, ok := c.entries[Transformation{Name: name, Site: site}.key()]
	if !ok {
		return Transformation{}, &UnresolvedTransformationError{Name: name, Site: site}
	}
	return t, nil
}

// Len returns the number of entries.
func (c *TransformationCatalog) Len() int { return len(c.entries) }

// All returns every entry sorted by name, then site.
func (c *TransformationCatalog) All() []Transformation {
	out := make([]Transformation, 0, len(c.entries))
	for _, t := range c.entries {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Site < out[j].Site
	})
	return out
}
