package catalog

import "fmt"

// DuplicateEntryError is returned when an entry with the same key is added
// to a catalog twice.
type DuplicateEntryError struct {
	Catalog string
	Key     string
}

func (e *DuplicateEntryError) Error() string {
	return fmt.Sprintf("%s catalog: duplicate entry %q", e.Catalog, e.Key)
}

// UnresolvedTransformationError is returned when no transformation matches a
// (name, site) lookup.
type UnresolvedTransformationError struct {
	Name string
	Site string
}

func (e *UnresolvedTransformationError) Error() string {
	return fmt.Sprintf("transformation %q is not registered for site %q", e.Name, e.Site)
}
