package catalog

import (
	"fmt"
	"sort"
)

// Replica maps a logical file name to one physical copy on a site.
type Replica struct {
	LFN  string
	Site string
	PFN  string
}

func (r Replica) check() error {
	if r.LFN == "" {
		return fmt.Errorf("replica logical name must not be empty")
	}
	if r.Site == "" {
		return fmt.Errorf("replica %q: site must not be empty", r.LFN)
	}
	if r.PFN == "" {
		return fmt.Errorf("replica %q: physical path must not be empty", r.LFN)
	}
	return nil
}

// ReplicaCatalog is a multimap from logical file name to physical copies.
// A logical file may have replicas on several sites, but the exact
// (lfn, site, pfn) triple is unique.
type ReplicaCatalog struct {
	byLFN map[string][]Replica
}

// NewReplicaCatalog creates an empty replica catalog.
func NewReplicaCatalog() *ReplicaCatalog {
	return &ReplicaCatalog{byLFN: make(map[string][]Replica)}
}

// Add registers a physical copy of a logical file.
func (c *ReplicaCatalog) Add(site, lfn, pfn string) error {
	r := Replica{LFN: lfn, Site: site, PFN: pfn}
	if err := r.check(); err != nil {
		return err
	}
	for _, existing := range c.byLFN[lfn] {
		if existing == r {
			return &DuplicateEntryError{
				Catalog: "replica",
				Key:     fmt.Sprintf("%s@%s:%s", lfn, site, pfn),
			}
		}
	}
	c.byLFN[lfn] = append(c.byLFN[lfn], r)
	return nil
}

// Lookup returns all replicas of a logical file, sorted by site then path.
func (c *ReplicaCatalog) Lookup(lfn string) []Replica {
	rs := append([]Replica(nil), c.byLFN[lfn]...)
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].Site != rs[j].Site {
			return rs[i].Site < rs[j].Site
		}
		return rs[i].PFN < rs[j].PFN
	})
	return rs
}

// Contains reports whether at least one replica exists for the logical file.
func (c *ReplicaCatalog) Contains(lfn string) bool {
	return len(c.byLFN[lfn]) > 0
}

// Len returns the number of replica entries across all logical files.
func (c *ReplicaCatalog) Len() int {
	n := 0
	for _, rs := range c.byLFN {
		n += len(rs)
	}
	return n
}

// All returns every replica entry sorted by lfn, site, then path.
func (c *ReplicaCatalog) All() []Replica {
	out := make([]Replica, 0, len(c.byLFN))
	for _, rs := range c.byLFN {
		out = append(out, rs...)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LFN != out[j].LFN {
			return out[i].LFN < out[j].LFN
		}
		if out[i].Site != out[j].Site {
			return out[i].Site < out[j].Site
		}
		return out[i].PFN < out[j].PFN
	})
	return out
}
