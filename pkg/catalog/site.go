package catalog

import (
	"fmt"
	"sort"
)

// DirectoryKind classifies a site directory.
type DirectoryKind string

const (
	SharedScratch DirectoryKind = "sharedScratch"
	LocalStorage  DirectoryKind = "localStorage"
)

// FileOperation is the set of operations a file server allows.
type FileOperation string

const (
	OpRead  FileOperation = "read"
	OpWrite FileOperation = "write"
	OpAll   FileOperation = "all"
)

// FileServer exposes a directory through a protocol URL (file://, s3://, ...).
type FileServer struct {
	URL       string
	Operation FileOperation
}

// Directory is a storage area on a site, reachable through one or more
// file servers.
type Directory struct {
	Kind        DirectoryKind
	Path        string
	FileServers []FileServer
}

// Profile is a scheduler-facing key/value forwarded to the planner, scoped
// by namespace.
type Profile struct {
	Namespace string
	Key       string
	Value     string
}

// Profile namespaces understood by the planner.
const (
	NamespacePlanner = "planner"
	NamespaceCondor  = "condor"
	NamespaceEnv     = "env"
)

// Site describes an execution or storage endpoint: its directories and the
// profiles that control how jobs run there.
type Site struct {
	Name        string
	Directories []Directory
	Profiles    []Profile
}

// NewSite creates a site with the given name.
func NewSite(name string) *Site {
	return &Site{Name: name}
}

// AddDirectories appends directory entries.
func (s *Site) AddDirectories(dirs ...Directory) *Site {
	s.Directories = append(s.Directories, dirs...)
	return s
}

// AddProfile appends a raw (namespace, key, value) profile.
func (s *Site) AddProfile(namespace, key, value string) *Site {
	s.Profiles = append(s.Profiles, Profile{Namespace: namespace, Key: key, Value: value})
	return s
}

// AddPlannerProfile sets a planner-namespace profile, e.g. the submission
// style or data staging configuration.
func (s *Site) AddPlannerProfile(key, value string) *Site {
	return s.AddProfile(NamespacePlanner, key, value)
}

// AddCondorProfile sets a condor-namespace profile, e.g. the universe.
func (s *Site) AddCondorProfile(key, value string) *Site {
	return s.AddProfile(NamespaceCondor, key, value)
}

// SiteCatalog holds sites keyed by name.
type SiteCatalog struct {
	sites map[string]*Site
}

// NewSiteCatalog creates an empty site catalog.
func NewSiteCatalog() *SiteCatalog {
	return &SiteCatalog{sites: make(map[string]*Site)}
}

// Add inserts one or more sites, failing on an empty or repeated name.
func (c *SiteCatalog) Add(sites ...*Site) error {
	for _, s := range sites {
		if s.Name == "" {
			return fmt.Errorf("site name must not be empty")
		}
		if _, ok := c.sites[s.Name]; ok {
			return &DuplicateEntryError{Catalog: "site", Key: s.Name}
		}
		c.sites[s.Name] = s
	}
	return nil
}

// Get returns the site with the given name, or nil.
func (c *SiteCatalog) Get(name string) *Site { return c.sites[name] }

// Len returns the number of sites.
func (c *SiteCatalog) Len() int { return len(c.sites) }

// All returns every site sorted by name.
func (c *SiteCatalog) All() []*Site {
	out := make([]*Site, 0, len(c.sites))
	for _, s := range c.sites {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
