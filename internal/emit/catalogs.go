package emit

import (
	"gopkg.in/yaml.v3"

	"github.com/me/skein/pkg/catalog"
)

type transformationCatalogDoc struct {
	Skein           string              `yaml:"skein"`
	Transformations []transformationDoc `yaml:"transformations"`
}

type transformationDoc struct {
	Name      string       `yaml:"name"`
	Site      string       `yaml:"site"`
	PFN       string       `yaml:"pfn"`
	Stageable bool         `yaml:"stageable"`
	Platform  *platformDoc `yaml:"platform,omitempty"`
}

type platformDoc struct {
	Arch      string `yaml:"arch,omitempty"`
	OS        string `yaml:"os,omitempty"`
	OSRelease string `yaml:"osRelease,omitempty"`
	OSVersion string `yaml:"osVersion,omitempty"`
}

// TransformationCatalog renders a transformation catalog sorted by
// (name, site).
func TransformationCatalog(tc *catalog.TransformationCatalog) ([]byte, error) {
	doc := transformationCatalogDoc{Skein: FormatVersion}
	for _, t := range tc.All() {
		td := transformationDoc{
			Name:      t.Name,
			Site:      t.Site,
			PFN:       t.PFN,
			Stageable: t.Stageable,
		}
		if p := t.Platform; p != nil {
			td.Platform = &platformDoc{
				Arch:      string(p.Arch),
				OS:        string(p.OS),
				OSRelease: p.OSRelease,
				OSVersion: p.OSVersion,
			}
		}
		doc.Transformations = append(doc.Transformations, td)
	}
	return yaml.Marshal(doc)
}

type siteCatalogDoc struct {
	Skein string    `yaml:"skein"`
	Sites []siteDoc `yaml:"sites"`
}

type siteDoc struct {
	Name        string         `yaml:"name"`
	Directories []directoryDoc `yaml:"directories,omitempty"`
	Profiles    []profileDoc   `yaml:"profiles,omitempty"`
}

type directoryDoc struct {
	Kind        string          `yaml:"kind"`
	Path        string          `yaml:"path"`
	FileServers []fileServerDoc `yaml:"fileServers,omitempty"`
}

type fileServerDoc struct {
	URL       string `yaml:"url"`
	Operation string `yaml:"operation"`
}

type profileDoc struct {
	Namespace string `yaml:"namespace"`
	Key       string `yaml:"key"`
	Value     string `yaml:"value"`
}

// SiteCatalog renders a site catalog sorted by site name. Directories,
// file servers, and profiles keep their registration order.
func SiteCatalog(sc *catalog.SiteCatalog) ([]byte, error) {
	doc := siteCatalogDoc{Skein: FormatVersion}
	for _, s := range sc.All() {
		sd := siteDoc{Name: s.Name}
		for _, d := range s.Directories {
			dd := directoryDoc{Kind: string(d.Kind), Path: d.Path}
			for _, fs := range d.FileServers {
				dd.FileServers = append(dd.FileServers, fileServerDoc{
					URL:       fs.URL,
					Operation: string(fs.Operation),
				})
			}
			sd.Directories = append(sd.Directories, dd)
		}
		for _, p := range s.Profiles {
			sd.Profiles = append(sd.Profiles, profileDoc(p))
		}
		doc.Sites = append(doc.Sites, sd)
	}
	return yaml.Marshal(doc)
}

type replicaCatalogDoc struct {
	Skein    string       `yaml:"skein"`
	Replicas []replicaDoc `yaml:"replicas"`
}

type replicaDoc struct {
	LFN  string `yaml:"lfn"`
	Site string `yaml:"site"`
	PFN  string `yaml:"pfn"`
}

// ReplicaCatalog renders a replica catalog sorted by (lfn, site, pfn).
func ReplicaCatalog(rc *catalog.ReplicaCatalog) ([]byte, error) {
	doc := replicaCatalogDoc{Skein: FormatVersion}
	for _, r := range rc.All() {
		doc.Replicas = append(doc.Replicas, replicaDoc{LFN: r.LFN, Site: r.Site, PFN: r.PFN})
	}
	return yaml.Marshal(doc)
}
