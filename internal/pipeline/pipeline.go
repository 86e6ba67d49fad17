// Package pipeline assembles the hierarchical demo pipeline: an outer
// workflow that fetches a web page, runs a four-job diamond as a nested
// sub-workflow, and counts the lines of the diamond's result. The diamond
// comes in two shapes: generated at run time by a job (deferred) or built
// inline at composition time (pre-planned).
package pipeline

import (
	"fmt"
	"path/filepath"

	"github.com/me/skein/pkg/catalog"
	"github.com/me/skein/pkg/properties"
	"github.com/me/skein/pkg/workflow"
)

// Variant selects how the nested diamond workflow is resolved.
type Variant string

const (
	// VariantDeferred generates the diamond definition with a job at run
	// time; the sub-workflow node consumes the generated file.
	VariantDeferred Variant = "deferred"
	// VariantPrePlanned builds the diamond inline and serializes it next to
	// the outer workflow.
	VariantPrePlanned Variant = "prePlanned"
)

// Config controls pipeline assembly.
type Config struct {
	// ExecutionSite is the site outer jobs run on.
	ExecutionSite string
	// BaseDir anchors the physical locations of locally generated files
	// (catalog artifacts, sample inputs).
	BaseDir string
	// SkipSites leaves the site catalog out of the bundle.
	SkipSites bool
	// Variant selects deferred or pre-planned diamond resolution.
	Variant Variant
}

// Artifact file names shared between composition and the driver.
const (
	PropertiesFile       = "skein.properties"
	NestedPropertiesFile = "inner-diamond.properties"
	TransformationsFile  = "tc.yml"
	NestedTCFile         = "inner-diamond.tc.yml"
	ReplicasFile         = "rc.yml"
	NestedRCFile         = "inner-diamond.rc.yml"
	SitesFile            = "sites.yml"
	DeferredDefFile      = "inner-diamond.yml"
)

// Bundle is everything one generation run emits: the workflow, the catalogs
// of both levels, the scoped properties, and sample data files.
type Bundle struct {
	Name          string
	ExecutionSite string

	Properties       *properties.Properties
	NestedProperties map[string]*properties.Properties

	Sites                 *catalog.SiteCatalog // nil when skipped
	Transformations       *catalog.TransformationCatalog
	NestedTransformations map[string]*catalog.TransformationCatalog
	Replicas              *catalog.ReplicaCatalog
	NestedReplicas        map[string]*catalog.ReplicaCatalog

	Workflow *workflow.Workflow

	// DataFiles are sample physical inputs written into BaseDir before
	// planning, keyed by file name.
	DataFiles map[string][]byte
}

// Hierarchical builds the complete hierarchical pipeline bundle.
func Hierarchical(cfg Config) (*Bundle, error) {
	if cfg.ExecutionSite == "" {
		cfg.ExecutionSite = "condorpool"
	}
	if cfg.Variant == "" {
		cfg.Variant = VariantDeferred
	}

	b := &Bundle{
		Name:                  "hierarchical",
		ExecutionSite:         cfg.ExecutionSite,
		NestedProperties:      make(map[string]*properties.Properties),
		NestedTransformations: make(map[string]*catalog.TransformationCatalog),
		NestedReplicas:        make(map[string]*catalog.ReplicaCatalog),
		DataFiles:             make(map[string][]byte),
	}

	b.buildProperties()
	if !cfg.SkipSites {
		if err := b.buildSites(cfg); err != nil {
			return nil, err
		}
	}
	if err := b.buildTransformations(cfg); err != nil {
		return nil, err
	}
	if err := b.buildReplicas(cfg); err != nil {
		return nil, err
	}
	if err := b.buildWorkflow(cfg); err != nil {
		return nil, err
	}
	return b, nil
}

// buildProperties creates the outer property scope and the nested scope
// with its own catalog file overrides.
func (b *Bundle) buildProperties() {
	b.Properties = properties.New().Set(properties.KeyMode, "development")

	nested := b.Properties.Clone().
		Set(properties.KeyTransformationCatalog, NestedTCFile).
		Set(properties.KeyReplicaCatalog, NestedRCFile)
	b.NestedProperties[NestedPropertiesFile] = nested
}

func (b *Bundle) buildSites(cfg Config) error {
	scratch := filepath.Join(cfg.BaseDir, "scratch")
	storage := filepath.Join(cfg.BaseDir, "output")

	local := catalog.NewSite("local").AddDirectories(
		catalog.Directory{
			Kind: catalog.SharedScratch,
			Path: scratch,
			FileServers: []catalog.FileServer{
				{URL: "file://" + scratch, Operation: catalog.OpAll},
			},
		},
		catalog.Directory{
			Kind: catalog.LocalStorage,
			Path: storage,
			FileServers: []catalog.FileServer{
				{URL: "file://" + storage, Operation: catalog.OpAll},
			},
		},
	)

	exec := catalog.NewSite(cfg.ExecutionSite).
		AddPlannerProfile("style", "condor").
		AddPlannerProfile("data.configuration", "condorio").
		AddCondorProfile("universe", "vanilla")

	b.Sites = catalog.NewSiteCatalog()
	return b.Sites.Add(local, exec)
}

func (b *Bundle) buildTransformations(cfg Config) error {
	b.Transformations = catalog.NewTransformationCatalog()

	outer := []catalog.Transformation{
		{Name: "curl", Site: cfg.ExecutionSite, PFN: "/usr/bin/curl"},
		{Name: "wc", Site: cfg.ExecutionSite, PFN: "/usr/bin/wc"},
	}
	if cfg.Variant == VariantDeferred {
		outer = append(outer, catalog.Transformation{
			Name:      "generate-inner-diamond",
			Site:      cfg.ExecutionSite,
			PFN:       filepath.Join(cfg.BaseDir, "generate-inner-diamond"),
			Stageable: true,
			Platform:  rhel7(),
		})
	}
	if err := b.Transformations.Add(outer...); err != nil {
		return fmt.Errorf("outer transformations: %w", err)
	}

	nested := catalog.NewTransformationCatalog()
	for _, name := range []string{"preprocess", "findrange", "analyze"} {
		err := nested.Add(catalog.Transformation{
			Name:      name,
			Site:      cfg.ExecutionSite,
			PFN:       "/usr/bin/keg",
			Stageable: true,
			Platform:  rhel7(),
		})
		if err != nil {
			return fmt.Errorf("nested transformations: %w", err)
		}
	}
	b.NestedTransformations[NestedTCFile] = nested
	return nil
}

func rhel7() *catalog.Platform {
	return &catalog.Platform{
		Arch:      catalog.ArchX8664,
		OS:        catalog.OSLinux,
		OSRelease: "rhel",
		OSVersion: "7",
	}
}

// buildReplicas registers, in the outer catalog, every artifact the nested
// planning pass will read, and, in the nested catalog, the diamond's sample
// input.
func (b *Bundle) buildReplicas(cfg Config) error {
	pin := func(name string) string { return filepath.Join(cfg.BaseDir, name) }

	b.Replicas = catalog.NewReplicaCatalog()
	outer := []string{NestedPropertiesFile, NestedTCFile, NestedRCFile, SitesFile}
	for _, name := range outer {
		if err := b.Replicas.Add("local", name, pin(name)); err != nil {
			return fmt.Errorf("outer replicas: %w", err)
		}
	}

	nested := catalog.NewReplicaCatalog()
	if err := nested.Add("local", "f.a", pin("f.a")); err != nil {
		return fmt.Errorf("nested replicas: %w", err)
	}
	b.NestedReplicas[NestedRCFile] = nested
	b.DataFiles["f.a"] = []byte("Sample input file for the first diamond job.\n")

	return nil
}

func (b *Bundle) buildWorkflow(cfg Config) error {
	wf := workflow.New(b.Name)
	page := workflow.NewFile("page.html")
	result := workflow.NewFile("f.d")

	fetch := workflow.NewJob("curl").WithID("fetch").
		AddArgs(workflow.Literal("-o"), workflow.Ref(page), workflow.Literal("https://example.org/")).
		AddOutputs(workflow.File{LFN: page.LFN, StageOut: true, RegisterReplica: true})

	count := workflow.NewJob("wc").WithID("count-lines").
		AddArgs(workflow.Literal("-l"), workflow.Ref(result)).
		AddInputs(result).
		SetStdout(workflow.File{LFN: "count.txt", StageOut: true, RegisterReplica: true})

	sub, err := b.diamondNode(cfg, page, result)
	if err != nil {
		return err
	}

	if err := wf.AddJobs(fetch, sub, count); err != nil {
		return err
	}
	if cfg.Variant == VariantDeferred {
		gen := workflow.NewJob("generate-inner-diamond").WithID("generate").
			AddOutputs(workflow.NewFile(DeferredDefFile))
		if err := wf.AddJobs(gen); err != nil {
			return err
		}
		if err := wf.AddDependency(gen, sub); err != nil {
			return err
		}
	}
	if err := wf.InferDependencies(); err != nil {
		return err
	}

	b.Workflow = wf
	return nil
}

// diamondNode builds the sub-workflow node for the configured variant. Both
// shapes consume the fetched page and produce the analysis result.
func (b *Bundle) diamondNode(cfg Config, page, result workflow.File) (*workflow.SubWorkflow, error) {
	var def workflow.Definition
	if cfg.Variant == VariantDeferred {
		def = workflow.FileDefinition{File: workflow.NewFile(DeferredDefFile)}
	} else {
		inner, err := diamond(page, result)
		if err != nil {
			return nil, err
		}
		def = workflow.InlineDefinition{Workflow: inner}
	}

	sub, err := workflow.NewSubWorkflow("diamond-subworkflow", def)
	if err != nil {
		return nil, err
	}
	sub.SetPlannerArgs(workflow.PlannerArgs{
		ConfFile:                  NestedPropertiesFile,
		TransformationCatalogFile: NestedTCFile,
		SiteCatalogFile:           SitesFile,
		ReplicaCatalogFile:        NestedRCFile,
		OutputSites:               []string{"local"},
		Verbosity:                 3,
		Basename:                  "inner",
	})
	sub.AddInputs(
		workflow.PlanningFile(NestedPropertiesFile),
		workflow.PlanningFile(NestedTCFile),
		workflow.PlanningFile(NestedRCFile),
		workflow.PlanningFile(SitesFile),
		page,
	)
	sub.AddOutputs(result)
	return sub, nil
}

// diamond builds the classic four-job diamond: one source fanning out to
// two parallel jobs joined by a sink.
func diamond(page, result workflow.File) (*workflow.Workflow, error) {
	fb1 := workflow.NewFile("f.b1")
	fb2 := workflow.NewFile("f.b2")
	fc1 := workflow.NewFile("f.c1")
	fc2 := workflow.NewFile("f.c2")

	pre := workflow.NewJob("preprocess").WithID("preprocess").
		AddArgs(workflow.Literal("-a"), workflow.Literal("preprocess"),
			workflow.Literal("-i"), workflow.Ref(page),
			workflow.Literal("-o"), workflow.Ref(fb1), workflow.Ref(fb2)).
		AddInputs(page).
		AddOutputs(fb1, fb2)

	left := workflow.NewJob("findrange").WithID("findrange-1").
		AddArgs(workflow.Literal("-a"), workflow.Literal("findrange"),
			workflow.Literal("-i"), workflow.Ref(fb1),
			workflow.Literal("-o"), workflow.Ref(fc1)).
		AddInputs(fb1).
		AddOutputs(fc1)

	right := workflow.NewJob("findrange").WithID("findrange-2").
		AddArgs(workflow.Literal("-a"), workflow.Literal("findrange"),
			workflow.Literal("-i"), workflow.Ref(fb2),
			workflow.Literal("-o"), workflow.Ref(fc2)).
		AddInputs(fb2).
		AddOutputs(fc2)

	sink := workflow.NewJob("analyze").WithID("analyze").
		AddArgs(workflow.Literal("-a"), workflow.Literal("analyze"),
			workflow.Literal("-i"), workflow.Ref(fc1), workflow.Ref(fc2),
			workflow.Literal("-o"), workflow.Ref(result)).
		AddInputs(fc1, fc2).
		AddOutputs(result)

	inner := workflow.New("inner-diamond")
	if err := inner.AddJobs(pre, left, right, sink); err != nil {
		return nil, err
	}
	return inner, inner.InferDependencies()
}
