package emit

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/me/skein/pkg/catalog"
	"github.com/me/skein/pkg/workflow"
)

// buildOuter assembles the 3-node outer pipeline with a pre-planned diamond
// sub-workflow between fetch and count-lines.
func buildOuter(t *testing.T) *workflow.Workflow {
	t.Helper()

	page := workflow.NewFile("page.html")
	fb1 := workflow.NewFile("f.b1")
	fb2 := workflow.NewFile("f.b2")
	fc1 := workflow.NewFile("f.c1")
	fc2 := workflow.NewFile("f.c2")
	fd := workflow.NewFile("f.d")

	inner := workflow.New("diamond")
	pre := workflow.NewJob("preprocess").WithID("pre").
		AddArgs(workflow.Literal("-i"), workflow.Ref(page), workflow.Literal("-o"), workflow.Ref(fb1), workflow.Ref(fb2)).
		AddInputs(page).
		AddOutputs(fb1, fb2)
	left := workflow.NewJob("findrange").WithID("left").
		AddArgs(workflow.Literal("-i"), workflow.Ref(fb1), workflow.Literal("-o"), workflow.Ref(fc1)).
		AddInputs(fb1).
		AddOutputs(fc1)
	right := workflow.NewJob("findrange").WithID("right").
		AddArgs(workflow.Literal("-i"), workflow.Ref(fb2), workflow.Literal("-o"), workflow.Ref(fc2)).
		AddInputs(fb2).
		AddOutputs(fc2)
	sink := workflow.NewJob("analyze").WithID("sink").
		AddArgs(workflow.Literal("-i"), workflow.Ref(fc1), workflow.Ref(fc2), workflow.Literal("-o"), workflow.Ref(fd)).
		AddInputs(fc1, fc2).
		AddOutputs(fd)
	if err := inner.AddJobs(pre, left, right, sink); err != nil {
		t.Fatalf("inner AddJobs: %v", err)
	}
	if err := inner.AddDependency(pre, left, right); err != nil {
		t.Fatalf("inner AddDependency: %v", err)
	}
	if err := inner.AddDependency(left, sink); err != nil {
		t.Fatalf("inner AddDependency: %v", err)
	}
	if err := inner.AddDependency(right, sink); err != nil {
		t.Fatalf("inner AddDependency: %v", err)
	}

	outer := workflow.New("hierarchical")
	fetch := workflow.NewJob("curl").WithID("fetch").
		AddArgs(workflow.Literal("-o"), workflow.Ref(page), workflow.Literal("http://example.org")).
		AddOutputs(workflow.File{LFN: "page.html", StageOut: true, RegisterReplica: true})
	sub, err := workflow.NewSubWorkflow("diamond_subworkflow", workflow.InlineDefinition{Workflow: inner})
	if err != nil {
		t.Fatalf("NewSubWorkflow: %v", err)
	}
	sub.SetPlannerArgs(workflow.PlannerArgs{
		OutputSites: []string{"local"},
		Verbosity:   3,
		Basename:    "inner",
	})
	sub.AddInputs(page)
	sub.AddOutputs(fd)
	count := workflow.NewJob("wc").WithID("count-lines").
		AddArgs(workflow.Literal("-l"), workflow.Ref(fd)).
		AddInputs(fd).
		SetStdout(workflow.File{LFN: "count.txt", StageOut: true})

	if err := outer.AddJobs(fetch, sub, count); err != nil {
		t.Fatalf("outer AddJobs: %v", err)
	}
	if err := outer.AddDependency(fetch, sub); err != nil {
		t.Fatalf("outer AddDependency: %v", err)
	}
	if err := outer.AddDependency(sub, count); err != nil {
		t.Fatalf("outer AddDependency: %v", err)
	}
	return outer
}

func TestWorkflow_EndToEndShape(t *testing.T) {
	outer := buildOuter(t)
	if err := outer.Validate(workflow.ValidateOptions{}); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	data, err := Workflow(outer)
	if err != nil {
		t.Fatalf("Workflow: %v", err)
	}

	var doc struct {
		Name string `yaml:"name"`
		Jobs []struct {
			Type           string   `yaml:"type"`
			ID             string   `yaml:"id"`
			Resolution     string   `yaml:"resolution"`
			DefinitionFile string   `yaml:"definitionFile"`
			Arguments      []string `yaml:"arguments"`
			Stdout         string   `yaml:"stdout"`
		} `yaml:"jobs"`
		Dependencies []struct {
			ID       string   `yaml:"id"`
			Children []string `yaml:"children"`
		} `yaml:"dependencies"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal emitted workflow: %v", err)
	}

	if len(doc.Jobs) != 3 {
		t.Fatalf("outer jobs = %d, want 3", len(doc.Jobs))
	}
	if len(doc.Dependencies) != 2 {
		t.Fatalf("outer dependencies = %d, want 2", len(doc.Dependencies))
	}

	sub := doc.Jobs[1]
	if sub.Type != "subWorkflow" || sub.Resolution != "prePlanned" {
		t.Errorf("sub node = %+v, want prePlanned subWorkflow", sub)
	}
	if sub.DefinitionFile != "diamond.yml" {
		t.Errorf("definitionFile = %q, want diamond.yml", sub.DefinitionFile)
	}

	// File references resolve to logical names at their argument positions.
	fetch := doc.Jobs[0]
	if len(fetch.Arguments) != 3 || fetch.Arguments[1] != "page.html" {
		t.Errorf("fetch arguments = %v, want -o page.html <url>", fetch.Arguments)
	}
	if doc.Jobs[2].Stdout != "count.txt" {
		t.Errorf("count stdout = %q, want count.txt", doc.Jobs[2].Stdout)
	}
}

func TestNestedDefinitions_DiamondShape(t *testing.T) {
	outer := buildOuter(t)

	nested, err := NestedDefinitions(outer)
	if err != nil {
		t.Fatalf("NestedDefinitions: %v", err)
	}
	data, ok := nested["diamond.yml"]
	if !ok {
		t.Fatalf("nested artifacts = %v, want diamond.yml", nested)
	}

	var doc struct {
		Jobs []struct {
			ID string `yaml:"id"`
		} `yaml:"jobs"`
		Dependencies []struct {
			ID       string   `yaml:"id"`
			Children []string `yaml:"children"`
		} `yaml:"dependencies"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal nested workflow: %v", err)
	}

	if len(doc.Jobs) != 4 {
		t.Fatalf("nested jobs = %d, want 4", len(doc.Jobs))
	}

	// Diamond: one source fanning out to two middle nodes, both joining at
	// one sink.
	edges := make(map[string][]string)
	for _, d := range doc.Dependencies {
		edges[d.ID] = d.Children
	}
	if got := edges["pre"]; len(got) != 2 {
		t.Errorf("source children = %v, want 2 parallel nodes", got)
	}
	if got := edges["left"]; len(got) != 1 || got[0] != "sink" {
		t.Errorf("left children = %v, want [sink]", got)
	}
	if got := edges["right"]; len(got) != 1 || got[0] != "sink" {
		t.Errorf("right children = %v, want [sink]", got)
	}
	if _, ok := edges["sink"]; ok {
		t.Error("sink has children, want none")
	}
}

func TestWorkflow_DeterministicBytes(t *testing.T) {
	outer := buildOuter(t)

	first, err := Workflow(outer)
	if err != nil {
		t.Fatalf("Workflow: %v", err)
	}
	second, err := Workflow(outer)
	if err != nil {
		t.Fatalf("Workflow second pass: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("re-emitting the same workflow is not byte-identical")
	}
}

func TestWorkflow_UnresolvedArgumentReference(t *testing.T) {
	w := workflow.New("broken")
	stray := workflow.NewFile("stray.txt")
	j := workflow.NewJob("cat").WithID("show").AddArgs(workflow.Ref(stray))
	if err := w.AddJobs(j); err != nil {
		t.Fatalf("AddJobs: %v", err)
	}

	_, err := Workflow(w)
	var unresolved *workflow.UnresolvedReferenceError
	if !errors.As(err, &unresolved) {
		t.Fatalf("Workflow error = %v, want UnresolvedReferenceError", err)
	}
	if unresolved.Ref != "stray.txt" {
		t.Errorf("unresolved ref = %q, want stray.txt", unresolved.Ref)
	}
}

func TestCatalogs_DeterministicAndSorted(t *testing.T) {
	tc := catalog.NewTransformationCatalog()
	if err := tc.Add(
		catalog.Transformation{Name: "wc", Site: "condorpool", PFN: "/usr/bin/wc"},
		catalog.Transformation{
			Name: "analyze", Site: "local", PFN: "/usr/bin/keg", Stageable: true,
			Platform: &catalog.Platform{Arch: catalog.ArchX8664, OS: catalog.OSLinux, OSRelease: "rhel", OSVersion: "7"},
		},
	); err != nil {
		t.Fatalf("tc.Add: %v", err)
	}

	data, err := TransformationCatalog(tc)
	if err != nil {
		t.Fatalf("TransformationCatalog: %v", err)
	}
	// Sorted by name: analyze precedes wc regardless of insertion order.
	if !(strings.Index(string(data), "analyze") < strings.Index(string(data), "wc")) {
		t.Errorf("transformations not sorted by name:\n%s", data)
	}

	rc := catalog.NewReplicaCatalog()
	if err := rc.Add("local", "f.b", "/data/f.b"); err != nil {
		t.Fatalf("rc.Add: %v", err)
	}
	if err := rc.Add("local", "f.a", "/data/f.a"); err != nil {
		t.Fatalf("rc.Add: %v", err)
	}
	first, err := ReplicaCatalog(rc)
	if err != nil {
		t.Fatalf("ReplicaCatalog: %v", err)
	}
	second, err := ReplicaCatalog(rc)
	if err != nil {
		t.Fatalf("ReplicaCatalog second pass: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("replica catalog emission is not byte-identical")
	}
	if !(strings.Index(string(first), "f.a") < strings.Index(string(first), "f.b")) {
		t.Errorf("replicas not sorted by lfn:\n%s", first)
	}

	sc := catalog.NewSiteCatalog()
	site := catalog.NewSite("local").AddDirectories(catalog.Directory{
		Kind: catalog.SharedScratch,
		Path: "/scratch",
		FileServers: []catalog.FileServer{
			{URL: "file:///scratch", Operation: catalog.OpAll},
		},
	})
	if err := sc.Add(site); err != nil {
		t.Fatalf("sc.Add: %v", err)
	}
	if _, err := SiteCatalog(sc); err != nil {
		t.Fatalf("SiteCatalog: %v", err)
	}
}
