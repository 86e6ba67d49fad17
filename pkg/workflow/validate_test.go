package workflow

import (
	"errors"
	"testing"

	"github.com/me/skein/pkg/catalog"
)

func validationErr(t *testing.T, err error) *ValidationError {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	return verr
}

func TestValidate_MissingFileCoverage(t *testing.T) {
	w := New("pipeline")
	orphan := NewFile("orphan.txt")
	j := NewJob("wc").WithID("count").AddInputs(orphan)
	if err := w.AddJobs(j); err != nil {
		t.Fatalf("AddJobs: %v", err)
	}

	verr := validationErr(t, w.Validate(ValidateOptions{Replicas: catalog.NewReplicaCatalog()}))
	if !verr.Has(CodeMissingFileCoverage) {
		t.Fatalf("findings = %+v, want MISSING_FILE_COVERAGE", verr.Errors)
	}

	// A replica entry satisfies coverage.
	rc := catalog.NewReplicaCatalog()
	if err := rc.Add("local", "orphan.txt", "/data/orphan.txt"); err != nil {
		t.Fatalf("rc.Add: %v", err)
	}
	if err := w.Validate(ValidateOptions{Replicas: rc}); err != nil {
		t.Errorf("Validate with replica = %v, want nil", err)
	}
}

func TestValidate_ProducedInputIsCovered(t *testing.T) {
	w := New("pipeline")
	page := NewFile("page.html")
	fetch := NewJob("curl").WithID("fetch").AddOutputs(page)
	count := NewJob("wc").WithID("count").AddInputs(page)
	if err := w.AddJobs(fetch, count); err != nil {
		t.Fatalf("AddJobs: %v", err)
	}
	if err := w.AddDependency(fetch, count); err != nil {
		t.Fatalf("AddDependency: %v", err)
	}

	if err := w.Validate(ValidateOptions{}); err != nil {
		t.Errorf("Validate = %v, want nil", err)
	}
}

func TestValidate_PinnedFileIsExternal(t *testing.T) {
	w := New("pipeline")
	pinned := File{LFN: "ref.db", PFN: "/opt/ref.db"}
	if err := w.AddJobs(NewJob("scan").WithID("scan").AddInputs(pinned)); err != nil {
		t.Fatalf("AddJobs: %v", err)
	}

	if err := w.Validate(ValidateOptions{}); err != nil {
		t.Errorf("Validate = %v, want nil for physically pinned input", err)
	}
}

func TestValidate_UnresolvedTransformation(t *testing.T) {
	tc := catalog.NewTransformationCatalog()
	if err := tc.Add(catalog.Transformation{Name: "curl", Site: "condorpool", PFN: "/usr/bin/curl"}); err != nil {
		t.Fatalf("tc.Add: %v", err)
	}

	w := New("pipeline")
	if err := w.AddJobs(NewJob("curl").WithID("fetch"), NewJob("wc").WithID("count")); err != nil {
		t.Fatalf("AddJobs: %v", err)
	}

	verr := validationErr(t, w.Validate(ValidateOptions{
		Transformations: tc,
		ExecutionSite:   "condorpool",
	}))
	if !verr.Has(CodeUnresolvedTransformation) {
		t.Fatalf("findings = %+v, want UNRESOLVED_TRANSFORMATION for wc", verr.Errors)
	}
	if len(verr.Errors) != 1 {
		t.Errorf("findings = %d, want exactly one (curl resolves)", len(verr.Errors))
	}
}

func TestValidate_DeferredOrderingEdgeRequired(t *testing.T) {
	def := NewFile("inner.yml")

	w := New("hierarchical")
	gen := NewJob("generate").WithID("gen").AddOutputs(def)
	sub, err := NewSubWorkflow("sub", FileDefinition{File: def})
	if err != nil {
		t.Fatalf("NewSubWorkflow: %v", err)
	}
	if err := w.AddJobs(gen, sub); err != nil {
		t.Fatalf("AddJobs: %v", err)
	}

	// Producer exists but no edge: must be reported.
	verr := validationErr(t, w.Validate(ValidateOptions{}))
	if !verr.Has(CodeDeferredOrdering) {
		t.Fatalf("findings = %+v, want DEFERRED_ORDERING", verr.Errors)
	}

	// Adding the explicit edge makes the workflow valid.
	if err := w.AddDependency(gen, sub); err != nil {
		t.Fatalf("AddDependency: %v", err)
	}
	if err := w.Validate(ValidateOptions{}); err != nil {
		t.Errorf("Validate after edge = %v, want nil", err)
	}
}

func TestValidate_PlannerConfMustBeInput(t *testing.T) {
	def := NewFile("inner.yml")
	w := New("hierarchical")
	gen := NewJob("generate").WithID("gen").AddOutputs(def)
	sub, err := NewSubWorkflow("sub", FileDefinition{File: def})
	if err != nil {
		t.Fatalf("NewSubWorkflow: %v", err)
	}
	sub.SetPlannerArgs(PlannerArgs{ConfFile: "inner.properties", OutputSites: []string{"local"}})
	if err := w.AddJobs(gen, sub); err != nil {
		t.Fatalf("AddJobs: %v", err)
	}
	if err := w.AddDependency(gen, sub); err != nil {
		t.Fatalf("AddDependency: %v", err)
	}

	verr := validationErr(t, w.Validate(ValidateOptions{}))
	if !verr.Has(CodeMissingPlanningInput) {
		t.Fatalf("findings = %+v, want MISSING_PLANNING_INPUT", verr.Errors)
	}

	rc := catalog.NewReplicaCatalog()
	if err := rc.Add("local", "inner.properties", "/run/inner.properties"); err != nil {
		t.Fatalf("rc.Add: %v", err)
	}
	sub.AddInputs(PlanningFile("inner.properties"))
	if err := w.Validate(ValidateOptions{Replicas: rc}); err != nil {
		t.Errorf("Validate = %v, want nil once conf file is an input", err)
	}
}

func TestValidate_NestedCatalogFilesMustBeInputs(t *testing.T) {
	def := NewFile("inner.yml")
	w := New("hierarchical")
	gen := NewJob("generate").WithID("gen").AddOutputs(def)
	sub, err := NewSubWorkflow("sub", FileDefinition{File: def})
	if err != nil {
		t.Fatalf("NewSubWorkflow: %v", err)
	}
	sub.SetPlannerArgs(PlannerArgs{
		ConfFile:                  "inner.properties",
		TransformationCatalogFile: "inner.tc.yml",
		SiteCatalogFile:           "sites.yml",
		ReplicaCatalogFile:        "inner.rc.yml",
		OutputSites:               []string{"local"},
	})
	if err := w.AddJobs(gen, sub); err != nil {
		t.Fatalf("AddJobs: %v", err)
	}
	if err := w.AddDependency(gen, sub); err != nil {
		t.Fatalf("AddDependency: %v", err)
	}

	rc := catalog.NewReplicaCatalog()
	files := []string{"inner.properties", "inner.tc.yml", "sites.yml", "inner.rc.yml"}
	for _, f := range files {
		if err := rc.Add("local", f, "/run/"+f); err != nil {
			t.Fatalf("rc.Add: %v", err)
		}
	}

	// Only the properties file travels with the node: the three catalog
	// files must each be reported.
	sub.AddInputs(PlanningFile("inner.properties"))
	verr := validationErr(t, w.Validate(ValidateOptions{Replicas: rc}))
	missing := 0
	for _, fe := range verr.Errors {
		if fe.Code == CodeMissingPlanningInput {
			missing++
		}
	}
	if missing != 3 {
		t.Fatalf("MISSING_PLANNING_INPUT findings = %d, want 3 (%+v)", missing, verr.Errors)
	}

	sub.AddInputs(
		PlanningFile("inner.tc.yml"),
		PlanningFile("sites.yml"),
		PlanningFile("inner.rc.yml"),
	)
	if err := w.Validate(ValidateOptions{Replicas: rc}); err != nil {
		t.Errorf("Validate = %v, want nil once all planning files are inputs", err)
	}
}

func TestValidate_CollectsAllFindings(t *testing.T) {
	// One coverage gap and one unresolved transformation: both must be
	// reported in a single pass.
	tc := catalog.NewTransformationCatalog()
	if err := tc.Add(catalog.Transformation{Name: "curl", Site: "condorpool", PFN: "/usr/bin/curl"}); err != nil {
		t.Fatalf("tc.Add: %v", err)
	}

	w := New("pipeline")
	bad := NewJob("missing-tool").WithID("bad").AddInputs(NewFile("nowhere.txt"))
	ok := NewJob("curl").WithID("fetch")
	if err := w.AddJobs(bad, ok); err != nil {
		t.Fatalf("AddJobs: %v", err)
	}

	verr := validationErr(t, w.Validate(ValidateOptions{
		Transformations: tc,
		ExecutionSite:   "condorpool",
	}))
	if !verr.Has(CodeMissingFileCoverage) || !verr.Has(CodeUnresolvedTransformation) {
		t.Fatalf("findings = %+v, want both coverage and transformation errors", verr.Errors)
	}
	if len(verr.Errors) != 2 {
		t.Errorf("findings = %d, want 2", len(verr.Errors))
	}
}
