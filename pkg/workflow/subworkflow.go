package workflow

import "fmt"

// ResolutionMode tells the outer planner when a sub-workflow's definition
// becomes available.
type ResolutionMode string

const (
	// PrePlanned definitions exist at composition time and are serialized
	// together with the outer workflow.
	PrePlanned ResolutionMode = "prePlanned"
	// Deferred definitions are produced by another job at run time; the
	// outer graph only guarantees their generation prerequisites.
	Deferred ResolutionMode = "deferred"
)

// Definition is the source of a sub-workflow's graph. It is a closed sum:
// either an inline workflow (pre-planned) or a file reference (deferred).
// The resolution mode is derived from the variant, so mode and source can
// never disagree.
type Definition interface {
	Mode() ResolutionMode
}

// InlineDefinition embeds a fully built workflow, serialized alongside the
// outer one.
type InlineDefinition struct {
	Workflow *Workflow
}

// Mode returns PrePlanned.
func (InlineDefinition) Mode() ResolutionMode { return PrePlanned }

// FileDefinition references a workflow definition file that a prior job
// produces at run time.
type FileDefinition struct {
	File File
}

// Mode returns Deferred.
func (FileDefinition) Mode() ResolutionMode { return Deferred }

// PlannerArgs are the invocation arguments the outer planner forwards to the
// nested planning pass of a sub-workflow. The file fields name catalog
// artifacts the nested planner reads; each named file must also be an input
// of the node, which Validate enforces.
type PlannerArgs struct {
	// ConfFile is the logical name of the nested-scope properties file.
	ConfFile string
	// TransformationCatalogFile is the logical name of the nested
	// transformation catalog.
	TransformationCatalogFile string
	// SiteCatalogFile is the logical name of the site catalog the nested
	// pass plans against.
	SiteCatalogFile string
	// ReplicaCatalogFile is the logical name of the nested replica catalog.
	ReplicaCatalogFile string
	// OutputSites lists the sites nested outputs are staged to.
	OutputSites []string
	// Verbosity is the nested planner's log verbosity (count of -v).
	Verbosity int
	// Basename prefixes the nested run's artifact names.
	Basename string
}

// SubWorkflow is a job-like node whose execution is planning and running a
// nested workflow.
type SubWorkflow struct {
	Job

	def     Definition
	planner PlannerArgs
}

// NewSubWorkflow creates a sub-workflow node from a definition source.
//
// An InlineDefinition must carry a named, acyclic workflow; it is checked
// here, before anything references the node. A FileDefinition's file is
// registered as an input of the node, so the deferred definition always
// participates in dependency and coverage checks.
func NewSubWorkflow(id string, def Definition) (*SubWorkflow, error) {
	s := &SubWorkflow{
		Job: Job{
			id:      id,
			inputs:  make(map[string]File),
			outputs: make(map[string]File),
		},
		def: def,
	}

	switch d := def.(type) {
	case InlineDefinition:
		if d.Workflow == nil {
			return nil, fmt.Errorf("sub-workflow %q: inline definition has no workflow", id)
		}
		if d.Workflow.Name() == "" {
			return nil, fmt.Errorf("sub-workflow %q: inline workflow has no name", id)
		}
		if _, err := d.Workflow.topoOrder(); err != nil {
			return nil, fmt.Errorf("sub-workflow %q: inline workflow: %w", id, err)
		}
	case FileDefinition:
		if d.File.LFN == "" {
			return nil, fmt.Errorf("sub-workflow %q: definition file has no logical name", id)
		}
		s.AddInputs(d.File)
	case nil:
		return nil, fmt.Errorf("sub-workflow %q: definition source is required", id)
	default:
		return nil, fmt.Errorf("sub-workflow %q: unknown definition source %T", id, def)
	}

	return s, nil
}

// Definition returns the definition source.
func (s *SubWorkflow) Definition() Definition { return s.def }

// Mode returns the resolution mode derived from the definition source.
func (s *SubWorkflow) Mode() ResolutionMode { return s.def.Mode() }

// SetPlannerArgs sets the nested planner invocation arguments.
func (s *SubWorkflow) SetPlannerArgs(pa PlannerArgs) *SubWorkflow {
	s.planner = pa
	return s
}

// PlannerArgs returns the nested planner invocation arguments.
func (s *SubWorkflow) PlannerArgs() PlannerArgs { return s.planner }
