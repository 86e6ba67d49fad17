package workflow

import (
	"fmt"

	"github.com/me/skein/pkg/catalog"
)

// ValidateOptions supplies the catalogs a workflow is checked against.
// Nil catalogs are treated as empty; an empty ExecutionSite skips
// transformation resolution.
type ValidateOptions struct {
	Transformations *catalog.TransformationCatalog
	Replicas        *catalog.ReplicaCatalog
	ExecutionSite   string
}

// Validate checks the whole workflow and collects every violation found:
//
//   - the edge set must be acyclic
//   - every input file must be produced by another node, carry a physical
//     location, or have a replica
//   - every job's transformation must resolve on the execution site
//   - a deferred sub-workflow's definition producer must precede it via an
//     explicit dependency edge, and every catalog file its nested planner
//     reads (properties, transformation/site/replica catalogs) must be
//     among its inputs
//   - a pre-planned sub-workflow's inline definition must itself be acyclic
//
// Returns nil or a *ValidationError carrying all findings.
func (w *Workflow) Validate(opts ValidateOptions) error {
	var errs []FieldError

	if _, err := w.topoOrder(); err != nil {
		errs = append(errs, FieldError{
			Code:    CodeCycleDetected,
			Field:   "dependencies",
			Message: err.Error(),
		})
	}

	errs = append(errs, w.checkFileCoverage(opts.Replicas)...)
	errs = append(errs, w.checkTransformations(opts.Transformations, opts.ExecutionSite)...)
	errs = append(errs, w.checkSubWorkflows()...)

	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Workflow: w.name, Errors: errs}
}

// checkFileCoverage verifies that each input is obtainable: produced inside
// the workflow, pinned to a physical location, or present in the replica
// catalog.
func (w *Workflow) checkFileCoverage(rc *catalog.ReplicaCatalog) []FieldError {
	var errs []FieldError
	produced := w.producers()

	for _, id := range w.order {
		for _, f := range w.nodes[id].Inputs() {
			if _, ok := produced[f.LFN]; ok {
				continue
			}
			if f.PFN != "" {
				continue
			}
			if rc != nil && rc.Contains(f.LFN) {
				continue
			}
			errs = append(errs, FieldError{
				Code:    CodeMissingFileCoverage,
				Field:   fmt.Sprintf("jobs.%s.uses.%s", id, f.LFN),
				Message: fmt.Sprintf("input %q is neither produced by another node nor present in the replica catalog", f.LFN),
			})
		}
	}
	return errs
}

func (w *Workflow) checkTransformations(tc *catalog.TransformationCatalog, site string) []FieldError {
	if tc == nil || site == "" {
		return nil
	}
	var errs []FieldError
	for _, id := range w.order {
		job, ok := w.nodes[id].(*Job)
		if !ok {
			continue // sub-workflow nodes are executed by the planner itself
		}
		if _, err := tc.Resolve(job.Transformation(), site); err != nil {
			errs = append(errs, FieldError{
				Code:    CodeUnresolvedTransformation,
				Field:   fmt.Sprintf("jobs.%s.transformation", id),
				Message: err.Error(),
			})
		}
	}
	return errs
}

func (w *Workflow) checkSubWorkflows() []FieldError {
	var errs []FieldError
	produced := w.producers()

	for _, id := range w.order {
		sub, ok := w.nodes[id].(*SubWorkflow)
		if !ok {
			continue
		}

		// Every catalog artifact the nested planner reads must travel with
		// the node as an input.
		pa := sub.PlannerArgs()
		planning := []struct {
			field string
			lfn   string
		}{
			{"conf", pa.ConfFile},
			{"transformationCatalog", pa.TransformationCatalogFile},
			{"siteCatalog", pa.SiteCatalogFile},
			{"replicaCatalog", pa.ReplicaCatalogFile},
		}
		for _, p := range planning {
			if p.lfn == "" || sub.hasInput(p.lfn) {
				continue
			}
			errs = append(errs, FieldError{
				Code:    CodeMissingPlanningInput,
				Field:   fmt.Sprintf("jobs.%s.plannerArguments.%s", id, p.field),
				Message: fmt.Sprintf("nested planning file %q must be an input of the sub-workflow node", p.lfn),
			})
		}

		switch def := sub.Definition().(type) {
		case FileDefinition:
			// The definition only exists once the generating job has run;
			// the generator must precede this node with an explicit edge.
			gen, ok := produced[def.File.LFN]
			if !ok {
				continue // covered (or flagged) by the file-coverage check
			}
			if !contains(w.children[gen], id) {
				errs = append(errs, FieldError{
					Code:  CodeDeferredOrdering,
					Field: fmt.Sprintf("jobs.%s.definition", id),
					Message: fmt.Sprintf("definition file %q is produced by node %q, which must precede %q via a dependency edge",
						def.File.LFN, gen, id),
				})
			}
		case InlineDefinition:
			if _, err := def.Workflow.topoOrder(); err != nil {
				errs = append(errs, FieldError{
					Code:    CodeCycleDetected,
					Field:   fmt.Sprintf("jobs.%s.definition", id),
					Message: err.Error(),
				})
			}
		}
	}
	return errs
}

func (s *SubWorkflow) hasInput(lfn string) bool {
	_, ok := s.inputs[lfn]
	return ok
}
