// Package planner defines the boundary to the external workflow planner:
// the collaborator that turns an emitted workflow description plus its
// catalogs into an executable plan and, on request, submits it.
package planner

import "context"

// Request names the artifacts a planning pass consumes.
type Request struct {
	// Dir is the run directory holding every emitted artifact.
	Dir string
	// WorkflowFile is the workflow artifact path, relative to Dir.
	WorkflowFile string
	// ConfFile is the properties artifact path, relative to Dir.
	ConfFile string
	// Sites lists the output sites for staged results.
	Sites []string
	// Basename prefixes the planner's own artifact names, so two runs of
	// the same workflow never collide in a shared scratch directory.
	Basename string
	// Submit asks the planner to also submit the planned workflow for
	// execution.
	Submit bool
	// Verbosity is the planner's log verbosity (count of -v).
	Verbosity int
}

// Result reports a completed planning pass.
type Result struct {
	// RunHandle identifies the planned (and possibly submitted) run on the
	// planner's side.
	RunHandle string
	// Output is the planner's combined console output.
	Output string
}

// Planner plans (and optionally submits) an emitted workflow. The core is
// fully testable against a fake; the exec-backed implementation is the only
// place an external process is spawned.
type Planner interface {
	Plan(ctx context.Context, req Request) (*Result, error)
}
