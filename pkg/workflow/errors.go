package workflow

import (
	"fmt"
	"strings"
)

// DuplicateNodeIDError is returned when a node with an already-used ID is
// added to a workflow.
type DuplicateNodeIDError struct {
	ID string
}

func (e *DuplicateNodeIDError) Error() string {
	return fmt.Sprintf("workflow already contains a node with id %q", e.ID)
}

// UnknownNodeError is returned when a dependency references a node that was
// never added to the workflow.
type UnknownNodeError struct {
	ID string
}

func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("node %q is not part of the workflow", e.ID)
}

// CycleError is returned when adding a dependency edge would close a cycle.
// The edge is not added.
type CycleError struct {
	Parent string
	Child  string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency %s -> %s would create a cycle", e.Parent, e.Child)
}

// UnresolvedReferenceError is returned by the serialization layer when a
// node's argument vector references a file that is bound to neither its
// inputs nor its outputs.
type UnresolvedReferenceError struct {
	Node string
	Ref  string
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("node %q references file %q which is neither an input nor an output", e.Node, e.Ref)
}

// Code classifies a validation finding.
type Code string

const (
	CodeCycleDetected            Code = "CYCLE_DETECTED"
	CodeMissingFileCoverage      Code = "MISSING_FILE_COVERAGE"
	CodeUnresolvedTransformation Code = "UNRESOLVED_TRANSFORMATION"
	CodeDeferredOrdering         Code = "DEFERRED_ORDERING"
	CodeMissingPlanningInput     Code = "MISSING_PLANNING_INPUT"
)

// FieldError describes one validation finding at a path in the workflow.
type FieldError struct {
	Code    Code
	Field   string
	Message string
}

// ValidationError aggregates every finding of a Validate pass, so callers
// see the whole problem set rather than the first failure.
type ValidationError struct {
	Workflow string
	Errors   []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = fmt.Sprintf("%s: %s", fe.Field, fe.Message)
	}
	return fmt.Sprintf("workflow %q is invalid: %s", e.Workflow, strings.Join(msgs, "; "))
}

// Has reports whether any finding carries the given code.
func (e *ValidationError) Has(code Code) bool {
	for _, fe := range e.Errors {
		if fe.Code == code {
			return true
		}
	}
	return false
}
