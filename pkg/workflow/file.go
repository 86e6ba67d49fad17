package workflow

// File is a logical file moving through a workflow. Identity is the logical
// name: two Files are the same file iff their LFNs are equal, regardless of
// staging directives or physical override.
type File struct {
	// LFN is the logical file name, unique within a workflow's namespace.
	LFN string
	// PFN optionally pins the file to a known physical location, marking it
	// as a pre-existing artifact outside planning.
	PFN string
	// StageOut asks the planner to copy the file out of the execution site
	// after the producing job finishes.
	StageOut bool
	// RegisterReplica asks the planner to record the staged-out copy in the
	// replica catalog.
	RegisterReplica bool
	// ForPlanning marks a file that is consumed by a nested planner
	// invocation rather than by the job's own executable. Such files are
	// excluded from stage-out reasoning.
	ForPlanning bool
}

// NewFile creates a plain logical file.
func NewFile(lfn string) File {
	return File{LFN: lfn}
}

// PlanningFile creates a file consumed by a nested planner invocation.
func PlanningFile(lfn string) File {
	return File{LFN: lfn, ForPlanning: true}
}

// Same reports whether two Files denote the same logical file.
func (f File) Same(other File) bool {
	return f.LFN == other.LFN
}
