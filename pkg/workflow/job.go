package workflow

import "sort"

// Node is a vertex in a workflow DAG: either a plain Job or a SubWorkflow.
type Node interface {
	ID() string
	Args() []Arg
	Inputs() []File
	Outputs() []File
	Stdout() (File, bool)

	assignID(id string)
}

// Job binds a transformation to an ordered argument vector and the files it
// consumes and produces.
type Job struct {
	id             string
	transformation string
	args           []Arg
	inputs         map[string]File
	outputs        map[string]File
	stdout         *File
}

// NewJob creates a job bound to the named transformation. The job receives
// an auto-generated ID when added to a workflow unless WithID is called.
func NewJob(transformation string) *Job {
	return &Job{
		transformation: transformation,
		inputs:         make(map[string]File),
		outputs:        make(map[string]File),
	}
}

// WithID sets an explicit node ID.
func (j *Job) WithID(id string) *Job {
	j.id = id
	return j
}

// ID returns the node ID, empty until assigned.
func (j *Job) ID() string { return j.id }

func (j *Job) assignID(id string) {
	if j.id == "" {
		j.id = id
	}
}

// Transformation returns the bound transformation name.
func (j *Job) Transformation() string { return j.transformation }

// AddArgs appends argument slots, preserving order.
func (j *Job) AddArgs(args ...Arg) *Job {
	j.args = append(j.args, args...)
	return j
}

// AddInputs registers input files. Adding a file that is already an input is
// a no-op; the first registration wins.
func (j *Job) AddInputs(files ...File) *Job {
	for _, f := range files {
		if _, ok := j.inputs[f.LFN]; !ok {
			j.inputs[f.LFN] = f
		}
	}
	return j
}

// AddOutputs registers output files, idempotently like AddInputs.
func (j *Job) AddOutputs(files ...File) *Job {
	for _, f := range files {
		if _, ok := j.outputs[f.LFN]; !ok {
			j.outputs[f.LFN] = f
		}
	}
	return j
}

// SetStdout captures the job's stdout into a file. The file also counts as
// an output of the job.
func (j *Job) SetStdout(f File) *Job {
	j.stdout = &f
	j.AddOutputs(f)
	return j
}

// Args returns the argument vector in registration order.
func (j *Job) Args() []Arg {
	return append([]Arg(nil), j.args...)
}

// Inputs returns the input set sorted by logical name.
func (j *Job) Inputs() []File { return sortedFiles(j.inputs) }

// Outputs returns the output set sorted by logical name.
func (j *Job) Outputs() []File { return sortedFiles(j.outputs) }

// Stdout returns the stdout-capture file, if set.
func (j *Job) Stdout() (File, bool) {
	if j.stdout == nil {
		return File{}, false
	}
	return *j.stdout, true
}

func sortedFiles(m map[string]File) []File {
	out := make([]File, 0, len(m))
	for _, f := range m {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LFN < out[j].LFN })
	return out
}
