package workflow

import (
	"fmt"
	"sort"
)

// Workflow is a named DAG of jobs and sub-workflow nodes. Nodes are added
// once; dependency edges may be appended afterwards but never form a cycle.
type Workflow struct {
	name     string
	nodes    map[string]Node
	order    []string            // node IDs in insertion order
	children map[string][]string // parent ID -> child IDs
	nextID   int
}

// New creates an empty workflow with the given name.
func New(name string) *Workflow {
	return &Workflow{
		name:     name,
		nodes:    make(map[string]Node),
		children: make(map[string][]string),
	}
}

// Name returns the workflow name.
func (w *Workflow) Name() string { return w.name }

// Len returns the number of nodes.
func (w *Workflow) Len() int { return len(w.nodes) }

// AddJobs inserts nodes into the graph. Nodes without an explicit ID receive
// a sequential one. A repeated ID fails with DuplicateNodeIDError; nodes
// added before the failure remain.
func (w *Workflow) AddJobs(nodes ...Node) error {
	for _, n := range nodes {
		if n.ID() == "" {
			w.nextID++
			n.assignID(fmt.Sprintf("ID%07d", w.nextID))
		}
		id := n.ID()
		if _, ok := w.nodes[id]; ok {
			return &DuplicateNodeIDError{ID: id}
		}
		w.nodes[id] = n
		w.order = append(w.order, id)
	}
	return nil
}

// AddDependency inserts directed edges parent -> child for every child.
// Each edge is checked at insertion time: if the child already reaches the
// parent, the call fails with CycleError and the edge is not added.
// Re-adding an existing edge is a no-op.
func (w *Workflow) AddDependency(parent Node, children ...Node) error {
	pid := parent.ID()
	if _, ok := w.nodes[pid]; !ok {
		return &UnknownNodeError{ID: pid}
	}
	for _, child := range children {
		cid := child.ID()
		if _, ok := w.nodes[cid]; !ok {
			return &UnknownNodeError{ID: cid}
		}
		if cid == pid || w.reaches(cid, pid) {
			return &CycleError{Parent: pid, Child: cid}
		}
		if !contains(w.children[pid], cid) {
			w.children[pid] = append(w.children[pid], cid)
		}
	}
	return nil
}

// reaches reports whether to is reachable from from via dependency edges.
func (w *Workflow) reaches(from, to string) bool {
	seen := map[string]bool{from: true}
	stack := []string{from}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, c := range w.children[n] {
			if c == to {
				return true
			}
			if !seen[c] {
				seen[c] = true
				stack = append(stack, c)
			}
		}
	}
	return false
}

// Get returns the node with the given ID, or nil.
func (w *Workflow) Get(id string) Node { return w.nodes[id] }

// Nodes returns all nodes in insertion order.
func (w *Workflow) Nodes() []Node {
	out := make([]Node, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.nodes[id])
	}
	return out
}

// Dependency is one parent node and its direct children.
type Dependency struct {
	Parent   string
	Children []string
}

// Dependencies returns the edge set sorted by parent ID, children sorted
// within each entry.
func (w *Workflow) Dependencies() []Dependency {
	out := make([]Dependency, 0, len(w.children))
	for pid, cs := range w.children {
		children := append([]string(nil), cs...)
		sort.Strings(children)
		out = append(out, Dependency{Parent: pid, Children: children})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Parent < out[j].Parent })
	return out
}

// InferDependencies adds a dependency edge from every producer to every
// consumer of the same logical file, mirroring what the planner derives from
// data flow. Existing edges are kept; an inferred edge that would close a
// cycle fails with CycleError.
func (w *Workflow) InferDependencies() error {
	produced := w.producers()
	for _, cid := range w.order {
		consumer := w.nodes[cid]
		for _, f := range consumer.Inputs() {
			pid, ok := produced[f.LFN]
			if !ok || pid == cid {
				continue
			}
			if err := w.AddDependency(w.nodes[pid], consumer); err != nil {
				return err
			}
		}
	}
	return nil
}

// producers maps each output LFN to the ID of the node producing it.
func (w *Workflow) producers() map[string]string {
	out := make(map[string]string)
	for _, id := range w.order {
		for _, f := range w.nodes[id].Outputs() {
			out[f.LFN] = id
		}
	}
	return out
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
