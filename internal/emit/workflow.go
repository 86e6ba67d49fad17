// Package emit renders catalogs and workflow graphs to their YAML artifact
// form. Rendering is deterministic: node order follows insertion order, all
// sets are emitted sorted, and re-emitting an unchanged value is
// byte-identical.
package emit

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/me/skein/pkg/workflow"
)

// FormatVersion is written into every artifact header.
const FormatVersion = "1.0"

type workflowDoc struct {
	Skein        string   `yaml:"skein"`
	Name         string   `yaml:"name"`
	Jobs         []jobDoc `yaml:"jobs"`
	Dependencies []depDoc `yaml:"dependencies,omitempty"`
}

type jobDoc struct {
	Type             string   `yaml:"type"`
	ID               string   `yaml:"id"`
	Transformation   string   `yaml:"transformation,omitempty"`
	Arguments        []string `yaml:"arguments,omitempty"`
	Uses             []useDoc `yaml:"uses,omitempty"`
	Stdout           string   `yaml:"stdout,omitempty"`
	Resolution       string   `yaml:"resolution,omitempty"`
	DefinitionFile   string   `yaml:"definitionFile,omitempty"`
	PlannerArguments []string `yaml:"plannerArguments,omitempty"`
}

type useDoc struct {
	LFN             string `yaml:"lfn"`
	Type            string `yaml:"type"`
	PFN             string `yaml:"pfn,omitempty"`
	StageOut        bool   `yaml:"stageOut,omitempty"`
	RegisterReplica bool   `yaml:"registerReplica,omitempty"`
	ForPlanning     bool   `yaml:"forPlanning,omitempty"`
}

type depDoc struct {
	ID       string   `yaml:"id"`
	Children []string `yaml:"children"`
}

// Workflow renders a workflow graph. Sub-workflow definitions are referenced
// by file name; inline definitions are rendered separately by
// NestedDefinitions and referenced under the name DefinitionFileName gives
// them. A node whose argument vector references an unbound file fails with
// UnresolvedReferenceError.
func Workflow(w *workflow.Workflow) ([]byte, error) {
	doc := workflowDoc{Skein: FormatVersion, Name: w.Name()}

	for _, n := range w.Nodes() {
		jd, err := renderNode(n)
		if err != nil {
			return nil, err
		}
		doc.Jobs = append(doc.Jobs, jd)
	}
	for _, dep := range w.Dependencies() {
		doc.Dependencies = append(doc.Dependencies, depDoc{ID: dep.Parent, Children: dep.Children})
	}

	return yaml.Marshal(doc)
}

// DefinitionFileName is the artifact file an inline sub-workflow definition
// is written to.
func DefinitionFileName(name string) string {
	return name + ".yml"
}

// NestedDefinitions renders every inline sub-workflow definition of w to its
// own artifact, keyed by file name.
func NestedDefinitions(w *workflow.Workflow) (map[string][]byte, error) {
	out := make(map[string][]byte)
	for _, n := range w.Nodes() {
		sub, ok := n.(*workflow.SubWorkflow)
		if !ok {
			continue
		}
		def, ok := sub.Definition().(workflow.InlineDefinition)
		if !ok {
			continue
		}
		data, err := Workflow(def.Workflow)
		if err != nil {
			return nil, fmt.Errorf("nested definition %q: %w", def.Workflow.Name(), err)
		}
		out[DefinitionFileName(def.Workflow.Name())] = data
	}
	return out, nil
}

func renderNode(n workflow.Node) (jobDoc, error) {
	jd := jobDoc{ID: n.ID()}

	args, err := renderArgs(n)
	if err != nil {
		return jobDoc{}, err
	}
	jd.Arguments = args

	for _, f := range n.Inputs() {
		jd.Uses = append(jd.Uses, useDoc{
			LFN:         f.LFN,
			Type:        "input",
			PFN:         f.PFN,
			ForPlanning: f.ForPlanning,
		})
	}
	for _, f := range n.Outputs() {
		jd.Uses = append(jd.Uses, useDoc{
			LFN:             f.LFN,
			Type:            "output",
			PFN:             f.PFN,
			StageOut:        f.StageOut,
			RegisterReplica: f.RegisterReplica,
		})
	}
	if f, ok := n.Stdout(); ok {
		jd.Stdout = f.LFN
	}

	switch node := n.(type) {
	case *workflow.SubWorkflow:
		jd.Type = "subWorkflow"
		jd.Resolution = string(node.Mode())
		jd.PlannerArguments = plannerArgs(node.PlannerArgs())
		switch def := node.Definition().(type) {
		case workflow.InlineDefinition:
			jd.DefinitionFile = DefinitionFileName(def.Workflow.Name())
		case workflow.FileDefinition:
			jd.DefinitionFile = def.File.LFN
		}
	case *workflow.Job:
		jd.Type = "job"
		jd.Transformation = node.Transformation()
	default:
		return jobDoc{}, fmt.Errorf("node %q: unknown node type %T", n.ID(), n)
	}

	return jd, nil
}

// renderArgs resolves file-reference slots to logical names. A reference to
// a file that is neither an input nor an output of the node is refused.
func renderArgs(n workflow.Node) ([]string, error) {
	bound := make(map[string]bool)
	for _, f := range n.Inputs() {
		bound[f.LFN] = true
	}
	for _, f := range n.Outputs() {
		bound[f.LFN] = true
	}

	var out []string
	for _, a := range n.Args() {
		if f, ok := a.FileRef(); ok {
			if !bound[f.LFN] {
				return nil, &workflow.UnresolvedReferenceError{Node: n.ID(), Ref: f.LFN}
			}
			out = append(out, f.LFN)
			continue
		}
		out = append(out, a.Text())
	}
	return out, nil
}

func plannerArgs(pa workflow.PlannerArgs) []string {
	var out []string
	if pa.ConfFile != "" {
		out = append(out, "--conf", pa.ConfFile)
	}
	for _, site := range pa.OutputSites {
		out = append(out, "--output-sites", site)
	}
	if pa.Verbosity > 0 {
		v := "-"
		for i := 0; i < pa.Verbosity; i++ {
			v += "v"
		}
		out = append(out, v)
	}
	if pa.Basename != "" {
		out = append(out, "--basename", pa.Basename)
	}
	return out
}
