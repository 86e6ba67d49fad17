package planner

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// ExecPlanner invokes the external planner binary.
type ExecPlanner struct {
	binary string
	logger *slog.Logger
	runCmd commandRunner
}

// commandRunner abstracts process execution for tests.
type commandRunner func(ctx context.Context, dir, name string, args ...string) (output []byte, err error)

// NewExecPlanner creates a planner invoking the given binary.
func NewExecPlanner(binary string, logger *slog.Logger) *ExecPlanner {
	return &ExecPlanner{
		binary: binary,
		logger: logger.With("component", "planner"),
		runCmd: runCommand,
	}
}

// Plan runs the planner binary in the request's run directory. The planner's
// combined output is returned verbatim in the Result; a non-zero exit
// surfaces as an error carrying that output.
func (p *ExecPlanner) Plan(ctx context.Context, req Request) (*Result, error) {
	args := p.arguments(req)
	p.logger.Info("invoking planner", "binary", p.binary, "args", strings.Join(args, " "))

	out, err := p.runCmd(ctx, req.Dir, p.binary, args...)
	if err != nil {
		return nil, fmt.Errorf("planner %s: %w\n%s", p.binary, err, bytes.TrimSpace(out))
	}

	return &Result{
		RunHandle: parseRunHandle(out),
		Output:    string(out),
	}, nil
}

func (p *ExecPlanner) arguments(req Request) []string {
	var args []string
	if req.ConfFile != "" {
		args = append(args, "--conf", req.ConfFile)
	}
	if req.Dir != "" {
		args = append(args, "--dir", req.Dir)
	}
	for _, site := range req.Sites {
		args = append(args, "--output-sites", site)
	}
	if req.Verbosity > 0 {
		args = append(args, "-"+strings.Repeat("v", req.Verbosity))
	}
	if req.Basename != "" {
		args = append(args, "--basename", req.Basename)
	}
	if req.Submit {
		args = append(args, "--submit")
	}
	args = append(args, req.WorkflowFile)
	return args
}

// parseRunHandle extracts the run handle the planner prints as
// "run: <handle>", if any.
func parseRunHandle(out []byte) string {
	for _, line := range strings.Split(string(out), "\n") {
		if rest, ok := strings.CutPrefix(strings.TrimSpace(line), "run:"); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}
