package planner

import (
	"context"
	"os/exec"
)

// runCommand executes the planner process with combined output capture.
func runCommand(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}
