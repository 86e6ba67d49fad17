package planner

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestExecPlanner_Arguments(t *testing.T) {
	var gotDir, gotName string
	var gotArgs []string

	p := NewExecPlanner("skein-plan", testLogger())
	p.runCmd = func(_ context.Context, dir, name string, args ...string) ([]byte, error) {
		gotDir, gotName, gotArgs = dir, name, args
		return []byte("planning ok\nrun: run-0042\n"), nil
	}

	res, err := p.Plan(context.Background(), Request{
		Dir:          "/runs/abc",
		WorkflowFile: "workflow.yml",
		ConfFile:     "skein.properties",
		Sites:        []string{"local"},
		Basename:     "run-7f3a",
		Submit:       true,
		Verbosity:    3,
	})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	if gotName != "skein-plan" || gotDir != "/runs/abc" {
		t.Errorf("invoked %q in %q", gotName, gotDir)
	}
	want := "--conf skein.properties --dir /runs/abc --output-sites local -vvv --basename run-7f3a --submit workflow.yml"
	if got := strings.Join(gotArgs, " "); got != want {
		t.Errorf("args = %q, want %q", got, want)
	}
	if res.RunHandle != "run-0042" {
		t.Errorf("RunHandle = %q, want run-0042", res.RunHandle)
	}
}

func TestExecPlanner_FailureCarriesOutput(t *testing.T) {
	p := NewExecPlanner("skein-plan", testLogger())
	p.runCmd = func(context.Context, string, string, ...string) ([]byte, error) {
		return []byte("fatal: no site catalog\n"), errors.New("exit status 2")
	}

	_, err := p.Plan(context.Background(), Request{WorkflowFile: "workflow.yml"})
	if err == nil {
		t.Fatal("Plan succeeded, want error")
	}
	if !strings.Contains(err.Error(), "no site catalog") {
		t.Errorf("error %q does not carry planner output", err)
	}
}

func TestParseRunHandle_Absent(t *testing.T) {
	if h := parseRunHandle([]byte("nothing to see\n")); h != "" {
		t.Errorf("parseRunHandle = %q, want empty", h)
	}
}
