package services

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"
	"time"
)

func TestWrapTagsMarker(t *testing.T) {
	err := Wrap(ErrTimeout, "topologize", "acpype", "deadline exceeded", context.DeadlineExceeded)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if !strings.Contains(err.Error(), "topologize: acpype") {
		t.Fatalf("expected step context in message: %v", err)
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := Wrap(nil, "convert", "", "", errors.New("boom"))
	if !errors.Is(err, ErrExternalTool) {
		t.Fatalf("expected default marker, got %v", err)
	}
}

func TestToolErrorTimeout(t *testing.T) {
	err := ToolError("optimize", "obabel", Result{}, context.DeadlineExceeded)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestToolErrorIncludesStderrTail(t *testing.T) {
	// Produce a real ExitError so ToolError takes the tool-reported branch.
	cmd := exec.Command("sh", "-c", "exit 3")
	runErr := cmd.Run()
	if runErr == nil {
		t.Skip("sh unavailable")
	}

	res := Result{Stderr: "line1\nline2\nfatal: bad molecule\n"}
	err := ToolError("convert", "obabel", res, runErr)
	if !errors.Is(err, ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
	if !strings.Contains(err.Error(), "fatal: bad molecule") {
		t.Fatalf("expected stderr tail in message: %v", err)
	}
}

func TestToolErrorNil(t *testing.T) {
	if err := ToolError("fetch", "get", Result{}, nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestCommandExecutorCapturesOutput(t *testing.T) {
	res, err := NewExecutor().Run(context.Background(), Command{
		Binary: "sh",
		Args:   []string{"-c", "echo out; echo err >&2"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.TrimSpace(res.Stdout) != "out" || strings.TrimSpace(res.Stderr) != "err" {
		t.Fatalf("unexpected capture: %+v", res)
	}
}

func TestCommandExecutorTimeout(t *testing.T) {
	_, err := NewExecutor().Run(context.Background(), Command{
		Binary:  "sh",
		Args:    []string{"-c", "sleep 5"},
		Timeout: 50 * time.Millisecond,
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}

func TestCommandExecutorWorkingDir(t *testing.T) {
	dir := t.TempDir()
	res, err := NewExecutor().Run(context.Background(), Command{
		Binary: "pwd",
		Dir:    dir,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.TrimSpace(res.Stdout) != dir {
		t.Fatalf("expected pwd %q, got %q", dir, res.Stdout)
	}
}
