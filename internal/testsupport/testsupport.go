// Package testsupport provides shared fixtures for package tests: a scripted
// subprocess executor and small filesystem helpers.
package testsupport

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"mdprep/internal/services"
)

// ScriptedExecutor records every command it is asked to run and answers with
// the configured handler. With a nil handler every command succeeds with
// empty output.
type ScriptedExecutor struct {
	mu      sync.Mutex
	calls   []services.Command
	Handler func(cmd services.Command) (services.Result, error)
}

var _ services.Executor = (*ScriptedExecutor)(nil)

func (e *ScriptedExecutor) Run(ctx context.Context, cmd services.Command) (services.Result, error) {
	e.mu.Lock()
	e.calls = append(e.calls, cmd)
	e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return services.Result{}, err
	}
	if e.Handler != nil {
		return e.Handler(cmd)
	}
	return services.Result{}, nil
}

// Calls returns a copy of the recorded commands.
func (e *ScriptedExecutor) Calls() []services.Command {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]services.Command, len(e.calls))
	copy(out, e.calls)
	return out
}

// WriteFile creates path (and parent directories) with the given content.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// MkdirAll creates the directory path, failing the test on error.
func MkdirAll(t testing.TB, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
}
