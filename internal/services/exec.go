package services

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"
)

// Command describes one subprocess invocation.
type Command struct {
	Binary  string
	Args    []string
	Dir     string // working directory; empty means the caller's
	Timeout time.Duration
}

// Result captures the output of a completed (or killed) subprocess.
type Result struct {
	Stdout string
	Stderr string
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// NewExecutor returns the exec.Command-backed executor used in production.
func NewExecutor() Executor {
	return commandExecutor{}
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, spec Command) (Result, error) {
	if spec.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, spec.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, spec.Binary, spec.Args...) //nolint:gosec
	cmd.Dir = spec.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		// A killed process surfaces as an ExitError; prefer the deadline so
		// callers can tell a timeout from a tool failure.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, fmt.Errorf("%w: %v", ctxErr, err)
		}
		return res, err
	}
	return res, nil
}
