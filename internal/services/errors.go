package services

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var (
	// ErrExternalTool marks a tool that ran and reported failure, or could
	// not be started at all.
	ErrExternalTool = errors.New("external tool error")
	// ErrTimeout marks a tool invocation that exceeded its deadline.
	ErrTimeout = errors.New("timeout")
	// ErrValidation marks bad adapter inputs caught before any execution.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks a remote resource or expected output that is absent.
	ErrNotFound = errors.New("not found")
)

// Wrap builds an error message that includes step context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, step, operation, message string, err error) error {
	detail := buildDetail(step, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ToolError folds a subprocess outcome into the taxonomy. The three failure
// shapes get distinct diagnostics but the same generic signal: tool-reported
// failure (non-zero exit, stderr tail attached), timeout, and local failure
// to run at all.
func ToolError(step, operation string, res Result, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Wrap(ErrTimeout, step, operation, "deadline exceeded", err)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return Wrap(ErrExternalTool, step, operation, outputTail(res), err)
	}
	return Wrap(ErrExternalTool, step, operation, "could not run", err)
}

// outputTail returns the last non-empty lines of stderr (stdout as fallback)
// to keep diagnostics short but useful.
func outputTail(res Result) string {
	source := strings.TrimSpace(res.Stderr)
	if source == "" {
		source = strings.TrimSpace(res.Stdout)
	}
	if source == "" {
		return "no tool output"
	}
	lines := strings.Split(source, "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.Join(lines, " | ")
}

func buildDetail(step, operation, message string) string {
	parts := make([]string, 0, 3)
	if step = strings.TrimSpace(step); step != "" {
		parts = append(parts, step)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
