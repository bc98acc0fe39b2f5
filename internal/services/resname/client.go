// Package resname wraps the external residue-rename script, which rewrites
// the residue column of every MOL2 file found recursively under a sample
// directory to the file's base name.
package resname

import (
	"context"
	"errors"
	"strings"
	"time"

	"mdprep/internal/services"
)

// Renamer defines the residue rewrite operation the pipeline needs.
type Renamer interface {
	Rewrite(ctx context.Context, sampleDir string) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec services.Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client invokes the rename script through a Python interpreter.
type Client struct {
	python  string
	script  string
	timeout time.Duration
	exec    services.Executor
}

var _ Renamer = (*Client)(nil)

// New constructs a rename client.
func New(pythonBinary, scriptPath string, timeoutSeconds int, opts ...Option) (*Client, error) {
	pythonBinary = strings.TrimSpace(pythonBinary)
	if pythonBinary == "" {
		return nil, errors.New("python binary required")
	}
	scriptPath = strings.TrimSpace(scriptPath)
	if scriptPath == "" {
		return nil, errors.New("rename script path required")
	}
	client := &Client{
		python:  pythonBinary,
		script:  scriptPath,
		timeout: time.Duration(timeoutSeconds) * time.Second,
		exec:    services.NewExecutor(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Rewrite runs the script once against the whole sample directory.
func (c *Client) Rewrite(ctx context.Context, sampleDir string) error {
	if sampleDir == "" {
		return services.Wrap(services.ErrValidation, "rename", "resname", "sample dir required", nil)
	}
	res, err := c.exec.Run(ctx, services.Command{
		Binary:  c.python,
		Args:    []string{c.script, sampleDir},
		Timeout: c.timeout,
	})
	return services.ToolError("rename", "resname", res, err)
}
