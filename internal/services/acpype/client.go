// Package acpype wraps the ACPype topology generator, executed inside a
// conda environment because its antechamber toolchain is not expected on the
// host PATH.
package acpype

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"mdprep/internal/services"
)

// Topologizer defines the topology generation operation the pipeline needs.
type Topologizer interface {
	Generate(ctx context.Context, sampleDir, mol2Name, baseName string) error
}

// Params contains the fixed parameterization settings.
type Params struct {
	ChargeMethod string // bcc, gas, user
	AtomType     string // gaff2, gaff, amber
	NetCharge    int
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

// Client runs acpype via `conda run`.
type Client struct {
	conda   string
	env     string
	timeout time.Duration
	params  Params
	exec    services.Executor
}

var _ Topologizer = (*Client)(nil)

// New constructs an ACPype client. The timeout should be generous: charge
// derivation runs semi-empirical quantum calculations that can take the
// better part of an hour for larger molecules.
func New(condaBinary, condaEnv string, timeoutSeconds int, params Params, opts ...Option) (*Client, error) {
	condaBinary = strings.TrimSpace(condaBinary)
	if condaBinary == "" {
		return nil, errors.New("conda binary required")
	}
	condaEnv = strings.TrimSpace(condaEnv)
	if condaEnv == "" {
		return nil, errors.New("conda environment required")
	}
	client := &Client{
		conda:   condaBinary,
		env:     condaEnv,
		timeout: time.Duration(timeoutSeconds) * time.Second,
		params:  params,
		exec:    services.NewExecutor(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Generate derives the AMBER topology for the molecule in
// sampleDir/mol2Name, producing a <baseName>.acpype output subdirectory.
// acpype resolves the input relative to its working directory, so the
// command runs with sampleDir as cwd.
func (c *Client) Generate(ctx context.Context, sampleDir, mol2Name, baseName string) error {
	if sampleDir == "" || mol2Name == "" || baseName == "" {
		return services.Wrap(services.ErrValidation, "topologize", "acpype", "sample dir, mol2 name, and base name required", nil)
	}
	args := []string{
		"run", "-n", c.env,
		"acpype",
		"-i", mol2Name,
		"-c", c.params.ChargeMethod,
		"-a", c.params.AtomType,
		"-n", strconv.Itoa(c.params.NetCharge),
		"-b", baseName,
	}
	res, err := c.exec.Run(ctx, services.Command{
		Binary:  c.conda,
		Args:    args,
		Dir:     sampleDir,
		Timeout: c.timeout,
	})
	return services.ToolError("topologize", "acpype", res, err)
}
