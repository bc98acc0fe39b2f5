// Package obabel wraps the Open Babel CLI for format conversion and geometry
// minimization.
package obabel

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"mdprep/internal/services"
)

// Converter defines the behaviour the pipeline needs from Open Babel.
type Converter interface {
	Convert(ctx context.Context, inputPath, outputPath string) error
	Minimize(ctx context.Context, mol2Path string) error
}

// MinimizeParams contains the force-field settings for geometry minimization.
type MinimizeParams struct {
	ForceField string
	Steps      int
	Dielectric float64
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

// Client wraps Open Babel CLI interactions.
type Client struct {
	binary          string
	convertTimeout  time.Duration
	minimizeTimeout time.Duration
	params          MinimizeParams
	exec            services.Executor
}

var _ Converter = (*Client)(nil)

// New constructs an Open Babel client.
func New(binary string, convertTimeoutSeconds, minimizeTimeoutSeconds int, params MinimizeParams, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("obabel binary required")
	}
	client := &Client{
		binary:          binary,
		convertTimeout:  time.Duration(convertTimeoutSeconds) * time.Second,
		minimizeTimeout: time.Duration(minimizeTimeoutSeconds) * time.Second,
		params:          params,
		exec:            services.NewExecutor(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Convert transforms inputPath into outputPath; the formats are inferred by
// Open Babel from the file extensions.
func (c *Client) Convert(ctx context.Context, inputPath, outputPath string) error {
	if inputPath == "" || outputPath == "" {
		return services.Wrap(services.ErrValidation, "convert", "obabel", "input and output paths required", nil)
	}
	res, err := c.exec.Run(ctx, services.Command{
		Binary:  c.binary,
		Args:    []string{inputPath, "-O", outputPath},
		Timeout: c.convertTimeout,
	})
	return services.ToolError("convert", "obabel", res, err)
}

// Minimize runs in-place geometry minimization on a MOL2 file with the
// configured force field, iteration budget, and dielectric constant.
func (c *Client) Minimize(ctx context.Context, mol2Path string) error {
	if mol2Path == "" {
		return services.Wrap(services.ErrValidation, "optimize", "obabel", "mol2 path required", nil)
	}
	args := []string{
		mol2Path, "-O", mol2Path,
		"--minimize",
		"--ff", c.params.ForceField,
		"--steps", strconv.Itoa(c.params.Steps),
		"--dielectric", formatDielectric(c.params.Dielectric),
	}
	res, err := c.exec.Run(ctx, services.Command{
		Binary:  c.binary,
		Args:    args,
		Timeout: c.minimizeTimeout,
	})
	return services.ToolError("optimize", "obabel", res, err)
}

func formatDielectric(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
