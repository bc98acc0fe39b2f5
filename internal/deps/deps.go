// Package deps checks availability of the external tools the pipeline shells
// out to. Missing tools are reported, not fatal: the batch still runs and the
// affected steps fail per sample.
package deps

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"mdprep/internal/config"
)

// Requirement defines an external dependency mdprep relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements builds the dependency list for the configured toolchain.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{Name: "Open Babel", Command: cfg.Tools.Obabel, Description: "format conversion and geometry minimization"},
		{Name: "Conda", Command: cfg.Tools.Conda, Description: fmt.Sprintf("runs acpype inside the %q environment", cfg.Tools.CondaEnv)},
		{Name: "Python", Command: cfg.Tools.Python, Description: "runs the residue-rename script"},
		{Name: "ACPype", Command: "acpype", Description: "AMBER topology generation (may live only in the conda environment)", Optional: true},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// CheckRenameScript verifies the residue-rename script exists on disk.
func CheckRenameScript(path string) Status {
	status := Status{
		Name:        "Rename script",
		Command:     path,
		Description: "rewrites MOL2 residue names per sample directory",
	}
	if strings.TrimSpace(path) == "" {
		status.Detail = "script path not configured"
		return status
	}
	info, err := os.Stat(path)
	if err != nil {
		status.Detail = fmt.Sprintf("script %q not found", path)
		return status
	}
	if info.IsDir() {
		status.Detail = fmt.Sprintf("%q is a directory", path)
		return status
	}
	status.Available = true
	return status
}

// MissingRequired returns the names of unavailable non-optional dependencies.
func MissingRequired(statuses []Status) []string {
	var missing []string
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, fmt.Sprintf("%s (%s)", status.Name, status.Command))
		}
	}
	return missing
}
