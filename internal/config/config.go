package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and input-table configuration.
type Paths struct {
	// WorkspaceDir is the directory under which per-sample directories are
	// created, one per sample id.
	WorkspaceDir string `toml:"workspace_dir"`
	// TemplateDir holds the simulation template files deployed into every
	// completed sample directory.
	TemplateDir string `toml:"template_dir"`
	LogDir      string `toml:"log_dir"`
	// TablePath is the default work table (CSV) location.
	TablePath string `toml:"table_path"`
}

// PubChem contains configuration for the PubChem PUG REST structure service.
type PubChem struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Tools contains the external executables the pipeline shells out to and
// their per-invocation timeouts in seconds.
type Tools struct {
	Obabel       string `toml:"obabel"`
	Conda        string `toml:"conda"`
	CondaEnv     string `toml:"conda_env"`
	Python       string `toml:"python"`
	RenameScript string `toml:"rename_script"`

	ConvertTimeout  int `toml:"convert_timeout"`
	OptimizeTimeout int `toml:"optimize_timeout"`
	RenameTimeout   int `toml:"rename_timeout"`
	AcpypeTimeout   int `toml:"acpype_timeout"`
}

// Optimize contains geometry minimization parameters passed to Open Babel.
type Optimize struct {
	ForceField string  `toml:"force_field"`
	Steps      int     `toml:"steps"`
	Dielectric float64 `toml:"dielectric"`
}

// Acpype contains topology generation parameters.
type Acpype struct {
	ChargeMethod string `toml:"charge_method"`
	AtomType     string `toml:"atom_type"`
	NetCharge    int    `toml:"net_charge"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for mdprep.
//
// Configuration sections by subsystem:
//   - Paths: workspace, template, log directories and the work table
//   - PubChem: structure download endpoint and timeout
//   - Tools: external executables and subprocess timeouts
//   - Optimize: Open Babel minimization parameters
//   - Acpype: topology generation parameters
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	PubChem  PubChem  `toml:"pubchem"`
	Tools    Tools    `toml:"tools"`
	Optimize Optimize `toml:"optimize"`
	Acpype   Acpype   `toml:"acpype"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/mdprep/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean reports
// whether a config file was actually found at the resolved path.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("mdprep.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a batch run writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkspaceDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// SampleDir returns the working directory owned by the given sample.
func (c *Config) SampleDir(sampleID int64) string {
	return filepath.Join(c.Paths.WorkspaceDir, fmt.Sprintf("%d", sampleID))
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
