package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePubChem()
	c.normalizeTools()
	c.normalizeOptimize()
	c.normalizeAcpype()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.WorkspaceDir, err = expandPath(c.Paths.WorkspaceDir); err != nil {
		return fmt.Errorf("paths.workspace_dir: %w", err)
	}
	if c.Paths.TemplateDir, err = expandPath(c.Paths.TemplateDir); err != nil {
		return fmt.Errorf("paths.template_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.TablePath, err = expandPath(c.Paths.TablePath); err != nil {
		return fmt.Errorf("paths.table_path: %w", err)
	}
	return nil
}

func (c *Config) normalizePubChem() {
	c.PubChem.BaseURL = strings.TrimRight(strings.TrimSpace(c.PubChem.BaseURL), "/")
	if c.PubChem.BaseURL == "" {
		c.PubChem.BaseURL = defaultPubChemBaseURL
	}
	if c.PubChem.TimeoutSeconds <= 0 {
		c.PubChem.TimeoutSeconds = defaultPubChemTimeout
	}
}

func (c *Config) normalizeTools() {
	c.Tools.Obabel = strings.TrimSpace(c.Tools.Obabel)
	if c.Tools.Obabel == "" {
		c.Tools.Obabel = defaultObabelBinary
	}
	c.Tools.Conda = strings.TrimSpace(c.Tools.Conda)
	if c.Tools.Conda == "" {
		c.Tools.Conda = defaultCondaBinary
	}
	c.Tools.CondaEnv = strings.TrimSpace(c.Tools.CondaEnv)
	if c.Tools.CondaEnv == "" {
		c.Tools.CondaEnv = defaultCondaEnv
	}
	c.Tools.Python = strings.TrimSpace(c.Tools.Python)
	if c.Tools.Python == "" {
		c.Tools.Python = defaultPythonBinary
	}
	c.Tools.RenameScript = strings.TrimSpace(c.Tools.RenameScript)
	if c.Tools.RenameScript == "" {
		c.Tools.RenameScript = defaultRenameScript
	}
	if c.Tools.ConvertTimeout <= 0 {
		c.Tools.ConvertTimeout = defaultConvertTimeout
	}
	if c.Tools.OptimizeTimeout <= 0 {
		c.Tools.OptimizeTimeout = defaultOptimizeTimeout
	}
	if c.Tools.RenameTimeout <= 0 {
		c.Tools.RenameTimeout = defaultRenameTimeout
	}
	if c.Tools.AcpypeTimeout <= 0 {
		c.Tools.AcpypeTimeout = defaultAcpypeTimeout
	}
}

func (c *Config) normalizeOptimize() {
	c.Optimize.ForceField = strings.TrimSpace(c.Optimize.ForceField)
	if c.Optimize.ForceField == "" {
		c.Optimize.ForceField = defaultForceField
	}
	if c.Optimize.Steps <= 0 {
		c.Optimize.Steps = defaultOptimizeSteps
	}
	if c.Optimize.Dielectric <= 0 {
		c.Optimize.Dielectric = defaultDielectric
	}
}

func (c *Config) normalizeAcpype() {
	c.Acpype.ChargeMethod = strings.TrimSpace(c.Acpype.ChargeMethod)
	if c.Acpype.ChargeMethod == "" {
		c.Acpype.ChargeMethod = defaultChargeMethod
	}
	c.Acpype.AtomType = strings.TrimSpace(c.Acpype.AtomType)
	if c.Acpype.AtomType == "" {
		c.Acpype.AtomType = defaultAtomType
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
