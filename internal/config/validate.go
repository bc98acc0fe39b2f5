package config

import (
	"errors"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validatePubChem(); err != nil {
		return err
	}
	if err := c.validateAcpype(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.WorkspaceDir) == "" {
		return errors.New("paths.workspace_dir must be set")
	}
	if strings.TrimSpace(c.Paths.TemplateDir) == "" {
		return errors.New("paths.template_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validatePubChem() error {
	if !strings.HasPrefix(c.PubChem.BaseURL, "http://") && !strings.HasPrefix(c.PubChem.BaseURL, "https://") {
		return errors.New("pubchem.base_url must be an http or https URL")
	}
	return nil
}

func (c *Config) validateAcpype() error {
	switch c.Acpype.ChargeMethod {
	case "bcc", "gas", "user":
	default:
		return errors.New("acpype.charge_method must be one of bcc, gas, user")
	}
	return nil
}
