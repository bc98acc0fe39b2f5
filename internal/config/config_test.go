package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"mdprep/internal/config"
)

func TestLoadWithoutFileUsesDefaultsAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	if !filepath.IsAbs(cfg.Paths.WorkspaceDir) {
		t.Fatalf("expected absolute workspace dir, got %q", cfg.Paths.WorkspaceDir)
	}
	if cfg.Paths.LogDir != filepath.Join(tempHome, "logs") {
		t.Fatalf("unexpected log dir: %q", cfg.Paths.LogDir)
	}
	if cfg.PubChem.BaseURL != "https://pubchem.ncbi.nlm.nih.gov/rest/pug" {
		t.Fatalf("unexpected pubchem base url: %q", cfg.PubChem.BaseURL)
	}
	if cfg.PubChem.TimeoutSeconds != 30 {
		t.Fatalf("unexpected pubchem timeout: %d", cfg.PubChem.TimeoutSeconds)
	}
	if cfg.Tools.AcpypeTimeout != 3600 {
		t.Fatalf("unexpected acpype timeout: %d", cfg.Tools.AcpypeTimeout)
	}
	if cfg.Optimize.ForceField != "MMFF94" || cfg.Optimize.Steps != 1000 {
		t.Fatalf("unexpected optimize defaults: %+v", cfg.Optimize)
	}
	if cfg.Acpype.ChargeMethod != "bcc" || cfg.Acpype.AtomType != "gaff2" || cfg.Acpype.NetCharge != 0 {
		t.Fatalf("unexpected acpype defaults: %+v", cfg.Acpype)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "console" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadParsesFileAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[paths]
workspace_dir = "` + dir + `/work"
template_dir = "` + dir + `/File"
log_dir = "` + dir + `/logs"

[tools]
conda_env = "amber"
acpype_timeout = -5

[logging]
format = "JSON"
level = "DEBUG"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config at %q to be used, got %q exists=%v", path, resolved, exists)
	}
	if cfg.Tools.CondaEnv != "amber" {
		t.Fatalf("unexpected conda env: %q", cfg.Tools.CondaEnv)
	}
	if cfg.Tools.AcpypeTimeout != 3600 {
		t.Fatalf("expected non-positive timeout to fall back, got %d", cfg.Tools.AcpypeTimeout)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("expected lowercased logging settings, got %+v", cfg.Logging)
	}
}

func TestValidateRejectsBadChargeMethod(t *testing.T) {
	cfg := config.Default()
	cfg.Acpype.ChargeMethod = "resp"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for charge method")
	}
}

func TestSampleDir(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.WorkspaceDir = "/work"
	if got := cfg.SampleDir(42); got != filepath.Join("/work", "42") {
		t.Fatalf("unexpected sample dir: %q", got)
	}
}

func TestCreateSampleWritesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Fatal("expected sample config content")
	}
}
