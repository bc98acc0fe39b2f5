package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	cmd := newConfigInitCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--path", target})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init error = %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read generated config: %v", err)
	}
	if !strings.Contains(string(data), "[paths]") {
		t.Errorf("sample config missing [paths] section:\n%s", data)
	}
	if !strings.Contains(out.String(), target) {
		t.Errorf("output %q should mention %q", out.String(), target)
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(target, []byte("# existing\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := newConfigInitCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetArgs([]string{"--path", target})

	if err := cmd.Execute(); err == nil {
		t.Fatal("config init over an existing file should fail without --overwrite")
	}

	cmd = newConfigInitCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetArgs([]string{"--path", target, "--overwrite"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init --overwrite error = %v", err)
	}
}
