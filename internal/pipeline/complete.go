package pipeline

import (
	"os"
	"path/filepath"
)

// KeyArtifacts lists the files whose joint presence marks a sample as done:
// the geometry and topology of both molecules. Everything else in the
// directory (sidecars, templates) is not part of the completion contract.
func KeyArtifacts(sampleDir string) []string {
	return []string{
		filepath.Join(sampleDir, BaseA+"_GMX.gro"),
		filepath.Join(sampleDir, BaseA+"_GMX.itp"),
		filepath.Join(sampleDir, BaseB+"_GMX.gro"),
		filepath.Join(sampleDir, BaseB+"_GMX.itp"),
	}
}

// IsComplete reports whether the sample directory holds all key artifacts.
// Purely a filesystem probe: partial progress counts as pending, and a
// pending sample is retried from the first step on the next run.
func IsComplete(sampleDir string) bool {
	if info, err := os.Stat(sampleDir); err != nil || !info.IsDir() {
		return false
	}
	for _, artifact := range KeyArtifacts(sampleDir) {
		if _, err := os.Stat(artifact); err != nil {
			return false
		}
	}
	return true
}
