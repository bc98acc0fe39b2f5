// Package itp splits GROMACS include-topology files: acpype emits the shared
// [ atomtypes ] block inline, but GROMACS rejects duplicate atom type
// definitions when two molecules are included in one system, so the block is
// moved into a per-molecule _prm.itp sidecar.
package itp

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// AtomTypesHeader is the section header the splitter looks for, compared
// after trimming surrounding whitespace.
const AtomTypesHeader = "[ atomtypes ]"

// ErrSectionNotFound reports that the file has no [ atomtypes ] section.
// Callers treat this as a tolerated condition, not a failure.
var ErrSectionNotFound = errors.New("atomtypes section not found")

// Split divides content into the remainder and the [ atomtypes ] section.
// The section runs from the header line up to, but not including, the next
// blank line (or end of file). The boundary blank line stays in the
// remainder, so concatenating remainder and section at the section's original
// position reproduces the input byte for byte. found is false when no header
// line exists, in which case remainder is the unchanged input.
func Split(content string) (remainder, section string, found bool) {
	lines := splitKeepEnds(content)

	start := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == AtomTypesHeader {
			start = i
			break
		}
	}
	if start < 0 {
		return content, "", false
	}

	end := len(lines)
	for i := start + 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "" {
			end = i
			break
		}
	}

	var rem, sec strings.Builder
	for _, line := range lines[:start] {
		rem.WriteString(line)
	}
	for _, line := range lines[start:end] {
		sec.WriteString(line)
	}
	for _, line := range lines[end:] {
		rem.WriteString(line)
	}
	return rem.String(), sec.String(), true
}

// ExtractFile applies Split to the topology file at itpPath: the section is
// written to prmPath and the remainder replaces the original file. Returns
// ErrSectionNotFound, leaving both paths untouched, when there is no section.
func ExtractFile(itpPath, prmPath string) error {
	data, err := os.ReadFile(itpPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", itpPath, err)
	}

	remainder, section, found := Split(string(data))
	if !found {
		return fmt.Errorf("%s: %w", itpPath, ErrSectionNotFound)
	}

	if err := os.WriteFile(prmPath, []byte(section), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", prmPath, err)
	}
	if err := os.WriteFile(itpPath, []byte(remainder), 0o644); err != nil {
		return fmt.Errorf("rewrite %s: %w", itpPath, err)
	}
	return nil
}

// splitKeepEnds splits content into lines, each keeping its trailing newline
// so the pieces concatenate back to the original content exactly.
func splitKeepEnds(content string) []string {
	if content == "" {
		return nil
	}
	var lines []string
	for {
		idx := strings.IndexByte(content, '\n')
		if idx < 0 {
			lines = append(lines, content)
			return lines
		}
		lines = append(lines, content[:idx+1])
		content = content[idx+1:]
		if content == "" {
			return lines
		}
	}
}
