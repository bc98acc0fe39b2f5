// Package fileutil provides the small file copy helpers the pipeline uses to
// collect tool outputs and deploy template sets.
package fileutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CopyFile streams src to dst, carrying over the source's permission bits.
// An existing dst is truncated.
func CopyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("copy source %q is not a regular file", src)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// CopyInto copies src into dstDir keeping the base name.
func CopyInto(src, dstDir string) error {
	return CopyFile(src, filepath.Join(dstDir, filepath.Base(src)))
}

// CopyDirFiles copies every regular file directly under srcDir into dstDir,
// overwriting same-named files. Subdirectories are skipped, not descended
// into. Returns the number of files copied.
func CopyDirFiles(srcDir, dstDir string) (int, error) {
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return 0, fmt.Errorf("read template directory: %w", err)
	}

	copied := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return copied, err
		}
		if !info.Mode().IsRegular() {
			continue
		}
		src := filepath.Join(srcDir, entry.Name())
		if err := CopyFile(src, filepath.Join(dstDir, entry.Name())); err != nil {
			return copied, fmt.Errorf("copy %s: %w", entry.Name(), err)
		}
		copied++
	}
	return copied, nil
}
