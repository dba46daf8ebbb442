package safeio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const defaultFileMode os.FileMode = 0o644

// ReadFileUnder reads targetPath only if it resolves under rootDir.
func ReadFileUnder(fsys afero.Fs, rootDir, targetPath string) ([]byte, error) {
	rooted, rel, err := underRoot(fsys, rootDir, targetPath)
	if err != nil {
		return nil, err
	}
	return afero.ReadFile(rooted, rel)
}

// WriteFileUnder replaces targetPath if it resolves under rootDir, keeping
// the permissions of an existing file.
func WriteFileUnder(fsys afero.Fs, rootDir, targetPath string, data []byte) error {
	rooted, rel, err := underRoot(fsys, rootDir, targetPath)
	if err != nil {
		return err
	}
	perm := defaultFileMode
	if info, statErr := rooted.Stat(rel); statErr == nil {
		if info.IsDir() {
			return fmt.Errorf("write %s: is a directory", targetPath)
		}
		perm = info.Mode().Perm()
	}
	return afero.WriteFile(rooted, rel, data, perm)
}

// ReadFile reads the exact targetPath by confining access to its parent
// directory.
func ReadFile(fsys afero.Fs, targetPath string) ([]byte, error) {
	targetAbs, err := filepath.Abs(targetPath)
	if err != nil {
		return nil, fmt.Errorf("resolve target path: %w", err)
	}
	return ReadFileUnder(fsys, filepath.Dir(targetAbs), targetAbs)
}

func underRoot(fsys afero.Fs, rootDir, targetPath string) (afero.Fs, string, error) {
	rootAbs, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, "", fmt.Errorf("resolve root path: %w", err)
	}
	targetAbs, err := filepath.Abs(targetPath)
	if err != nil {
		return nil, "", fmt.Errorf("resolve target path: %w", err)
	}

	rel, err := filepath.Rel(rootAbs, targetAbs)
	if err != nil {
		return nil, "", fmt.Errorf("compute relative path: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return nil, "", fmt.Errorf("path escapes root: %s", targetPath)
	}

	info, err := fsys.Stat(rootAbs)
	if err != nil {
		return nil, "", fmt.Errorf("open root: %w", err)
	}
	if !info.IsDir() {
		return nil, "", fmt.Errorf("open root: %s is not a directory", rootAbs)
	}
	return afero.NewBasePathFs(fsys, rootAbs), filepath.Clean(rel), nil
}
