package workspace

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

const DefaultConfigName = "tsconfig.json"

// NormalizeConfigPath turns a user supplied tsconfig argument into an
// absolute file path. A directory argument points at its tsconfig.json.
func NormalizeConfigPath(fsys afero.Fs, path string) (string, error) {
	if path == "" {
		path = DefaultConfigName
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve tsconfig path: %w", err)
	}
	isDir, err := afero.IsDir(fsys, abs)
	if err == nil && isDir {
		return filepath.Join(abs, DefaultConfigName), nil
	}
	return abs, nil
}

// ProjectDirectory is the directory relative specifiers of the project are
// anchored to.
func ProjectDirectory(configPath string) string {
	return filepath.Dir(configPath)
}
