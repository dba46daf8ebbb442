package resolver

import (
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/tidwall/gjson"
)

const nodeModulesDir = "node_modules"

// HasModernExports reports whether the package.json in packageDir declares an
// "exports" field. Any read or parse failure yields false.
func HasModernExports(fsys afero.Fs, packageDir string) bool {
	data, err := afero.ReadFile(fsys, filepath.Join(packageDir, "package.json"))
	if err != nil {
		return false
	}
	if !gjson.ValidBytes(data) {
		return false
	}
	return gjson.GetBytes(data, "exports").Exists()
}

// PackageName extracts the package part of a bare specifier, keeping the
// scope of scoped packages ("@scope/pkg/sub" -> "@scope/pkg").
func PackageName(specifier string) string {
	parts := strings.Split(specifier, "/")
	if strings.HasPrefix(specifier, "@") {
		if len(parts) >= 2 {
			return parts[0] + "/" + parts[1]
		}
		return specifier
	}
	if parts[0] == "" {
		return specifier
	}
	return parts[0]
}

// IsNodeModuleRoot reports whether directory lives under a node_modules
// directory and carries its own package.json.
func IsNodeModuleRoot(fsys afero.Fs, directory string) bool {
	marker := string(filepath.Separator) + nodeModulesDir + string(filepath.Separator)
	if !strings.Contains(filepath.Clean(directory)+string(filepath.Separator), marker) {
		return false
	}
	exists, err := afero.Exists(fsys, filepath.Join(directory, "package.json"))
	return err == nil && exists
}

func nodeModulesPath(rootDirectory string, specifier string) string {
	return filepath.Join(rootDirectory, nodeModulesDir, filepath.FromSlash(specifier))
}
