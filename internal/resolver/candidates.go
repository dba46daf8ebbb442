package resolver

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/afero"
)

// Candidate pairs a probed suffix with the suffix emitted into the rewritten
// specifier, i.e. "/index.tsx" -> "/index.js".
type Candidate struct {
	Probe       string
	Replacement string
	File        string
}

type extensionMapping struct {
	probe       string
	replacement string
}

// Sorted by expected frequency, the first hit wins.
var extensionMappings = []extensionMapping{
	{probe: ".ts", replacement: ".js"},
	{probe: ".tsx", replacement: ".js"},
	{probe: ".js", replacement: ".js"},
	{probe: ".jsx", replacement: ".js"},
	{probe: ".cts", replacement: ".cjs"},
	{probe: ".mts", replacement: ".mjs"},
	{probe: ".cjs", replacement: ".cjs"},
	{probe: ".mjs", replacement: ".mjs"},
}

var probeForms = []string{"", "/index"}

var runtimeExtensions = map[string]bool{
	".js":  true,
	".cjs": true,
	".mjs": true,
}

// MaxProbes bounds the number of existence checks FindPath performs for the
// candidate table.
var MaxProbes = len(probeForms) * len(extensionMappings)

// IndexReplacement is the suffix emitted for a directory resolved through
// its index file.
const IndexReplacement = "/index.js"

// FindPath probes the file system for base + form + extension and returns
// the first regular file found. It only runs when ext is empty, or when ext
// is not a runtime extension and base does not already exist verbatim.
// Errors other than "not exist" abort the probe.
func FindPath(fsys afero.Fs, base string, ext string) (Candidate, bool, error) {
	if ext != "" {
		if runtimeExtensions[ext] {
			return Candidate{}, false, nil
		}
		exists, err := pathExists(fsys, base)
		if err != nil {
			return Candidate{}, false, err
		}
		if exists {
			return Candidate{}, false, nil
		}
	}

	for _, form := range probeForms {
		for _, mapping := range extensionMappings {
			file := base + form + mapping.probe
			found, err := isRegularFile(fsys, file)
			if err != nil {
				return Candidate{}, false, err
			}
			if found {
				return Candidate{
					Probe:       form + mapping.probe,
					Replacement: form + mapping.replacement,
					File:        file,
				}, true, nil
			}
		}
	}
	return Candidate{}, false, nil
}

func pathExists(fsys afero.Fs, target string) (bool, error) {
	_, err := fsys.Stat(target)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) || isNotDirectory(err) {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w", target, err)
}

func isRegularFile(fsys afero.Fs, target string) (bool, error) {
	info, err := fsys.Stat(target)
	if err == nil {
		return !info.IsDir(), nil
	}
	if os.IsNotExist(err) || isNotDirectory(err) {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w", target, err)
}

func isNotDirectory(err error) bool {
	return errors.Is(err, syscall.ENOTDIR)
}
