// Package codemod adjusts tsconfig.json and package.json so the project is
// compiled and run as ESM.
package codemod

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ben-ranford/tsesm/internal/project"
	"github.com/ben-ranford/tsesm/internal/safeio"
	"github.com/ben-ranford/tsesm/internal/ui"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/afero"
	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

const (
	ModuleKey           = "/compilerOptions/module"
	ModuleResolutionKey = "/compilerOptions/moduleResolution"
	TypeKey             = "/type"
	PackageJSONName     = "package.json"
)

var (
	esmModules           = []string{"esnext", "es2020", "es2022", "node16", "nodenext", "preserve"}
	esmModuleResolutions = []string{"bundler", "node16", "nodenext"}
)

var prettyOptions = &pretty.Options{Width: 80, Prefix: "", Indent: "  ", SortKeys: false}

// Modification sets the JSON pointer Key in the file at Path to Value.
type Modification struct {
	Path  string
	Key   string
	Value string
}

// Outcome records what happened to one proposed modification.
type Outcome struct {
	Modification Modification
	Diff         string
	Applied      bool
}

type Runner struct {
	fs       afero.Fs
	prompter ui.Prompter
	out      io.Writer
	dryRun   bool
}

func NewRunner(fsys afero.Fs, prompter ui.Prompter, out io.Writer, dryRun bool) *Runner {
	return &Runner{fs: fsys, prompter: prompter, out: out, dryRun: dryRun}
}

// ConvertTSConfig asks for ESM-compatible module settings where the merged
// configuration has none. bundler selects esnext/bundler over
// nodenext/nodenext; when nil the user is asked once per setting.
func (r *Runner) ConvertTSConfig(config project.TSConfig, bundler *bool) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, 2)
	checks := []struct {
		key      string
		property string
		current  string
		allowed  []string
		node     string
		bundled  string
	}{
		{key: ModuleKey, property: "module", current: config.Module, allowed: esmModules, node: "nodenext", bundled: "esnext"},
		{key: ModuleResolutionKey, property: "moduleResolution", current: config.ModuleResolution, allowed: esmModuleResolutions, node: "nodenext", bundled: "bundler"},
	}
	for _, check := range checks {
		if containsFold(check.allowed, check.current) {
			continue
		}
		value, err := r.pickValue(check.property, check.node, check.bundled, bundler)
		if err != nil {
			return outcomes, err
		}
		outcome, err := r.ApplyModification(Modification{Path: config.Path, Key: check.key, Value: value})
		if err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

// ConvertPackageJSON sets "type": "module" in the package.json next to the
// project's tsconfig.
func (r *Runner) ConvertPackageJSON(projectDir string) (Outcome, error) {
	return r.ApplyModification(Modification{
		Path:  filepath.Join(projectDir, PackageJSONName),
		Key:   TypeKey,
		Value: "module",
	})
}

func (r *Runner) pickValue(property, node, bundled string, bundler *bool) (string, error) {
	if bundler != nil {
		if *bundler {
			return bundled, nil
		}
		return node, nil
	}
	message := fmt.Sprintf("Your %q compiler setting in your TS config needs to be adjusted for ESM.\nAre you using a code bundler when compiling?", property)
	return r.prompter.Select(message, []ui.Choice{
		{Label: "No (common for backend apps that rely on Node.js)", Value: node},
		{Label: "Yes (common for frontend apps that rely on Webpack or Turbopack)", Value: bundled},
	})
}

// ApplyModification shows the change as a unified diff and writes the
// pretty-printed result once confirmed. Missing files and files that
// already hold the value are left alone. Comments in the file are not
// preserved on write.
func (r *Runner) ApplyModification(mod Modification) (Outcome, error) {
	outcome := Outcome{Modification: mod}

	raw, err := safeio.ReadFile(r.fs, mod.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return outcome, nil
		}
		return outcome, fmt.Errorf("read %s: %w", mod.Path, err)
	}

	before, after, err := SetJSONValue(raw, mod.Key, mod.Value)
	if err != nil {
		return outcome, fmt.Errorf("modify %s: %w", mod.Path, err)
	}
	diff, err := unifiedDiff(mod.Path, before, after)
	if err != nil {
		return outcome, err
	}
	if diff == "" {
		return outcome, nil
	}
	outcome.Diff = diff

	if _, err := fmt.Fprintf(r.out, "Your %q file needs this modification:\n%s", mod.Path, diff); err != nil {
		return outcome, err
	}
	if r.dryRun {
		return outcome, nil
	}
	yes, err := r.prompter.Confirm("Shall it be applied?")
	if err != nil {
		return outcome, err
	}
	if !yes {
		return outcome, nil
	}
	if err := safeio.WriteFileUnder(r.fs, filepath.Dir(mod.Path), mod.Path, after); err != nil {
		return outcome, fmt.Errorf("write %s: %w", mod.Path, err)
	}
	outcome.Applied = true
	return outcome, nil
}

// SetJSONValue returns the pretty-printed document before and after
// setting the JSON pointer key to value. raw may contain comments and
// trailing commas.
func SetJSONValue(raw []byte, key, value string) ([]byte, []byte, error) {
	data := jsonc.ToJSON(raw)
	if !gjson.ValidBytes(data) {
		return nil, nil, errors.New("invalid JSON")
	}
	path, err := pointerToPath(key)
	if err != nil {
		return nil, nil, err
	}
	modified, err := sjson.SetBytes(data, path, value)
	if err != nil {
		return nil, nil, err
	}
	return pretty.PrettyOptions(data, prettyOptions), pretty.PrettyOptions(modified, prettyOptions), nil
}

// pointerToPath converts a JSON pointer such as /compilerOptions/module to
// the dotted path syntax sjson expects.
func pointerToPath(pointer string) (string, error) {
	if !strings.HasPrefix(pointer, "/") || len(pointer) == 1 {
		return "", fmt.Errorf("invalid JSON pointer %q", pointer)
	}
	segments := strings.Split(pointer[1:], "/")
	escaped := make([]string, 0, len(segments))
	for _, segment := range segments {
		if segment == "" {
			return "", fmt.Errorf("invalid JSON pointer %q", pointer)
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		escaped = append(escaped, escapePathSegment(segment))
	}
	return strings.Join(escaped, "."), nil
}

func escapePathSegment(segment string) string {
	var b strings.Builder
	for _, r := range segment {
		switch r {
		case '.', '*', '?', '\\', '|', '#', '@', ':', '!', '=', '<', '>', '%':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func unifiedDiff(path string, before, after []byte) (string, error) {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(before)),
		B:        difflib.SplitLines(string(after)),
		FromFile: path,
		ToFile:   path,
		Context:  3,
	})
	if err != nil {
		return "", fmt.Errorf("diff %s: %w", path, err)
	}
	return diff, nil
}

func containsFold(values []string, value string) bool {
	for _, candidate := range values {
		if strings.EqualFold(candidate, value) {
			return true
		}
	}
	return false
}
