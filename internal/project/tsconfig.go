package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ben-ranford/tsesm/internal/resolver"
	"github.com/spf13/afero"
	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"
)

var (
	ErrConfigNotFound = errors.New("tsconfig not found")
	ErrExtendsCycle   = errors.New("tsconfig extends cycle")
)

// TSConfig is the merged view of a tsconfig file and everything it extends.
// Relative locations are already made absolute against the file that
// declared them.
type TSConfig struct {
	Path             string
	Directory        string
	BaseURL          string
	Paths            resolver.AliasTable
	PathsBase        string
	Module           string
	ModuleResolution string
	AllowJS          bool
	OutDir           string
	Include          []string
	Exclude          []string
	Files            []string
	Extends          []string
}

// ResolverConfig snapshots the module resolution settings.
func (c TSConfig) ResolverConfig() resolver.Config {
	base := c.BaseURL
	if base == "" && c.Paths.Len() > 0 {
		base = c.PathsBase
	}
	return resolver.Config{
		RootDirectory: c.Directory,
		BaseURL:       base,
		Paths:         c.Paths,
	}
}

// layer holds the settings one tsconfig file declares. nil means "not set"
// so a child only overrides what it mentions.
type layer struct {
	baseURL          *string
	paths            *resolver.AliasTable
	pathsBase        string
	module           *string
	moduleResolution *string
	allowJS          *bool
	outDir           *string
	include          *[]string
	exclude          *[]string
	files            *[]string
	extends          []string
}

func (l *layer) overlay(child layer) {
	if child.baseURL != nil {
		l.baseURL = child.baseURL
	}
	if child.paths != nil {
		l.paths = child.paths
		l.pathsBase = child.pathsBase
	}
	if child.module != nil {
		l.module = child.module
	}
	if child.moduleResolution != nil {
		l.moduleResolution = child.moduleResolution
	}
	if child.allowJS != nil {
		l.allowJS = child.allowJS
	}
	if child.outDir != nil {
		l.outDir = child.outDir
	}
	if child.include != nil {
		l.include = child.include
	}
	if child.exclude != nil {
		l.exclude = child.exclude
	}
	if child.files != nil {
		l.files = child.files
	}
	l.extends = append(l.extends, child.extends...)
}

// LoadTSConfig reads path and merges its extends chain.
func LoadTSConfig(fsys afero.Fs, path string) (TSConfig, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return TSConfig{}, fmt.Errorf("resolve tsconfig path: %w", err)
	}
	merged, err := loadLayer(fsys, abs, map[string]bool{})
	if err != nil {
		return TSConfig{}, err
	}

	config := TSConfig{
		Path:      abs,
		Directory: filepath.Dir(abs),
		Extends:   merged.extends,
	}
	if merged.baseURL != nil {
		config.BaseURL = *merged.baseURL
	}
	if merged.paths != nil {
		config.Paths = *merged.paths
		config.PathsBase = merged.pathsBase
	}
	if merged.module != nil {
		config.Module = *merged.module
	}
	if merged.moduleResolution != nil {
		config.ModuleResolution = *merged.moduleResolution
	}
	if merged.allowJS != nil {
		config.AllowJS = *merged.allowJS
	}
	if merged.outDir != nil {
		config.OutDir = *merged.outDir
	}
	if merged.include != nil {
		config.Include = *merged.include
	}
	if merged.exclude != nil {
		config.Exclude = *merged.exclude
	}
	if merged.files != nil {
		config.Files = *merged.files
	}
	return config, nil
}

func loadLayer(fsys afero.Fs, path string, seen map[string]bool) (layer, error) {
	if seen[path] {
		return layer{}, fmt.Errorf("%w: %s", ErrExtendsCycle, path)
	}
	seen[path] = true
	defer delete(seen, path)

	data, err := ReadJSONC(fsys, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return layer{}, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return layer{}, err
	}

	own := parseLayer(data, filepath.Dir(path))
	merged := layer{}
	for _, ref := range extendsRefs(data) {
		basePath, err := resolveExtends(fsys, filepath.Dir(path), ref)
		if err != nil {
			return layer{}, err
		}
		base, err := loadLayer(fsys, basePath, seen)
		if err != nil {
			return layer{}, err
		}
		merged.overlay(base)
		merged.extends = append(merged.extends, basePath)
	}
	merged.overlay(own)
	return merged, nil
}

// ReadJSONC reads a JSON file that may carry comments and trailing commas
// and returns plain JSON.
func ReadJSONC(fsys afero.Fs, path string) ([]byte, error) {
	raw, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, err
	}
	data := jsonc.ToJSON(raw)
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("parse %s: invalid JSON", path)
	}
	return data, nil
}

func parseLayer(data []byte, dir string) layer {
	parsed := layer{}
	options := gjson.GetBytes(data, "compilerOptions")

	if value := options.Get("baseUrl"); value.Type == gjson.String {
		baseURL := absoluteFrom(dir, value.String())
		parsed.baseURL = &baseURL
	}
	if value := options.Get("paths"); value.IsObject() {
		table := resolver.AliasTable{}
		value.ForEach(func(key, targets gjson.Result) bool {
			list := make([]string, 0)
			for _, target := range targets.Array() {
				if target.Type == gjson.String {
					list = append(list, target.String())
				}
			}
			table = table.With(key.String(), list...)
			return true
		})
		parsed.paths = &table
		parsed.pathsBase = dir
	}
	if value := options.Get("module"); value.Type == gjson.String {
		module := value.String()
		parsed.module = &module
	}
	if value := options.Get("moduleResolution"); value.Type == gjson.String {
		moduleResolution := value.String()
		parsed.moduleResolution = &moduleResolution
	}
	if value := options.Get("allowJs"); value.IsBool() {
		allowJS := value.Bool()
		parsed.allowJS = &allowJS
	}
	if value := options.Get("outDir"); value.Type == gjson.String {
		outDir := absoluteFrom(dir, value.String())
		parsed.outDir = &outDir
	}
	parsed.include = stringList(gjson.GetBytes(data, "include"), dir)
	parsed.exclude = stringList(gjson.GetBytes(data, "exclude"), dir)
	parsed.files = stringList(gjson.GetBytes(data, "files"), dir)
	return parsed
}

func stringList(value gjson.Result, dir string) *[]string {
	if !value.IsArray() {
		return nil
	}
	list := make([]string, 0)
	for _, item := range value.Array() {
		if item.Type == gjson.String && strings.TrimSpace(item.String()) != "" {
			list = append(list, absoluteFrom(dir, item.String()))
		}
	}
	return &list
}

func extendsRefs(data []byte) []string {
	value := gjson.GetBytes(data, "extends")
	switch {
	case value.Type == gjson.String:
		return []string{value.String()}
	case value.IsArray():
		refs := make([]string, 0)
		for _, item := range value.Array() {
			if item.Type == gjson.String {
				refs = append(refs, item.String())
			}
		}
		return refs
	default:
		return nil
	}
}

// resolveExtends finds the file an "extends" entry refers to. Paths are
// taken relative to dir; package names are looked up in node_modules of
// dir and its parents.
func resolveExtends(fsys afero.Fs, dir string, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("%w: empty extends entry in %s", ErrConfigNotFound, dir)
	}

	candidates := make([]string, 0, 3)
	if filepath.IsAbs(ref) || strings.HasPrefix(ref, ".") {
		path := absoluteFrom(dir, ref)
		candidates = append(candidates, path, path+".json")
	} else {
		for current := dir; ; current = filepath.Dir(current) {
			base := filepath.Join(current, "node_modules", filepath.FromSlash(ref))
			candidates = append(candidates, base, base+".json", filepath.Join(base, "tsconfig.json"))
			if filepath.Dir(current) == current {
				break
			}
		}
	}

	for _, candidate := range candidates {
		info, err := fsys.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: extends %q from %s", ErrConfigNotFound, ref, dir)
}

func absoluteFrom(dir string, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(dir, filepath.FromSlash(path))
}
