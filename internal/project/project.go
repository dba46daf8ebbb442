// Package project loads a TypeScript project: its merged tsconfig and the
// source files it covers.
package project

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ben-ranford/tsesm/internal/lang/js"
	"github.com/ben-ranford/tsesm/internal/resolver"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
)

var defaultExcludes = []string{"node_modules", "bower_components", "jspm_packages"}

var typeScriptExtensions = map[string]bool{
	".ts":  true,
	".tsx": true,
	".mts": true,
	".cts": true,
}

// Project is loaded once per run. Its configuration is immutable; callers
// receive copies through Config and TSConfig.
type Project struct {
	fs     afero.Fs
	config TSConfig
}

func Load(fsys afero.Fs, tsconfigPath string) (*Project, error) {
	config, err := LoadTSConfig(fsys, tsconfigPath)
	if err != nil {
		return nil, err
	}
	return &Project{fs: fsys, config: config}, nil
}

func (p *Project) Config() resolver.Config {
	return p.config.ResolverConfig()
}

func (p *Project) TSConfig() TSConfig {
	return p.config
}

func (p *Project) RootDirectory() string {
	return p.config.Directory
}

// SourceFiles lists the files covered by include/files minus exclude, in
// lexical order. JavaScript files are only part of the project when allowJs
// is set.
func (p *Project) SourceFiles(ctx context.Context) ([]string, error) {
	found := make(map[string]struct{})
	excludes := p.excludePatterns()

	for _, pattern := range p.includePatterns() {
		if err := p.collectMatches(ctx, pattern, excludes, found); err != nil {
			return nil, err
		}
	}
	for _, file := range p.config.Files {
		if !p.accepts(file) {
			continue
		}
		if ok, err := afero.Exists(p.fs, file); err == nil && ok {
			found[file] = struct{}{}
		}
	}

	files := make([]string, 0, len(found))
	for file := range found {
		files = append(files, file)
	}
	sort.Strings(files)
	return files, nil
}

func (p *Project) includePatterns() []string {
	include := p.config.Include
	if include == nil {
		if p.config.Files != nil {
			return nil
		}
		include = []string{p.config.Directory}
	}
	patterns := make([]string, 0, len(include))
	for _, entry := range include {
		patterns = append(patterns, toGlob(entry))
	}
	return patterns
}

func (p *Project) excludePatterns() []string {
	exclude := p.config.Exclude
	if exclude == nil {
		exclude = make([]string, 0, len(defaultExcludes)+1)
		for _, name := range defaultExcludes {
			exclude = append(exclude, filepath.Join(p.config.Directory, name))
		}
		if p.config.OutDir != "" {
			exclude = append(exclude, p.config.OutDir)
		}
	}
	patterns := make([]string, 0, len(exclude))
	for _, entry := range exclude {
		patterns = append(patterns, toGlob(entry))
	}
	return patterns
}

func (p *Project) collectMatches(ctx context.Context, pattern string, excludes []string, found map[string]struct{}) error {
	base, _ := doublestar.SplitPattern(pattern)
	baseDir := filepath.FromSlash(base)
	if ok, err := afero.DirExists(p.fs, baseDir); err != nil || !ok {
		return nil
	}

	return afero.Walk(p.fs, baseDir, func(current string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slashPath := filepath.ToSlash(current)
		if info.IsDir() {
			if current != baseDir && (js.SkipDirectory(info.Name()) || isExcluded(slashPath, excludes)) {
				return fs.SkipDir
			}
			return nil
		}
		if !p.accepts(current) || isExcluded(slashPath, excludes) {
			return nil
		}
		if ok, _ := doublestar.Match(pattern, slashPath); ok {
			found[current] = struct{}{}
		}
		return nil
	})
}

func (p *Project) accepts(file string) bool {
	if !js.IsSupportedFile(file) {
		return false
	}
	if p.config.AllowJS {
		return true
	}
	return typeScriptExtensions[strings.ToLower(filepath.Ext(file))]
}

func isExcluded(slashPath string, excludes []string) bool {
	for _, pattern := range excludes {
		if ok, _ := doublestar.Match(pattern, slashPath); ok {
			return true
		}
		if dir := strings.TrimSuffix(pattern, "/**/*"); dir != pattern && dir == slashPath {
			return true
		}
	}
	return false
}

// toGlob turns a tsconfig include/exclude entry into a doublestar pattern.
// Entries without wildcards and without an extension name a directory.
func toGlob(entry string) string {
	pattern := filepath.ToSlash(entry)
	if strings.ContainsAny(pattern, "*?[{") {
		return pattern
	}
	if path.Ext(pattern) != "" {
		return pattern
	}
	return strings.TrimSuffix(pattern, "/") + "/**/*"
}
