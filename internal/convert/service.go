// Package convert rewrites the module specifiers of every source file in a
// project so ESM loaders can resolve them.
package convert

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ben-ranford/tsesm/internal/lang/js"
	"github.com/ben-ranford/tsesm/internal/report"
	"github.com/ben-ranford/tsesm/internal/resolver"
	"github.com/ben-ranford/tsesm/internal/safeio"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// Host is the project a conversion runs over.
type Host interface {
	SourceFiles(ctx context.Context) ([]string, error)
	Config() resolver.Config
	RootDirectory() string
}

type Options struct {
	DryRun   bool
	CommonJS bool
	Workers  int
	Keyword  resolver.AttributeKeyword
	Include  []string
	Exclude  []string
}

type Service struct {
	fs      afero.Fs
	logger  *log.Logger
	scanner *js.Scanner
}

func NewService(fsys afero.Fs, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Service{fs: fsys, logger: logger, scanner: js.NewScanner()}
}

// Convert processes the host's files in parallel. A file that fails is
// recorded on the report and the run continues; only cancellation and
// failure to list the files abort it.
func (s *Service) Convert(ctx context.Context, host Host, opts Options) (report.ProjectReport, error) {
	root := host.RootDirectory()
	config := host.Config()
	project := report.ProjectReport{
		RootDirectory: root,
		Aliases:       config.Paths.Keys(),
	}
	if len(project.Aliases) > 0 {
		s.logger.Debug("found path aliases", "aliases", project.Aliases)
	}

	files, err := host.SourceFiles(ctx)
	if err != nil {
		return project, fmt.Errorf("list source files: %w", err)
	}
	files, err = filterFiles(root, files, opts.Include, opts.Exclude)
	if err != nil {
		return project, err
	}

	res := resolver.New(s.fs, config, resolver.WithAttributeKeyword(opts.Keyword))
	results := make([]fileResult, len(files))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workerCount(opts.Workers))
	for i, file := range files {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			results[i] = s.convertFile(groupCtx, res, root, file, opts)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return project, err
	}
	if err := ctx.Err(); err != nil {
		return project, err
	}

	project.Files = make([]report.FileReport, 0, len(results))
	for _, result := range results {
		project.Files = append(project.Files, result.report)
		project.Warnings = append(project.Warnings, result.warnings...)
	}
	project.Summary = report.ComputeSummary(project.Files)
	return project, nil
}

type fileResult struct {
	report   report.FileReport
	warnings []string
}

func (s *Service) convertFile(ctx context.Context, res *resolver.Resolver, root, file string, opts Options) fileResult {
	display := displayPath(root, file)
	result := fileResult{report: report.FileReport{Path: display}}
	s.logger.Debug("checking", "file", file)

	fail := func(err error) fileResult {
		s.logger.Warn("file skipped", "file", display, "err", err)
		result.report.Error = err.Error()
		result.report.Changed = false
		result.report.Rewrites = nil
		result.report.CommonJS = nil
		result.warnings = append(result.warnings, fmt.Sprintf("%s: %v", display, err))
		return result
	}

	original, err := safeio.ReadFile(s.fs, file)
	if err != nil {
		return fail(fmt.Errorf("read: %w", err))
	}
	content := original

	if opts.CommonJS {
		converted, err := s.scanner.ConvertCommonJS(ctx, file, content)
		if err != nil {
			return fail(fmt.Errorf("convert commonjs: %w", err))
		}
		if converted.Changed() {
			content = converted.Content
			result.report.CommonJS = &report.CommonJS{Requires: converted.Requires, Exports: converted.Exports}
		}
	}

	scan, err := s.scanner.Scan(ctx, file, content)
	if err != nil {
		return fail(fmt.Errorf("parse: %w", err))
	}
	if scan.ParseError {
		s.logger.Debug("syntax errors in file, continuing with recovered tree", "file", display)
	}

	edits := make([]js.Edit, 0)
	for _, spec := range scan.Specifiers {
		if !spec.Resolvable() {
			continue
		}
		decision, err := res.Resolve(resolver.Occurrence{Raw: spec.Raw, FilePath: file, HasAttributes: spec.HasAttributes})
		if err != nil {
			s.logger.Warn("specifier left unchanged", "file", display, "line", spec.Line, "err", err)
			result.warnings = append(result.warnings, fmt.Sprintf("%s:%d: %v", display, spec.Line, err))
			continue
		}
		if !decision.Changed {
			continue
		}
		text := decision.Replacement
		kind := report.RewriteExtension
		if decision.Reason == resolver.ReasonImportAttribute {
			kind = report.RewriteAttribute
			if spec.Kind == js.KindDynamicImport {
				text = resolver.BuildDynamicImportAttribute(decision.Reference, opts.Keyword)
			}
		}
		edits = append(edits, js.Edit{Start: spec.Start, End: spec.End, Text: text})
		result.report.Rewrites = append(result.report.Rewrites, report.Rewrite{
			Line:   spec.Line,
			Column: spec.Column,
			Kind:   kind,
			From:   spec.Raw,
			To:     text,
		})
	}

	updated, err := js.ApplyEdits(content, edits)
	if err != nil {
		return fail(fmt.Errorf("apply edits: %w", err))
	}
	if bytes.Equal(updated, original) {
		return result
	}

	result.report.Changed = true
	if opts.DryRun {
		s.logger.Info("would modify", "file", display, "rewrites", len(result.report.Rewrites))
		return result
	}
	if err := safeio.WriteFileUnder(s.fs, filepath.Dir(file), file, updated); err != nil {
		return fail(fmt.Errorf("write: %w", err))
	}
	s.logger.Info("modified", "file", display, "rewrites", len(result.report.Rewrites))
	return result
}

// filterFiles keeps files matching include (all when empty) and not
// matching exclude. Patterns are matched against the slash path relative
// to root.
func filterFiles(root string, files, include, exclude []string) ([]string, error) {
	if len(include) == 0 && len(exclude) == 0 {
		return files, nil
	}
	kept := make([]string, 0, len(files))
	for _, file := range files {
		rel := displayPath(root, file)
		included := len(include) == 0
		for _, pattern := range include {
			ok, err := doublestar.Match(pattern, rel)
			if err != nil {
				return nil, fmt.Errorf("include pattern %q: %w", pattern, err)
			}
			if ok {
				included = true
				break
			}
		}
		if !included {
			continue
		}
		excluded := false
		for _, pattern := range exclude {
			ok, err := doublestar.Match(pattern, rel)
			if err != nil {
				return nil, fmt.Errorf("exclude pattern %q: %w", pattern, err)
			}
			if ok {
				excluded = true
				break
			}
		}
		if !excluded {
			kept = append(kept, file)
		}
	}
	return kept, nil
}

func displayPath(root, file string) string {
	rel, err := filepath.Rel(root, file)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(file)
	}
	return filepath.ToSlash(rel)
}

func workerCount(requested int) int {
	if requested < 1 {
		return 1
	}
	return requested
}
