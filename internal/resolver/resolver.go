package resolver

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Config is the project level module resolution configuration. It is read
// once per run and never mutated afterwards.
type Config struct {
	RootDirectory string
	BaseURL       string
	Paths         AliasTable
}

// AliasBase is the directory alias targets are relative to.
func (c Config) AliasBase() string {
	if strings.TrimSpace(c.BaseURL) == "" {
		return c.RootDirectory
	}
	if filepath.IsAbs(c.BaseURL) {
		return filepath.Clean(c.BaseURL)
	}
	return filepath.Join(c.RootDirectory, filepath.FromSlash(c.BaseURL))
}

// Occurrence is one specifier literal found by the source scanner.
type Occurrence struct {
	Raw           string
	FilePath      string
	HasAttributes bool
}

// Reason explains a Decision.
type Reason string

const (
	ReasonAttributesClause Reason = "attributes-clause"
	ReasonBareSpecifier    Reason = "bare-specifier"
	ReasonPackageExports   Reason = "package-exports"
	ReasonPackageRoot      Reason = "package-root"
	ReasonNotFound         Reason = "not-found"
	ReasonImportAttribute  Reason = "import-attribute"
	ReasonExtension        Reason = "extension"
)

// Decision is the outcome of resolving one occurrence. Replacement is only
// meaningful when Changed is true.
type Decision struct {
	Changed     bool
	Replacement string
	Reason      Reason
	Reference   Reference
}

type Option func(*Resolver)

func WithAttributeKeyword(keyword AttributeKeyword) Option {
	return func(r *Resolver) {
		if keyword != "" {
			r.keyword = keyword
		}
	}
}

// Resolver turns occurrences into decisions. It holds no mutable state and
// is safe for concurrent use.
type Resolver struct {
	fs      afero.Fs
	config  Config
	keyword AttributeKeyword
}

func New(fsys afero.Fs, config Config, opts ...Option) *Resolver {
	r := &Resolver{
		fs:      fsys,
		config:  config,
		keyword: AttributeWith,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resolver) Config() Config {
	return r.config
}

// Resolve decides whether occ needs a rewrite. A file-system failure while
// probing is returned as an error; callers leave the specifier untouched.
func (r *Resolver) Resolve(occ Occurrence) (Decision, error) {
	ref := ParseReference(occ.Raw, occ.FilePath, r.config.Paths)
	decision := Decision{Reference: ref}

	if occ.HasAttributes {
		decision.Reason = ReasonAttributesClause
		return decision, nil
	}

	fromAlias := ref.AliasKey != "" && !ref.IsRelative
	fromNodeModules := !ref.IsRelative && !fromAlias && strings.Contains(ref.Normalized, "/")
	if !ref.IsRelative && !fromAlias && !fromNodeModules {
		decision.Reason = ReasonBareSpecifier
		return decision, nil
	}

	if fromNodeModules {
		packageDir := nodeModulesPath(r.config.RootDirectory, PackageName(ref.Normalized))
		if HasModernExports(r.fs, packageDir) {
			decision.Reason = ReasonPackageExports
			return decision, nil
		}
	}

	if ref.Extension == ".json" || ref.Extension == ".css" {
		decision.Changed = true
		decision.Reason = ReasonImportAttribute
		decision.Replacement = BuildImportAttribute(ref, r.keyword)
		return decision, nil
	}

	base := r.basePath(ref, fromAlias, fromNodeModules)
	candidate, found, err := FindPath(r.fs, base, ref.Extension)
	if err != nil {
		return decision, fmt.Errorf("resolve %s: %w", ref.Declaration, err)
	}
	if !found {
		decision.Reason = ReasonNotFound
		return decision, nil
	}
	if candidate.Replacement == IndexReplacement && IsNodeModuleRoot(r.fs, base) {
		decision.Reason = ReasonPackageRoot
		return decision, nil
	}

	decision.Changed = true
	decision.Reason = ReasonExtension
	decision.Replacement = BuildExtendedImport(ref, candidate.Replacement)
	return decision, nil
}

func (r *Resolver) basePath(ref Reference, fromAlias bool, fromNodeModules bool) string {
	switch {
	case fromNodeModules:
		return nodeModulesPath(r.config.RootDirectory, ref.Normalized)
	case fromAlias:
		return ExpandAlias(r.config.AliasBase(), ref.AliasKey, r.config.Paths, ref.Normalized)
	default:
		return filepath.Join(ref.Directory, filepath.FromSlash(ref.Normalized))
	}
}
