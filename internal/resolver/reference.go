// Package resolver decides how a single module specifier has to be rewritten
// so that it is fully specified for ESM loaders.
//
// Every function in this package is a pure function of its inputs: the
// specifier text, an immutable Config snapshot, and a read-only afero.Fs.
package resolver

import (
	"path"
	"path/filepath"
	"strings"
)

// Reference is the parsed form of one quoted specifier occurrence.
type Reference struct {
	// Declaration is the literal including its quotes, i.e. `'../UserAPI'`.
	Declaration string
	// Quote is the delimiter used by Declaration, `'` or `"`.
	Quote string
	// Normalized is Declaration without quotes, i.e. `../UserAPI`.
	Normalized string
	// Directory is the absolute directory of the file holding the reference.
	Directory string
	// Extension is the trailing extension with its dot, or "" if none.
	Extension string
	// IsRelative is true for ".", "..", "./…" and "../…".
	IsRelative bool
	// AliasKey is the best matching path alias pattern, or "".
	AliasKey string
}

// ParseReference decomposes raw (a quoted specifier) found in sourceFilePath.
// aliases may be empty, in which case AliasKey stays "".
func ParseReference(raw string, sourceFilePath string, aliases AliasTable) Reference {
	quote := ""
	normalized := raw
	if raw != "" {
		quote = raw[:1]
		normalized = strings.TrimPrefix(raw, quote)
		normalized = strings.TrimSuffix(normalized, quote)
	}

	ref := Reference{
		Declaration: raw,
		Quote:       quote,
		Normalized:  normalized,
		Directory:   filepath.Dir(sourceFilePath),
		Extension:   Extname(normalized),
		IsRelative:  HasRelativePath(normalized),
	}
	if aliases.Len() > 0 {
		ref.AliasKey = FindBestMatch(aliases, normalized)
	}
	return ref
}

// HasRelativePath reports whether specifier is "." or ".." or starts with
// "./" or "../".
func HasRelativePath(specifier string) bool {
	if specifier == "." || specifier == ".." {
		return true
	}
	return strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../")
}

// Extname returns the extension of the last path segment of specifier using
// the "last dot after the last separator" rule. Dot-files and the "." and
// ".." segments have no extension.
func Extname(specifier string) string {
	base := path.Base(specifier)
	if strings.HasSuffix(specifier, "/") || base == "." || base == ".." {
		return ""
	}
	idx := strings.LastIndex(base, ".")
	if idx <= 0 {
		return ""
	}
	return base[idx:]
}
