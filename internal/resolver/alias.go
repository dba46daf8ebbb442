package resolver

import (
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// AliasEntry is one `compilerOptions.paths` mapping.
type AliasEntry struct {
	Pattern string
	Targets []string
}

// AliasTable keeps path aliases in declaration order so ties between equally
// ranked patterns resolve to the first declared one.
type AliasTable struct {
	entries []AliasEntry
}

func NewAliasTable(entries ...AliasEntry) AliasTable {
	table := AliasTable{entries: make([]AliasEntry, 0, len(entries))}
	for _, entry := range entries {
		table = table.With(entry.Pattern, entry.Targets...)
	}
	return table
}

// With returns a copy of t with pattern mapped to targets. An existing
// pattern keeps its position and gets its targets replaced.
func (t AliasTable) With(pattern string, targets ...string) AliasTable {
	entries := make([]AliasEntry, 0, len(t.entries)+1)
	replaced := false
	for _, entry := range t.entries {
		if entry.Pattern == pattern {
			entry = AliasEntry{Pattern: pattern, Targets: append([]string{}, targets...)}
			replaced = true
		}
		entries = append(entries, entry)
	}
	if !replaced {
		entries = append(entries, AliasEntry{Pattern: pattern, Targets: append([]string{}, targets...)})
	}
	return AliasTable{entries: entries}
}

func (t AliasTable) Len() int {
	return len(t.entries)
}

func (t AliasTable) Entries() []AliasEntry {
	return append([]AliasEntry{}, t.entries...)
}

// Keys lists the patterns in declaration order.
func (t AliasTable) Keys() []string {
	if len(t.entries) == 0 {
		return nil
	}
	keys := make([]string, 0, len(t.entries))
	for _, entry := range t.entries {
		keys = append(keys, entry.Pattern)
	}
	return keys
}

func (t AliasTable) Targets(pattern string) ([]string, bool) {
	for _, entry := range t.entries {
		if entry.Pattern == pattern {
			return entry.Targets, true
		}
	}
	return nil, false
}

// IsMatch returns 0 when pattern does not match specifier, otherwise the
// length of pattern in code points. When several patterns match, the one
// with the longest prefix before the wildcard wins, so a rank is returned
// instead of a bool.
func IsMatch(pattern string, specifier string) int {
	if pattern == "" {
		return 0
	}
	if strings.HasPrefix(specifier, RemoveWildcards(pattern)) {
		return utf8.RuneCountInString(pattern)
	}
	return 0
}

// FindBestMatch returns the strictly highest ranked pattern of table, or ""
// when no pattern matches specifier.
func FindBestMatch(table AliasTable, specifier string) string {
	bestRank := 0
	bestMatch := ""
	for _, entry := range table.entries {
		rank := IsMatch(entry.Pattern, specifier)
		if rank > bestRank {
			bestRank = rank
			bestMatch = entry.Pattern
		}
	}
	return bestMatch
}

// RemoveWildcards strips the first "/*" and then the first "*" of pattern.
func RemoveWildcards(pattern string) string {
	return strings.Replace(strings.Replace(pattern, "/*", "", 1), "*", "", 1)
}

// RemovePathAlias strips the literal prefix of alias from specifier along
// with the separator that follows it.
func RemovePathAlias(alias string, specifier string) string {
	remainder := strings.TrimPrefix(specifier, RemoveWildcards(alias))
	return strings.TrimPrefix(remainder, "/")
}

// ExpandAlias maps specifier through the first target of aliasKey and joins
// the result with aliasBase. Targets containing "*" receive the matched
// remainder in place of the wildcard; other targets get it appended.
func ExpandAlias(aliasBase string, aliasKey string, table AliasTable, specifier string) string {
	targets, ok := table.Targets(aliasKey)
	if !ok || len(targets) == 0 {
		return filepath.Join(aliasBase, specifier)
	}

	remainder := RemovePathAlias(aliasKey, specifier)
	target := targets[0]
	if strings.Contains(target, "*") {
		target = strings.Replace(target, "*", remainder, 1)
		return filepath.Join(aliasBase, filepath.FromSlash(target))
	}
	return filepath.Join(aliasBase, filepath.FromSlash(target), filepath.FromSlash(remainder))
}
