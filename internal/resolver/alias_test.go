package resolver

import (
	"path/filepath"
	"testing"
)

func TestRemoveWildcards(t *testing.T) {
	if got := RemoveWildcards("@helpers/*"); got != "@helpers" {
		t.Fatalf("unexpected result: %q", got)
	}
	if got := RemoveWildcards("*"); got != "" {
		t.Fatalf("unexpected result for catch-all: %q", got)
	}
	if got := RemoveWildcards("foo/bar"); got != "foo/bar" {
		t.Fatalf("expected literal pattern untouched, got %q", got)
	}
}

func TestRemovePathAlias(t *testing.T) {
	if got := RemovePathAlias("@helpers/*", "@helpers/removeSuffix"); got != "removeSuffix" {
		t.Fatalf("unexpected remainder: %q", got)
	}
	if got := RemovePathAlias("*", "lib/a/b"); got != "lib/a/b" {
		t.Fatalf("expected catch-all to keep the specifier, got %q", got)
	}
}

func TestIsMatch(t *testing.T) {
	matching := [][2]string{
		{"@app/*", "@app/dto/AppTokens"},
		{"*", "./removeSuffix"},
		{"~/*", "~/layouts/PageLayout.astro"},
		{"🐵", "🐵/removeSuffix"},
		{"helpers/*", "helpers/removeSuffix"},
	}
	for _, tc := range matching {
		if IsMatch(tc[0], tc[1]) == 0 {
			t.Fatalf("expected %q to match %q", tc[0], tc[1])
		}
	}

	notMatching := [][2]string{
		{"@app/*", "./removeSuffix"},
		{"🐵", "./removeSuffix"},
		{"", "anything"},
	}
	for _, tc := range notMatching {
		if rank := IsMatch(tc[0], tc[1]); rank != 0 {
			t.Fatalf("expected %q not to match %q, got rank %d", tc[0], tc[1], rank)
		}
	}
}

func TestIsMatchRanksByPatternLength(t *testing.T) {
	if got := IsMatch("foo/*", "foo/bar"); got != 5 {
		t.Fatalf("expected rank 5, got %d", got)
	}
	if got := IsMatch("🐵", "🐵/x"); got != 1 {
		t.Fatalf("expected rank counted in characters, got %d", got)
	}
}

func TestFindBestMatch(t *testing.T) {
	table := NewAliasTable(
		AliasEntry{Pattern: "*", Targets: []string{"./src/foo/one.ts"}},
		AliasEntry{Pattern: "foo/*", Targets: []string{"./src/foo/two.ts"}},
		AliasEntry{Pattern: "foo/bar", Targets: []string{"./src/foo/three.ts"}},
	)
	if got := FindBestMatch(table, "foo/bar"); got != "foo/bar" {
		t.Fatalf("expected foo/bar, got %q", got)
	}
	if got := FindBestMatch(table, "foo/baz"); got != "foo/*" {
		t.Fatalf("expected foo/*, got %q", got)
	}
	if got := FindBestMatch(table, "other"); got != "*" {
		t.Fatalf("expected catch-all, got %q", got)
	}
}

func TestFindBestMatchNoMatch(t *testing.T) {
	table := NewAliasTable(
		AliasEntry{Pattern: "@helpers/*", Targets: []string{"./src/helpers/*"}},
		AliasEntry{Pattern: "~/*", Targets: []string{"./src/*"}},
		AliasEntry{Pattern: "helpers/*", Targets: []string{"./src/helpers/*"}},
	)
	if got := FindBestMatch(table, "../getNumber"); got != "" {
		t.Fatalf("expected no match, got %q", got)
	}
	if got := FindBestMatch(AliasTable{}, "anything"); got != "" {
		t.Fatalf("expected no match on empty table, got %q", got)
	}
}

func TestFindBestMatchTieKeepsFirstDeclared(t *testing.T) {
	table := NewAliasTable(
		AliasEntry{Pattern: "ab/*", Targets: []string{"./a/*"}},
		AliasEntry{Pattern: "ab/c", Targets: []string{"./c"}},
	)
	if got := FindBestMatch(table, "ab/c/x"); got != "ab/*" {
		t.Fatalf("expected first declared pattern on tie, got %q", got)
	}

	reversed := NewAliasTable(table.Entries()[1], table.Entries()[0])
	if got := FindBestMatch(reversed, "ab/c/x"); got != "ab/c" {
		t.Fatalf("expected first declared pattern on tie, got %q", got)
	}
}

func TestAliasTableWithKeepsOrder(t *testing.T) {
	table := NewAliasTable(
		AliasEntry{Pattern: "a/*", Targets: []string{"./a/*"}},
		AliasEntry{Pattern: "b/*", Targets: []string{"./b/*"}},
	)
	updated := table.With("a/*", "./z/*")

	entries := updated.Entries()
	if len(entries) != 2 || entries[0].Pattern != "a/*" || entries[0].Targets[0] != "./z/*" {
		t.Fatalf("unexpected entries: %#v", entries)
	}
	if targets, _ := table.Targets("a/*"); targets[0] != "./a/*" {
		t.Fatalf("expected original table untouched, got %#v", targets)
	}
	if _, ok := updated.Targets("missing"); ok {
		t.Fatalf("expected missing pattern lookup to fail")
	}
	if keys := updated.Keys(); len(keys) != 2 || keys[0] != "a/*" || keys[1] != "b/*" {
		t.Fatalf("unexpected keys: %#v", keys)
	}
	if keys := (AliasTable{}).Keys(); keys != nil {
		t.Fatalf("expected nil keys for empty table, got %#v", keys)
	}
}

func TestExpandAlias(t *testing.T) {
	projectDirectory := filepath.FromSlash("/home/dev/ts-demo-npm-cjs")
	table := NewAliasTable(
		AliasEntry{Pattern: "@helpers/*", Targets: []string{"./src/helpers/*"}},
		AliasEntry{Pattern: "~/*", Targets: []string{"./src/*"}},
		AliasEntry{Pattern: "helpers/*", Targets: []string{"./src/helpers/*"}},
	)

	got := ExpandAlias(projectDirectory, "@helpers/*", table, "@helpers/removeSuffix")
	want := filepath.Join(projectDirectory, "src", "helpers", "removeSuffix")
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestExpandAliasLiteralTargets(t *testing.T) {
	root := filepath.FromSlash("/project")
	table := NewAliasTable(
		AliasEntry{Pattern: "config", Targets: []string{"./src/config/index"}},
		AliasEntry{Pattern: "lib/*", Targets: []string{"./vendor/lib"}},
		AliasEntry{Pattern: "empty/*"},
	)

	if got := ExpandAlias(root, "config", table, "config"); got != filepath.Join(root, "src", "config", "index") {
		t.Fatalf("unexpected exact expansion: %q", got)
	}
	if got := ExpandAlias(root, "lib/*", table, "lib/a/b"); got != filepath.Join(root, "vendor", "lib", "a", "b") {
		t.Fatalf("unexpected appended expansion: %q", got)
	}
	if got := ExpandAlias(root, "empty/*", table, "empty/x"); got != filepath.Join(root, "empty", "x") {
		t.Fatalf("unexpected fallback expansion: %q", got)
	}
}

func TestExpandAliasTwoWildcardsDoesNotPanic(t *testing.T) {
	root := filepath.FromSlash("/project")
	table := NewAliasTable(AliasEntry{Pattern: "a/*/b/*", Targets: []string{"./src/*/x/*"}})
	_ = ExpandAlias(root, "a/*/b/*", table, "a/1/b/2")
}
