package js

import (
	"context"
	"testing"
)

const mixedSource = `#!/usr/bin/env node
import { a } from './a';
import type { B } from "./b";
import data from './data.json' with { type: 'json' };
export * from './c';
export { d } from './d';
export const local = 1;
const lazy = await import('./lazy');
const json = await import('./x.json', { with: { type: 'json' } });
const cjs = require('./cjs');
const tpl = require(` + "`./tpl`" + `);
`

func TestScanCollectsSpecifiers(t *testing.T) {
	scan, err := NewScanner().Scan(context.Background(), "src/main.ts", []byte(mixedSource))
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	want := []struct {
		value      string
		kind       SpecifierKind
		attributes bool
	}{
		{"./a", KindImport, false},
		{"./b", KindImport, false},
		{"./data.json", KindImport, true},
		{"./c", KindExport, false},
		{"./d", KindExport, false},
		{"./lazy", KindDynamicImport, false},
		{"./x.json", KindDynamicImport, true},
		{"./cjs", KindRequire, false},
	}
	if len(scan.Specifiers) != len(want) {
		t.Fatalf("expected %d specifiers, got %#v", len(want), scan.Specifiers)
	}
	for i, expected := range want {
		got := scan.Specifiers[i]
		if got.Value != expected.value || got.Kind != expected.kind || got.HasAttributes != expected.attributes {
			t.Fatalf("specifier %d: expected %#v, got %#v", i, expected, got)
		}
		if mixedSource[got.Start:got.End] != got.Raw {
			t.Fatalf("specifier %d: offsets do not cover %q", i, got.Raw)
		}
	}

	first := scan.Specifiers[0]
	if first.Raw != "'./a'" || first.Line != 2 || first.Column != 19 {
		t.Fatalf("unexpected position for first specifier: %#v", first)
	}
	if scan.Specifiers[1].Raw != `"./b"` {
		t.Fatalf("expected double quotes to be kept, got %q", scan.Specifiers[1].Raw)
	}
	if scan.Specifiers[7].Resolvable() {
		t.Fatalf("expected require specifier to be skipped by resolution")
	}
}

func TestScanDetectsLegacyAssertClause(t *testing.T) {
	source := "import legacy from './legacy.json' assert { type: 'json' };\n"
	scan, err := NewScanner().Scan(context.Background(), "legacy.js", []byte(source))
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(scan.Specifiers) == 0 {
		t.Fatalf("expected a specifier")
	}
	if !scan.Specifiers[0].HasAttributes {
		t.Fatalf("expected assert clause to count as attributes")
	}
}

func TestScanLanguages(t *testing.T) {
	sources := map[string]string{
		"component.tsx": "import { Button } from './Button';\nexport const App = () => <Button />;\n",
		"module.mjs":    "export { x } from './x';\n",
		"legacy.cjs":    "const y = require('./y');\n",
		"types.mts":     "import './side-effect';\n",
	}
	for path, source := range sources {
		scan, err := NewScanner().Scan(context.Background(), path, []byte(source))
		if err != nil {
			t.Fatalf("scan %s: %v", path, err)
		}
		if len(scan.Specifiers) != 1 {
			t.Fatalf("%s: expected one specifier, got %#v", path, scan.Specifiers)
		}
		if scan.ParseError {
			t.Fatalf("%s: unexpected parse error", path)
		}
	}

	if _, err := NewScanner().Scan(context.Background(), "script.py", []byte("import os")); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
}

func TestScanReportsParseErrors(t *testing.T) {
	scan, err := NewScanner().Scan(context.Background(), "broken.ts", []byte("import { a from './a';\nconst = ;\n"))
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if !scan.ParseError {
		t.Fatalf("expected parse error flag")
	}
}

func TestIsSupportedFile(t *testing.T) {
	for path, want := range map[string]bool{
		"src/a.ts":       true,
		"src/a.TSX":      true,
		"src/a.mts":      true,
		"src/a.cjs":      true,
		"src/types.d.ts": false,
		"src/readme.md":  false,
		"src/data.json":  false,
	} {
		if got := IsSupportedFile(path); got != want {
			t.Fatalf("IsSupportedFile(%q) = %v, want %v", path, got, want)
		}
	}
	if !SkipDirectory("node_modules") || SkipDirectory("src") {
		t.Fatalf("unexpected skip directory result")
	}
}

func TestStartsWithKeyword(t *testing.T) {
	if !startsWithKeyword("with { type: 'json' }", "with") {
		t.Fatalf("expected with clause")
	}
	if !startsWithKeyword("assert{type:'json'}", "assert") {
		t.Fatalf("expected compact assert clause")
	}
	if !startsWithKeyword("with\n  { type: 'json' }", "with") {
		t.Fatalf("expected clause split across lines")
	}
	for _, text := range []string{"without", "with", ";", "assert (x)", "assert.ok(x)", "withdraw {"} {
		if startsWithKeyword(text, "with") || startsWithKeyword(text, "assert") {
			t.Fatalf("unexpected keyword match for %q", text)
		}
	}
}

func TestScanIgnoresAssertCallAfterImport(t *testing.T) {
	source := "import assert from 'node:assert'\nimport x from './x'\nassert (x)\n"
	scan, err := NewScanner().Scan(context.Background(), "asi.ts", []byte(source))
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(scan.Specifiers) != 2 {
		t.Fatalf("expected 2 specifiers, got %#v", scan.Specifiers)
	}
	local := scan.Specifiers[1]
	if local.Value != "./x" {
		t.Fatalf("expected ./x specifier, got %q", local.Value)
	}
	if local.HasAttributes {
		t.Fatalf("expected an assert call on the next line not to count as an attribute clause")
	}
}
