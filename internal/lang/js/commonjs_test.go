package js

import (
	"context"
	"testing"
)

func TestConvertCommonJS(t *testing.T) {
	source := `#!/usr/bin/env node
const fs = require('fs');
const { join, resolve: res } = require("path");
const helper = require('./helper');
let conditional;
if (process.env.X) { conditional = require('./x'); }
function run() {}
module.exports.run = run;
module.exports.version = '1.0.0';
module.exports = { run };
`
	want := `#!/usr/bin/env node
import fs from 'fs';
import { join, resolve as res } from "path";
import helper from './helper';
let conditional;
if (process.env.X) { conditional = require('./x'); }
function run() {}
export const version = '1.0.0';
export default { run };
export { run };
`

	result, err := NewScanner().ConvertCommonJS(context.Background(), "cli.js", []byte(source))
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if got := string(result.Content); got != want {
		t.Fatalf("unexpected conversion:\n%s", got)
	}
	if result.Requires != 3 || result.Exports != 3 {
		t.Fatalf("unexpected counts: requires=%d exports=%d", result.Requires, result.Exports)
	}
	if !result.Changed() {
		t.Fatalf("expected change")
	}
}

func TestConvertCommonJSKeepsLastDefaultExport(t *testing.T) {
	source := "module.exports = a;\nmodule.exports = b;\n"
	result, err := NewScanner().ConvertCommonJS(context.Background(), "index.js", []byte(source))
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if got := string(result.Content); got != "export default b;\n" {
		t.Fatalf("unexpected conversion: %q", got)
	}
}

func TestConvertCommonJSSkipsUnsupportedShapes(t *testing.T) {
	source := "const { a = 1 } = require('./a');\nconst b = require(name);\nconst c = require('./c'), d = 2;\nmodule.exports.class = 1;\n"
	result, err := NewScanner().ConvertCommonJS(context.Background(), "index.js", []byte(source))
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if result.Changed() || string(result.Content) != source {
		t.Fatalf("expected source untouched, got %q", result.Content)
	}
}

func TestConvertCommonJSAppendsNewlineBeforeExports(t *testing.T) {
	source := "const x = 1;\nmodule.exports.x = x;"
	result, err := NewScanner().ConvertCommonJS(context.Background(), "index.ts", []byte(source))
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if got := string(result.Content); got != "const x = 1;\n\nexport { x };\n" {
		t.Fatalf("unexpected conversion: %q", got)
	}
}

func convertCommonJSSource(t *testing.T, source string) CommonJSResult {
	t.Helper()
	result, err := NewScanner().ConvertCommonJS(context.Background(), "index.js", []byte(source))
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	return result
}

func TestConvertCommonJSDefaultProperty(t *testing.T) {
	result := convertCommonJSSource(t, "module.exports.default = 1;\n")
	if got := string(result.Content); got != "export default 1;\n" {
		t.Fatalf("unexpected conversion: %q", got)
	}
	if result.Exports != 1 {
		t.Fatalf("expected one export, got %d", result.Exports)
	}
}

func TestConvertCommonJSRepeatedShorthandExport(t *testing.T) {
	result := convertCommonJSSource(t, "const a = 1;\nmodule.exports.a = a;\nmodule.exports.a = a;\n")
	if got := string(result.Content); got != "const a = 1;\nexport { a };\n" {
		t.Fatalf("expected a single export statement, got %q", got)
	}
}

func TestConvertCommonJSRepeatedNamedExportKeepsSecondAssignment(t *testing.T) {
	result := convertCommonJSSource(t, "module.exports.a = 1;\nmodule.exports.a = 2;\n")
	if got := string(result.Content); got != "export const a = 1;\nmodule.exports.a = 2;\n" {
		t.Fatalf("unexpected conversion: %q", got)
	}
	if result.Exports != 1 {
		t.Fatalf("expected one export, got %d", result.Exports)
	}
}

func TestConvertCommonJSShorthandAfterConstExport(t *testing.T) {
	result := convertCommonJSSource(t, "module.exports.a = 1;\nmodule.exports.a = a;\n")
	if got := string(result.Content); got != "export const a = 1;\n" {
		t.Fatalf("unexpected conversion: %q", got)
	}
}

func TestConvertCommonJSExportsShortcut(t *testing.T) {
	result := convertCommonJSSource(t, "exports.e = 1;\nexports.f = f;\n")
	if got := string(result.Content); got != "export const e = 1;\nexport { f };\n" {
		t.Fatalf("unexpected conversion: %q", got)
	}
	if result.Exports != 2 {
		t.Fatalf("expected two exports, got %d", result.Exports)
	}
}
