package report

import (
	"strings"
	"testing"

	"github.com/tidwall/gjson"
)

func TestFormatSARIF(t *testing.T) {
	output, err := NewFormatter().Format(sampleReport(), FormatSARIF)
	if err != nil {
		t.Fatalf("format sarif: %v", err)
	}
	if !gjson.Valid(output) {
		t.Fatalf("expected valid json:\n%s", output)
	}

	if got := gjson.Get(output, "version").String(); got != sarifVersion {
		t.Fatalf("expected sarif version %s, got %s", sarifVersion, got)
	}
	if got := gjson.Get(output, "runs.0.tool.driver.name").String(); got != "tsesm" {
		t.Fatalf("unexpected driver name %q", got)
	}

	rules := gjson.Get(output, "runs.0.tool.driver.rules.#.id").Array()
	gotRules := make([]string, 0, len(rules))
	for _, rule := range rules {
		gotRules = append(gotRules, rule.String())
	}
	wantRules := []string{ruleConfig, ruleFileError, ruleCommonJS, ruleExtension, ruleAttribute}
	if strings.Join(gotRules, ",") != strings.Join(wantRules, ",") {
		t.Fatalf("expected rules %v, got %v", wantRules, gotRules)
	}

	results := gjson.Get(output, "runs.0.results").Array()
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}
	first := results[0]
	if first.Get("ruleId").String() != ruleConfig || first.Get("locations.0.physicalLocation.artifactLocation.uri").String() != "/project/package.json" {
		t.Fatalf("expected config result first, got %s", first.Raw)
	}
	last := results[4]
	if last.Get("ruleId").String() != ruleAttribute || last.Get("locations.0.physicalLocation.region.startLine").Int() != 2 {
		t.Fatalf("expected attribute rewrite last, got %s", last.Raw)
	}
}

func TestNormalizeSARIFURI(t *testing.T) {
	cases := map[string]string{
		"./src/a.ts":  "src/a.ts",
		"src//b.ts":   "src/b.ts",
		".":           "",
		" /abs/c.ts ": "/abs/c.ts",
	}
	for input, want := range cases {
		if got := normalizeSARIFURI(input); got != want {
			t.Fatalf("normalize %q: expected %q, got %q", input, want, got)
		}
	}
}
