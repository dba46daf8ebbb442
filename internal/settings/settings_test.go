package settings

import (
	"reflect"
	"strings"
	"testing"
)

func TestDefaultsAreValid(t *testing.T) {
	defaults := Defaults()
	if err := defaults.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if defaults.AttributeKeyword != DefaultAttributeKeyword {
		t.Fatalf("expected default keyword %q, got %q", DefaultAttributeKeyword, defaults.AttributeKeyword)
	}
	if defaults.Workers < 1 || defaults.Workers > MaxWorkers {
		t.Fatalf("default workers out of range: %d", defaults.Workers)
	}
}

func TestApplyOverrides(t *testing.T) {
	keyword := " ASSERT "
	workers := 7
	include := []string{"src/**"}
	commonJS := true
	overrides := Overrides{
		AttributeKeyword: &keyword,
		Workers:          &workers,
		Include:          &include,
		CommonJS:         &commonJS,
	}

	resolved := overrides.Apply(Defaults())
	if resolved.AttributeKeyword != "assert" {
		t.Fatalf("expected normalized keyword, got %q", resolved.AttributeKeyword)
	}
	if resolved.Workers != 7 || !resolved.CommonJS {
		t.Fatalf("unexpected resolved values: %+v", resolved)
	}
	include[0] = "mutated"
	if resolved.Include[0] != "src/**" {
		t.Fatalf("expected include to be copied, got %#v", resolved.Include)
	}
	if resolved.Exclude != nil || resolved.DryRun || resolved.SkipConfigCodemods {
		t.Fatalf("expected unset fields to keep defaults: %+v", resolved)
	}
}

func TestMergePrefersHigher(t *testing.T) {
	low, high := 2, 5
	dryRun := true
	merged := Merge(Overrides{Workers: &low, DryRun: &dryRun}, Overrides{Workers: &high})
	resolved := merged.Apply(Defaults())
	if resolved.Workers != 5 {
		t.Fatalf("expected higher workers to win, got %d", resolved.Workers)
	}
	if !resolved.DryRun {
		t.Fatalf("expected lower dry_run to survive merge")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Values)
		want   string
	}{
		{name: "keyword", mutate: func(v *Values) { v.AttributeKeyword = "type" }, want: "attribute_keyword"},
		{name: "workers low", mutate: func(v *Values) { v.Workers = 0 }, want: "workers"},
		{name: "workers high", mutate: func(v *Values) { v.Workers = MaxWorkers + 1 }, want: "workers"},
		{name: "empty include", mutate: func(v *Values) { v.Include = []string{" "} }, want: "empty pattern"},
		{name: "bad exclude", mutate: func(v *Values) { v.Exclude = []string{"a/[b"} }, want: "bad pattern"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			values := Defaults()
			tc.mutate(&values)
			err := values.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q error, got %v", tc.want, err)
			}
		})
	}
}

func TestOverridesValidate(t *testing.T) {
	keyword := "With"
	if err := (&Overrides{AttributeKeyword: &keyword}).Validate(); err != nil {
		t.Fatalf("expected case-insensitive keyword, got %v", err)
	}
	workers := -1
	if err := (&Overrides{Workers: &workers}).Validate(); err == nil {
		t.Fatalf("expected negative workers to fail")
	}
	if err := (&Overrides{}).Validate(); err != nil {
		t.Fatalf("empty overrides should validate: %v", err)
	}
}

func TestApplyEmptyOverridesKeepsBase(t *testing.T) {
	base := Defaults()
	base.Exclude = []string{"legacy/**"}
	resolved := (&Overrides{}).Apply(base)
	if !reflect.DeepEqual(resolved, base) {
		t.Fatalf("expected base unchanged, got %+v", resolved)
	}
}
