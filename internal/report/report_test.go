package report

import (
	"errors"
	"testing"
	"time"
)

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{
		"":       FormatTable,
		"table":  FormatTable,
		" JSON ": FormatJSON,
		"sarif":  FormatSARIF,
	}
	for input, want := range cases {
		got, err := ParseFormat(input)
		if err != nil {
			t.Fatalf("parse %q: %v", input, err)
		}
		if got != want {
			t.Fatalf("parse %q: expected %q, got %q", input, want, got)
		}
	}
	if _, err := ParseFormat("xml"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestComputeSummary(t *testing.T) {
	summary := sampleReport().Projects[0].Summary
	want := Summary{CheckedFiles: 4, ModifiedFiles: 2, Rewrites: 2, FailedFiles: 1}
	if summary != want {
		t.Fatalf("expected %+v, got %+v", want, summary)
	}
}

func TestSummaryLine(t *testing.T) {
	got := Summary{CheckedFiles: 12, ModifiedFiles: 3}.Line()
	if got != `Checked "12" files / Modified "3" files` {
		t.Fatalf("unexpected summary line %q", got)
	}
}

func TestMergeAggregatesProjects(t *testing.T) {
	first := ProjectReport{Summary: Summary{CheckedFiles: 2, ModifiedFiles: 1}, Warnings: []string{"a"}}
	second := ProjectReport{Summary: Summary{CheckedFiles: 3, Rewrites: 4}, Warnings: []string{"b"}}

	rep := Merge([]ProjectReport{first, second}, true, time.Time{})
	if rep.Summary != (Summary{CheckedFiles: 5, ModifiedFiles: 1, Rewrites: 4}) {
		t.Fatalf("unexpected merged summary %+v", rep.Summary)
	}
	if len(rep.Warnings) != 2 || rep.Warnings[0] != "a" || rep.Warnings[1] != "b" {
		t.Fatalf("expected warnings in project order, got %#v", rep.Warnings)
	}
	if !rep.DryRun || rep.SchemaVersion != SchemaVersion {
		t.Fatalf("unexpected report header %+v", rep)
	}
}

func TestMergeWithoutProjects(t *testing.T) {
	rep := Merge(nil, false, time.Time{})
	if rep.Projects == nil || len(rep.Projects) != 0 {
		t.Fatalf("expected empty project list, got %#v", rep.Projects)
	}
}
