package report

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatSARIF Format = "sarif"
)

const SchemaVersion = "0.1.0"

var ErrUnknownFormat = errors.New("unknown format")

func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(FormatTable):
		return FormatTable, nil
	case string(FormatJSON):
		return FormatJSON, nil
	case string(FormatSARIF):
		return FormatSARIF, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, value)
	}
}

type Report struct {
	SchemaVersion string          `json:"schemaVersion"`
	GeneratedAt   time.Time       `json:"generatedAt"`
	DryRun        bool            `json:"dryRun"`
	Projects      []ProjectReport `json:"projects"`
	Summary       Summary         `json:"summary"`
	Warnings      []string        `json:"warnings,omitempty"`
}

type ProjectReport struct {
	TSConfig      string         `json:"tsconfig"`
	RootDirectory string         `json:"rootDirectory"`
	Aliases       []string       `json:"aliases,omitempty"`
	ConfigChanges []ConfigChange `json:"configChanges,omitempty"`
	Files         []FileReport   `json:"files"`
	Summary       Summary        `json:"summary"`
	Warnings      []string       `json:"warnings,omitempty"`
}

// FileReport lists what happened to one source file. Path is relative to
// the project root.
type FileReport struct {
	Path     string    `json:"path"`
	Changed  bool      `json:"changed"`
	CommonJS *CommonJS `json:"commonjs,omitempty"`
	Rewrites []Rewrite `json:"rewrites,omitempty"`
	Error    string    `json:"error,omitempty"`
}

type CommonJS struct {
	Requires int `json:"requires"`
	Exports  int `json:"exports"`
}

type RewriteKind string

const (
	RewriteExtension RewriteKind = "extension"
	RewriteAttribute RewriteKind = "import-attribute"
)

type Rewrite struct {
	Line   int         `json:"line"`
	Column int         `json:"column"`
	Kind   RewriteKind `json:"kind"`
	From   string      `json:"from"`
	To     string      `json:"to"`
}

type ConfigChange struct {
	Path    string `json:"path"`
	Key     string `json:"key"`
	Value   string `json:"value"`
	Applied bool   `json:"applied"`
}

type Summary struct {
	CheckedFiles  int `json:"checkedFiles"`
	ModifiedFiles int `json:"modifiedFiles"`
	Rewrites      int `json:"rewrites"`
	FailedFiles   int `json:"failedFiles"`
}

func (s Summary) Add(other Summary) Summary {
	return Summary{
		CheckedFiles:  s.CheckedFiles + other.CheckedFiles,
		ModifiedFiles: s.ModifiedFiles + other.ModifiedFiles,
		Rewrites:      s.Rewrites + other.Rewrites,
		FailedFiles:   s.FailedFiles + other.FailedFiles,
	}
}

// Line renders the summary the way it is printed after each project.
func (s Summary) Line() string {
	return fmt.Sprintf("Checked \"%d\" files / Modified \"%d\" files", s.CheckedFiles, s.ModifiedFiles)
}

func ComputeSummary(files []FileReport) Summary {
	summary := Summary{CheckedFiles: len(files)}
	for _, file := range files {
		if file.Changed {
			summary.ModifiedFiles++
		}
		if file.Error != "" {
			summary.FailedFiles++
		}
		summary.Rewrites += len(file.Rewrites)
	}
	return summary
}

// Merge combines per-project reports into one run report.
func Merge(projects []ProjectReport, dryRun bool, generatedAt time.Time) Report {
	rep := Report{
		SchemaVersion: SchemaVersion,
		GeneratedAt:   generatedAt,
		DryRun:        dryRun,
		Projects:      projects,
	}
	if rep.Projects == nil {
		rep.Projects = []ProjectReport{}
	}
	for _, project := range projects {
		rep.Summary = rep.Summary.Add(project.Summary)
		rep.Warnings = append(rep.Warnings, project.Warnings...)
	}
	return rep
}
