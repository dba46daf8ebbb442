package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
)

type Formatter struct{}

func NewFormatter() Formatter {
	return Formatter{}
}

func (f Formatter) Format(report Report, format Format) (string, error) {
	switch format {
	case FormatTable:
		return formatTable(report), nil
	case FormatJSON:
		payload, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return "", err
		}
		return string(payload) + "\n", nil
	case FormatSARIF:
		return formatSARIF(report)
	default:
		return "", ErrUnknownFormat
	}
}

func formatTable(report Report) string {
	var buffer bytes.Buffer
	if len(report.Projects) == 0 {
		buffer.WriteString("No projects processed.\n")
	}
	for i, project := range report.Projects {
		if i > 0 {
			buffer.WriteString("\n")
		}
		appendProject(&buffer, project, report.DryRun)
	}
	if len(report.Projects) > 1 {
		_, _ = fmt.Fprintf(&buffer, "\nTotal: %s\n", report.Summary.Line())
	}
	appendWarnings(&buffer, report.Warnings)
	return buffer.String()
}

func appendProject(buffer *bytes.Buffer, project ProjectReport, dryRun bool) {
	_, _ = fmt.Fprintf(buffer, "Processing: %s\n", project.TSConfig)
	if len(project.Aliases) > 0 {
		_, _ = fmt.Fprintf(buffer, "Path aliases: %s\n", strings.Join(project.Aliases, ", "))
	}
	appendConfigChanges(buffer, project.ConfigChanges)

	rows := rewriteRows(project.Files)
	if len(rows) > 0 {
		buffer.WriteString("\n")
		writer := tabwriter.NewWriter(buffer, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(writer, "File\tLocation\tKind\tFrom\tTo")
		for _, row := range rows {
			_, _ = fmt.Fprintln(writer, row)
		}
		_ = writer.Flush()
		buffer.WriteString("\n")
	}

	suffix := ""
	if dryRun {
		suffix = " (dry run)"
	}
	_, _ = fmt.Fprintf(buffer, "%s%s\n", project.Summary.Line(), suffix)
}

func rewriteRows(files []FileReport) []string {
	rows := make([]string, 0)
	for _, file := range files {
		if file.CommonJS != nil {
			rows = append(rows, strings.Join([]string{
				file.Path,
				"-",
				"commonjs",
				fmt.Sprintf("%d require, %d exports", file.CommonJS.Requires, file.CommonJS.Exports),
				"esm",
			}, "\t"))
		}
		for _, rewrite := range file.Rewrites {
			rows = append(rows, strings.Join([]string{
				file.Path,
				fmt.Sprintf("%d:%d", rewrite.Line, rewrite.Column),
				string(rewrite.Kind),
				rewrite.From,
				rewrite.To,
			}, "\t"))
		}
	}
	return rows
}

func appendConfigChanges(buffer *bytes.Buffer, changes []ConfigChange) {
	if len(changes) == 0 {
		return
	}
	buffer.WriteString("Config changes:\n")
	for _, change := range changes {
		state := "skipped"
		if change.Applied {
			state = "applied"
		}
		_, _ = fmt.Fprintf(buffer, "- %s %s = %q (%s)\n", change.Path, change.Key, change.Value, state)
	}
}

func appendWarnings(buffer *bytes.Buffer, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	buffer.WriteString("\nWarnings:\n")
	for _, warning := range warnings {
		buffer.WriteString("- ")
		buffer.WriteString(warning)
		buffer.WriteString("\n")
	}
}
