package report

import (
	"encoding/json"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

const (
	sarifSchemaURI = "https://json.schemastore.org/sarif-2.1.0.json"
	sarifVersion   = "2.1.0"
)

const (
	ruleExtension = "tsesm/specifier/extension"
	ruleAttribute = "tsesm/specifier/import-attribute"
	ruleCommonJS  = "tsesm/module/commonjs"
	ruleFileError = "tsesm/file/error"
	ruleConfig    = "tsesm/config/esm"
)

var sarifRules = map[string]sarifRule{
	ruleExtension: {
		ID:               ruleExtension,
		Name:             "add-file-extension",
		ShortDescription: sarifMessage{Text: "Module specifier is not fully specified"},
		Help:             &sarifMessage{Text: "ES modules require relative and aliased specifiers to name the emitted file, including its extension."},
	},
	ruleAttribute: {
		ID:               ruleAttribute,
		Name:             "add-import-attribute",
		ShortDescription: sarifMessage{Text: "JSON or CSS import without an import attribute"},
		Help:             &sarifMessage{Text: "Non-JavaScript modules must be imported with a type attribute."},
	},
	ruleCommonJS: {
		ID:               ruleCommonJS,
		Name:             "convert-commonjs",
		ShortDescription: sarifMessage{Text: "CommonJS module syntax"},
		Help:             &sarifMessage{Text: "require() and module.exports are not available in ES modules."},
	},
	ruleFileError: {
		ID:               ruleFileError,
		Name:             "file-error",
		ShortDescription: sarifMessage{Text: "File could not be converted"},
	},
	ruleConfig: {
		ID:               ruleConfig,
		Name:             "esm-config",
		ShortDescription: sarifMessage{Text: "Project configuration is not set up for ESM"},
	},
}

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	InformationURI string      `json:"informationUri,omitempty"`
	Version        string      `json:"version,omitempty"`
	Rules          []sarifRule `json:"rules,omitempty"`
}

type sarifRule struct {
	ID               string        `json:"id"`
	Name             string        `json:"name,omitempty"`
	ShortDescription sarifMessage  `json:"shortDescription"`
	Help             *sarifMessage `json:"help,omitempty"`
}

type sarifResult struct {
	RuleID     string                 `json:"ruleId"`
	Level      string                 `json:"level,omitempty"`
	Message    sarifMessage           `json:"message"`
	Locations  []sarifLocation        `json:"locations,omitempty"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           *sarifRegion          `json:"region,omitempty"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine,omitempty"`
	StartColumn int `json:"startColumn,omitempty"`
}

func formatSARIF(rep Report) (string, error) {
	results, ruleIDs := buildSARIFResults(rep)
	rules := make([]sarifRule, 0, len(ruleIDs))
	for _, id := range ruleIDs {
		rules = append(rules, sarifRules[id])
	}

	log := sarifLog{
		Schema:  sarifSchemaURI,
		Version: sarifVersion,
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:           "tsesm",
						InformationURI: "https://github.com/ben-ranford/tsesm",
						Version:        reportVersion(rep),
						Rules:          rules,
					},
				},
				Results: results,
			},
		},
	}

	payload, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return "", err
	}
	return string(payload) + "\n", nil
}

func reportVersion(rep Report) string {
	version := strings.TrimSpace(rep.SchemaVersion)
	if version == "" {
		version = SchemaVersion
	}
	return version
}

func buildSARIFResults(rep Report) ([]sarifResult, []string) {
	results := make([]sarifResult, 0)
	used := make(map[string]struct{})
	add := func(result sarifResult) {
		used[result.RuleID] = struct{}{}
		results = append(results, result)
	}

	for _, project := range rep.Projects {
		for _, change := range project.ConfigChanges {
			add(sarifResult{
				RuleID:    ruleConfig,
				Level:     "warning",
				Message:   sarifMessage{Text: fmt.Sprintf("Set %s to %q.", change.Key, change.Value)},
				Locations: []sarifLocation{fileLocation(normalizeSARIFURI(change.Path), 0, 0)},
				Properties: map[string]interface{}{
					"applied": change.Applied,
				},
			})
		}
		for _, file := range project.Files {
			uri := normalizeSARIFURI(file.Path)
			if file.Error != "" {
				add(sarifResult{
					RuleID:    ruleFileError,
					Level:     "error",
					Message:   sarifMessage{Text: file.Error},
					Locations: []sarifLocation{fileLocation(uri, 0, 0)},
				})
			}
			if file.CommonJS != nil {
				add(sarifResult{
					RuleID:    ruleCommonJS,
					Level:     "note",
					Message:   sarifMessage{Text: fmt.Sprintf("Converted %d require declarations and %d exports.", file.CommonJS.Requires, file.CommonJS.Exports)},
					Locations: []sarifLocation{fileLocation(uri, 0, 0)},
				})
			}
			for _, rewrite := range file.Rewrites {
				ruleID := ruleExtension
				if rewrite.Kind == RewriteAttribute {
					ruleID = ruleAttribute
				}
				add(sarifResult{
					RuleID:    ruleID,
					Level:     "note",
					Message:   sarifMessage{Text: fmt.Sprintf("Rewrite %s to %s.", rewrite.From, rewrite.To)},
					Locations: []sarifLocation{fileLocation(uri, rewrite.Line, rewrite.Column)},
					Properties: map[string]interface{}{
						"from": rewrite.From,
						"to":   rewrite.To,
					},
				})
			}
		}
	}

	sortSARIFResults(results)
	ids := make([]string, 0, len(used))
	for id := range used {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return results, ids
}

func fileLocation(uri string, line, column int) sarifLocation {
	location := sarifLocation{PhysicalLocation: sarifPhysicalLocation{ArtifactLocation: sarifArtifactLocation{URI: uri}}}
	if line > 0 {
		location.PhysicalLocation.Region = &sarifRegion{StartLine: line, StartColumn: column}
	}
	return location
}

func sortSARIFResults(results []sarifResult) {
	sort.SliceStable(results, func(i, j int) bool {
		left, right := resultLocationKey(results[i]), resultLocationKey(results[j])
		if left != right {
			return left < right
		}
		return results[i].RuleID < results[j].RuleID
	})
}

func resultLocationKey(result sarifResult) string {
	if len(result.Locations) == 0 {
		return ""
	}
	loc := result.Locations[0]
	line, col := 0, 0
	if loc.PhysicalLocation.Region != nil {
		line = loc.PhysicalLocation.Region.StartLine
		col = loc.PhysicalLocation.Region.StartColumn
	}
	return fmt.Sprintf("%s:%08d:%08d", loc.PhysicalLocation.ArtifactLocation.URI, line, col)
}

func normalizeSARIFURI(value string) string {
	cleaned := path.Clean(filepath.ToSlash(strings.TrimSpace(value)))
	if cleaned == "." {
		return ""
	}
	return strings.TrimPrefix(cleaned, "./")
}
