package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ben-ranford/tsesm/internal/safeio"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const (
	readConfigFileErrFmt = "read config file %s: %w"
	parseConfigErrFmt    = "parse config file %s: %w"
)

// ConfigNames are looked up in the project directory, first match wins.
var ConfigNames = []string{".tsesm.yml", ".tsesm.yaml", ".tsesm.toml", "tsesm.json"}

type LoadResult struct {
	Overrides  Overrides
	Resolved   Values
	ConfigPath string
}

// Load finds and parses the settings file for projectDir. An explicit path
// must exist; without one a missing file yields the defaults.
func Load(fsys afero.Fs, projectDir, explicitPath string) (LoadResult, error) {
	projectAbs, err := filepath.Abs(projectDir)
	if err != nil {
		return LoadResult{}, fmt.Errorf("resolve project path: %w", err)
	}
	explicitPath = strings.TrimSpace(explicitPath)

	configPath, found, err := resolveConfigPath(fsys, projectAbs, explicitPath)
	if err != nil {
		return LoadResult{}, err
	}
	if !found {
		return LoadResult{Resolved: Defaults()}, nil
	}

	data, err := readConfigFile(fsys, projectAbs, configPath)
	if err != nil {
		return LoadResult{}, fmt.Errorf(readConfigFileErrFmt, configPath, err)
	}
	cfg, err := parseConfig(configPath, data)
	if err != nil {
		return LoadResult{}, fmt.Errorf(parseConfigErrFmt, configPath, err)
	}

	overrides := cfg.toOverrides()
	if err := overrides.Validate(); err != nil {
		return LoadResult{}, fmt.Errorf(parseConfigErrFmt, configPath, err)
	}
	resolved := overrides.Apply(Defaults())
	if err := resolved.Validate(); err != nil {
		return LoadResult{}, fmt.Errorf(parseConfigErrFmt, configPath, err)
	}

	return LoadResult{
		Overrides:  overrides,
		Resolved:   resolved,
		ConfigPath: configPath,
	}, nil
}

func resolveConfigPath(fsys afero.Fs, projectDir, explicitPath string) (string, bool, error) {
	if explicitPath != "" {
		candidate := explicitPath
		if !filepath.IsAbs(candidate) {
			candidate = filepath.Join(projectDir, candidate)
		}
		candidate = filepath.Clean(candidate)
		if _, err := fsys.Stat(candidate); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return "", false, fmt.Errorf("config file not found: %s", candidate)
			}
			return "", false, fmt.Errorf(readConfigFileErrFmt, candidate, err)
		}
		return candidate, true, nil
	}

	for _, name := range ConfigNames {
		candidate := filepath.Join(projectDir, name)
		if _, err := fsys.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf(readConfigFileErrFmt, candidate, err)
		}
	}
	return "", false, nil
}

func readConfigFile(fsys afero.Fs, projectDir, path string) ([]byte, error) {
	if isPathUnderRoot(projectDir, path) {
		return safeio.ReadFileUnder(fsys, projectDir, path)
	}
	return safeio.ReadFile(fsys, path)
}

func isPathUnderRoot(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func parseConfig(path string, data []byte) (rawConfig, error) {
	var cfg rawConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return rawConfig{}, fmt.Errorf("invalid JSON config: %w", err)
		}
		if decoder.More() {
			return rawConfig{}, fmt.Errorf("invalid JSON config: multiple JSON values")
		}
	case ".toml":
		decoder := toml.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return rawConfig{}, fmt.Errorf("invalid TOML config: %w", err)
		}
	default:
		if len(bytes.TrimSpace(data)) == 0 {
			return cfg, nil
		}
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil {
			return rawConfig{}, fmt.Errorf("invalid YAML config: %w", err)
		}
	}
	return cfg, nil
}

type rawConfig struct {
	AttributeKeyword   *string   `yaml:"attribute_keyword" json:"attribute_keyword" toml:"attribute_keyword"`
	Workers            *int      `yaml:"workers" json:"workers" toml:"workers"`
	Include            *[]string `yaml:"include" json:"include" toml:"include"`
	Exclude            *[]string `yaml:"exclude" json:"exclude" toml:"exclude"`
	CommonJS           *bool     `yaml:"commonjs" json:"commonjs" toml:"commonjs"`
	SkipConfigCodemods *bool     `yaml:"skip_config_codemods" json:"skip_config_codemods" toml:"skip_config_codemods"`
	DryRun             *bool     `yaml:"dry_run" json:"dry_run" toml:"dry_run"`
}

func (c *rawConfig) toOverrides() Overrides {
	overrides := Overrides{
		AttributeKeyword:   c.AttributeKeyword,
		Workers:            c.Workers,
		CommonJS:           c.CommonJS,
		SkipConfigCodemods: c.SkipConfigCodemods,
		DryRun:             c.DryRun,
	}
	if c.Include != nil {
		include := normalizePathPatterns(*c.Include)
		overrides.Include = &include
	}
	if c.Exclude != nil {
		exclude := normalizePathPatterns(*c.Exclude)
		overrides.Exclude = &exclude
	}
	return overrides
}

func normalizePathPatterns(patterns []string) []string {
	seen := make(map[string]struct{}, len(patterns))
	normalized := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		trimmed := filepath.ToSlash(strings.TrimSpace(pattern))
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		normalized = append(normalized, trimmed)
	}
	return normalized
}
