package settings

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	DefaultAttributeKeyword = "with"
	MaxWorkers              = 256
)

var attributeKeywordValues = []string{"with", "assert"}

type Values struct {
	AttributeKeyword   string
	Workers            int
	Include            []string
	Exclude            []string
	CommonJS           bool
	SkipConfigCodemods bool
	DryRun             bool
}

type Overrides struct {
	AttributeKeyword   *string
	Workers            *int
	Include            *[]string
	Exclude            *[]string
	CommonJS           *bool
	SkipConfigCodemods *bool
	DryRun             *bool
}

func Defaults() Values {
	return Values{
		AttributeKeyword: DefaultAttributeKeyword,
		Workers:          DefaultWorkers(),
	}
}

func DefaultWorkers() int {
	workers := runtime.NumCPU()
	if workers > MaxWorkers {
		return MaxWorkers
	}
	if workers < 1 {
		return 1
	}
	return workers
}

func (v *Values) Validate() error {
	if err := validateAttributeKeyword(v.AttributeKeyword); err != nil {
		return err
	}
	if err := validateWorkers(v.Workers); err != nil {
		return err
	}
	if err := validatePatterns("include", v.Include); err != nil {
		return err
	}
	return validatePatterns("exclude", v.Exclude)
}

func (o Overrides) Apply(base Values) Values {
	resolved := base
	if o.AttributeKeyword != nil {
		resolved.AttributeKeyword = strings.ToLower(strings.TrimSpace(*o.AttributeKeyword))
	}
	if o.Workers != nil {
		resolved.Workers = *o.Workers
	}
	if o.Include != nil {
		resolved.Include = append([]string(nil), (*o.Include)...)
	}
	if o.Exclude != nil {
		resolved.Exclude = append([]string(nil), (*o.Exclude)...)
	}
	if o.CommonJS != nil {
		resolved.CommonJS = *o.CommonJS
	}
	if o.SkipConfigCodemods != nil {
		resolved.SkipConfigCodemods = *o.SkipConfigCodemods
	}
	if o.DryRun != nil {
		resolved.DryRun = *o.DryRun
	}
	return resolved
}

// Merge returns base with every field set in higher taking precedence.
func Merge(base, higher Overrides) Overrides {
	merged := base
	if higher.AttributeKeyword != nil {
		merged.AttributeKeyword = higher.AttributeKeyword
	}
	if higher.Workers != nil {
		merged.Workers = higher.Workers
	}
	if higher.Include != nil {
		merged.Include = higher.Include
	}
	if higher.Exclude != nil {
		merged.Exclude = higher.Exclude
	}
	if higher.CommonJS != nil {
		merged.CommonJS = higher.CommonJS
	}
	if higher.SkipConfigCodemods != nil {
		merged.SkipConfigCodemods = higher.SkipConfigCodemods
	}
	if higher.DryRun != nil {
		merged.DryRun = higher.DryRun
	}
	return merged
}

func (o Overrides) Validate() error {
	if o.AttributeKeyword != nil {
		if err := validateAttributeKeyword(strings.ToLower(strings.TrimSpace(*o.AttributeKeyword))); err != nil {
			return err
		}
	}
	if o.Workers != nil {
		if err := validateWorkers(*o.Workers); err != nil {
			return err
		}
	}
	if o.Include != nil {
		if err := validatePatterns("include", *o.Include); err != nil {
			return err
		}
	}
	if o.Exclude != nil {
		if err := validatePatterns("exclude", *o.Exclude); err != nil {
			return err
		}
	}
	return nil
}

func validateAttributeKeyword(value string) error {
	for _, allowed := range attributeKeywordValues {
		if value == allowed {
			return nil
		}
	}
	return fmt.Errorf("invalid setting attribute_keyword: %q (must be one of: %s)", value, strings.Join(attributeKeywordValues, ", "))
}

func validateWorkers(value int) error {
	if value < 1 || value > MaxWorkers {
		return fmt.Errorf("invalid setting workers: %d (must be between 1 and %d)", value, MaxWorkers)
	}
	return nil
}

func validatePatterns(name string, patterns []string) error {
	for _, pattern := range patterns {
		if strings.TrimSpace(pattern) == "" {
			return fmt.Errorf("invalid setting %s: empty pattern", name)
		}
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid setting %s: bad pattern %q", name, pattern)
		}
	}
	return nil
}
