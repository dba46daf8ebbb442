package app

import (
	"github.com/ben-ranford/tsesm/internal/report"
	"github.com/ben-ranford/tsesm/internal/settings"
)

type Mode string

const (
	ModeConvert Mode = "convert"
	ModeCheck   Mode = "check"
)

type Request struct {
	Mode       Mode
	TSConfigs  []string
	Format     report.Format
	ConfigPath string
	Debug      bool
	// Bundler answers the bundler question of the tsconfig codemod up
	// front. nil means ask.
	Bundler   *bool
	AssumeYes bool
	Overrides settings.Overrides
}

func DefaultRequest() Request {
	return Request{
		Mode:   ModeConvert,
		Format: report.FormatTable,
	}
}
