package cli

import (
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/ben-ranford/tsesm/internal/app"
	"github.com/ben-ranford/tsesm/internal/report"
)

var ErrHelpRequested = errors.New("help requested")

const (
	flagDryRun           = "dry-run"
	flagCheck            = "check"
	flagDebug            = "debug"
	flagFormat           = "format"
	flagConfig           = "config"
	flagAttributeKeyword = "attribute-keyword"
	flagWorkers          = "workers"
	flagCommonJS         = "commonjs"
	flagYes              = "yes"
	flagBundler          = "bundler"
	flagSkipConfig       = "skip-config"
	flagInclude          = "include"
	flagExclude          = "exclude"
)

type flagValues struct {
	dryRun           bool
	check            bool
	debug            bool
	format           string
	config           string
	attributeKeyword string
	workers          int
	commonJS         bool
	yes              bool
	bundler          bool
	skipConfig       bool
	include          []string
	exclude          []string
}

// ParseArgs turns command line arguments into an app request. Settings
// overrides are only populated for flags that were passed explicitly so a
// settings file can still supply the rest.
func ParseArgs(args []string) (app.Request, error) {
	req := app.DefaultRequest()
	helpRequested := false

	cmd := newRootCommand(&req)
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetHelpFunc(func(*cobra.Command, []string) {
		helpRequested = true
	})

	if err := cmd.Execute(); err != nil {
		return req, err
	}
	if helpRequested {
		return req, ErrHelpRequested
	}
	return req, nil
}

func newRootCommand(req *app.Request) *cobra.Command {
	values := &flagValues{}
	cmd := &cobra.Command{
		Use:           "tsesm [tsconfig.json ...]",
		Short:         "Add explicit file extensions to TypeScript ESM import specifiers",
		Long:          longDescription,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return buildRequest(cmd, args, values, req)
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	flags := cmd.Flags()
	flags.BoolVar(&values.dryRun, flagDryRun, false, "report changes without writing files")
	flags.BoolVar(&values.check, flagCheck, false, "exit with code 3 when any file or config would change (implies --dry-run)")
	flags.BoolVar(&values.debug, flagDebug, false, "enable debug logging")
	flags.StringVar(&values.format, flagFormat, string(report.FormatTable), "output format: table, json or sarif")
	flags.StringVar(&values.config, flagConfig, "", "path to a settings file (default: discovered next to the tsconfig)")
	flags.StringVar(&values.attributeKeyword, flagAttributeKeyword, "", "import attribute keyword: with or assert")
	flags.IntVar(&values.workers, flagWorkers, 0, "number of files converted concurrently")
	flags.BoolVar(&values.commonJS, flagCommonJS, false, "convert require() and module.exports/exports assignments to ESM syntax first")
	flags.BoolVarP(&values.yes, flagYes, "y", false, "accept every proposed config change without asking")
	flags.BoolVar(&values.bundler, flagBundler, false, "answer the bundler question for tsconfig changes (use --bundler=false for node)")
	flags.BoolVar(&values.skipConfig, flagSkipConfig, false, "do not propose tsconfig.json or package.json changes")
	flags.StringSliceVar(&values.include, flagInclude, nil, "only convert files matching these glob patterns (repeatable)")
	flags.StringSliceVar(&values.exclude, flagExclude, nil, "skip files matching these glob patterns (repeatable)")
	return cmd
}

func buildRequest(cmd *cobra.Command, args []string, values *flagValues, req *app.Request) error {
	format, err := report.ParseFormat(values.format)
	if err != nil {
		return err
	}

	req.TSConfigs = append([]string(nil), args...)
	req.Format = format
	req.ConfigPath = values.config
	req.Debug = values.debug
	req.AssumeYes = values.yes
	if values.check {
		req.Mode = app.ModeCheck
	}

	changed := cmd.Flags().Changed
	if changed(flagBundler) {
		bundler := values.bundler
		req.Bundler = &bundler
	}
	if changed(flagDryRun) {
		req.Overrides.DryRun = boolPtr(values.dryRun)
	}
	if changed(flagAttributeKeyword) {
		keyword := values.attributeKeyword
		req.Overrides.AttributeKeyword = &keyword
	}
	if changed(flagWorkers) {
		workers := values.workers
		req.Overrides.Workers = &workers
	}
	if changed(flagCommonJS) {
		req.Overrides.CommonJS = boolPtr(values.commonJS)
	}
	if changed(flagSkipConfig) {
		req.Overrides.SkipConfigCodemods = boolPtr(values.skipConfig)
	}
	if changed(flagInclude) {
		include := append([]string(nil), values.include...)
		req.Overrides.Include = &include
	}
	if changed(flagExclude) {
		exclude := append([]string(nil), values.exclude...)
		req.Overrides.Exclude = &exclude
	}
	return req.Overrides.Validate()
}

func boolPtr(value bool) *bool {
	return &value
}
