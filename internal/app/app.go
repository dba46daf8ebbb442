package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ben-ranford/tsesm/internal/codemod"
	"github.com/ben-ranford/tsesm/internal/convert"
	"github.com/ben-ranford/tsesm/internal/project"
	"github.com/ben-ranford/tsesm/internal/report"
	"github.com/ben-ranford/tsesm/internal/resolver"
	"github.com/ben-ranford/tsesm/internal/settings"
	"github.com/ben-ranford/tsesm/internal/ui"
	"github.com/ben-ranford/tsesm/internal/workspace"
	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

var (
	ErrUnknownMode     = errors.New("unknown mode")
	ErrChangesRequired = errors.New("project is not fully converted to ESM")
)

const tsconfigQuestion = "Please enter the path to your TypeScript configuration file (tsconfig.json)."

// Converter runs the specifier conversion for one project.
type Converter interface {
	Convert(ctx context.Context, host convert.Host, opts convert.Options) (report.ProjectReport, error)
}

type App struct {
	FS        afero.Fs
	Converter Converter
	Formatter report.Formatter
	Prompter  ui.Prompter
	Logger    *log.Logger
	Out       io.Writer
	Now       func() time.Time
}

func New(out io.Writer, errOut io.Writer, in io.Reader) *App {
	fsys := afero.NewOsFs()
	logger := log.NewWithOptions(errOut, log.Options{Prefix: "tsesm"})
	return &App{
		FS:        fsys,
		Converter: convert.NewService(fsys, logger),
		Formatter: report.NewFormatter(),
		Prompter:  ui.NewConsole(out, in),
		Logger:    logger,
		Out:       out,
		Now:       time.Now,
	}
}

func (a *App) Execute(ctx context.Context, req Request) (string, error) {
	switch req.Mode {
	case ModeConvert, ModeCheck:
	default:
		return "", ErrUnknownMode
	}
	if req.Debug {
		a.Logger.SetLevel(log.DebugLevel)
	}
	prompter := a.Prompter
	if req.AssumeYes {
		prompter = ui.Unattended{Answer: true}
	}

	configs := req.TSConfigs
	if len(configs) == 0 {
		answer, err := prompter.Input(tsconfigQuestion, workspace.DefaultConfigName)
		if err != nil {
			return "", fmt.Errorf("read tsconfig path: %w", err)
		}
		configs = []string{answer}
	}

	projects := make([]report.ProjectReport, 0, len(configs))
	dryRun := req.Mode == ModeCheck
	for _, configArg := range configs {
		projectReport, values, err := a.executeProject(ctx, req, prompter, configArg)
		if err != nil {
			return "", err
		}
		dryRun = dryRun || values.DryRun
		projects = append(projects, projectReport)
	}

	reportData := report.Merge(projects, dryRun, a.Now())
	formatted, err := a.Formatter.Format(reportData, req.Format)
	if err != nil {
		return "", err
	}
	if req.Mode == ModeCheck && needsChanges(reportData) {
		return formatted, ErrChangesRequired
	}
	return formatted, nil
}

func (a *App) executeProject(ctx context.Context, req Request, prompter ui.Prompter, configArg string) (report.ProjectReport, settings.Values, error) {
	tsconfigPath, err := workspace.NormalizeConfigPath(a.FS, configArg)
	if err != nil {
		return report.ProjectReport{}, settings.Values{}, err
	}
	projectDir := workspace.ProjectDirectory(tsconfigPath)
	a.Logger.Debug("processing", "tsconfig", tsconfigPath)

	values, err := a.resolveSettings(projectDir, req)
	if err != nil {
		return report.ProjectReport{}, settings.Values{}, err
	}
	if req.Mode == ModeCheck {
		values.DryRun = true
	}

	proj, err := project.Load(a.FS, tsconfigPath)
	if err != nil {
		return report.ProjectReport{}, values, fmt.Errorf("load project: %w", err)
	}

	changes, warnings, err := a.runCodemods(proj, values, req.Bundler, prompter)
	if err != nil {
		return report.ProjectReport{}, values, err
	}

	keyword, err := resolver.ParseAttributeKeyword(values.AttributeKeyword)
	if err != nil {
		return report.ProjectReport{}, values, err
	}
	projectReport, err := a.Converter.Convert(ctx, proj, convert.Options{
		DryRun:   values.DryRun,
		CommonJS: values.CommonJS,
		Workers:  values.Workers,
		Keyword:  keyword,
		Include:  values.Include,
		Exclude:  values.Exclude,
	})
	if err != nil {
		return report.ProjectReport{}, values, fmt.Errorf("convert %s: %w", tsconfigPath, err)
	}
	projectReport.TSConfig = tsconfigPath
	projectReport.ConfigChanges = changes
	projectReport.Warnings = append(warnings, projectReport.Warnings...)
	return projectReport, values, nil
}

// resolveSettings layers defaults, the settings file and command line
// overrides, in that order.
func (a *App) resolveSettings(projectDir string, req Request) (settings.Values, error) {
	loaded, err := settings.Load(a.FS, projectDir, req.ConfigPath)
	if err != nil {
		return settings.Values{}, err
	}
	if loaded.ConfigPath != "" {
		a.Logger.Debug("loaded settings", "path", loaded.ConfigPath)
	}
	if err := req.Overrides.Validate(); err != nil {
		return settings.Values{}, err
	}
	values := settings.Merge(loaded.Overrides, req.Overrides).Apply(settings.Defaults())
	if err := values.Validate(); err != nil {
		return settings.Values{}, err
	}
	return values, nil
}

func (a *App) runCodemods(proj *project.Project, values settings.Values, bundler *bool, prompter ui.Prompter) ([]report.ConfigChange, []string, error) {
	if values.SkipConfigCodemods {
		return nil, nil, nil
	}
	runner := codemod.NewRunner(a.FS, prompter, a.Out, values.DryRun)

	outcomes, err := runner.ConvertTSConfig(proj.TSConfig(), bundler)
	if err == nil {
		var outcome codemod.Outcome
		outcome, err = runner.ConvertPackageJSON(proj.RootDirectory())
		outcomes = append(outcomes, outcome)
	}

	changes := make([]report.ConfigChange, 0, len(outcomes))
	for _, outcome := range outcomes {
		if outcome.Diff == "" {
			continue
		}
		changes = append(changes, report.ConfigChange{
			Path:    outcome.Modification.Path,
			Key:     outcome.Modification.Key,
			Value:   outcome.Modification.Value,
			Applied: outcome.Applied,
		})
	}

	if err != nil {
		if errors.Is(err, ui.ErrNoInput) {
			warning := "config changes skipped: no answer available, rerun with --yes to apply them"
			a.Logger.Warn(warning)
			return changes, []string{warning}, nil
		}
		return nil, nil, fmt.Errorf("update project config: %w", err)
	}
	return changes, nil, nil
}

func needsChanges(rep report.Report) bool {
	if rep.Summary.ModifiedFiles > 0 {
		return true
	}
	for _, projectReport := range rep.Projects {
		if len(projectReport.ConfigChanges) > 0 {
			return true
		}
	}
	return false
}
