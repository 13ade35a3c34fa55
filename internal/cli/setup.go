package cli

import (
	"context"
	"os"

	"github.com/fatih/color"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mmr-tortoise/stack-lineup/internal/compose"
	"github.com/mmr-tortoise/stack-lineup/internal/config"
	"github.com/mmr-tortoise/stack-lineup/internal/lineup"
	"github.com/mmr-tortoise/stack-lineup/internal/model"
	"github.com/mmr-tortoise/stack-lineup/internal/repo"
)

var (
	okMark   = color.New(color.FgGreen).SprintFunc()
	failMark = color.New(color.FgRed).SprintFunc()
	warnText = color.New(color.FgYellow).SprintFunc()
	dimText  = color.New(color.Faint).SprintFunc()
)

// newLogger builds a console logger on stderr. Debug messages are shown
// with --verbose; otherwise only warnings and errors.
func newLogger(verbose bool) (*zap.Logger, error) {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	cfg.DisableCaller = !verbose
	cfg.EncoderConfig.TimeKey = ""
	return cfg.Build()
}

// environment bundles what every subcommand needs: the resolved repository
// root, the loaded configuration and a ready Updater.
type environment struct {
	root    string
	cfg     *config.Config
	parser  *compose.Parser
	keys    *lineup.StackKeyer
	updater *lineup.Updater
}

// newEnvironment resolves the repository root, loads the config file and
// wires the lineup pipeline.
func newEnvironment(ctx context.Context, dryRun bool) (*environment, error) {
	// Step 1: Resolve the repository root.
	root, err := repo.Root(ctx, rootDir, logger)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "failed to resolve repository root", err)
	}
	VerboseLog("Repository root: %s", root)

	// Step 2: Load .lineup.jsonc (optional).
	path := configPath
	if path == "" {
		path = config.Path(root)
	} else if _, err := os.Stat(path); err != nil {
		// An explicit --config must exist; only the default may be absent.
		return nil, model.WrapCLIError(model.ExitGeneralError, "config file not found", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "failed to load configuration", err)
	}
	VerboseLog("Config: %s (document=%s, stacksDir=%s)", path, cfg.Document, cfg.StacksDir)

	// Step 3: Wire the pipeline.
	keys := lineup.NewStackKeyer(cfg.SynonymTable())
	parser := compose.NewParser(cfg.DomainPlaceholder, logger)
	renderer := lineup.NewRenderer(cfg.Separator, cfg.EmptyPlaceholder)

	updater := lineup.NewUpdater(lineup.Options{
		Root:         root,
		Document:     cfg.Document,
		SectionTitle: cfg.Section,
		Layout:       cfg.Layout(),
		DryRun:       dryRun,
	}, parser, keys, renderer, logger)

	return &environment{root: root, cfg: cfg, parser: parser, keys: keys, updater: updater}, nil
}
