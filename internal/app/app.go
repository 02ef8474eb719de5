package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/specialistvlad/burstplan/internal/builder"
	"github.com/specialistvlad/burstplan/internal/composer"
	"github.com/specialistvlad/burstplan/internal/config"
	"github.com/specialistvlad/burstplan/internal/ctxlog"
	"github.com/specialistvlad/burstplan/internal/fragment"
	"github.com/specialistvlad/burstplan/internal/hclconfig"
	"github.com/specialistvlad/burstplan/internal/yamlconfig"
)

// App encapsulates the application's dependencies and configuration.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	loaders  []config.Loader
	library  *fragment.Library
	composer *composer.Composer
	builder  builder.Builder

	watchDebounce time.Duration
}

// NewApp builds an App: it registers the compiled-in fragment modules (or
// the given ones), loads expression fragments from cfg.FragmentsPath and
// validates the resulting library. Documents go to outW, logs to logW.
func NewApp(outW, logW io.Writer, cfg *Config, modules ...fragment.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	a := &App{
		outW:    outW,
		logger:  logger,
		config:  cfg,
		loaders: []config.Loader{hclconfig.NewLoader(), yamlconfig.NewLoader()},
		library: fragment.NewLibrary(fragment.WithLogger(logger)),

		watchDebounce: defaultWatchDebounce,
	}

	if len(modules) == 0 {
		modules = CoreModules()
	}
	for _, mod := range modules {
		mod.Register(a.library)
	}
	logger.Debug("All Go modules registered.", "count", len(modules), "fragments", a.library.Len())

	if cfg.FragmentsPath != "" {
		model, err := a.load(ctx, cfg.FragmentsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load fragments: %w", err)
		}
		if len(model.Plans) > 0 {
			return nil, fmt.Errorf("fragments path %s must not contain plans", cfg.FragmentsPath)
		}
		if err := a.library.RegisterDefinitions(model.Fragments); err != nil {
			return nil, err
		}
		logger.Debug("Expression fragments registered.", "count", len(model.Fragments))
	}

	if err := a.library.Validate(ctx); err != nil {
		return nil, err
	}
	if cfg.SafetyNet != "" && !a.library.Has(cfg.SafetyNet) {
		return nil, fmt.Errorf("safety-net fragment %q is not registered", cfg.SafetyNet)
	}
	logger.Debug("Fragment library validation passed.")

	a.composer = composer.New(a.library, composer.WithSafetyNet(cfg.SafetyNet))
	a.builder = builder.New(a.composer)
	return a, nil
}

// Library returns the application's fragment library.
func (a *App) Library() *fragment.Library {
	return a.library
}

// Composer returns the application's job composer.
func (a *App) Composer() *composer.Composer {
	return a.composer
}

// context returns ctx carrying the app logger.
func (a *App) context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}

// load runs every loader over paths and merges the results.
func (a *App) load(ctx context.Context, paths ...string) (*config.Model, error) {
	model := &config.Model{}
	for _, l := range a.loaders {
		m, err := l.Load(ctx, paths...)
		if err != nil {
			return nil, err
		}
		model.Merge(m)
	}
	return model, nil
}
