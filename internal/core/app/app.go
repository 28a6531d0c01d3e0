// Package app wires the annotation pipeline to files on disk.
package app

import (
	"log/slog"

	"github.com/gobwas/glob"

	"pyannotate/internal/core/config"
	"pyannotate/internal/core/errors"
	"pyannotate/internal/core/ports"
	"pyannotate/internal/engine/pylint"
)

type App struct {
	Config *config.Config

	source ports.DiagnosticSource
	logger *slog.Logger

	excludeDirs  []glob.Glob
	excludeFiles []glob.Glob
}

var _ ports.AnnotationService = (*App)(nil)

type Option func(*App)

// WithSource replaces the pylint runner, for example with pre-computed output.
func WithSource(source ports.DiagnosticSource) Option {
	return func(a *App) {
		if source != nil {
			a.source = source
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

func New(cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	a := &App{
		Config: cfg,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.source == nil {
		a.source = pylint.NewRunner(cfg.Pylint)
	}

	for _, p := range cfg.Exclude.Dirs {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, errors.Newf(errors.CodeValidationError, "invalid exclude dir pattern %q: %v", p, err)
		}
		a.excludeDirs = append(a.excludeDirs, g)
	}
	for _, p := range cfg.Exclude.Files {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, errors.Newf(errors.CodeValidationError, "invalid exclude file pattern %q: %v", p, err)
		}
		a.excludeFiles = append(a.excludeFiles, g)
	}
	return a, nil
}

func (a *App) annotateOptions() annotateOptions {
	return annotateOptions{
		skipExisting: a.Config.Annotate.SkipExisting,
		logger:       a.logger,
	}
}
