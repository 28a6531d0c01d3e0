package config

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"

	"pyannotate/internal/core/errors"
)

func invalid(format string, args ...interface{}) error {
	return errors.New(errors.CodeValidationError, fmt.Sprintf(format, args...))
}

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return invalid("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validatePylint(cfg *Config) error {
	if strings.ContainsAny(cfg.Pylint.Command, "\n\r") {
		return invalid("pylint.command must be a single line")
	}
	if cfg.Pylint.Rate < 0 {
		return invalid("pylint.rate must be >= 0, got %v", cfg.Pylint.Rate)
	}
	if cfg.Pylint.Burst < 0 {
		return invalid("pylint.burst must be >= 0, got %d", cfg.Pylint.Burst)
	}
	for i, arg := range cfg.Pylint.Args {
		if strings.HasPrefix(arg, "--output-format") {
			return invalid("pylint.args[%d]: output format is fixed to json", i)
		}
	}
	return nil
}

func validateAnnotate(cfg *Config) error {
	if cfg.Annotate.Workers > 256 {
		return invalid("annotate.workers must be <= 256, got %d", cfg.Annotate.Workers)
	}
	return nil
}

func validateExclude(cfg *Config) error {
	for i, pattern := range cfg.Exclude.Files {
		if strings.TrimSpace(pattern) == "" {
			return invalid("exclude.files[%d] must not be empty", i)
		}
		if _, err := glob.Compile(pattern, '/'); err != nil {
			return invalid("exclude.files[%d]: invalid glob %q: %v", i, pattern, err)
		}
	}
	for i, dir := range cfg.Exclude.Dirs {
		if strings.TrimSpace(dir) == "" {
			return invalid("exclude.dirs[%d] must not be empty", i)
		}
	}
	return nil
}
