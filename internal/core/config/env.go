package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: PYANNOTATE_[SECTION]_[KEY] (e.g., PYANNOTATE_PYLINT_COMMAND).
func ApplyEnvOverrides(cfg *Config) {
	// Pylint
	setEnvString(&cfg.Pylint.Command, "PYANNOTATE_PYLINT_COMMAND")
	setEnvDuration(&cfg.Pylint.Timeout, "PYANNOTATE_PYLINT_TIMEOUT")

	// Annotate
	setEnvString(&cfg.Annotate.Rule, "PYANNOTATE_ANNOTATE_RULE")
	setEnvBool(&cfg.Annotate.SkipExisting, "PYANNOTATE_ANNOTATE_SKIP_EXISTING")
	setEnvInt(&cfg.Annotate.Workers, "PYANNOTATE_ANNOTATE_WORKERS")

	// Output
	setEnvBool(&cfg.Output.Diff, "PYANNOTATE_OUTPUT_DIFF")
	setEnvBool(&cfg.Output.Color, "PYANNOTATE_OUTPUT_COLOR")
	setEnvString(&cfg.Output.MetricsTextfile, "PYANNOTATE_OUTPUT_METRICS_TEXTFILE")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}
