package config

import (
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"
	"time"

	"pyannotate/internal/core/errors"
)

func TestLoad(t *testing.T) {
	content := `
version = 1

[pylint]
command = "python -m pylint"
args = ["--rcfile", "setup.cfg"]
timeout = "30s"

[annotate]
rule = "too-many-arguments"
skip_existing = true
workers = 3

[exclude]
dirs = ["build"]
files = ["**/migrations/*.py"]

[output]
diff = true
metrics_textfile = "metrics.prom"
`
	path := filepath.Join(t.TempDir(), "pyannotate.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Pylint.Command != "python -m pylint" {
		t.Errorf("expected pylint command 'python -m pylint', got %q", cfg.Pylint.Command)
	}
	if !slices.Equal(cfg.Pylint.Args, []string{"--rcfile", "setup.cfg"}) {
		t.Errorf("unexpected pylint args %v", cfg.Pylint.Args)
	}
	if cfg.Pylint.Timeout != 30*time.Second {
		t.Errorf("expected timeout 30s, got %s", cfg.Pylint.Timeout)
	}
	if cfg.Annotate.Rule != "too-many-arguments" {
		t.Errorf("expected rule too-many-arguments, got %q", cfg.Annotate.Rule)
	}
	if !cfg.Annotate.SkipExisting {
		t.Error("expected skip_existing to be true")
	}
	if cfg.Annotate.Workers != 3 {
		t.Errorf("expected 3 workers, got %d", cfg.Annotate.Workers)
	}
	if !slices.Equal(cfg.Exclude.Dirs, []string{"build"}) {
		t.Errorf("unexpected exclude dirs %v", cfg.Exclude.Dirs)
	}
	if !slices.Equal(cfg.Exclude.Files, []string{"**/migrations/*.py"}) {
		t.Errorf("unexpected exclude files %v", cfg.Exclude.Files)
	}
	if !cfg.Output.Diff {
		t.Error("expected diff to be true")
	}
	if cfg.Output.MetricsTextfile != "metrics.prom" {
		t.Errorf("expected metrics textfile metrics.prom, got %q", cfg.Output.MetricsTextfile)
	}
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Version != 1 {
		t.Errorf("expected version 1, got %d", cfg.Version)
	}
	if cfg.Pylint.Command != "pylint" {
		t.Errorf("expected pylint command 'pylint', got %q", cfg.Pylint.Command)
	}
	if cfg.Pylint.Timeout != 2*time.Minute {
		t.Errorf("expected timeout 2m, got %s", cfg.Pylint.Timeout)
	}
	if cfg.Annotate.Workers != runtime.NumCPU() {
		t.Errorf("expected %d workers, got %d", runtime.NumCPU(), cfg.Annotate.Workers)
	}
	if !slices.Contains(cfg.Exclude.Dirs, ".git") {
		t.Errorf("expected .git in exclude dirs, got %v", cfg.Exclude.Dirs)
	}
	if cfg.Annotate.SkipExisting {
		t.Error("expected skip_existing to default to false")
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := map[string]string{
		"version":       "version = 3",
		"output format": "[pylint]\nargs = [\"--output-format=text\"]",
		"workers":       "[annotate]\nworkers = 1000",
		"bad glob":      "[exclude]\nfiles = [\"[unterminated\"]",
		"empty dir":     "[exclude]\ndirs = [\"\"]",
		"not toml":      "version = ",
		"negative rate": "[pylint]\nrate = -1.0",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(content)
			if !errors.IsCode(err, errors.CodeValidationError) {
				t.Fatalf("expected VALIDATION_ERROR, got %v", err)
			}
		})
	}
}

func TestLoad_ExampleFile(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "..", "pyannotate.example.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Annotate.Rule != "too-many-arguments" {
		t.Errorf("unexpected rule %q", cfg.Annotate.Rule)
	}
	if cfg.Annotate.Workers != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.Annotate.Workers)
	}
	if cfg.Pylint.Timeout != 2*time.Minute {
		t.Errorf("expected timeout 2m, got %s", cfg.Pylint.Timeout)
	}
	if !slices.Equal(cfg.Exclude.Files, []string{"**_pb2.py", "migrations/**"}) {
		t.Errorf("unexpected exclude files %v", cfg.Exclude.Files)
	}
}

func TestLoadOrDefault(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadOrDefault(DefaultPath)
	if err != nil {
		t.Fatalf("LoadOrDefault failed: %v", err)
	}
	if cfg.Pylint.Command != "pylint" {
		t.Errorf("expected default pylint command, got %q", cfg.Pylint.Command)
	}

	if _, err := LoadOrDefault("missing.toml"); !errors.IsCode(err, errors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND for an explicit missing file, got %v", err)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("PYANNOTATE_PYLINT_COMMAND", "/opt/pylint")
	t.Setenv("PYANNOTATE_PYLINT_TIMEOUT", "5s")
	t.Setenv("PYANNOTATE_ANNOTATE_SKIP_EXISTING", "TRUE")
	t.Setenv("PYANNOTATE_ANNOTATE_WORKERS", "not-a-number")

	cfg := Default()
	workers := cfg.Annotate.Workers
	ApplyEnvOverrides(cfg)

	if cfg.Pylint.Command != "/opt/pylint" {
		t.Errorf("expected command override, got %q", cfg.Pylint.Command)
	}
	if cfg.Pylint.Timeout != 5*time.Second {
		t.Errorf("expected timeout override 5s, got %s", cfg.Pylint.Timeout)
	}
	if !cfg.Annotate.SkipExisting {
		t.Error("expected skip_existing override")
	}
	if cfg.Annotate.Workers != workers {
		t.Errorf("invalid workers override should be ignored, got %d", cfg.Annotate.Workers)
	}
}
