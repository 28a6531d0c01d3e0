// # cmd/pyannotate/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"pyannotate/internal/core/app"
	"pyannotate/internal/core/config"
	"pyannotate/internal/core/ports"
	"pyannotate/internal/engine/annotate"
	"pyannotate/internal/shared/observability"
)

const VERSION = "1.0.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	configPath  string
	rule        string
	file        string
	diagnostics string
	diff        bool
	verbose     bool
	version     bool
}

func parseFlags(args []string, stderr io.Writer) (options, []string, error) {
	var opts options
	fs := flag.NewFlagSet("pyannotate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", config.DefaultPath, "Path to config file")
	fs.StringVar(&opts.rule, "rule", "", "Pylint rule to annotate ("+strings.Join(ruleNames(), ", ")+")")
	fs.StringVar(&opts.file, "file", "", "Python file to annotate (paths may also be given as arguments)")
	fs.StringVar(&opts.diagnostics, "diagnostics", "", "Use a saved pylint JSON report instead of running pylint")
	fs.BoolVar(&opts.diff, "diff", false, "Print a unified diff instead of writing files")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return opts, nil, err
	}

	var paths []string
	if opts.file != "" {
		paths = append(paths, opts.file)
	}
	paths = append(paths, fs.Args()...)
	return opts, paths, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, paths, err := parseFlags(args, stderr)
	if err != nil {
		return 2
	}
	if opts.version {
		fmt.Fprintf(stdout, "pyannotate v%s\n", VERSION)
		return 0
	}

	logLevel := slog.LevelInfo
	if opts.verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	cfg, err := config.LoadOrDefault(opts.configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}
	config.ApplyEnvOverrides(cfg)
	if opts.diff {
		cfg.Output.Diff = true
	}

	rule := opts.rule
	if rule == "" {
		rule = cfg.Annotate.Rule
	}
	if rule == "" {
		fmt.Fprintln(stderr, "a rule is required: pyannotate -rule <rule> <path>...")
		return 2
	}
	if len(paths) == 0 {
		fmt.Fprintln(stderr, "at least one file or directory is required")
		return 2
	}

	appOpts := []app.Option{app.WithLogger(logger)}
	if opts.diagnostics != "" {
		source, err := app.LoadStaticSource(opts.diagnostics)
		if err != nil {
			slog.Error("failed to load diagnostics", "error", err)
			return 1
		}
		appOpts = append(appOpts, app.WithSource(source))
	}

	a, err := app.New(cfg, appOpts...)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return 1
	}

	res, err := a.AnnotatePaths(ctx, ports.AnnotateRequest{
		Rule:   rule,
		Paths:  paths,
		DryRun: cfg.Output.Diff,
	})
	if err != nil {
		slog.Error("annotation failed", "error", err)
		return 1
	}

	printResult(stdout, res, cfg.Output.Diff)

	if err := observability.WriteTextfile(cfg.Output.MetricsTextfile); err != nil {
		slog.Warn("failed to write metrics", "path", cfg.Output.MetricsTextfile, "error", err)
	}
	if res.Failed > 0 {
		return 1
	}
	return 0
}

func printResult(w io.Writer, res ports.AnnotateResult, diff bool) {
	changed := 0
	for _, f := range res.Files {
		switch {
		case f.Err != nil:
			fmt.Fprintf(w, "error    %s: %v\n", f.Path, f.Err)
		case f.Changed:
			changed++
			if diff {
				fmt.Fprint(w, f.Diff)
			} else {
				fmt.Fprintf(w, "annotated %s (%s)\n", f.Path, strings.Join(f.Annotated, ", "))
			}
		}
	}
	verb := "annotated"
	if diff {
		verb = "would annotate"
	}
	fmt.Fprintf(w, "%d file(s) scanned, %s %d, %d failed\n", len(res.Files), verb, changed, res.Failed)
}

func ruleNames() []string {
	rules := annotate.Rules()
	out := make([]string, len(rules))
	for i, r := range rules {
		out[i] = string(r)
	}
	return out
}
