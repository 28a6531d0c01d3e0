// Package pylint runs the analyzer for a single rule and returns its raw
// JSON messages.
package pylint

import (
	"bytes"
	"context"
	goerrors "errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"pyannotate/internal/core/config"
	"pyannotate/internal/core/errors"
	"pyannotate/internal/engine/diagnostic"
)

// Exit status bits that mean pylint itself failed rather than found messages.
const (
	exitFatal = 1
	exitUsage = 32
)

type Runner struct {
	command []string
	args    []string
	timeout time.Duration
	limit   *throttle
}

func NewRunner(cfg config.Pylint) *Runner {
	command := strings.Fields(cfg.Command)
	if len(command) == 0 {
		command = []string{"pylint"}
	}
	return &Runner{
		command: command,
		args:    append([]string(nil), cfg.Args...),
		timeout: cfg.Timeout,
		limit:   newThrottle(cfg.Rate, cfg.Burst),
	}
}

// Args returns the argument list passed to the command for path and rule.
func (r *Runner) Args(path, rule string) []string {
	args := append([]string(nil), r.command[1:]...)
	args = append(args, path, "--disable=all", "--enable", rule, "--output-format=json")
	return append(args, r.args...)
}

// Diagnostics runs pylint on path with only rule enabled.
func (r *Runner) Diagnostics(ctx context.Context, rule, path string) ([]map[string]any, error) {
	if err := r.limit.wait(ctx); err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "wait for pylint slot"), errors.CtxPath, path)
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.command[0], r.Args(path, rule)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.AddContext(errors.Wrap(ctx.Err(), errors.CodeInternal, "pylint did not finish"), errors.CtxPath, path)
		}
		var exitErr *exec.ExitError
		if !goerrors.As(err, &exitErr) {
			return nil, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "start pylint"), errors.CtxPath, path)
		}
		if code := exitErr.ExitCode(); code&(exitFatal|exitUsage) != 0 {
			msg := strings.TrimSpace(stderr.String())
			if msg == "" {
				msg = fmt.Sprintf("exit status %d", code)
			}
			return nil, errors.AddContext(errors.Newf(errors.CodeInternal, "pylint failed: %s", msg), errors.CtxPath, path)
		}
	}

	entries, err := diagnostic.DecodeEntries(&stdout)
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxPath, path)
	}
	return entries, nil
}
