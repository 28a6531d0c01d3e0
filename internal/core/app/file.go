package app

import (
	"context"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"pyannotate/internal/core/errors"
	"pyannotate/internal/core/ports"
	"pyannotate/internal/engine/annotate"
	"pyannotate/internal/shared/observability"
)

// AnnotateFile runs the diagnostic source on path and rewrites the file in
// place. The file is written only when annotation succeeded and changed the
// text, and never when dryRun is set.
func (a *App) AnnotateFile(ctx context.Context, rule, path string, dryRun bool) (out ports.FileResult, err error) {
	ctx, span := observability.Tracer.Start(ctx, "app.AnnotateFile", trace.WithAttributes(
		attribute.String("path", path),
		attribute.String("rule", rule),
	))
	defer func() {
		switch {
		case err != nil:
			if code, ok := errors.CodeOf(err); ok {
				span.SetAttributes(attribute.String("error.code", string(code)))
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			observability.FilesTotal.WithLabelValues(observability.ResultFailed).Inc()
		case out.Changed:
			observability.FilesTotal.WithLabelValues(observability.ResultAnnotated).Inc()
		default:
			observability.FilesTotal.WithLabelValues(observability.ResultUnchanged).Inc()
		}
		span.End()
	}()

	out.Path = path
	if _, err := annotate.ParseRule(rule); err != nil {
		return out, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return out, errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "source file not found"), errors.CtxPath, path)
		}
		return out, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "stat source"), errors.CtxPath, path)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return out, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "read source"), errors.CtxPath, path)
	}

	start := time.Now()
	entries, err := a.source.Diagnostics(ctx, rule, path)
	observability.PylintDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return out, errors.AddContext(err, errors.CtxOperation, "diagnostics")
	}

	res, err := annotateSource(rule, src, entries, a.annotateOptions())
	if err != nil {
		return out, errors.AddContext(err, errors.CtxPath, path)
	}
	out.Annotated = res.Annotated
	out.Skipped = res.Skipped
	out.Unmatched = res.Unmatched

	after := res.Module.Code()
	out.Changed = after != string(src)
	if !out.Changed {
		return out, nil
	}
	if a.Config.Output.Diff {
		out.Diff = UnifiedDiff(path, string(src), after, a.Config.Output.Color)
	}
	if dryRun {
		return out, nil
	}

	if err := writeAtomic(path, []byte(after), info.Mode().Perm()); err != nil {
		return out, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "write source"), errors.CtxPath, path)
	}
	out.Written = true
	a.logger.Info("annotated file", "path", path, "rule", rule, "count", len(out.Annotated))
	return out, nil
}
