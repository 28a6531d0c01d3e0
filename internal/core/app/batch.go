package app

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"pyannotate/internal/core/ports"
	"pyannotate/internal/engine/annotate"
	"pyannotate/internal/shared/observability"
)

// AnnotatePaths annotates every file ScanPaths finds, in parallel. A failing
// file is recorded in its result and does not stop the others. The returned
// error is set only when the request itself is invalid or ctx is done.
func (a *App) AnnotatePaths(ctx context.Context, req ports.AnnotateRequest) (ports.AnnotateResult, error) {
	runID := uuid.NewString()
	logger := a.logger.With("run", runID)
	out := ports.AnnotateResult{RunID: runID}

	ctx, span := observability.Tracer.Start(ctx, "app.AnnotatePaths", trace.WithAttributes(
		attribute.String("rule", req.Rule),
		attribute.String("run", runID),
	))
	defer span.End()

	if _, err := annotate.ParseRule(req.Rule); err != nil {
		return out, err
	}
	files, err := a.ScanPaths(req.Paths)
	if err != nil {
		return out, err
	}
	if ps, ok := a.source.(ports.PreparedSource); ok {
		ps.Prepare(files)
	}
	logger.Info("annotating files", "rule", req.Rule, "files", len(files), "workers", a.Config.Annotate.Workers)

	results := make([]ports.FileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(a.Config.Annotate.Workers, 1))
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = ports.FileResult{Path: path, Err: err}
				return nil
			}
			res, err := a.AnnotateFile(gctx, req.Rule, path, req.DryRun)
			if err != nil {
				logger.Warn("failed to annotate file", "path", path, "error", err)
				res.Err = err
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	out.Files = results
	for _, r := range results {
		if r.Err != nil {
			out.Failed++
		}
	}
	span.SetAttributes(attribute.Int("files", len(files)), attribute.Int("failed", out.Failed))
	logger.Info("run finished", "files", len(files), "failed", out.Failed)
	return out, ctx.Err()
}
