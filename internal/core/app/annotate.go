package app

import (
	"log/slog"
	"time"

	"pyannotate/internal/core/errors"
	"pyannotate/internal/engine/annotate"
	"pyannotate/internal/engine/cst"
	"pyannotate/internal/engine/diagnostic"
	"pyannotate/internal/shared/observability"
)

// Annotate returns src with a disable/enable pair for rule around every
// declaration that entries report under rule. The rule is checked before
// anything else; any failure returns no text.
func Annotate(rule string, src []byte, entries []map[string]any) (string, error) {
	res, err := annotateSource(rule, src, entries, annotateOptions{logger: slog.Default()})
	if err != nil {
		return "", err
	}
	return res.Module.Code(), nil
}

type annotateOptions struct {
	skipExisting bool
	logger       *slog.Logger
}

func annotateSource(rule string, src []byte, entries []map[string]any, opts annotateOptions) (annotate.Result, error) {
	r, err := annotate.ParseRule(rule)
	if err != nil {
		return annotate.Result{}, err
	}

	records, err := diagnostic.Parse(entries)
	if err != nil {
		return annotate.Result{}, errors.AddContext(err, errors.CtxOperation, "decode_diagnostics")
	}
	names := annotate.NewNameSet(records, r)
	opts.logger.Debug("diagnostics decoded", "rule", r, "entries", len(records), "names", names.Len())

	start := time.Now()
	m, err := cst.Parse(src)
	observability.ParsingDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return annotate.Result{}, err
	}

	tr, err := annotate.New(r, names,
		annotate.WithSkipExisting(opts.skipExisting),
		annotate.WithLogger(opts.logger),
	)
	if err != nil {
		return annotate.Result{}, err
	}
	res := tr.Apply(m)

	if n := len(res.Annotated); n > 0 {
		observability.AnnotationsTotal.WithLabelValues(string(r)).Add(float64(n))
	}
	if len(res.Unmatched) > 0 {
		opts.logger.Debug("reported names without a matching declaration",
			"rule", r, "count", len(res.Unmatched), "names", res.Unmatched)
	}
	return res, nil
}
