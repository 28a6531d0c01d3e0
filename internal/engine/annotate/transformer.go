package annotate

import (
	"log/slog"

	"pyannotate/internal/core/errors"
	"pyannotate/internal/engine/cst"
	"pyannotate/internal/engine/scope"
)

const directivePrefix = "# pylint: "

// Transformer annotates the declarations named in a NameSet.
type Transformer struct {
	rule         Rule
	names        NameSet
	match        matcher
	skipExisting bool
	logger       *slog.Logger
}

type Option func(*Transformer)

// WithSkipExisting leaves declarations alone when the line directly above
// their keyword is already the disable directive for the rule. Without it a
// second run inserts a second pair.
func WithSkipExisting(skip bool) Option {
	return func(t *Transformer) { t.skipExisting = skip }
}

func WithLogger(logger *slog.Logger) Option {
	return func(t *Transformer) {
		if logger != nil {
			t.logger = logger
		}
	}
}

func New(rule Rule, names NameSet, opts ...Option) (*Transformer, error) {
	m, ok := registry[rule]
	if !ok {
		return nil, errors.Newf(errors.CodeUnsupportedRule, "rule %q is not supported", rule).
			WithContext(errors.CtxRule, string(rule))
	}
	if names == nil {
		names = NameSet{}
	}
	t := &Transformer{
		rule:   rule,
		names:  names,
		match:  m,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Disable is the comment placed above a matched declaration.
func (t *Transformer) Disable() string { return directivePrefix + "disable=" + string(t.rule) }

// Enable is the comment placed after a matched declaration's body.
func (t *Transformer) Enable() string { return directivePrefix + "enable=" + string(t.rule) }

// Result describes one Apply run.
type Result struct {
	Module *cst.Module
	// Annotated lists the qualified names that received a pair, in source
	// order. A name appears once per matching declaration.
	Annotated []string
	// Skipped lists matches left alone because they were already annotated.
	Skipped []string
	// Unmatched lists names from the set that no declaration resolved to.
	Unmatched []string
}

// Changed reports whether Apply inserted anything.
func (r Result) Changed() bool { return len(r.Annotated) > 0 }

// Apply returns m with every matching declaration annotated. Declarations
// nested inside a matched one are still evaluated on their own.
func (t *Transformer) Apply(m *cst.Module) Result {
	res := Result{}
	seen := make(map[string]bool, len(t.names))

	leave := func(s scope.Stack, original, updated *cst.Node) *cst.Node {
		name := s.QualifiedName(t.match.decl, original.Name)
		if !t.names.Has(name) {
			return updated
		}
		seen[name] = true
		if t.skipExisting && original.LineAboveKeyword() == t.Disable() {
			t.logger.Debug("declaration already annotated", "rule", t.rule, "symbol", name, "scope", s.String(), "line", original.Line)
			res.Skipped = append(res.Skipped, name)
			return updated
		}
		t.logger.Debug("annotating declaration", "rule", t.rule, "symbol", name, "scope", s.String(), "line", original.Line)
		res.Annotated = append(res.Annotated, name)
		return updated.
			WithLineBeforeKeyword(t.Disable(), m.Newline).
			WithTrailingBodyLine(t.Enable(), m.Newline)
	}

	res.Module = cst.Transform(m, cst.Handlers{
		OnLeave: map[cst.Kind]cst.LeaveFunc{t.match.kind: leave},
	})

	for _, name := range t.names.Names() {
		if !seen[name] {
			res.Unmatched = append(res.Unmatched, name)
		}
	}
	return res
}
