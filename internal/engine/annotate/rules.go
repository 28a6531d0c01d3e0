// Package annotate wraps the declarations pylint flags for a rule in a
// disable/enable directive pair.
package annotate

import (
	"sort"
	"strings"

	"pyannotate/internal/core/errors"
	"pyannotate/internal/engine/cst"
	"pyannotate/internal/engine/diagnostic"
	"pyannotate/internal/engine/scope"
)

// Rule is a pylint message symbol.
type Rule string

const (
	TooManyArguments          Rule = "too-many-arguments"
	TooManyInstanceAttributes Rule = "too-many-instance-attributes"
)

// matcher says which declarations a rule is reported on and how pylint
// spells their names.
type matcher struct {
	kind cst.Kind
	decl scope.DeclKind
}

var registry = map[Rule]matcher{
	TooManyArguments:          {kind: cst.KindFunction, decl: scope.DeclFunction},
	TooManyInstanceAttributes: {kind: cst.KindClass, decl: scope.DeclClass},
}

// ParseRule validates a rule symbol.
func ParseRule(symbol string) (Rule, error) {
	r := Rule(strings.TrimSpace(symbol))
	if _, ok := registry[r]; !ok {
		return "", errors.Newf(errors.CodeUnsupportedRule, "rule %q is not supported (supported: %s)",
			symbol, strings.Join(ruleNames(), ", ")).
			WithContext(errors.CtxRule, symbol)
	}
	return r, nil
}

// Rules lists the supported rules in lexical order.
func Rules() []Rule {
	out := make([]Rule, 0, len(registry))
	for r := range registry {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func ruleNames() []string {
	rules := Rules()
	out := make([]string, len(rules))
	for i, r := range rules {
		out[i] = string(r)
	}
	return out
}

// NameSet is the set of object references reported for one rule.
type NameSet map[string]struct{}

// NewNameSet keeps the objects of records reported under rule.
func NewNameSet(records []diagnostic.Record, rule Rule) NameSet {
	set := make(NameSet)
	for _, r := range diagnostic.ForRule(records, string(rule)) {
		set[r.Obj] = struct{}{}
	}
	return set
}

func (s NameSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

func (s NameSet) Len() int { return len(s) }

// Names returns the members in lexical order.
func (s NameSet) Names() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
