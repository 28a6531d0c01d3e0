package scope

import "testing"

func TestQualifiedName(t *testing.T) {
	var module Stack
	outer := module.Push("Outer")
	inner := outer.Push("Inner")

	tests := []struct {
		name  string
		stack Stack
		kind  DeclKind
		decl  string
		want  string
	}{
		{"module function", module, DeclFunction, "f", "f"},
		{"method", outer, DeclFunction, "m", "Outer.m"},
		{"nested method uses outermost class only", inner, DeclFunction, "m", "Outer.m"},
		{"module class", module, DeclClass, "Outer", "Outer"},
		{"nested class uses full path", outer, DeclClass, "Inner", "Outer.Inner"},
		{"doubly nested class", inner, DeclClass, "Deep", "Outer.Inner.Deep"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stack.QualifiedName(tt.kind, tt.decl); got != tt.want {
				t.Fatalf("QualifiedName(%q) = %q, want %q", tt.decl, got, tt.want)
			}
		})
	}
}

func TestPushDoesNotShareBacking(t *testing.T) {
	base := Stack{}.Push("A")
	left := base.Push("B")
	right := base.Push("C")

	if got := left.String(); got != "A.B" {
		t.Fatalf("left = %q, want A.B", got)
	}
	if got := right.String(); got != "A.C" {
		t.Fatalf("right = %q, want A.C", got)
	}
	if got := base.String(); got != "A" {
		t.Fatalf("base = %q, want A", got)
	}
	if got := right.Outermost(); got != "A" {
		t.Fatalf("Outermost = %q, want A", got)
	}
	if !(Stack{}).Empty() || base.Empty() {
		t.Fatal("Empty reports the wrong scope")
	}
	if got := (Stack{}).Outermost(); got != "" {
		t.Fatalf("module Outermost = %q, want empty", got)
	}
}
