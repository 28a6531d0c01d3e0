// Package scope tracks the classes enclosing a declaration during a tree walk
// and derives the names pylint uses to refer to that declaration.
package scope

import "strings"

// DeclKind selects the naming convention for QualifiedName.
type DeclKind int

const (
	DeclFunction DeclKind = iota
	DeclClass
)

// Stack is the list of enclosing class names, outermost first. The zero value
// is the module scope. Push copies, so a Stack can be handed to recursive
// calls without any pop bookkeeping.
type Stack struct {
	classes []string
}

// Push returns a stack with class appended as the innermost scope.
func (s Stack) Push(class string) Stack {
	next := make([]string, len(s.classes), len(s.classes)+1)
	copy(next, s.classes)
	return Stack{classes: append(next, class)}
}

func (s Stack) Empty() bool { return len(s.classes) == 0 }

// Outermost returns the top-level enclosing class, or "" at module scope.
func (s Stack) Outermost() string {
	if len(s.classes) == 0 {
		return ""
	}
	return s.classes[0]
}

// QualifiedName names a declaration called name that sits directly inside s.
//
// Functions use only the outermost class: method m of Outer.Inner is
// "Outer.m". Classes use the full path: Inner inside Outer is "Outer.Inner".
// The two conventions disagree for nested classes and both are relied upon by
// the rule matchers.
func (s Stack) QualifiedName(kind DeclKind, name string) string {
	if s.Empty() {
		return name
	}
	if kind == DeclClass {
		return s.String() + "." + name
	}
	return s.Outermost() + "." + name
}

func (s Stack) String() string {
	return strings.Join(s.classes, ".")
}
