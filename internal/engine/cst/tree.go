// Package cst holds a lossless concrete syntax tree for Python modules.
//
// Every byte of the parsed source is owned by exactly one text field of the
// tree, so Code() on an untouched Module returns the input unchanged. Trees are
// values: the With* methods and Transform return new nodes and leave the
// receiver untouched, sharing every subtree that did not change.
package cst

import "strings"

// Kind is the closed set of node variants.
type Kind int

const (
	KindModule Kind = iota
	KindClass
	KindFunction
	// KindCompound is any other statement that owns blocks: if, for, while,
	// try, with, match and case clauses.
	KindCompound
	KindStatement
)

func (k Kind) String() string {
	switch k {
	case KindModule:
		return "module"
	case KindClass:
		return "class"
	case KindFunction:
		return "function"
	case KindCompound:
		return "compound"
	case KindStatement:
		return "statement"
	}
	return "unknown"
}

// Line is a whole comment line added to the tree after parsing.
type Line struct {
	Indent  string
	Comment string
	Newline string
}

// Part is one slice of a node's text after its leading trivia: either raw
// source text or a nested block.
type Part struct {
	Text  string
	Block *Block
}

// Node is one statement together with the blank and comment lines above it.
type Node struct {
	Kind Kind
	// Name is set for classes and functions.
	Name string
	// Line is the 1-based line of the statement keyword.
	Line int
	// Indent is the whitespace before the statement keyword.
	Indent string
	// Leading runs from the end of the previous sibling to the start of the
	// keyword line. For decorated definitions it includes the decorators.
	Leading string
	// Before holds lines inserted directly above the keyword line.
	Before []Line
	Parts  []Part
}

// Block is an indented suite, or a one-line suite following a colon.
type Block struct {
	Indent string
	Inline bool
	Stmts  []*Node
	// Footer holds the comment lines after the last statement that are
	// indented at least as deep as the block, plus blank lines between them.
	Footer string
	// Trailing holds lines inserted after the footer.
	Trailing []Line
}

// Module is a parsed source file.
type Module struct {
	Body *Block
	// Newline is the line terminator of the first line, "\n" if none.
	Newline string
	// crOnly marks a source whose lines end in a lone "\r". The tree holds
	// "\n" in its place and Code converts back.
	crOnly bool
	// DefaultIndent is the indent step of the first nested block, four
	// spaces if the module has none.
	DefaultIndent string
}

// Code renders the module back to source text.
func (m *Module) Code() string {
	var w strings.Builder
	m.Body.render(&w)
	if m.crOnly {
		return strings.ReplaceAll(w.String(), "\n", "\r")
	}
	return w.String()
}

func (n *Node) render(w *strings.Builder) {
	w.WriteString(n.Leading)
	for _, l := range n.Before {
		w.WriteString(l.Indent)
		w.WriteString(l.Comment)
		w.WriteString(l.Newline)
	}
	for _, p := range n.Parts {
		if p.Block != nil {
			p.Block.render(w)
			continue
		}
		w.WriteString(p.Text)
	}
}

func (b *Block) render(w *strings.Builder) {
	for _, s := range b.Stmts {
		s.render(w)
	}
	w.WriteString(b.Footer)
	for _, l := range b.Trailing {
		// A body that ends the file without a newline gets the line break
		// in front, so the file still ends without one.
		if s := w.String(); s != "" && s[len(s)-1] != '\n' && s[len(s)-1] != '\r' {
			w.WriteString(l.Newline)
			w.WriteString(l.Indent)
			w.WriteString(l.Comment)
			continue
		}
		w.WriteString(l.Indent)
		w.WriteString(l.Comment)
		w.WriteString(l.Newline)
	}
}

// Body returns the suite of a class or function, or the last suite of a
// compound statement. Simple statements have none.
func (n *Node) Body() *Block {
	for i := len(n.Parts) - 1; i >= 0; i-- {
		if n.Parts[i].Block != nil {
			return n.Parts[i].Block
		}
	}
	return nil
}

// LineAboveKeyword returns the text of the line directly above the keyword
// line with surrounding whitespace trimmed, or "" if there is none.
func (n *Node) LineAboveKeyword() string {
	if len(n.Before) > 0 {
		return strings.TrimSpace(n.Before[len(n.Before)-1].Comment)
	}
	lead := strings.TrimRight(n.Leading, "\r\n")
	if lead == "" {
		return ""
	}
	if i := strings.LastIndexByte(lead, '\n'); i >= 0 {
		lead = lead[i+1:]
	}
	return strings.TrimSpace(lead)
}

// WithLineBeforeKeyword returns a copy of n with comment placed on its own
// line directly above the keyword line, below any decorators and attached
// comments, at the keyword's indentation.
func (n *Node) WithLineBeforeKeyword(comment, newline string) *Node {
	out := *n
	out.Before = make([]Line, len(n.Before), len(n.Before)+1)
	copy(out.Before, n.Before)
	out.Before = append(out.Before, Line{Indent: n.Indent, Comment: comment, Newline: newline})
	return &out
}

// WithTrailingBodyLine returns a copy of n with comment placed on its own line
// after the last line of its body, at the body's indentation. Nodes without a
// body are returned unchanged.
func (n *Node) WithTrailingBodyLine(comment, newline string) *Node {
	idx := -1
	for i := len(n.Parts) - 1; i >= 0; i-- {
		if n.Parts[i].Block != nil {
			idx = i
			break
		}
	}
	if idx < 0 {
		return n
	}

	body := *n.Parts[idx].Block
	body.Trailing = make([]Line, len(n.Parts[idx].Block.Trailing), len(n.Parts[idx].Block.Trailing)+1)
	copy(body.Trailing, n.Parts[idx].Block.Trailing)
	body.Trailing = append(body.Trailing, Line{Indent: body.Indent, Comment: comment, Newline: newline})

	out := *n
	out.Parts = make([]Part, len(n.Parts))
	copy(out.Parts, n.Parts)
	out.Parts[idx] = Part{Block: &body}
	return &out
}
