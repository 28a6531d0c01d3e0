package cst

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"pyannotate/internal/core/errors"
)

const fallbackIndent = "    "

// Parse builds a lossless tree for Python source. Source that tree-sitter can
// only recover from with ERROR or MISSING nodes is rejected with
// CodeSyntaxError.
func Parse(src []byte) (*Module, error) {
	newline := detectNewline(src)
	crOnly := newline == "\r"
	if crOnly {
		src = bytes.ReplaceAll(src, []byte{'\r'}, []byte{'\n'})
	}

	pool := python()
	sp := pool.get()
	defer pool.put(sp)

	tree := sp.Parse(src, nil)
	if tree == nil {
		return nil, errors.New(errors.CodeInternal, "tree-sitter returned no tree")
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, errors.New(errors.CodeInternal, "tree-sitter returned no root node")
	}
	if root.HasError() {
		return nil, syntaxError(root, src)
	}

	b := &builder{src: src}
	stmts, end := b.statements(statementChildren(root), 0, &suiteIndent{module: true})
	if b.err != nil {
		return nil, b.err
	}
	body := &Block{
		Stmts:  stmts,
		Footer: string(src[end:]),
	}

	unit := b.unit
	if unit == "" {
		unit = fallbackIndent
	}
	for _, ib := range b.inline {
		ib.block.Indent = ib.owner + unit
	}

	return &Module{
		Body:          body,
		Newline:       newline,
		DefaultIndent: unit,
		crOnly:        crOnly,
	}, nil
}

type inlineBlock struct {
	block *Block
	owner string
}

type builder struct {
	src []byte
	// unit is the indent step of the first nested block seen.
	unit string
	// inline blocks get their indent once unit is known.
	inline []inlineBlock
	// err is the first indentation or statement error found.
	err error
}

// suiteIndent is the indentation shared by the statements of one suite.
type suiteIndent struct {
	// module suites must start at column zero.
	module bool
	// owner is the indent of the statement that opened the suite.
	owner string
	// indent is fixed by the first statement of the suite.
	indent string
	set    bool
}

func (b *builder) fail(c *sitter.Node, column int, msg string) {
	if b.err != nil {
		return
	}
	b.err = errors.Newf(errors.CodeSyntaxError, "%s", msg).
		WithContext(errors.CtxLine, int(c.StartPosition().Row)+1).
		WithContext(errors.CtxColumn, column+1)
}

// checkIndent applies the tokenizer's INDENT/DEDENT rules to the statement c
// of suite s. A nil suite is a one-line suite and is not checked.
func (b *builder) checkIndent(s *suiteIndent, c *sitter.Node, cut int) {
	if s == nil {
		return
	}
	ls := b.lineStart(int(c.StartByte()))
	if ls < cut {
		return
	}
	indent := b.indentAt(ls)
	switch {
	case s.module:
		if !sameIndent(indent, "") {
			b.fail(c, len(indent), "unexpected indent")
		}
	case !s.set:
		if !deeperIndent(indent, s.owner) {
			b.fail(c, len(indent), "expected an indented block")
		}
		s.indent, s.set = indent, true
	case sameIndent(indent, s.indent):
	case deeperIndent(indent, s.indent):
		b.fail(c, len(indent), "unexpected indent")
	default:
		b.fail(c, len(indent), "unindent does not match any outer indentation level")
	}
}

// checkSimple rejects statement forms the grammar still accepts from Python 2.
func (b *builder) checkSimple(c *sitter.Node) {
	switch c.Kind() {
	case "print_statement":
		b.fail(c, int(c.StartPosition().Column), "missing parentheses in call to 'print'")
	case "exec_statement":
		b.fail(c, int(c.StartPosition().Column), "missing parentheses in call to 'exec'")
	}
}

// statements tiles children into nodes starting at start, a line boundary
// (or a colon, for one-line suites). It returns the end of the last node.
func (b *builder) statements(children []*sitter.Node, start int, suite *suiteIndent) ([]*Node, int) {
	var out []*Node
	cut := start
	for i := 0; i < len(children); {
		c := children[i]
		if int(c.StartByte()) < cut {
			// Already covered by the previous node's span.
			i++
			continue
		}

		b.checkIndent(suite, c, cut)
		if blocks := collectBlocks(c); len(blocks) > 0 {
			n, end := b.compound(c, blocks, cut)
			out = append(out, n)
			cut = end
			i++
			continue
		}

		// Simple statements joined with ";" share one physical line and
		// become one node.
		b.checkSimple(c)
		end := b.stmtLineEnd(int(c.EndByte()))
		j := i + 1
		for j < len(children) && int(children[j].StartByte()) < end {
			b.checkSimple(children[j])
			end = max(end, b.stmtLineEnd(int(children[j].EndByte())))
			j++
		}
		end = max(end, cut)
		out = append(out, b.simple(c, cut, end))
		cut = end
		i = j
	}
	return out, cut
}

func (b *builder) simple(c *sitter.Node, start, end int) *Node {
	ls := min(max(start, b.lineStart(int(c.StartByte()))), end)
	return &Node{
		Kind:    KindStatement,
		Line:    int(c.StartPosition().Row) + 1,
		Indent:  b.indentAt(ls),
		Leading: string(b.src[start:ls]),
		Parts:   []Part{{Text: string(b.src[ls:end])}},
	}
}

func (b *builder) compound(c *sitter.Node, blocks []*sitter.Node, start int) (*Node, int) {
	n := &Node{Kind: KindCompound}
	anchor := c
	def := declaration(c)
	if def != nil {
		anchor = def
		n.Kind = KindFunction
		if def.Kind() == "class_definition" {
			n.Kind = KindClass
		}
		if name := def.ChildByFieldName("name"); name != nil {
			n.Name = string(b.src[name.StartByte():name.EndByte()])
		}
	}

	ls := max(start, b.lineStart(int(anchor.StartByte())))
	n.Line = int(anchor.StartPosition().Row) + 1
	n.Indent = b.indentAt(ls)
	n.Leading = string(b.src[start:ls])
	if !sameSpan(anchor, c) {
		// Decorators and the definition they decorate share one indent.
		if dl := b.lineStart(int(c.StartByte())); dl >= start {
			b.checkAligned(anchor, b.indentAt(dl), start)
		}
	}

	cursor := ls
	for i, bl := range blocks {
		if i > 0 {
			// else, elif, except and finally line up with their statement.
			if clause := bl.Parent(); clause != nil && !sameSpan(clause, c) && !sameSpan(clause, anchor) {
				b.checkAligned(clause, n.Indent, cursor)
			}
		}
		blk, blockStart, end := b.block(bl, n.Indent, cursor)
		if blockStart > cursor {
			n.Parts = append(n.Parts, Part{Text: string(b.src[cursor:blockStart])})
		}
		n.Parts = append(n.Parts, Part{Block: blk})
		cursor = end
	}
	return n, cursor
}

// block builds the suite bl of a statement whose keyword line is indented by
// owner. Nothing before cursor may be claimed. It returns the block along with
// the source range it owns.
func (b *builder) block(bl *sitter.Node, owner string, cursor int) (*Block, int, int) {
	stmts := statementChildren(bl)
	colonEnd := b.colonEnd(bl)

	if len(stmts) == 0 {
		b.fail(bl, len(owner), "expected an indented block")
		start := max(cursor, b.nextLineStart(colonEnd))
		blk := &Block{Indent: owner + b.unitOr(fallbackIndent)}
		return blk, start, start
	}

	first := int(stmts[0].StartByte())
	if colonEnd <= first && bytes.IndexByte(b.src[colonEnd:first], '\n') < 0 {
		start := max(cursor, colonEnd)
		children, end := b.statements(stmts, start, nil)
		blk := &Block{Inline: true, Stmts: children}
		b.inline = append(b.inline, inlineBlock{block: blk, owner: owner})
		return blk, start, end
	}

	start := max(cursor, min(b.nextLineStart(colonEnd), b.lineStart(first)))
	indent := b.indentAt(b.lineStart(first))
	if b.unit == "" && len(indent) > len(owner) && indent[:len(owner)] == owner {
		b.unit = indent[len(owner):]
	}

	children, end := b.statements(stmts, start, &suiteIndent{owner: owner})
	owned := b.footerEnd(end, indentWidth(indent))
	return &Block{
		Indent: indent,
		Stmts:  children,
		Footer: string(b.src[end:owned]),
	}, start, owned
}

func (b *builder) unitOr(def string) string {
	if b.unit != "" {
		return b.unit
	}
	return def
}

// footerEnd extends a block past the comment lines that follow its last
// statement at the block's depth or deeper. Blank lines are only claimed when
// such a comment follows them.
func (b *builder) footerEnd(pos, width int) int {
	owned := pos
	for p := pos; p < len(b.src); {
		next := b.nextLineStart(p)
		line := b.src[p:next]
		text := bytes.TrimRight(bytes.TrimLeft(line, " \t\f"), "\r\n")
		switch {
		case len(bytes.TrimSpace(text)) == 0:
		case text[0] == '#' && indentWidth(string(line)) >= width:
			owned = next
		default:
			return owned
		}
		p = next
	}
	return owned
}

// checkAligned requires the line holding n, when n starts it, to be indented
// exactly as want.
func (b *builder) checkAligned(n *sitter.Node, want string, cut int) {
	pos := int(n.StartByte())
	ls := b.lineStart(pos)
	if ls < cut {
		return
	}
	indent := b.indentAt(ls)
	if ls+len(indent) != pos || sameIndent(indent, want) {
		return
	}
	if deeperIndent(indent, want) {
		b.fail(n, len(indent), "unexpected indent")
		return
	}
	b.fail(n, len(indent), "unindent does not match any outer indentation level")
}

func sameSpan(a, c *sitter.Node) bool {
	return a.StartByte() == c.StartByte() && a.EndByte() == c.EndByte() && a.Kind() == c.Kind()
}

// colonEnd finds the end of the ":" that opens bl.
func (b *builder) colonEnd(bl *sitter.Node) int {
	for prev := bl.PrevSibling(); prev != nil; prev = prev.PrevSibling() {
		if prev.Kind() == ":" {
			return int(prev.EndByte())
		}
	}
	return int(bl.StartByte())
}

// declaration returns the function or class definition c introduces, looking
// through decorators.
func declaration(c *sitter.Node) *sitter.Node {
	switch c.Kind() {
	case "function_definition", "class_definition":
		return c
	case "decorated_definition":
		def := c.ChildByFieldName("definition")
		if def != nil && (def.Kind() == "function_definition" || def.Kind() == "class_definition") {
			return def
		}
	}
	return nil
}

// collectBlocks returns the suites owned directly by statement n, without
// descending into the suites themselves.
func collectBlocks(n *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	var walk func(*sitter.Node)
	walk = func(node *sitter.Node) {
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child == nil {
				continue
			}
			if child.Kind() == "block" {
				out = append(out, child)
				continue
			}
			walk(child)
		}
	}
	walk(n)
	return out
}

// statementChildren lists the named children of a module or block that are
// statements, skipping comments and line continuations.
func statementChildren(n *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child == nil || child.IsExtra() {
			continue
		}
		switch child.Kind() {
		case "comment", "line_continuation":
			continue
		}
		out = append(out, child)
	}
	return out
}

func syntaxError(root *sitter.Node, src []byte) error {
	bad := firstErrorNode(root, 0)
	if bad == nil {
		return errors.New(errors.CodeSyntaxError, "invalid python source")
	}

	pos := bad.StartPosition()
	var msg string
	if bad.IsMissing() {
		msg = fmt.Sprintf("missing %s", bad.Kind())
	} else {
		msg = fmt.Sprintf("unexpected %q", snippet(src, int(bad.StartByte()), int(bad.EndByte())))
	}
	return errors.Newf(errors.CodeSyntaxError, "%s", msg).
		WithContext(errors.CtxLine, int(pos.Row)+1).
		WithContext(errors.CtxColumn, int(pos.Column)+1)
}

const maxErrorDepth = 1000

func firstErrorNode(n *sitter.Node, depth int) *sitter.Node {
	if n == nil || depth > maxErrorDepth {
		return nil
	}
	if n.IsError() || n.IsMissing() {
		return n
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		if found := firstErrorNode(n.Child(i), depth+1); found != nil {
			return found
		}
	}
	return nil
}

func snippet(src []byte, start, end int) string {
	const limit = 40
	start = min(start, len(src))
	end = min(max(end, start), len(src))
	if i := bytes.IndexByte(src[start:end], '\n'); i >= 0 {
		end = start + i
	}
	if end-start > limit {
		end = start + limit
		for end > start && !utf8.RuneStart(src[end]) {
			end--
		}
	}
	return string(src[start:end])
}
