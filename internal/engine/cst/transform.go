package cst

import "pyannotate/internal/engine/scope"

// Visitor receives the class and function definitions of a module in source
// order. Enter runs before a definition's body is walked and Leave after it.
// Leave gets the node as parsed and the node with its body already
// transformed, and returns the node to keep; returning nil keeps updated.
//
// The scope passed to both hooks is the one enclosing the definition. For a
// class it does not include the class itself.
type Visitor interface {
	Enter(s scope.Stack, n *Node)
	Leave(s scope.Stack, original, updated *Node) *Node
}

// EnterFunc and LeaveFunc are the hook signatures used by Handlers.
type (
	EnterFunc func(s scope.Stack, n *Node)
	LeaveFunc func(s scope.Stack, original, updated *Node) *Node
)

// Handlers is a Visitor that dispatches on node kind. Kinds without an entry
// are passed through.
type Handlers struct {
	OnEnter map[Kind]EnterFunc
	OnLeave map[Kind]LeaveFunc
}

func (h Handlers) Enter(s scope.Stack, n *Node) {
	if fn, ok := h.OnEnter[n.Kind]; ok {
		fn(s, n)
	}
}

func (h Handlers) Leave(s scope.Stack, original, updated *Node) *Node {
	if fn, ok := h.OnLeave[original.Kind]; ok {
		return fn(s, original, updated)
	}
	return updated
}

// Transform walks m depth first and returns the module with every node
// replaced by its visitor result. Nodes the visitor did not change are shared
// with m; if nothing changed, m itself is returned.
func Transform(m *Module, v Visitor) *Module {
	body, changed := transformBlock(m.Body, scope.Stack{}, v)
	if !changed {
		return m
	}
	out := *m
	out.Body = body
	return &out
}

func transformBlock(b *Block, s scope.Stack, v Visitor) (*Block, bool) {
	var stmts []*Node
	for i, n := range b.Stmts {
		updated := transformNode(n, s, v)
		if updated == n {
			continue
		}
		if stmts == nil {
			stmts = make([]*Node, len(b.Stmts))
			copy(stmts, b.Stmts)
		}
		stmts[i] = updated
	}
	if stmts == nil {
		return b, false
	}
	out := *b
	out.Stmts = stmts
	return &out, true
}

func transformNode(n *Node, s scope.Stack, v Visitor) *Node {
	switch n.Kind {
	case KindClass:
		v.Enter(s, n)
		updated := transformParts(n, s.Push(n.Name), v)
		return leave(v, s, n, updated)
	case KindFunction:
		v.Enter(s, n)
		updated := transformParts(n, s, v)
		return leave(v, s, n, updated)
	case KindCompound:
		return transformParts(n, s, v)
	default:
		return n
	}
}

func leave(v Visitor, s scope.Stack, original, updated *Node) *Node {
	if out := v.Leave(s, original, updated); out != nil {
		return out
	}
	return updated
}

func transformParts(n *Node, s scope.Stack, v Visitor) *Node {
	var parts []Part
	for i, p := range n.Parts {
		if p.Block == nil {
			continue
		}
		blk, changed := transformBlock(p.Block, s, v)
		if !changed {
			continue
		}
		if parts == nil {
			parts = make([]Part, len(n.Parts))
			copy(parts, n.Parts)
		}
		parts[i] = Part{Block: blk}
	}
	if parts == nil {
		return n
	}
	out := *n
	out.Parts = parts
	return &out
}
