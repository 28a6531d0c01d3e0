package cst

import (
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// parserPool recycles tree-sitter parsers configured for Python. Parsing the
// same process-wide grammar from several goroutines is safe as long as each
// goroutine holds its own parser.
type parserPool struct {
	lang *sitter.Language
	pool sync.Pool

	leases   map[*sitter.Parser]struct{}
	leasesMu sync.Mutex
}

func newParserPool(lang *sitter.Language) *parserPool {
	p := &parserPool{
		lang:   lang,
		leases: make(map[*sitter.Parser]struct{}),
	}
	p.pool = sync.Pool{
		New: func() any {
			sp := sitter.NewParser()
			_ = sp.SetLanguage(lang)
			return sp
		},
	}
	return p
}

// get returns a parser ready for p's language.
func (p *parserPool) get() *sitter.Parser {
	sp := p.pool.Get().(*sitter.Parser)
	_ = sp.SetLanguage(p.lang)

	p.leasesMu.Lock()
	p.leases[sp] = struct{}{}
	p.leasesMu.Unlock()

	return sp
}

// put resets sp and returns it to the pool. sp must not be used afterwards.
func (p *parserPool) put(sp *sitter.Parser) {
	if sp == nil {
		return
	}

	p.leasesMu.Lock()
	delete(p.leases, sp)
	p.leasesMu.Unlock()

	sp.Reset()
	p.pool.Put(sp)
}

// leased returns the number of parsers currently checked out.
func (p *parserPool) leased() int {
	p.leasesMu.Lock()
	defer p.leasesMu.Unlock()
	return len(p.leases)
}

var (
	pythonOnce sync.Once
	pythonLang *sitter.Language
	pythonPool *parserPool
)

func python() *parserPool {
	pythonOnce.Do(func() {
		pythonLang = sitter.NewLanguage(tree_sitter_python.Language())
		pythonPool = newParserPool(pythonLang)
	})
	return pythonPool
}
