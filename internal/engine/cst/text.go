package cst

import "bytes"

func (b *builder) lineStart(pos int) int {
	pos = min(pos, len(b.src))
	return bytes.LastIndexByte(b.src[:pos], '\n') + 1
}

// nextLineStart returns the offset just past the first newline at or after
// pos, or the end of the source.
func (b *builder) nextLineStart(pos int) int {
	pos = min(pos, len(b.src))
	if i := bytes.IndexByte(b.src[pos:], '\n'); i >= 0 {
		return pos + i + 1
	}
	return len(b.src)
}

// stmtLineEnd extends a statement end through the rest of its physical line,
// including any trailing comment and the line terminator.
func (b *builder) stmtLineEnd(end int) int {
	end = min(end, len(b.src))
	if end > 0 && b.src[end-1] == '\n' {
		return end
	}
	return b.nextLineStart(end)
}

func (b *builder) indentAt(pos int) string {
	end := pos
	for end < len(b.src) {
		switch b.src[end] {
		case ' ', '\t', '\f':
			end++
			continue
		}
		break
	}
	return string(b.src[pos:end])
}

// indentWidth measures indentation the way the Python tokenizer does: tabs
// advance to the next multiple of eight and a form feed resets the column.
func indentWidth(s string) int {
	w := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ':
			w++
		case '\t':
			w = (w/8 + 1) * 8
		case '\f':
			w = 0
		default:
			return w
		}
	}
	return w
}

// altWidth measures indentation with tabs counted as one column. Python
// compares both measures to reject ambiguous mixes of tabs and spaces.
func altWidth(s string) int {
	w := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t':
			w++
		case '\f':
			w = 0
		default:
			return w
		}
	}
	return w
}

func sameIndent(a, b string) bool {
	return indentWidth(a) == indentWidth(b) && altWidth(a) == altWidth(b)
}

func deeperIndent(a, b string) bool {
	return indentWidth(a) > indentWidth(b) && altWidth(a) > altWidth(b)
}

// detectNewline returns the terminator of the first line. A file with no
// "\n" at all but a "\r" uses lone carriage returns throughout.
func detectNewline(src []byte) string {
	i := bytes.IndexByte(src, '\n')
	switch {
	case i > 0 && src[i-1] == '\r':
		return "\r\n"
	case i < 0 && bytes.IndexByte(src, '\r') >= 0:
		return "\r"
	}
	return "\n"
}
