package token

import "fmt"

// File is the append-only source buffer: an immutable byte sequence
// indexed by 32-bit offsets. It additionally
// records line-start offsets as they are discovered by the scanner, so
// that diagnostics can report a 1-based line/column and the offending
// source line without the tokenizer ever copying text out of the buffer.
type File struct {
	Name string
	Src  []byte

	// lineOffsets[i] is the byte offset of the first character of line i+1
	// (line 1 is implicitly at offset 0 and is not stored).
	lineOffsets []int
}

// NewFile wraps src as a named source buffer.
func NewFile(name string, src []byte) *File {
	return &File{Name: name, Src: src}
}

// AddLine records that a new line begins at the given byte offset. Callers
// (the scanner) must call this in increasing offset order, once per
// newline consumed.
func (f *File) AddLine(offset int) {
	n := len(f.lineOffsets)
	if n > 0 && f.lineOffsets[n-1] >= offset {
		return // already recorded, or out of order; ignore
	}
	f.lineOffsets = append(f.lineOffsets, offset)
}

// Position returns the 1-based line and column for the given byte offset.
func (f *File) Position(offset int) (line, col int) {
	line = 1
	lineStart := 0
	for _, lo := range f.lineOffsets {
		if lo > offset {
			break
		}
		line++
		lineStart = lo
	}
	return line, offset - lineStart + 1
}

// Line returns the full text of the source line containing offset, with
// any trailing CR/LF stripped.
func (f *File) Line(offset int) string {
	start := 0
	end := len(f.Src)
	for _, lo := range f.lineOffsets {
		if lo <= offset {
			start = lo
			continue
		}
		end = lo
		break
	}
	line := f.Src[start:end]
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return string(line)
}

// PositionString renders a "file:line:col" description of offset, the
// form used to prefix scanner and parser error messages.
func (f *File) PositionString(offset int) string {
	line, col := f.Position(offset)
	if f.Name == "" {
		return fmt.Sprintf("%d:%d", line, col)
	}
	return fmt.Sprintf("%s:%d:%d", f.Name, line, col)
}
