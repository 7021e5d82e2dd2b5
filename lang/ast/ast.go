// Package ast defines LOL's arena-backed abstract syntax tree: a
// contiguous slice of tagged nodes addressed by 32-bit IDs instead of
// pointers, so the whole tree can be built, copied and indexed as one
// flat slice with no per-node allocation. The arena is append-only and
// owned by the parser; downstream stages (lowering, resolution, code
// generation) only read from it.
package ast

import (
	"fmt"
	"strings"

	"github.com/mna/lolc/lang/token"
)

// ID addresses a node in an Arena. NoID is the sentinel denoting the
// empty list / end of a list chain.
type ID uint32

// NoID is the all-ones sentinel meaning "no node" / "end of list".
const NoID ID = 1<<32 - 1

// Kind discriminates the tagged Node variants.
type Kind uint8

const (
	// KindList is a list cell: two IDs, Elem and Next.
	KindList Kind = iota
	// KindSymbol is a bare symbol, identified by its source offset.
	KindSymbol
	// KindString is a string literal, identified by the offset of its
	// opening quote.
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindList:
		return "list"
	case KindSymbol:
		return "symbol"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// Node is a single arena entry. Only the fields relevant to its Kind are
// meaningful: a KindList uses Elem/Next, KindSymbol and KindString use
// Offset.
type Node struct {
	Kind Kind

	// KindList fields.
	Elem ID
	Next ID

	// KindSymbol / KindString field: source offset of the first character
	// (the symbol text itself, or the opening quote of the string).
	Offset token.Pos
}

// Arena holds every node produced while parsing one source buffer. IDs
// are indices into Nodes; the zero value of Arena is ready to use.
type Arena struct {
	Src   []byte
	Nodes []Node
}

// NewArena creates an arena over the given source buffer.
func NewArena(src []byte) *Arena {
	return &Arena{Src: src}
}

// addList appends a new list cell and returns its ID.
func (a *Arena) addList(elem, next ID) ID {
	id := ID(len(a.Nodes))
	a.Nodes = append(a.Nodes, Node{Kind: KindList, Elem: elem, Next: next})
	return id
}

// AddSymbol appends a new symbol node at the given offset and returns its
// ID.
func (a *Arena) AddSymbol(offset token.Pos) ID {
	id := ID(len(a.Nodes))
	a.Nodes = append(a.Nodes, Node{Kind: KindSymbol, Offset: offset})
	return id
}

// AddString appends a new string node at the given offset (of its
// opening quote) and returns its ID.
func (a *Arena) AddString(offset token.Pos) ID {
	id := ID(len(a.Nodes))
	a.Nodes = append(a.Nodes, Node{Kind: KindString, Offset: offset})
	return id
}

// AddCell appends a new list cell whose Elem is elem and whose Next is
// NoID, for the parser to chain as it goes. It returns the cell's ID.
func (a *Arena) AddCell(elem ID) ID {
	return a.addList(elem, NoID)
}

// SetNext patches the Next pointer of the list cell at id. Used by the
// parser to chain cells as each subsequent element is parsed.
func (a *Arena) SetNext(id, next ID) {
	a.Nodes[id].Next = next
}

// Get returns the node at id.
func (a *Arena) Get(id ID) Node {
	return a.Nodes[id]
}

// SymbolText returns the text of the symbol node at id, re-scanning the
// symbol character class at its offset. Symbol nodes never carry a copy
// of their text, only where it starts.
func (a *Arena) SymbolText(id ID) string {
	n := a.Nodes[id]
	return token.SymbolText(a.Src, uint32(n.Offset))
}

// StringText returns the raw text between the quotes of the string node
// at id, escape sequences included verbatim. No stage processes them:
// lang/vm uses this raw text as the string's value, and lang/codegen
// quotes it into a C literal that reproduces the same raw text, so a
// backslash in the source reaches the running program unchanged.
func (a *Arena) StringText(id ID) string {
	return a.StringTextAtOffset(uint32(a.Nodes[id].Offset))
}

// StringTextAtOffset is StringText parameterized directly by source
// offset rather than node ID, for consumers downstream of lowering (the
// rpn.Str instruction carries only the offset, having discarded the
// node ID).
func (a *Arena) StringTextAtOffset(offset uint32) string {
	off := int(offset) + 1 // past opening quote
	end := off
	for end < len(a.Src) {
		if a.Src[end] == '\\' {
			end += 2
			continue
		}
		if a.Src[end] == '"' {
			break
		}
		end++
	}
	if end > len(a.Src) {
		end = len(a.Src)
	}
	return string(a.Src[off:end])
}

// Elements returns the IDs of every element of the list headed by head,
// in source order. head may be NoID, yielding an empty slice.
func (a *Arena) Elements(head ID) []ID {
	var out []ID
	for cur := head; cur != NoID; cur = a.Nodes[cur].Next {
		out = append(out, a.Nodes[cur].Elem)
	}
	return out
}

// Print renders a parenthesized, re-tokenizable description of the node
// at id, for the debug AST dump printed by the parse subcommand.
func (a *Arena) Print(id ID) string {
	var sb strings.Builder
	a.print(&sb, id)
	return sb.String()
}

func (a *Arena) print(sb *strings.Builder, id ID) {
	if id == NoID {
		sb.WriteString("()")
		return
	}
	n := a.Get(id)
	switch n.Kind {
	case KindSymbol:
		sb.WriteString(a.SymbolText(id))
	case KindString:
		fmt.Fprintf(sb, "%q", a.StringText(id))
	case KindList:
		sb.WriteByte('(')
		for i, el := range a.Elements(id) {
			if i > 0 {
				sb.WriteByte(' ')
			}
			a.print(sb, el)
		}
		sb.WriteByte(')')
	}
}
