package text

import "fmt"

// Charset names accepted by [ParseCharset].
const (
	CharsetUnicode = "unicode"
	CharsetASCII   = "ascii"
)

// Glyphs is the set of characters a graph is drawn with.
type Glyphs struct {
	Name       string
	Node       rune
	Artificial rune
	Vertical   rune
	Horizontal rune

	// Diagonals for connections that move by a single lane.
	DiagRight rune
	DiagLeft  rune

	// Corners for connections that move by more than one lane. The Leave
	// corners sit on the origin lane, the Enter corners on the target.
	LeaveRight rune
	EnterRight rune
	LeaveLeft  rune
	EnterLeft  rune

	joins map[[2]rune]rune
}

var unicodeGlyphs = Glyphs{
	Name:       CharsetUnicode,
	Node:       '●',
	Artificial: '○',
	Vertical:   '│',
	Horizontal: '─',
	DiagRight:  '╲',
	DiagLeft:   '╱',
	LeaveRight: '╰',
	EnterRight: '╮',
	LeaveLeft:  '╯',
	EnterLeft:  '╭',
	joins: symmetric(map[[2]rune]rune{
		{'│', '─'}: '┼',
		{'│', '╰'}: '├',
		{'│', '╭'}: '├',
		{'│', '╯'}: '┤',
		{'│', '╮'}: '┤',
		{'╰', '╯'}: '┴',
		{'╭', '╮'}: '┬',
		{'├', '┤'}: '┼',
	}),
}

var asciiGlyphs = Glyphs{
	Name:       CharsetASCII,
	Node:       '*',
	Artificial: 'o',
	Vertical:   '|',
	Horizontal: '-',
	DiagRight:  '\\',
	DiagLeft:   '/',
	LeaveRight: '+',
	EnterRight: '+',
	LeaveLeft:  '+',
	EnterLeft:  '+',
	joins: symmetric(map[[2]rune]rune{
		{'|', '-'}: '+',
		{'|', '+'}: '+',
	}),
}

func symmetric(m map[[2]rune]rune) map[[2]rune]rune {
	out := make(map[[2]rune]rune, 2*len(m))
	for k, v := range m {
		out[k] = v
		out[[2]rune{k[1], k[0]}] = v
	}
	return out
}

// ParseCharset returns the glyph set with the given name. The empty name
// selects unicode.
func ParseCharset(name string) (*Glyphs, error) {
	switch name {
	case "", CharsetUnicode:
		return &unicodeGlyphs, nil
	case CharsetASCII:
		return &asciiGlyphs, nil
	default:
		return nil, fmt.Errorf("unknown charset %q (must be %s or %s)", name, CharsetUnicode, CharsetASCII)
	}
}

// join returns the glyph for a cell where next is drawn over prev.
func (g *Glyphs) join(prev, next rune) rune {
	if prev == ' ' || prev == next {
		return next
	}
	if r, ok := g.joins[[2]rune{prev, next}]; ok {
		return r
	}
	if prev == g.Horizontal {
		return next
	}
	return prev
}
