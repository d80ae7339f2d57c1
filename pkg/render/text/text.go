// Package text draws lane layouts as a terminal graph next to the commit
// subjects, in the spirit of `git log --graph`.
//
// Each lane occupies two columns. A row is drawn as a node line followed,
// when a lane moves, by a connector line built from the row's Down
// connections:
//
//	● a1b2c3d Merge branch 'topic'
//	│╲
//	● │ 9f8e7d6 main work
//	│ ● 5a4b3c2 topic work
//	│╱
//	● 0011223 initial commit
package text

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/revgraph/pkg/lanes"
	"github.com/matzehuels/revgraph/pkg/revision"
)

// ErrMismatch is returned when revisions and layouts do not line up.
var ErrMismatch = errors.New("revisions and layouts differ")

// DefaultPalette is used when [Options.Palette] is empty.
var DefaultPalette = []string{
	"#e06c75", "#98c379", "#e5c07b", "#61afef",
	"#c678dd", "#56b6c2", "#d19a66", "#abb2bf",
}

var styleID = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))

// Options configures rendering.
type Options struct {
	// Charset is [CharsetUnicode] (default) or [CharsetASCII].
	Charset string

	// Color paints lanes with the palette and ids in amber.
	Color bool

	// Palette holds lipgloss colors indexed by lane color modulo length.
	Palette []string

	// Body appends the full message below multi-line subjects.
	Body bool
}

// Line is one output line. Connector lines have Row -1 and no Label.
type Line struct {
	Row   int
	Graph string
	Label string
}

// String joins the graph and the label.
func (l Line) String() string {
	if l.Label == "" {
		return strings.TrimRight(l.Graph, " ")
	}
	return l.Graph + l.Label
}

// Render writes the graph for revs and their layouts to w.
func Render(w io.Writer, revs []revision.Revision, layouts []lanes.RevisionLayout, opts Options) error {
	lines, err := Lines(revs, layouts, opts)
	if err != nil {
		return err
	}
	for _, l := range lines {
		if _, err := io.WriteString(w, l.String()+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// Lines returns the output lines without writing them, for callers that
// page or highlight rows.
func Lines(revs []revision.Revision, layouts []lanes.RevisionLayout, opts Options) ([]Line, error) {
	if len(revs) != len(layouts) {
		return nil, fmt.Errorf("%w: %d revisions, %d layouts", ErrMismatch, len(revs), len(layouts))
	}
	glyphs, err := ParseCharset(opts.Charset)
	if err != nil {
		return nil, err
	}
	p := newPainter(opts)

	var out []Line
	for i, l := range layouts {
		if l.ID != revs[i].ID {
			return nil, fmt.Errorf("%w: row %d is %s, layout is for %s", ErrMismatch, i, revs[i].ID.Short(), l.ID.Short())
		}
		out = append(out, Line{
			Row:   i,
			Graph: p.paint(nodeCells(l, revs[i].ID.IsArtificial(), glyphs), 2*l.Width),
			Label: p.label(revs[i]),
		})
		if opts.Body && revs[i].Body != "" {
			cont := p.paint(continuationCells(l, glyphs), 2*l.Width)
			for _, text := range strings.Split(revs[i].Body, "\n")[1:] {
				out = append(out, Line{Row: -1, Graph: cont, Label: "    " + text})
			}
		}
		if moves(l) {
			out = append(out, Line{Row: -1, Graph: p.paint(connectorCells(l, glyphs), 0)})
		}
	}
	return out, nil
}

type cell struct {
	r     rune
	color int
}

type cells []cell

func (c *cells) put(x int, r rune, color int, g *Glyphs) {
	for len(*c) <= x {
		*c = append(*c, cell{' ', -1})
	}
	prev := (*c)[x]
	joined := g.join(prev.r, r)
	if joined != prev.r {
		(*c)[x] = cell{joined, color}
	}
}

func nodeCells(l lanes.RevisionLayout, artificial bool, g *Glyphs) cells {
	var c cells
	for _, conn := range l.Connections {
		if conn.Lane != l.Lane {
			c.put(2*conn.Lane, g.Vertical, conn.Color, g)
		}
	}
	node := g.Node
	if artificial {
		node = g.Artificial
	}
	c.put(2*l.Lane, node, l.Color, g)
	return c
}

// continuationCells are the verticals that pass the lines of a message body.
func continuationCells(l lanes.RevisionLayout, g *Glyphs) cells {
	var c cells
	for _, conn := range l.Downs() {
		c.put(2*conn.Lane, g.Vertical, conn.Color, g)
	}
	return c
}

func connectorCells(l lanes.RevisionLayout, g *Glyphs) cells {
	var c cells
	for _, conn := range l.Downs() {
		from, to := conn.Lane, conn.Target()
		switch {
		case conn.Delta == 0:
			c.put(2*from, g.Vertical, conn.Color, g)
		case conn.Delta == 1:
			c.put(2*from+1, g.DiagRight, conn.Color, g)
		case conn.Delta == -1:
			c.put(2*from-1, g.DiagLeft, conn.Color, g)
		case conn.Delta > 1:
			c.put(2*from, g.LeaveRight, conn.Color, g)
			for x := 2*from + 1; x < 2*to; x++ {
				c.put(x, g.Horizontal, conn.Color, g)
			}
			c.put(2*to, g.EnterRight, conn.Color, g)
		default:
			c.put(2*from, g.LeaveLeft, conn.Color, g)
			for x := 2*to + 1; x < 2*from; x++ {
				c.put(x, g.Horizontal, conn.Color, g)
			}
			c.put(2*to, g.EnterLeft, conn.Color, g)
		}
	}
	return c
}

// moves reports whether any lane leaving l changes position.
func moves(l lanes.RevisionLayout) bool {
	for _, conn := range l.Downs() {
		if conn.Delta != 0 {
			return true
		}
	}
	return false
}

type painter struct {
	color  bool
	styles []lipgloss.Style
}

func newPainter(opts Options) *painter {
	palette := opts.Palette
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	p := &painter{color: opts.Color}
	for _, c := range palette {
		p.styles = append(p.styles, lipgloss.NewStyle().Foreground(lipgloss.Color(c)))
	}
	return p
}

// paint renders c padded with spaces to at least width columns.
func (p *painter) paint(c cells, width int) string {
	var b strings.Builder
	for _, cl := range c {
		if !p.color || cl.color < 0 || cl.r == ' ' {
			b.WriteRune(cl.r)
			continue
		}
		b.WriteString(p.styles[cl.color%len(p.styles)].Render(string(cl.r)))
	}
	if pad := width - len(c); pad > 0 {
		b.WriteString(strings.Repeat(" ", pad))
	}
	return b.String()
}

func (p *painter) label(r revision.Revision) string {
	id := r.ID.Short()
	if p.color {
		id = styleID.Render(id)
	}
	if r.Subject == "" {
		return id
	}
	return id + " " + r.Subject
}
