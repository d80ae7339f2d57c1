package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/revgraph/pkg/render/text"
	"github.com/matzehuels/revgraph/pkg/revision"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	detailKeyStyle    = lipgloss.NewStyle().Foreground(colorGray).Width(10)
)

// detailHeight is the number of lines below the graph.
const detailHeight = 5

// =============================================================================
// GraphModel - Interactive graph browser
// =============================================================================

// GraphModel is the bubbletea model for scrolling through a rendered graph.
// The cursor always rests on a revision line.
type GraphModel struct {
	Revisions []revision.Revision
	Lines     []text.Line
	Cursor    int // index into Lines
	Offset    int // first visible line
	Height    int // visible graph lines
}

// NewGraphModel creates a browser over lines rendered from revs.
func NewGraphModel(revs []revision.Revision, lines []text.Line) GraphModel {
	return GraphModel{Revisions: revs, Lines: lines, Height: 20}
}

func (m GraphModel) Init() tea.Cmd {
	return nil
}

func (m GraphModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.moveTo(m.step(m.Cursor, -1))
		case "down", "j":
			m.moveTo(m.step(m.Cursor, 1))
		case "pgup", "ctrl+b":
			m.moveTo(m.nearest(m.Cursor-m.Height, 1))
		case "pgdown", "ctrl+f", " ":
			m.moveTo(m.nearest(m.Cursor+m.Height, -1))
		case "g", "home":
			m.moveTo(m.nearest(0, 1))
		case "G", "end":
			m.moveTo(m.nearest(len(m.Lines)-1, -1))
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - detailHeight - 3
		if m.Height < 3 {
			m.Height = 3
		}
		m.moveTo(m.Cursor)
	}
	return m, nil
}

// step returns the next revision line from i in direction dir, or i.
func (m GraphModel) step(i, dir int) int {
	for j := i + dir; j >= 0 && j < len(m.Lines); j += dir {
		if m.Lines[j].Row >= 0 {
			return j
		}
	}
	return i
}

// nearest clamps i and returns the closest revision line, searching in
// direction dir first.
func (m GraphModel) nearest(i, dir int) int {
	if len(m.Lines) == 0 {
		return 0
	}
	i = max(0, min(i, len(m.Lines)-1))
	if m.Lines[i].Row >= 0 {
		return i
	}
	if j := m.step(i, dir); j != i {
		return j
	}
	return m.step(i, -dir)
}

// moveTo sets the cursor and scrolls it into view.
func (m *GraphModel) moveTo(i int) {
	m.Cursor = i
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

// Selected returns the revision under the cursor.
func (m GraphModel) Selected() (revision.Revision, bool) {
	if m.Cursor >= len(m.Lines) {
		return revision.Revision{}, false
	}
	row := m.Lines[m.Cursor].Row
	if row < 0 || row >= len(m.Revisions) {
		return revision.Revision{}, false
	}
	return m.Revisions[row], true
}

func (m GraphModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Commit Graph"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ j/k move  pgup/pgdn page  g/G first/last  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Lines))
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		if i == m.Cursor {
			cursor = listSelectedStyle.Render("▸ ")
		}
		b.WriteString(cursor + m.Lines[i].String() + "\n")
	}
	for i := end - m.Offset; i < m.Height; i++ {
		b.WriteString("\n")
	}

	b.WriteString(listDimStyle.Render(strings.Repeat("─", 40)))
	b.WriteString("\n")
	if rev, ok := m.Selected(); ok {
		b.WriteString(detailKeyStyle.Render("commit") + " " + StyleHighlight.Render(string(rev.ID)) + "\n")
		b.WriteString(detailKeyStyle.Render("author") + " " + StyleValue.Render(formatPerson(rev.Author, rev.AuthorEmail)) + "\n")
		date := ""
		if !rev.CommitTime.IsZero() {
			date = rev.CommitTime.Format("Mon Jan 2 15:04:05 2006 -0700")
		}
		b.WriteString(detailKeyStyle.Render("date") + " " + StyleValue.Render(date) + "\n")
		b.WriteString(detailKeyStyle.Render("parents") + " " + StyleDim.Render(shortIDs(rev.Parents)) + "\n")
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.position(), len(m.Revisions))))

	return b.String()
}

// position is the 1-based revision number under the cursor.
func (m GraphModel) position() int {
	if m.Cursor < len(m.Lines) && m.Lines[m.Cursor].Row >= 0 {
		return m.Lines[m.Cursor].Row + 1
	}
	return 0
}

// =============================================================================
// Helpers
// =============================================================================

func formatPerson(name, email string) string {
	if email == "" {
		return name
	}
	return fmt.Sprintf("%s <%s>", name, email)
}

func shortIDs(ids []revision.ID) string {
	if len(ids) == 0 {
		return "(root)"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.Short()
	}
	return strings.Join(parts, " ")
}
