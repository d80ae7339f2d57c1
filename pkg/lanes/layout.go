package lanes

import (
	"errors"
	"fmt"

	"github.com/matzehuels/revgraph/pkg/revision"
)

var (
	// ErrInvalidID is returned when a revision or one of its parents has an
	// empty identifier.
	ErrInvalidID = errors.New("revision ID must not be empty")

	// ErrDuplicateRevision is returned when the same revision id is laid out
	// twice.
	ErrDuplicateRevision = errors.New("duplicate revision")

	// ErrOutOfOrder is returned when a revision names a parent that was
	// already laid out above it, or names itself. The input must list every
	// revision before its parents.
	ErrOutOfOrder = errors.New("revision appears after one of its parents")

	// ErrLaneInvariant is returned when the previous row's revision is not
	// in its own lane sequence. It indicates corrupted builder state.
	ErrLaneInvariant = errors.New("revision missing from its own lane sequence")
)

// Direction tells which adjacent row a connector half points to.
type Direction int

const (
	// Up points at the row directly above.
	Up Direction = iota + 1
	// Down points at the row directly below.
	Down
)

// String returns "up" or "down".
func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// MarshalText implements [encoding.TextMarshaler].
func (d Direction) MarshalText() ([]byte, error) {
	if d != Up && d != Down {
		return nil, fmt.Errorf("invalid direction %d", int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *Direction) UnmarshalText(b []byte) error {
	switch string(b) {
	case "up":
		*d = Up
	case "down":
		*d = Down
	default:
		return fmt.Errorf("invalid direction %q", b)
	}
	return nil
}

// Opposite returns the direction of the matching half on the adjacent row.
func (d Direction) Opposite() Direction {
	if d == Up {
		return Down
	}
	return Up
}

// Connection is one half of a connector between two adjacent rows.
//
// Lane is the lane index on the row that owns the connection. Delta is the
// signed lane offset of the other end: the far end sits at Lane+Delta on the
// row in Direction.
type Connection struct {
	Lane      int
	Delta     int
	Direction Direction
	Color     int
}

// Target returns the lane index of the far end.
func (c Connection) Target() int { return c.Lane + c.Delta }

// Mirror returns the matching half as seen from the adjacent row.
func (c Connection) Mirror() Connection {
	return Connection{
		Lane:      c.Lane + c.Delta,
		Delta:     -c.Delta,
		Direction: c.Direction.Opposite(),
		Color:     c.Color,
	}
}

// RevisionLayout is the computed placement of one revision.
type RevisionLayout struct {
	ID    revision.ID
	Lane  int // index of the revision's own lane in its row
	Color int
	Width int // number of active lanes in the row

	// Connections holds Up halves first (added when the row was placed),
	// then Down halves (added when the next row was placed).
	Connections []Connection
}

// Ups returns the connections pointing at the row above.
func (l RevisionLayout) Ups() []Connection { return l.filter(Up) }

// Downs returns the connections pointing at the row below.
func (l RevisionLayout) Downs() []Connection { return l.filter(Down) }

func (l RevisionLayout) filter(d Direction) []Connection {
	var out []Connection
	for _, c := range l.Connections {
		if c.Direction == d {
			out = append(out, c)
		}
	}
	return out
}

func (l RevisionLayout) clone() RevisionLayout {
	l.Connections = append([]Connection(nil), l.Connections...)
	return l
}

// Stats summarizes a computed layout.
type Stats struct {
	Rows     int
	MaxWidth int
	Colors   int
	Merges   int // rows with more than one Down connection starting at their own lane
}

// Summarize computes [Stats] for layouts.
func Summarize(layouts []RevisionLayout) Stats {
	s := Stats{Rows: len(layouts)}
	colors := make(map[int]struct{})
	for _, l := range layouts {
		s.MaxWidth = max(s.MaxWidth, l.Width)
		colors[l.Color] = struct{}{}
		own := 0
		for _, c := range l.Connections {
			colors[c.Color] = struct{}{}
			if c.Direction == Down && c.Lane == l.Lane {
				own++
			}
		}
		if own > 1 {
			s.Merges++
		}
	}
	s.Colors = len(colors)
	return s
}
