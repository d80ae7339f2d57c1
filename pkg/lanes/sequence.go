package lanes

import (
	"slices"

	"github.com/matzehuels/revgraph/pkg/revision"
)

// Sequence is the ordered list of revision ids occupying a row's lanes,
// left to right. An id appears at most once.
type Sequence []revision.ID

// Index returns the lane of id, or -1.
func (s Sequence) Index(id revision.ID) int { return slices.Index(s, id) }

// Contains reports whether id occupies a lane.
func (s Sequence) Contains(id revision.ID) bool { return s.Index(id) >= 0 }

// Clone returns an independent copy.
func (s Sequence) Clone() Sequence { return slices.Clone(s) }

// positions indexes the sequence by id.
func (s Sequence) positions() map[revision.ID]int {
	m := make(map[revision.ID]int, len(s))
	for i, id := range s {
		m[id] = i
	}
	return m
}

// insertAt inserts id at i, appending when i is past the end.
func (s Sequence) insertAt(i int, id revision.ID) Sequence {
	if i >= len(s) {
		return append(s, id)
	}
	return slices.Insert(s, i, id)
}

// advance derives the lower row's sequence from the upper row's.
//
// upper is left untouched. p is the lane of u in upper.
func advance(upper Sequence, p int, u, d revision.Revision) Sequence {
	next := slices.Delete(upper.Clone(), p, p+1)

	var missing []revision.ID
	for _, id := range u.Parents {
		if !next.Contains(id) && !slices.Contains(missing, id) {
			missing = append(missing, id)
		}
	}

	at := p
	if i := slices.Index(missing, d.ID); i >= 0 {
		next = next.insertAt(at, d.ID)
		at++
		missing = slices.Delete(missing, i, i+1)
	}
	for _, id := range missing {
		next = next.insertAt(at, id)
		at++
	}

	if !next.Contains(d.ID) {
		if t := upper.Index(d.ID); t >= 0 {
			next = next.insertAt(t, d.ID)
		} else {
			next = append(next, d.ID)
		}
	}
	return next
}

// connect builds the connector halves between an upper row u and the row
// below it. Down halves belong to u's layout, Up halves to the lower row.
func connect(u revision.Revision, upper, lower Sequence, colors *ColorMap) (downs, ups []Connection) {
	pos := lower.positions()
	link := func(id revision.ID, from int) {
		to, ok := pos[id]
		if !ok {
			return
		}
		color := colors.Map(id)
		downs = append(downs, Connection{Lane: from, Delta: to - from, Direction: Down, Color: color})
		ups = append(ups, Connection{Lane: to, Delta: from - to, Direction: Up, Color: color})
	}

	for from, id := range upper {
		if id != u.ID {
			link(id, from)
			continue
		}
		for _, parent := range u.Parents {
			link(parent, from)
		}
	}
	return downs, ups
}
