package lanes

import (
	"fmt"

	"github.com/matzehuels/revgraph/pkg/revision"
)

// ColorPolicy selects how merge parents are colored.
type ColorPolicy int

const (
	// ColorFreshOnMerge gives every unseen parent of a merge a new color.
	ColorFreshOnMerge ColorPolicy = iota

	// ColorFirstParent lets the first parent of a merge continue the
	// merge's color; the remaining unseen parents get new colors.
	ColorFirstParent
)

// Policy names accepted by [ParseColorPolicy].
const (
	PolicyFirstParent  = "first-parent"
	PolicyFreshOnMerge = "fresh-on-merge"
)

// String returns the policy name.
func (p ColorPolicy) String() string {
	switch p {
	case ColorFreshOnMerge:
		return PolicyFreshOnMerge
	case ColorFirstParent:
		return PolicyFirstParent
	default:
		return fmt.Sprintf("ColorPolicy(%d)", int(p))
	}
}

// ParseColorPolicy converts a policy name into a [ColorPolicy].
// The empty string selects [ColorFreshOnMerge].
func ParseColorPolicy(s string) (ColorPolicy, error) {
	switch s {
	case "", PolicyFreshOnMerge:
		return ColorFreshOnMerge, nil
	case PolicyFirstParent:
		return ColorFirstParent, nil
	default:
		return 0, fmt.Errorf("unknown color policy %q (must be %s or %s)", s, PolicyFreshOnMerge, PolicyFirstParent)
	}
}

// ColorMap assigns small sequential integers to revision ids in first-seen
// order. A color, once assigned, never changes.
//
// The zero value is not usable; use [NewColorMap].
type ColorMap struct {
	next int
	m    map[revision.ID]int
}

// NewColorMap returns an empty color map. The first allocated color is 0.
func NewColorMap() *ColorMap {
	return &ColorMap{m: make(map[revision.ID]int)}
}

// Map returns the color of id, allocating the next unused color if id has
// none yet.
func (c *ColorMap) Map(id revision.ID) int {
	if color, ok := c.m[id]; ok {
		return color
	}
	color := c.next
	c.m[id] = color
	c.next++
	return color
}

// Lookup returns the color of id without allocating.
func (c *ColorMap) Lookup(id revision.ID) (int, bool) {
	color, ok := c.m[id]
	return color, ok
}

// Len returns the number of colors allocated so far.
func (c *ColorMap) Len() int { return c.next }

// inherit gives id the known color unless id already has one. It does not
// advance the allocator.
func (c *ColorMap) inherit(id revision.ID, color int) {
	if _, ok := c.m[id]; ok {
		return
	}
	c.m[id] = color
}

// Propagate colors the parents of u, whose own color is color.
//
// A single parent inherits color. Roots color nothing. Merge parents follow
// policy.
func (c *ColorMap) Propagate(u revision.Revision, color int, policy ColorPolicy) {
	switch {
	case len(u.Parents) == 0:
		return
	case len(u.Parents) == 1:
		c.inherit(u.Parents[0], color)
	default:
		rest := u.Parents
		if policy == ColorFirstParent {
			c.inherit(u.Parents[0], color)
			rest = u.Parents[1:]
		}
		for _, id := range rest {
			c.Map(id)
		}
	}
}

// clone returns an independent copy of c.
func (c *ColorMap) clone() *ColorMap {
	m := make(map[revision.ID]int, len(c.m))
	for k, v := range c.m {
		m[k] = v
	}
	return &ColorMap{next: c.next, m: m}
}
