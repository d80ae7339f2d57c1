package lanes

import (
	"fmt"
	"slices"

	"github.com/matzehuels/revgraph/pkg/revision"
)

// Option configures a [Builder].
type Option func(*Builder)

// WithColorPolicy selects how merge parents are colored.
func WithColorPolicy(p ColorPolicy) Option {
	return func(b *Builder) { b.policy = p }
}

// WithCapacity preallocates room for n rows.
func WithCapacity(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.rows = make([]RevisionLayout, 0, n)
		}
	}
}

// Builder lays out revisions one row at a time.
//
// After a failed [Builder.Append] the builder keeps returning the same
// error and accepts no further rows; the rows laid out before the failure
// are still available.
type Builder struct {
	policy ColorPolicy
	colors *ColorMap
	rows   []RevisionLayout
	seen   map[revision.ID]struct{}

	last  revision.Revision // revision of the bottom row
	lanes Sequence          // lane sequence of the bottom row
	err   error
}

// NewBuilder returns an empty builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		colors: NewColorMap(),
		seen:   make(map[revision.ID]struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Compute lays out revs in one pass. revs must list every revision before
// its parents. On error no layout is returned.
func Compute(revs []revision.Revision, opts ...Option) ([]RevisionLayout, error) {
	b := NewBuilder(append([]Option{WithCapacity(len(revs))}, opts...)...)
	for _, rev := range revs {
		if err := b.Append(rev); err != nil {
			return nil, err
		}
	}
	return b.rows, nil
}

// Append lays out rev as the next row. A rejected revision leaves the
// builder's rows unchanged.
func (b *Builder) Append(rev revision.Revision) error {
	if b.err != nil {
		return b.err
	}
	rev, err := b.check(rev)
	if err != nil {
		b.err = err
		return err
	}

	if len(b.rows) == 0 {
		b.push(rev, Sequence{rev.ID}, nil)
		return nil
	}

	u := b.last
	p := b.lanes.Index(u.ID)
	if p < 0 {
		b.err = fmt.Errorf("%w: %s", ErrLaneInvariant, u.ID)
		return b.err
	}

	top := len(b.rows) - 1
	b.colors.Propagate(u, b.rows[top].Color, b.policy)

	lower := advance(b.lanes, p, u, rev)
	downs, ups := connect(u, b.lanes, lower, b.colors)
	b.rows[top].Connections = append(b.rows[top].Connections, downs...)
	b.push(rev, lower, ups)
	return nil
}

// check validates rev against the rows laid out so far and returns it with
// duplicate parents removed.
func (b *Builder) check(rev revision.Revision) (revision.Revision, error) {
	if rev.ID.IsZero() {
		return rev, ErrInvalidID
	}
	if _, dup := b.seen[rev.ID]; dup {
		return rev, fmt.Errorf("%w: %s", ErrDuplicateRevision, rev.ID)
	}

	parents := make([]revision.ID, 0, len(rev.Parents))
	for _, p := range rev.Parents {
		switch {
		case p.IsZero():
			return rev, fmt.Errorf("%w: empty parent of %s", ErrInvalidID, rev.ID)
		case p == rev.ID:
			return rev, fmt.Errorf("%w: %s lists itself as parent", ErrOutOfOrder, rev.ID)
		}
		if _, done := b.seen[p]; done {
			return rev, fmt.Errorf("%w: %s is a parent of %s", ErrOutOfOrder, p, rev.ID)
		}
		if !slices.Contains(parents, p) {
			parents = append(parents, p)
		}
	}
	rev.Parents = parents
	return rev, nil
}

func (b *Builder) push(rev revision.Revision, seq Sequence, ups []Connection) {
	b.rows = append(b.rows, RevisionLayout{
		ID:          rev.ID,
		Lane:        seq.Index(rev.ID),
		Color:       b.colors.Map(rev.ID),
		Width:       len(seq),
		Connections: ups,
	})
	b.seen[rev.ID] = struct{}{}
	b.last = rev
	b.lanes = seq
}

// Err returns the error that stopped the builder, if any.
func (b *Builder) Err() error { return b.err }

// Len returns the number of rows laid out.
func (b *Builder) Len() int { return len(b.rows) }

// Layouts returns a copy of the rows laid out so far.
//
// The bottom row's Down connections are only known once the next revision
// is appended.
func (b *Builder) Layouts() []RevisionLayout {
	out := make([]RevisionLayout, len(b.rows))
	for i, r := range b.rows {
		out[i] = r.clone()
	}
	return out
}

// Lanes returns a copy of the bottom row's lane sequence.
func (b *Builder) Lanes() Sequence { return b.lanes.Clone() }

// Colors returns a snapshot of the color assignments made so far.
func (b *Builder) Colors() *ColorMap { return b.colors.clone() }

// Pending returns the ids referenced as parents that have not been laid out
// yet, in lane order followed by the bottom row's own new parents. Once the
// whole log is appended these are parents outside the log, as produced by
// shallow clones or --max-count.
func (b *Builder) Pending() []revision.ID {
	var out []revision.ID
	for _, id := range b.lanes {
		if id != b.last.ID {
			out = append(out, id)
		}
	}
	for _, id := range b.last.Parents {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
