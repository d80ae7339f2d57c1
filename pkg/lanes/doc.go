// Package lanes assigns commit-graph lanes, lineage colors and row
// connectors to an ordered revision log.
//
// # Overview
//
// A history view draws one row per revision. Each row has a set of active
// vertical lanes, ordered left to right; the row's own revision sits in one
// of them and the others carry ancestors that are still "in transit" to
// rows further down. This package computes, for every revision:
//
//   - its lane index within the row ([RevisionLayout.Lane]),
//   - a small integer color identifying its lineage ([RevisionLayout.Color]),
//   - the connector halves linking the row to the rows directly above and
//     below ([RevisionLayout.Connections]).
//
// The computation is a single forward pass. Each row depends only on the
// lane sequence and color map carried over from the previous row plus its
// own id and parents, so there is no backtracking and no pointer graph
// between rows.
//
// # Input Contract
//
// Revisions must be ordered so that every revision appears before all of
// its parents (git's --topo-order satisfies this). Identifiers must be
// unique. Violations abort the pass with one of [ErrInvalidID],
// [ErrDuplicateRevision], [ErrOutOfOrder] or [ErrLaneInvariant]; no partial
// layout is returned.
//
// # Lane Rules
//
// Moving from an upper row U to the lower row D:
//
//  1. U's own lane is removed from the sequence.
//  2. U's parents that are not already in the sequence ("missing parents")
//     are inserted where U's lane was. If D is one of them it takes U's
//     lane so a simple chain stays straight; the others open beside it.
//  3. If D is still absent it is appended at the right edge: it is the tip
//     of an unrelated line of history.
//
// # Colors
//
// Colors are allocated in first-seen order by a [ColorMap]. A single parent
// inherits its child's color. For merges the behavior depends on
// [ColorPolicy]: with [ColorFreshOnMerge] (the default) every unseen parent
// of a merge gets a new color; with [ColorFirstParent] the first parent
// continues the child's color and only the other parents open new colors.
//
// # Connections
//
// Every connector between two adjacent rows is split into two halves: a
// [Down] half stored on the upper row and an [Up] half stored on the lower
// row. The halves carry the same color and opposite deltas, so a renderer
// can draw each row from its own layout alone.
//
// # Usage
//
//	layouts, err := lanes.Compute(revs)
//	if err != nil {
//	    return err
//	}
//	for _, l := range layouts {
//	    fmt.Println(l.ID.Short(), l.Lane, l.Color)
//	}
//
// For streamed input, feed a [Builder] one revision at a time:
//
//	b := lanes.NewBuilder()
//	for scanner.Scan() {
//	    if err := b.Append(scanner.Revision()); err != nil {
//	        return err
//	    }
//	}
//	layouts := b.Layouts()
//
// # Concurrency
//
// A [Builder] is not safe for concurrent use. [Compute] is a pure function
// and may be called from multiple goroutines on independent inputs.
package lanes
