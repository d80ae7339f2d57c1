// Package io imports and exports revision histories as files.
//
// # Overview
//
// Two formats are supported:
//
//   - JSON, the [graph.History] document written by `revgraph export`.
//   - Parent lists, one revision per line as printed by
//     `git log --format='%H %P'`: the revision id followed by its parent ids,
//     separated by whitespace.
//
// Parent lists make it easy to lay out histories from any tool:
//
//	c3 c1 c2
//	c2 c1
//	c1
//
// Blank lines and lines starting with '#' are ignored. Parent lists carry
// no metadata: subjects, authors and times are left empty.
//
// # Import
//
// [Import] picks the format by file extension (.json) or, for other
// names, by sniffing the first non-space byte:
//
//	revs, err := io.Import("history.txt")
//
// [ReadParentList] and [graph.ReadHistory] work on any io.Reader.
//
// # Export
//
// [WriteParentList] and [Export] write the parent-list or JSON form.
// Exporting and re-importing yields the same ids and parents; a JSON
// round trip also keeps the metadata.
//
// [graph.History]: github.com/matzehuels/revgraph/pkg/graph.History
// [graph.ReadHistory]: github.com/matzehuels/revgraph/pkg/graph.ReadHistory
package io
