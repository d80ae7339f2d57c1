// Package graph defines the JSON interchange formats for revision histories
// and lane layouts.
//
// # History
//
// A [History] is an acquired revision log, children first:
//
//	{
//	  "version": 1,
//	  "revisions": [
//	    {"id": "c3", "parents": ["c1", "c2"], "subject": "Merge topic"},
//	    {"id": "c2", "parents": ["c1"]},
//	    {"id": "c1"}
//	  ]
//	}
//
// Only "id" is required. Histories are what the cache stores and what
// `revgraph export` writes; `revgraph layout history.json` reads them back.
//
// # Layout
//
// A [Layout] is the result of lane assignment: one [Row] per revision with
// its lane, color, row width and connector halves, plus the ids of parents
// that never appeared in the input ("dangling").
//
//	{
//	  "version": 1,
//	  "color_policy": "fresh-on-merge",
//	  "stats": {"rows": 3, "max_width": 2, "colors": 3, "merges": 1},
//	  "rows": [
//	    {"id": "c3", "lane": 0, "color": 0, "width": 1, "connections": [
//	      {"lane": 0, "delta": 0, "direction": "down", "color": 1},
//	      {"lane": 0, "delta": 1, "direction": "down", "color": 2}
//	    ]}
//	  ]
//	}
//
// # Conversion
//
// [FromRevisions] and [History.ToRevisions] convert between the wire format
// and [revision.Revision]; [FromLayouts] and [Layout.ToLayouts] do the same
// for [lanes.RevisionLayout]. Conversions copy, so the results can be
// modified freely.
package graph
