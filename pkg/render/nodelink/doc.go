// Package nodelink renders lane layouts as node-link diagrams.
//
// # Overview
//
// Every revision becomes a circle pinned at its lane (x) and row (y), so
// Graphviz does not reorder anything: the lane assignment alone decides the
// picture. Lanes that pass a row without a revision are drawn through
// invisible waypoints, one per (row, lane), which keeps transit lines
// vertical exactly as in the text rendering.
//
// # Usage
//
//	dot := nodelink.ToDOT(revs, layouts, nodelink.Options{Labels: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # DOT Format
//
// The [ToDOT] output uses `pos="x,y!"` attributes and is meant for the neato
// engine (`neato -n2` or [RenderSVG]). Edges carry the lane color from the
// palette; node tooltips hold the full id and subject.
package nodelink
