// Package render turns lane layouts into output artifacts.
//
// # Overview
//
// Two renderers live in subpackages:
//
//   - [text]: a terminal graph drawn with box-drawing or ASCII characters,
//     one node line per revision, similar to `git log --graph`.
//   - [nodelink]: a Graphviz DOT document with every revision pinned to its
//     lane and row, rendered to SVG with the neato engine.
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert an SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// [text]: github.com/matzehuels/revgraph/pkg/render/text
// [nodelink]: github.com/matzehuels/revgraph/pkg/render/nodelink
package render
