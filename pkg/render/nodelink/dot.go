package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/revgraph/pkg/lanes"
	"github.com/matzehuels/revgraph/pkg/render"
	"github.com/matzehuels/revgraph/pkg/render/text"
	"github.com/matzehuels/revgraph/pkg/revision"
)

// DefaultSpacing is the distance between lanes and rows, in inches.
const DefaultSpacing = 0.4

// labelWidth is the width reserved for a subject label, in inches.
const labelWidth = 5.0

// Options configures node-link diagram rendering.
type Options struct {
	// Labels places the short id and subject right of the widest lane.
	Labels bool

	// Spacing between lanes and rows in inches. Zero means [DefaultSpacing].
	Spacing float64

	// Palette holds colors indexed by lane color. Empty means
	// [text.DefaultPalette].
	Palette []string
}

// ToDOT converts a layout to Graphviz DOT. revs and layouts must describe
// the same rows; rows beyond the shorter of the two are ignored.
func ToDOT(revs []revision.Revision, layouts []lanes.RevisionLayout, opts Options) string {
	spacing := opts.Spacing
	if spacing <= 0 {
		spacing = DefaultSpacing
	}
	palette := opts.Palette
	if len(palette) == 0 {
		palette = text.DefaultPalette
	}
	colorOf := func(c int) string { return palette[c%len(palette)] }
	n := min(len(revs), len(layouts))
	pos := func(row, lane int) string {
		return fmt.Sprintf("%.2f,%.2f!", float64(lane)*spacing, float64(-row)*spacing)
	}

	var buf bytes.Buffer
	buf.WriteString("digraph revgraph {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=false;\n")
	buf.WriteString("  node [shape=circle, style=filled, label=\"\", width=0.18, fixedsize=true, penwidth=0];\n")
	buf.WriteString("  edge [arrowhead=none, penwidth=2];\n")
	buf.WriteString("\n")

	maxWidth := 0
	for _, l := range layouts[:n] {
		maxWidth = max(maxWidth, l.Width)
	}

	for i, l := range layouts[:n] {
		r := revs[i]
		attrs := []string{
			fmt.Sprintf("pos=%q", pos(i, l.Lane)),
			fmt.Sprintf("fillcolor=%q", colorOf(l.Color)),
			"tooltip=" + quote(tooltip(r)),
		}
		if r.ID.IsArtificial() {
			attrs = append(attrs, "style=\"filled,dashed\"", "fillcolor=white", "penwidth=1")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", string(r.ID), strings.Join(attrs, ", "))

		if opts.Labels {
			x := float64(maxWidth)*spacing + labelWidth/2
			fmt.Fprintf(&buf, "  %q [shape=plaintext, style=\"\", width=%.1f, height=%.2f, pos=\"%.2f,%.2f!\", label=%s];\n",
				"label:"+string(r.ID), labelWidth, spacing, x, float64(-i)*spacing, quote(label(r), `\l`))
		}
	}

	buf.WriteString("\n")
	waypoints := make(map[string]bool)
	name := func(row, lane int) string {
		if lane == layouts[row].Lane {
			return string(revs[row].ID)
		}
		wp := fmt.Sprintf("~%d.%d", row, lane)
		if !waypoints[wp] {
			waypoints[wp] = true
			fmt.Fprintf(&buf, "  %q [shape=point, width=0, style=invis, pos=%q];\n", wp, pos(row, lane))
		}
		return wp
	}
	for i := 0; i+1 < n; i++ {
		for _, c := range layouts[i].Downs() {
			from, to := name(i, c.Lane), name(i+1, c.Target())
			fmt.Fprintf(&buf, "  %q -> %q [color=%q];\n", from, to, colorOf(c.Color))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func label(r revision.Revision) string {
	if r.Subject == "" {
		return r.ID.Short()
	}
	return r.ID.Short() + " " + r.Subject
}

// quote returns s as a DOT string. Backslashes and quotes in s are
// escaped; escapes in suffix (such as `\l`) are kept.
func quote(s string, suffix ...string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return `"` + s + strings.Join(suffix, "") + `"`
}

func tooltip(r revision.Revision) string {
	if r.Subject == "" {
		return string(r.ID)
	}
	return string(r.ID) + "\n" + r.Subject
}

// RenderSVG lays out a DOT graph with neato, honoring pinned positions, and
// returns SVG bytes.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based width and height with
// the viewBox size so the SVG scales cleanly when embedded.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
