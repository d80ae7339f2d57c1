package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/revgraph/pkg/graph"
	"github.com/matzehuels/revgraph/pkg/lanes"
	"github.com/matzehuels/revgraph/pkg/observability"
	"github.com/matzehuels/revgraph/pkg/render/nodelink"
	"github.com/matzehuels/revgraph/pkg/render/text"
	"github.com/matzehuels/revgraph/pkg/revision"
)

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, revs []revision.Revision, layouts []lanes.RevisionLayout, dangling []revision.ID, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var dot string
	dotSource := func() string {
		if dot == "" {
			dot = nodelink.ToDOT(revs, layouts, nodelink.Options{Labels: opts.Labels, Palette: opts.Palette})
		}
		return dot
	}

	for _, format := range opts.Formats {
		var (
			data []byte
			err  error
		)
		switch format {
		case FormatText:
			var buf bytes.Buffer
			err = text.Render(&buf, revs, layouts, text.Options{
				Charset: opts.Charset,
				Color:   opts.Color,
				Palette: opts.Palette,
				Body:    opts.Body,
			})
			data = buf.Bytes()
		case FormatJSON:
			data, err = graph.MarshalLayout(graph.FromLayouts(layouts, opts.Policy(), dangling))
		case FormatDOT:
			data = []byte(dotSource())
		case FormatSVG:
			data, err = nodelink.RenderSVG(ctx, dotSource())
		case FormatPNG:
			data, err = nodelink.RenderPNG(ctx, dotSource(), opts.Scale)
		case FormatPDF:
			data, err = nodelink.RenderPDF(ctx, dotSource())
		default:
			err = ValidateFormat(format)
		}
		if err != nil {
			return nil, Classify(fmt.Errorf("render %s: %w", format, err))
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// Render runs [Render] with hooks.
func (r *Runner) Render(ctx context.Context, revs []revision.Revision, layouts []lanes.RevisionLayout, dangling []revision.ID, opts Options) (map[string][]byte, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	artifacts, err := Render(ctx, revs, layouts, dangling, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, err
}
