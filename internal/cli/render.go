package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/revgraph/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output  string   // output file (single format) or base path
	formats []string // text, json, dot, svg, png, pdf
	labels  bool     // show subjects next to nodes in DOT/SVG output
	scale   float64  // PNG scale factor
}

// renderCommand creates the render command, which writes one file per
// requested format.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		src        sourceFlags
		style      styleFlags
		opts       renderOpts
		formatsStr string
	)

	cmd := &cobra.Command{
		Use:   "render [repo|history]",
		Short: "Render the commit graph to text, JSON, DOT, SVG, PNG or PDF",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			popts := pipeline.Options{
				Formats: opts.formats,
				Labels:  opts.labels,
				Scale:   opts.scale,
			}
			if err := setInput(&popts, args); err != nil {
				return err
			}
			src.apply(cmd, c, &popts)
			style.apply(c, &popts)
			// Files never carry terminal escapes.
			popts.Color = false
			return c.runRender(cmd.Context(), popts, &opts, src.noCache)
		},
	}

	src.register(cmd)
	style.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), text, json, dot, png, pdf (comma-separated)")
	cmd.Flags().BoolVar(&opts.labels, "labels", false, "label nodes with commit subjects (dot, svg, png, pdf)")
	cmd.Flags().Float64Var(&opts.scale, "scale", pipeline.DefaultScale, "PNG scale factor")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, popts pipeline.Options, opts *renderOpts, noCache bool) error {
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Rendering "+popts.Source()+"...")
	spinner.Start()
	popts.Logger = logger
	result, err := runner.Execute(ctx, popts)
	if err != nil {
		if spinner.Cancelled() {
			spinner.Stop()
			return err
		}
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	paths := outputPaths(opts.output, defaultBase(popts), opts.formats)
	for _, format := range opts.formats {
		path := paths[format]
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}

	printSuccess("Rendered %d revisions", len(result.Revisions))
	printStats(result.Stats.Layout.Rows, result.Stats.Layout.MaxWidth, result.CacheInfo.LoadHit)
	if n := len(result.Dangling); n > 0 {
		printWarning("%d parents lie outside the loaded history", n)
	}
	for _, format := range opts.formats {
		printFile(paths[format])
	}
	return nil
}

// defaultBase names outputs after the history file or the repository
// directory.
func defaultBase(opts pipeline.Options) string {
	if opts.HistoryFile != "" {
		return strings.TrimSuffix(opts.HistoryFile, filepath.Ext(opts.HistoryFile))
	}
	abs, err := filepath.Abs(opts.Repo)
	if err != nil || filepath.Base(abs) == string(filepath.Separator) {
		return appName
	}
	return filepath.Base(abs)
}

// outputPaths maps each format to its output file. A single format with an
// explicit output path writes exactly there; otherwise the output (or the
// default base) has a known extension stripped and each format's extension
// appended.
func outputPaths(output, base string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" && filepath.Ext(output) != "" {
		paths[formats[0]] = output
		return paths
	}
	if output != "" {
		base = output
		ext := filepath.Ext(output)
		for _, known := range pipeline.FormatExtensions {
			if ext == known {
				base = strings.TrimSuffix(output, ext)
				break
			}
		}
	}
	for _, f := range formats {
		paths[f] = base + pipeline.FormatExtensions[f]
	}
	return paths
}
