package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/revgraph/pkg/pipeline"
	"github.com/matzehuels/revgraph/pkg/render/text"
)

// browseCommand creates the browse command, an interactive graph viewer.
func (c *CLI) browseCommand() *cobra.Command {
	var (
		src   sourceFlags
		style styleFlags
	)

	cmd := &cobra.Command{
		Use:   "browse [repo|history]",
		Short: "Browse the commit graph interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := pipeline.Options{}
			if err := setInput(&opts, args); err != nil {
				return err
			}
			src.apply(cmd, c, &opts)
			style.apply(c, &opts)
			return c.runBrowse(cmd.Context(), opts, src.noCache)
		},
	}

	src.register(cmd)
	style.register(cmd)
	return cmd
}

func (c *CLI) runBrowse(ctx context.Context, opts pipeline.Options, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	opts.Logger = loggerFromContext(ctx)
	revs, _, err := runner.Load(ctx, opts)
	if err != nil {
		return err
	}
	if len(revs) == 0 {
		printInfo("No revisions to show")
		return nil
	}
	layouts, _, err := runner.Layout(ctx, revs, opts)
	if err != nil {
		return err
	}
	lines, err := text.Lines(revs, layouts, text.Options{
		Charset: opts.Charset,
		Color:   opts.Color,
		Palette: opts.Palette,
		Body:    opts.Body,
	})
	if err != nil {
		return fmt.Errorf("render graph: %w", err)
	}

	p := tea.NewProgram(NewGraphModel(revs, lines), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}
