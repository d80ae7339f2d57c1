package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/revgraph/pkg/pipeline"
)

// logCommand creates the log command, which prints the text graph.
func (c *CLI) logCommand() *cobra.Command {
	var (
		src   sourceFlags
		style styleFlags
	)

	cmd := &cobra.Command{
		Use:   "log [repo|history]",
		Short: "Print the commit graph as text",
		Long: `Print the commit graph of a repository, newest revisions first.

The argument is a repository directory (default: the current directory) or
a history file written by "revgraph export" or "git log --format='%H %P'".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := pipeline.Options{Formats: []string{pipeline.FormatText}}
			if err := setInput(&opts, args); err != nil {
				return err
			}
			src.apply(cmd, c, &opts)
			style.apply(c, &opts)
			return c.runLog(cmd.Context(), cmd.OutOrStdout(), opts, src.noCache)
		},
	}

	src.register(cmd)
	style.register(cmd)
	return cmd
}

func (c *CLI) runLog(ctx context.Context, w io.Writer, opts pipeline.Options, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	opts.Logger = loggerFromContext(ctx)
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		return err
	}
	_, err = w.Write(result.Artifacts[pipeline.FormatText])
	return err
}
