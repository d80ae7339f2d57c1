package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/revgraph/pkg/pipeline"
)

// layoutCommand creates the layout command, which writes the lane layout
// as JSON.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		src    sourceFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "layout [repo|history]",
		Short: "Compute lane assignments and write them as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := pipeline.Options{Formats: []string{pipeline.FormatJSON}}
			if err := setInput(&opts, args); err != nil {
				return err
			}
			src.apply(cmd, c, &opts)
			return c.runLayout(cmd.Context(), cmd.OutOrStdout(), opts, output, src.noCache)
		},
	}

	src.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func (c *CLI) runLayout(ctx context.Context, stdout io.Writer, opts pipeline.Options, output string, noCache bool) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	opts.Logger = logger
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Laid out %d revisions in %d lanes", result.Stats.Layout.Rows, result.Stats.Layout.MaxWidth))

	data := result.Artifacts[pipeline.FormatJSON]
	if output == "" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	printFile(output)
	return nil
}
