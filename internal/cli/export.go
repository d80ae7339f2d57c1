package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	rgio "github.com/matzehuels/revgraph/pkg/io"
	"github.com/matzehuels/revgraph/pkg/pipeline"
)

// exportCommand creates the export command, which dumps the acquired
// revision log so it can be laid out later without the repository.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		src    sourceFlags
		output string
		format string
	)

	cmd := &cobra.Command{
		Use:   "export [repo]",
		Short: "Write the revision log as a history file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := pipeline.Options{}
			if err := setInput(&opts, args); err != nil {
				return err
			}
			if opts.Repo == "" {
				return fmt.Errorf("%s is not a directory", opts.HistoryFile)
			}
			src.apply(cmd, c, &opts)
			if format == "" {
				format = exportFormat(output)
			}
			if format != rgio.FormatJSON && format != rgio.FormatParentList {
				return fmt.Errorf("invalid format: %s (must be %q or %q)", format, rgio.FormatJSON, rgio.FormatParentList)
			}
			return c.runExport(cmd.Context(), cmd.OutOrStdout(), opts, output, format, src.noCache)
		},
	}

	src.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "history format: json, parents (default from the output extension)")
	return cmd
}

// exportFormat picks JSON unless the output file has a .txt extension.
func exportFormat(output string) string {
	if strings.EqualFold(filepath.Ext(output), ".txt") {
		return rgio.FormatParentList
	}
	return rgio.FormatJSON
}

func (c *CLI) runExport(ctx context.Context, stdout io.Writer, opts pipeline.Options, output, format string, noCache bool) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	opts.Logger = logger
	revs, info, err := runner.Load(ctx, opts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Read %d revisions", len(revs)))

	repo := opts.Repo
	if abs, err := filepath.Abs(repo); err == nil {
		repo = abs
	}
	if output == "" {
		return rgio.Write(revs, stdout, format, repo, info.Tips)
	}
	if err := rgio.Export(revs, output, format, repo, info.Tips); err != nil {
		return err
	}
	printFile(output)
	printNextStep("Lay it out", appName+" render "+output)
	return nil
}
