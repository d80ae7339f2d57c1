package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/revgraph/pkg/pipeline"
	"github.com/matzehuels/revgraph/pkg/render/text"
)

// sourceFlags holds the flags that select and lay out a revision log.
// Values not given on the command line come from the configuration.
type sourceFlags struct {
	maxCount    int
	all         bool
	firstParent bool
	worktree    bool
	ref         string
	reader      string
	colorPolicy string
	refresh     bool
	noCache     bool
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.IntVarP(&f.maxCount, "max-count", "n", 0, "limit the number of revisions (0 = unlimited)")
	fs.BoolVar(&f.all, "all", false, "start from all refs instead of HEAD")
	fs.BoolVar(&f.firstParent, "first-parent", false, "follow only the first parent of merges")
	fs.BoolVar(&f.worktree, "worktree", false, "show uncommitted changes as an extra revision")
	fs.StringVar(&f.ref, "ref", "", "starting ref (default HEAD)")
	fs.StringVar(&f.reader, "reader", "", "log reader: gogit, exec")
	fs.StringVar(&f.colorPolicy, "color-policy", "", "merge coloring: fresh-on-merge, first-parent")
	fs.BoolVar(&f.refresh, "refresh", false, "ignore cached history and read the repository again")
	fs.BoolVar(&f.noCache, "no-cache", false, "disable the history cache")
}

// apply fills the load and layout fields of opts from the configuration,
// then from flags the user set explicitly.
func (f *sourceFlags) apply(cmd *cobra.Command, c *CLI, opts *pipeline.Options) {
	cfg := c.Config
	opts.MaxCount = cfg.Log.MaxCount
	opts.All = cfg.Log.All
	opts.FirstParent = cfg.Log.FirstParent
	opts.WorkTree = cfg.Log.IncludeWorkTree
	opts.Reader = cfg.Log.Reader
	opts.ColorPolicy = cfg.Layout.ColorPolicy

	fs := cmd.Flags()
	if fs.Changed("max-count") {
		opts.MaxCount = f.maxCount
	}
	if fs.Changed("all") {
		opts.All = f.all
	}
	if fs.Changed("first-parent") {
		opts.FirstParent = f.firstParent
	}
	if fs.Changed("worktree") {
		opts.WorkTree = f.worktree
	}
	if fs.Changed("reader") {
		opts.Reader = f.reader
	}
	if fs.Changed("color-policy") {
		opts.ColorPolicy = f.colorPolicy
	}
	opts.Ref = f.ref
	opts.Refresh = f.refresh
}

// styleFlags holds the text rendering flags.
type styleFlags struct {
	ascii   bool
	noColor bool
	body    bool
}

func (f *styleFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.BoolVar(&f.ascii, "ascii", false, "draw with ASCII characters only")
	fs.BoolVar(&f.noColor, "no-color", false, "disable lane colors")
	fs.BoolVar(&f.body, "body", false, "show full commit messages")
}

func (f *styleFlags) apply(c *CLI, opts *pipeline.Options) {
	opts.Charset = c.Config.Render.Charset
	if f.ascii {
		opts.Charset = text.CharsetASCII
	}
	opts.Color = c.Config.Render.Color && !f.noColor && os.Getenv("NO_COLOR") == ""
	opts.Palette = c.Config.Render.Palette
	opts.Body = f.body
}

// setInput points opts at the history named by args: a history file, a
// repository directory, or the current directory when args is empty.
func setInput(opts *pipeline.Options, args []string) error {
	input := "."
	if len(args) > 0 {
		input = args[0]
	}
	info, err := os.Stat(input)
	if err != nil {
		return fmt.Errorf("open %s: %w", input, err)
	}
	if info.IsDir() {
		opts.Repo = input
	} else {
		opts.HistoryFile = input
	}
	return nil
}
