package cli

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"github.com/matzehuels/revgraph/internal/server"
	"github.com/matzehuels/revgraph/pkg/pipeline"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		src  sourceFlags
		addr string
	)

	cmd := &cobra.Command{
		Use:   "serve [repo]",
		Short: "Serve the layout API over HTTP",
		Long: `Serve the layout API over HTTP.

POST /api/v1/layout lays out revision logs sent by clients. When a
repository is given, GET /api/v1/graph and /api/v1/graph.txt serve its
graph.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var defaults pipeline.Options
			src.apply(cmd, c, &defaults)
			defaults.Charset = c.Config.Render.Charset
			defaults.Palette = c.Config.Render.Palette

			repo := ""
			if len(args) > 0 {
				if err := setInput(&defaults, args); err != nil {
					return err
				}
				if defaults.Repo == "" {
					return errors.New("serve needs a repository directory")
				}
				repo = defaults.Repo
			}
			if !cmd.Flags().Changed("addr") {
				addr = c.Config.Server.Addr
			}
			return c.runServe(cmd.Context(), repo, addr, defaults, src.noCache)
		},
	}

	src.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, repo, addr string, defaults pipeline.Options, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	limit := c.Config.Server.MaxRevisions
	if limit <= 0 {
		limit = server.DefaultMaxRevisions
	}
	srv := server.New(runner, server.Options{
		Repo:         repo,
		Defaults:     defaults,
		MaxRevisions: limit,
		Logger:       loggerFromContext(ctx),
	})
	printInfo("Serving the layout API")
	printKeyValue("URL", StyleLink.Render(listenURL(addr)))
	if repo != "" {
		printKeyValue("Repository", repo)
	}
	printKeyValue("Limit", StyleNumber.Render(fmt.Sprintf("%d revisions", limit)))
	err = srv.ListenAndServe(ctx, addr)
	if errors.Is(err, context.Canceled) {
		printSuccess("Server stopped")
		return nil
	}
	return err
}

// listenURL turns a listen address into a URL a browser can open.
func listenURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}
