// Package pkg provides the core libraries for revgraph commit graph layout.
//
// # Overview
//
// revgraph reads a revision log (newest first, every revision before its
// parents) and assigns each revision a lane and a color, plus the
// connections that join it to the rows above and below. The result draws
// the graph column of a history viewer. The pkg directory is organized
// into these areas:
//
//  1. [revision] and [lanes] - Domain types and the lane assignment algorithm
//  2. [gitlog] and [io] - Acquiring revision logs from repositories and files
//  3. [render] - Text, DOT, SVG, PNG and PDF output
//  4. [pipeline] - Orchestration (load → layout → render)
//  5. [graph] - Serialization types for histories and layouts
//  6. [cache], [config], [observability], [errors] - Infrastructure
//
// # Architecture
//
// The typical data flow through revgraph:
//
//	Git repository / history file
//	         ↓
//	    [gitlog] or [io] (read revisions, children first)
//	         ↓
//	    [lanes] (lane, color and connections per row)
//	         ↓
//	    [render/text] or [render/nodelink]
//	         ↓
//	    Text/JSON/DOT/SVG/PNG/PDF output
//
// # Quick Start
//
// Lay out a repository and print it:
//
//	reader, _ := gitlog.Open(gitlog.ReaderGoGit, ".")
//	revs, _ := reader.Read(ctx, gitlog.Query{MaxCount: 100})
//	layouts, _ := lanes.Compute(revs)
//	text.Render(os.Stdout, revs, layouts, text.Options{Color: true})
//
// Or let the pipeline do all of it, with caching:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
//	result, _ := runner.Execute(ctx, pipeline.Options{
//	    Repo:    ".",
//	    Formats: []string{pipeline.FormatText, pipeline.FormatSVG},
//	})
//
// # Testing
//
//	go test ./pkg/...                   # All tests
//	go test ./pkg/lanes/...             # Specific package
//	go test -run Example ./pkg/lanes    # Examples only
//
// Redis and MongoDB cache tests run when REVGRAPH_TEST_REDIS or
// REVGRAPH_TEST_MONGO is set.
//
// [revision]: https://pkg.go.dev/github.com/matzehuels/revgraph/pkg/revision
// [lanes]: https://pkg.go.dev/github.com/matzehuels/revgraph/pkg/lanes
// [gitlog]: https://pkg.go.dev/github.com/matzehuels/revgraph/pkg/gitlog
// [io]: https://pkg.go.dev/github.com/matzehuels/revgraph/pkg/io
// [render]: https://pkg.go.dev/github.com/matzehuels/revgraph/pkg/render
// [render/text]: https://pkg.go.dev/github.com/matzehuels/revgraph/pkg/render/text
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/revgraph/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/revgraph/pkg/pipeline
// [graph]: https://pkg.go.dev/github.com/matzehuels/revgraph/pkg/graph
// [cache]: https://pkg.go.dev/github.com/matzehuels/revgraph/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/revgraph/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/revgraph/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/revgraph/pkg/errors
package pkg
