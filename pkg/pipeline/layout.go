package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/revgraph/pkg/lanes"
	"github.com/matzehuels/revgraph/pkg/observability"
	"github.com/matzehuels/revgraph/pkg/revision"
)

// Layout assigns lanes to revs. It also returns the parents that never
// appeared as rows, which remain open lanes at the bottom of the graph.
func Layout(revs []revision.Revision, opts Options) ([]lanes.RevisionLayout, []revision.ID, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, nil, err
	}
	b := lanes.NewBuilder(lanes.WithColorPolicy(opts.Policy()), lanes.WithCapacity(len(revs)))
	for _, rev := range revs {
		if err := b.Append(rev); err != nil {
			return nil, nil, Classify(err)
		}
	}
	return b.Layouts(), b.Pending(), nil
}

// Layout runs [Layout] with hooks and logging.
func (r *Runner) Layout(ctx context.Context, revs []revision.Revision, opts Options) ([]lanes.RevisionLayout, []revision.ID, error) {
	r.applyLogger(&opts)
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, len(revs))
	start := time.Now()

	layouts, dangling, err := Layout(revs, opts)
	hooks.OnLayoutComplete(ctx, lanes.Summarize(layouts).MaxWidth, time.Since(start), err)
	if err != nil {
		return nil, nil, err
	}
	if len(dangling) > 0 {
		opts.Logger.Debug("history has dangling parents", "count", len(dangling))
	}
	return layouts, dangling, nil
}
