package pipeline

import (
	"context"
	"path/filepath"
	"time"

	"github.com/matzehuels/revgraph/pkg/gitlog"
	"github.com/matzehuels/revgraph/pkg/graph"
	rgio "github.com/matzehuels/revgraph/pkg/io"
	"github.com/matzehuels/revgraph/pkg/observability"
	"github.com/matzehuels/revgraph/pkg/revision"
)

// Load reads the revision log selected by opts.
//
// Repository logs are looked up in the cache under a key built from the
// resolved tips, so a moved branch never returns a stale log. Refresh skips
// the lookup but still stores the fresh log. Work-tree queries and history
// files are never cached.
func (r *Runner) Load(ctx context.Context, opts Options) ([]revision.Revision, CacheInfo, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLoad(); err != nil {
		return nil, CacheInfo{}, err
	}

	source := opts.Source()
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, source)
	start := time.Now()

	var (
		revs []revision.Revision
		info CacheInfo
		err  error
	)
	if opts.HistoryFile != "" {
		revs, err = rgio.Import(opts.HistoryFile)
	} else {
		revs, info, err = r.loadRepo(ctx, opts)
	}
	err = Classify(err)
	hooks.OnLoadComplete(ctx, source, len(revs), info.LoadHit, time.Since(start), err)
	if err != nil {
		return nil, CacheInfo{}, err
	}
	opts.Logger.Debug("loaded history", "source", source, "revisions", len(revs), "cached", info.LoadHit)
	return revs, info, nil
}

func (r *Runner) loadRepo(ctx context.Context, opts Options) ([]revision.Revision, CacheInfo, error) {
	open := r.OpenReader
	if open == nil {
		open = openReader
	}
	reader, err := open(opts.Reader, opts.Repo)
	if err != nil {
		return nil, CacheInfo{}, err
	}
	q := opts.Query()
	if q.WorkTree {
		revs, err := reader.Read(ctx, q)
		return revs, CacheInfo{}, err
	}

	tips, err := reader.Tips(ctx, q)
	if err != nil {
		return nil, CacheInfo{}, err
	}
	repo := opts.Repo
	if abs, err := filepath.Abs(repo); err == nil {
		repo = abs
	}
	info := CacheInfo{Key: r.Keyer.HistoryKey(repo, tips, opts.HistoryKeyOpts()), Tips: tips}

	if !opts.Refresh {
		data, hit, err := r.Cache.Get(ctx, info.Key)
		switch {
		case err != nil:
			opts.Logger.Warn("cache read failed", "key", info.Key, "error", err)
		case hit:
			revs, err := decodeHistory(data)
			if err == nil {
				info.LoadHit = true
				return revs, info, nil
			}
			opts.Logger.Warn("discarding corrupt cache entry", "key", info.Key, "error", err)
		}
	}

	revs, err := reader.Read(ctx, q)
	if err != nil {
		return nil, CacheInfo{}, err
	}

	h := graph.FromRevisions(revs)
	h.Repository = repo
	for _, t := range tips {
		h.Tips = append(h.Tips, string(t))
	}
	if data, err := graph.MarshalHistory(h); err == nil {
		if err := r.Cache.Set(ctx, info.Key, data, r.TTL); err != nil {
			opts.Logger.Warn("cache write failed", "key", info.Key, "error", err)
		}
	}
	return revs, info, nil
}

func decodeHistory(data []byte) ([]revision.Revision, error) {
	h, err := graph.UnmarshalHistory(data)
	if err != nil {
		return nil, err
	}
	return h.ToRevisions()
}

// openReader is the default [Runner.OpenReader].
func openReader(name, path string) (gitlog.Reader, error) {
	return gitlog.Open(name, path)
}
