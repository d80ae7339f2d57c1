package gitlog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/matzehuels/revgraph/pkg/revision"
)

// GoGitReader reads revision logs in-process with go-git.
type GoGitReader struct {
	repo *gogit.Repository
	now  func() time.Time
}

// OpenGoGit opens the repository containing path.
func OpenGoGit(path string) (*GoGitReader, error) {
	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, gogit.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("%w: %s", ErrNotRepository, path)
	}
	if err != nil {
		return nil, err
	}
	return NewGoGitReader(repo), nil
}

// NewGoGitReader wraps an open repository.
func NewGoGitReader(repo *gogit.Repository) *GoGitReader {
	return &GoGitReader{repo: repo, now: time.Now}
}

// Tips implements [Reader]. With q.All the tips are sorted so the result is
// stable across calls.
func (r *GoGitReader) Tips(ctx context.Context, q Query) ([]revision.ID, error) {
	hashes, err := r.tips(q)
	if err != nil {
		return nil, err
	}
	out := make([]revision.ID, len(hashes))
	for i, h := range hashes {
		out[i] = revision.ID(h.String())
	}
	return out, nil
}

func (r *GoGitReader) tips(q Query) ([]plumbing.Hash, error) {
	if !q.All {
		h, err := r.repo.ResolveRevision(plumbing.Revision(q.StartRef()))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrUnknownRef, q.StartRef(), err)
		}
		return []plumbing.Hash{*h}, nil
	}

	refs, err := r.repo.References()
	if err != nil {
		return nil, err
	}
	seen := make(map[plumbing.Hash]bool)
	var out []plumbing.Hash
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference {
			return nil
		}
		h, ok := r.peel(ref.Hash())
		if ok && !seen[h] {
			seen[h] = true
			out = append(out, h)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no refs point at commits", ErrUnknownRef)
	}
	slices.SortFunc(out, func(a, b plumbing.Hash) int { return bytes.Compare(a[:], b[:]) })
	return out, nil
}

// peel resolves h to a commit, following annotated tags.
func (r *GoGitReader) peel(h plumbing.Hash) (plumbing.Hash, bool) {
	if _, err := r.repo.CommitObject(h); err == nil {
		return h, true
	}
	tag, err := r.repo.TagObject(h)
	if err != nil {
		return plumbing.ZeroHash, false
	}
	c, err := tag.Commit()
	if err != nil {
		return plumbing.ZeroHash, false
	}
	return c.Hash, true
}

// Read implements [Reader].
func (r *GoGitReader) Read(ctx context.Context, q Query) ([]revision.Revision, error) {
	tips, err := r.tips(q)
	if err != nil {
		return nil, err
	}

	var revs []revision.Revision
	if q.FirstParent {
		revs, err = r.walkFirstParent(ctx, tips)
	} else {
		revs, err = r.walk(ctx, tips)
	}
	if err != nil {
		return nil, err
	}

	revs, err = TopoSort(revs)
	if err != nil {
		return nil, err
	}
	revs = finish(revs, q)

	if q.WorkTree {
		if rev, ok, err := r.workTree(); err != nil {
			return nil, err
		} else if ok {
			revs = append([]revision.Revision{rev}, revs...)
		}
	}
	return revs, nil
}

func (r *GoGitReader) walk(ctx context.Context, tips []plumbing.Hash) ([]revision.Revision, error) {
	seen := make(map[plumbing.Hash]bool)
	var out []revision.Revision
	for _, tip := range tips {
		iter, err := r.repo.Log(&gogit.LogOptions{From: tip, Order: gogit.LogOrderCommitterTime})
		if err != nil {
			return nil, err
		}
		err = iter.ForEach(func(c *object.Commit) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if !seen[c.Hash] {
				seen[c.Hash] = true
				out = append(out, fromCommit(c))
			}
			return nil
		})
		iter.Close()
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *GoGitReader) walkFirstParent(ctx context.Context, tips []plumbing.Hash) ([]revision.Revision, error) {
	seen := make(map[plumbing.Hash]bool)
	var out []revision.Revision
	for _, h := range tips {
		for !seen[h] {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			c, err := r.repo.CommitObject(h)
			if errors.Is(err, plumbing.ErrObjectNotFound) {
				// Shallow boundary.
				break
			}
			if err != nil {
				return nil, err
			}
			seen[h] = true
			out = append(out, fromCommit(c))
			if c.NumParents() == 0 {
				break
			}
			h = c.ParentHashes[0]
		}
	}
	return out, nil
}

// workTree returns the artificial revision for uncommitted changes, if the
// repository has a dirty working tree.
func (r *GoGitReader) workTree() (revision.Revision, bool, error) {
	wt, err := r.repo.Worktree()
	if errors.Is(err, gogit.ErrIsBareRepository) {
		return revision.Revision{}, false, nil
	}
	if err != nil {
		return revision.Revision{}, false, err
	}
	status, err := wt.Status()
	if err != nil {
		return revision.Revision{}, false, err
	}
	dirty := false
	for _, s := range status {
		if s.Worktree == gogit.Untracked {
			continue
		}
		if s.Worktree != gogit.Unmodified || s.Staging != gogit.Unmodified {
			dirty = true
			break
		}
	}
	if !dirty {
		return revision.Revision{}, false, nil
	}

	var head revision.ID
	if ref, err := r.repo.Head(); err == nil {
		head = revision.ID(ref.Hash().String())
	}
	return workTreeRevision(head, r.now()), true, nil
}

func fromCommit(c *object.Commit) revision.Revision {
	parents := make([]revision.ID, len(c.ParentHashes))
	for i, p := range c.ParentHashes {
		parents[i] = revision.ID(p.String())
	}
	subject, body := splitMessage(c.Message)
	return revision.Revision{
		ID:             revision.ID(c.Hash.String()),
		Parents:        parents,
		Author:         c.Author.Name,
		AuthorEmail:    c.Author.Email,
		AuthorTime:     c.Author.When,
		Committer:      c.Committer.Name,
		CommitterEmail: c.Committer.Email,
		CommitTime:     c.Committer.When,
		Subject:        subject,
		Body:           body,
	}
}

var _ Reader = (*GoGitReader)(nil)
