package gitlog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/revgraph/pkg/revision"
)

var (
	// ErrNotRepository is returned when the path is not inside a git
	// repository.
	ErrNotRepository = errors.New("not a git repository")

	// ErrUnknownRef is returned when the requested ref does not resolve to a
	// commit, including HEAD of a repository without commits.
	ErrUnknownRef = errors.New("unknown ref")

	// ErrParse is returned for malformed raw log records.
	ErrParse = errors.New("malformed log record")

	// ErrGitNotFound is returned by [ExecReader] when the git binary cannot
	// be found.
	ErrGitNotFound = errors.New("git executable not found")

	// ErrCycle is returned by [TopoSort] when the parent links form a cycle.
	ErrCycle = errors.New("revision parents form a cycle")
)

// Reader names accepted by [Open].
const (
	ReaderGoGit = "gogit"
	ReaderExec  = "exec"
)

// ErrUnknownReader is returned by [Open] for an unrecognized reader name.
var ErrUnknownReader = errors.New("unknown reader")

// WorkTreeSubject is the subject of the artificial work-tree revision.
const WorkTreeSubject = "Uncommitted changes"

// Query selects which revisions a [Reader] returns.
type Query struct {
	// Ref is the starting point. Empty means HEAD. Ignored when All is set.
	Ref string

	// All starts from every ref instead of Ref.
	All bool

	// FirstParent follows only the first parent of merges and drops the
	// other parents from the returned revisions.
	FirstParent bool

	// MaxCount limits the number of commits returned. Zero means no limit.
	MaxCount int

	// WorkTree prepends an artificial revision for uncommitted changes.
	WorkTree bool
}

// StartRef returns the ref to start from.
func (q Query) StartRef() string {
	if q.Ref == "" {
		return "HEAD"
	}
	return q.Ref
}

// Reader produces revision logs.
type Reader interface {
	// Tips resolves the starting commits of q. Two calls return the same
	// tips exactly when the selected history is unchanged, so the result
	// can key a cache.
	Tips(ctx context.Context, q Query) ([]revision.ID, error)

	// Read returns the revisions selected by q, children first.
	Read(ctx context.Context, q Query) ([]revision.Revision, error)
}

// Open returns the named reader for the repository containing path.
// The empty name selects [ReaderGoGit].
func Open(name, path string) (Reader, error) {
	switch name {
	case "", ReaderGoGit:
		return OpenGoGit(path)
	case ReaderExec:
		return NewExecReader(path), nil
	default:
		return nil, fmt.Errorf("%w: %q (must be %s or %s)", ErrUnknownReader, name, ReaderGoGit, ReaderExec)
	}
}

// splitMessage returns the subject (first line of the trimmed message) and
// the body. The body is empty for single-line messages.
func splitMessage(msg string) (subject, body string) {
	msg = strings.TrimSpace(msg)
	i := strings.IndexByte(msg, '\n')
	if i < 0 {
		return msg, ""
	}
	return strings.TrimRight(msg[:i], " \t\r"), msg
}

// finish applies the parts of q that are common to every reader.
// revs must already be in child-first order.
func finish(revs []revision.Revision, q Query) []revision.Revision {
	if q.FirstParent {
		for i := range revs {
			if len(revs[i].Parents) > 1 {
				revs[i].Parents = revs[i].Parents[:1]
			}
		}
	}
	if q.MaxCount > 0 && len(revs) > q.MaxCount {
		revs = revs[:q.MaxCount]
	}
	return revs
}

// workTreeRevision returns the artificial revision standing for
// uncommitted changes on top of head.
func workTreeRevision(head revision.ID, now time.Time) revision.Revision {
	rev := revision.Revision{
		ID:         revision.WorkTree,
		Subject:    WorkTreeSubject,
		AuthorTime: now,
		CommitTime: now,
	}
	if !head.IsZero() {
		rev.Parents = []revision.ID{head}
	}
	return rev
}
