package gitlog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/revgraph/pkg/revision"
)

// ExecReader reads revision logs by running the git binary.
type ExecReader struct {
	// Dir is the repository working directory.
	Dir string

	// Git is the git executable. Empty means "git" from PATH.
	Git string

	// Attempts bounds retries of commands failing on a held lock.
	// Zero means 3.
	Attempts int

	// RetryDelay is the initial delay between attempts. Zero means 250ms.
	RetryDelay time.Duration
}

// NewExecReader returns a reader for the repository at dir.
func NewExecReader(dir string) *ExecReader {
	return &ExecReader{Dir: dir}
}

// Tips implements [Reader].
func (r *ExecReader) Tips(ctx context.Context, q Query) ([]revision.ID, error) {
	args := []string{"rev-parse"}
	if q.All {
		args = append(args, "--all")
	} else {
		args = append(args, "--verify", "--quiet", q.StartRef()+"^{commit}")
	}
	out, err := r.run(ctx, args...)
	if err != nil {
		if !q.All && isExitError(err) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownRef, q.StartRef())
		}
		return nil, err
	}
	var tips []revision.ID
	for _, line := range strings.Fields(string(out)) {
		tips = append(tips, revision.ID(line))
	}
	if len(tips) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRef, q.StartRef())
	}
	return tips, nil
}

// Read implements [Reader].
func (r *ExecReader) Read(ctx context.Context, q Query) ([]revision.Revision, error) {
	tips, err := r.Tips(ctx, q)
	if err != nil {
		return nil, err
	}

	args := []string{"log", "-z", "--topo-order", "--pretty=format:" + Format}
	if q.FirstParent {
		args = append(args, "--first-parent")
	}
	if q.MaxCount > 0 {
		args = append(args, "--max-count="+strconv.Itoa(q.MaxCount))
	}
	if q.All {
		args = append(args, "--all")
	} else {
		args = append(args, string(tips[0]))
	}
	args = append(args, "--")

	out, err := r.run(ctx, args...)
	if err != nil {
		return nil, err
	}
	revs, err := ReadAll(bytes.NewReader(out))
	if err != nil {
		return nil, err
	}
	revs = finish(revs, q)

	if q.WorkTree {
		dirty, err := r.dirty(ctx)
		if err != nil {
			return nil, err
		}
		if dirty {
			head, err := r.Tips(ctx, Query{})
			if err != nil {
				return nil, err
			}
			revs = append([]revision.Revision{workTreeRevision(head[0], time.Now())}, revs...)
		}
	}
	return revs, nil
}

func (r *ExecReader) dirty(ctx context.Context) (bool, error) {
	out, err := r.run(ctx, "status", "--porcelain", "--untracked-files=no")
	if err != nil {
		return false, err
	}
	return len(bytes.TrimSpace(out)) > 0, nil
}

// run executes git in r.Dir and returns its standard output.
func (r *ExecReader) run(ctx context.Context, args ...string) ([]byte, error) {
	git := r.Git
	if git == "" {
		git = "git"
	}
	attempts := r.Attempts
	if attempts == 0 {
		attempts = 3
	}
	delay := r.RetryDelay
	if delay == 0 {
		delay = 250 * time.Millisecond
	}

	var out []byte
	err := retry(ctx, attempts, delay, func() error {
		var stdout, stderr bytes.Buffer
		cmd := exec.CommandContext(ctx, git, append([]string{"-C", r.Dir}, args...)...)
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		err := cmd.Run()
		if err == nil {
			out = stdout.Bytes()
			return nil
		}
		if errors.Is(err, exec.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrGitNotFound, git)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return classify(err, args[0], stderr.String())
	})
	return out, err
}

func classify(err error, cmd, stderr string) error {
	msg := strings.TrimSpace(stderr)
	switch {
	case strings.Contains(msg, "not a git repository"):
		return fmt.Errorf("%w: %s", ErrNotRepository, msg)
	case strings.Contains(msg, ".lock"):
		return &transientError{fmt.Errorf("git %s: %s: %w", cmd, msg, err)}
	case msg == "":
		return fmt.Errorf("git %s: %w", cmd, err)
	default:
		return fmt.Errorf("git %s: %s: %w", cmd, msg, err)
	}
}

func isExitError(err error) bool {
	var ee *exec.ExitError
	return errors.As(err, &ee)
}

var _ Reader = (*ExecReader)(nil)
