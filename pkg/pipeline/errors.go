package pipeline

import (
	"context"
	"errors"
	"os"

	"github.com/matzehuels/revgraph/pkg/cache"
	errs "github.com/matzehuels/revgraph/pkg/errors"
	"github.com/matzehuels/revgraph/pkg/gitlog"
	"github.com/matzehuels/revgraph/pkg/graph"
	rgio "github.com/matzehuels/revgraph/pkg/io"
	"github.com/matzehuels/revgraph/pkg/lanes"
	"github.com/matzehuels/revgraph/pkg/render"
)

var classes = []struct {
	target  error
	code    errs.Code
	message string
}{
	{lanes.ErrInvalidID, errs.ErrCodeInvalidRevision, "revision log contains an empty id"},
	{lanes.ErrDuplicateRevision, errs.ErrCodeDuplicateRevision, "revision log lists a revision twice"},
	{lanes.ErrOutOfOrder, errs.ErrCodeOutOfOrder, "revision log is not in child-first order"},
	{lanes.ErrLaneInvariant, errs.ErrCodeLaneInvariant, "lane assignment failed"},
	{gitlog.ErrNotRepository, errs.ErrCodeRepositoryNotFound, "repository not found"},
	{gitlog.ErrUnknownRef, errs.ErrCodeRefNotFound, "ref not found"},
	{gitlog.ErrCycle, errs.ErrCodeInvalidHistory, "revision parents form a cycle"},
	{gitlog.ErrParse, errs.ErrCodeGit, "cannot parse git output"},
	{gitlog.ErrGitNotFound, errs.ErrCodeUnsupported, "git executable not found"},
	{gitlog.ErrUnknownReader, errs.ErrCodeInvalidInput, "unknown reader"},
	{graph.ErrInvalid, errs.ErrCodeInvalidHistory, "invalid history document"},
	{graph.ErrVersion, errs.ErrCodeInvalidHistory, "unsupported history version"},
	{rgio.ErrEmpty, errs.ErrCodeInvalidHistory, "history file is empty"},
	{render.ErrConverterNotFound, errs.ErrCodeUnsupported, "format conversion unavailable"},
	{cache.ErrUnavailable, errs.ErrCodeCacheUnavailable, "cache unavailable"},
	{cache.ErrUnknownBackend, errs.ErrCodeInvalidConfig, "unknown cache backend"},
	{os.ErrNotExist, errs.ErrCodeFileNotFound, "file not found"},
	{context.DeadlineExceeded, errs.ErrCodeTimeout, "operation timed out"},
}

// Classify attaches an error code to err. Errors that already carry a code,
// nil and context cancellation are returned unchanged; unrecognized errors
// get [errs.ErrCodeInternal].
func Classify(err error) error {
	if err == nil || errs.GetCode(err) != "" || errors.Is(err, context.Canceled) {
		return err
	}
	for _, c := range classes {
		if errors.Is(err, c.target) {
			return errs.Wrap(c.code, err, "%s", c.message)
		}
	}
	return errs.Wrap(errs.ErrCodeInternal, err, "unexpected error")
}
