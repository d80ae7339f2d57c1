package io

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/matzehuels/revgraph/pkg/graph"
	"github.com/matzehuels/revgraph/pkg/revision"
)

// WriteParentList writes one `id parent...` line per revision.
func WriteParentList(revs []revision.Revision, w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, r := range revs {
		line := string(r.ID)
		for _, p := range r.Parents {
			line += " " + string(p)
		}
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Export writes revs to path, as JSON when format is [FormatJSON] and as a
// parent list otherwise. repo and tips are recorded in JSON output only.
func Export(revs []revision.Revision, path, format, repo string, tips []revision.ID) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(revs, f, format, repo, tips); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Write encodes revs to w in the given format.
func Write(revs []revision.Revision, w io.Writer, format, repo string, tips []revision.ID) error {
	if strings.EqualFold(format, FormatParentList) {
		return WriteParentList(revs, w)
	}
	h := graph.FromRevisions(revs)
	h.Repository = repo
	for _, t := range tips {
		h.Tips = append(h.Tips, string(t))
	}
	return graph.WriteHistory(h, w)
}
