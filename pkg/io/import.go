package io

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/revgraph/pkg/graph"
	"github.com/matzehuels/revgraph/pkg/revision"
)

// ErrEmpty is returned by [Import] for files without any content.
var ErrEmpty = errors.New("empty history file")

// Format names.
const (
	FormatJSON       = "json"
	FormatParentList = "parents"
)

// ReadParentList parses `%H %P` lines from r.
func ReadParentList(r io.Reader) ([]revision.Revision, error) {
	var out []revision.Revision
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 1<<20)
	n := 0
	for s.Scan() {
		n++
		fields := strings.Fields(s.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		ids := revision.IDs(fields...)
		out = append(out, revision.Revision{ID: ids[0], Parents: ids[1:]})
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("line %d: %w", n+1, err)
	}
	return out, nil
}

// Import reads a history file in either format.
func Import(path string) ([]revision.Revision, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	revs, err := Parse(data, DetectFormat(path, data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return revs, nil
}

// Parse decodes data in the given format.
func Parse(data []byte, format string) ([]revision.Revision, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmpty
	}
	switch format {
	case FormatJSON:
		h, err := graph.UnmarshalHistory(data)
		if err != nil {
			return nil, err
		}
		return h.ToRevisions()
	case FormatParentList:
		return ReadParentList(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unknown history format %q", format)
	}
}

// DetectFormat guesses the format of a history file from its name and
// content.
func DetectFormat(path string, data []byte) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		return FormatJSON
	}
	return FormatParentList
}
