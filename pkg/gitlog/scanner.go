package gitlog

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/revgraph/pkg/revision"
)

// Format is the pretty-format string understood by [ParseRecord].
const Format = "%H%T%P%n%at%n%ct%n%e%n%aN%n%aE%n%cN%n%cE%n%B"

// MaxRecordSize bounds a single raw record. Longer commit messages fail the
// scan with [bufio.ErrTooLong].
const MaxRecordSize = 16 << 20

// Scanner reads NUL-separated raw log records.
//
//	s := gitlog.NewScanner(stdout)
//	for s.Scan() {
//	    rev := s.Revision()
//	}
//	if err := s.Err(); err != nil { ... }
type Scanner struct {
	s   *bufio.Scanner
	rev revision.Revision
	n   int
	err error
}

// NewScanner returns a scanner reading from r.
func NewScanner(r io.Reader) *Scanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64<<10), MaxRecordSize)
	s.Split(splitNUL)
	return &Scanner{s: s}
}

// Scan advances to the next record. It returns false at the end of input or
// on the first malformed record.
func (s *Scanner) Scan() bool {
	if s.err != nil {
		return false
	}
	for s.s.Scan() {
		rec := s.s.Bytes()
		if len(bytes.TrimSpace(rec)) == 0 {
			continue
		}
		s.n++
		rev, err := ParseRecord(rec)
		if err != nil {
			s.err = fmt.Errorf("record %d: %w", s.n, err)
			return false
		}
		s.rev = rev
		return true
	}
	s.err = s.s.Err()
	return false
}

// Revision returns the revision parsed by the last successful Scan.
func (s *Scanner) Revision() revision.Revision { return s.rev }

// Err returns the first error encountered.
func (s *Scanner) Err() error { return s.err }

// ReadAll parses every record from r.
func ReadAll(r io.Reader) ([]revision.Revision, error) {
	var out []revision.Revision
	s := NewScanner(r)
	for s.Scan() {
		out = append(out, s.Revision())
	}
	return out, s.Err()
}

func splitNUL(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, 0); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// ParseRecord decodes one raw record produced with [Format].
func ParseRecord(rec []byte) (revision.Revision, error) {
	// git separates -z records with NUL but may start the next one with a
	// newline.
	rec = bytes.TrimLeft(rec, "\n")

	const idLen = revision.SHA1CharCount
	if len(rec) < 2*idLen {
		return revision.Revision{}, fmt.Errorf("%w: %d bytes", ErrParse, len(rec))
	}
	id := string(rec[:idLen])
	if !revision.IsFullSHA1(id) || !revision.IsFullSHA1(string(rec[idLen:2*idLen])) {
		return revision.Revision{}, fmt.Errorf("%w: bad object id %q", ErrParse, rec[:idLen])
	}

	lr := lineReader{s: string(rec[2*idLen:])}
	parentLine, ok := lr.next()
	if !ok {
		return revision.Revision{}, fmt.Errorf("%w: %s: unterminated parent list", ErrParse, id)
	}
	var parents []revision.ID
	for _, p := range strings.Fields(parentLine) {
		if !revision.IsFullSHA1(p) {
			return revision.Revision{}, fmt.Errorf("%w: %s: bad parent id %q", ErrParse, id, p)
		}
		parents = append(parents, revision.ID(p))
	}

	var fields [7]string
	for i := range fields {
		if fields[i], ok = lr.next(); !ok {
			return revision.Revision{}, fmt.Errorf("%w: %s: missing header line %d", ErrParse, id, i+2)
		}
	}
	authorTime, err := parseUnix(fields[0])
	if err != nil {
		return revision.Revision{}, fmt.Errorf("%w: %s: author time: %v", ErrParse, id, err)
	}
	commitTime, err := parseUnix(fields[1])
	if err != nil {
		return revision.Revision{}, fmt.Errorf("%w: %s: commit time: %v", ErrParse, id, err)
	}

	subject, body := splitMessage(lr.rest())
	return revision.Revision{
		ID:             revision.ID(id),
		Parents:        parents,
		AuthorTime:     authorTime,
		CommitTime:     commitTime,
		Author:         fields[3],
		AuthorEmail:    fields[4],
		Committer:      fields[5],
		CommitterEmail: fields[6],
		Subject:        subject,
		Body:           body,
	}, nil
}

func parseUnix(s string) (time.Time, error) {
	sec, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(sec, 0).UTC(), nil
}

// lineReader yields '\n'-terminated lines. An unterminated tail is not a
// line.
type lineReader struct {
	s string
	i int
}

func (r *lineReader) next() (string, bool) {
	if r.i >= len(r.s) {
		return "", false
	}
	n := strings.IndexByte(r.s[r.i:], '\n')
	if n < 0 {
		return "", false
	}
	line := r.s[r.i : r.i+n]
	r.i += n + 1
	return line, true
}

func (r *lineReader) rest() string {
	if r.i >= len(r.s) {
		return ""
	}
	return r.s[r.i:]
}
