package revision

import (
	"regexp"
	"strings"
	"time"
)

// SHA1CharCount is the length of a full hex-encoded SHA-1 object id.
const SHA1CharCount = 40

// ShortLength is the number of characters returned by [ID.Short].
const ShortLength = 7

// Artificial revision ids. They never collide with real objects and mark
// rows that stand for uncommitted state rather than commits.
const (
	// WorkTree is 40 characters of 1's.
	WorkTree ID = "1111111111111111111111111111111111111111"

	// Index is 40 characters of 2's.
	Index ID = "2222222222222222222222222222222222222222"

	// CombinedDiff is 40 characters of 3's, the artificial commit for a
	// combined diff.
	CombinedDiff ID = "3333333333333333333333333333333333333333"
)

var sha1Re = regexp.MustCompile(`^[a-f\d]{40}$`)

// ID identifies a revision. It is compared by content; the zero value is
// not a valid identifier.
type ID string

// String returns the identifier as a string.
func (id ID) String() string { return string(id) }

// IsZero reports whether the identifier is empty.
func (id ID) IsZero() bool { return id == "" }

// Short returns the conventional 7-character abbreviation. Identifiers
// shorter than that are returned unchanged.
func (id ID) Short() string {
	if len(id) <= ShortLength {
		return string(id)
	}
	return string(id[:ShortLength])
}

// IsArtificial reports whether id is one of the well-known artificial ids.
func (id ID) IsArtificial() bool {
	return id == WorkTree || id == Index || id == CombinedDiff
}

// IsFullSHA1 reports whether s is exactly 40 lower-case hexadecimal
// characters.
func IsFullSHA1(s string) bool {
	return sha1Re.MatchString(s)
}

// IDs converts strings to identifiers.
func IDs(ss ...string) []ID {
	out := make([]ID, len(ss))
	for i, s := range ss {
		out[i] = ID(strings.TrimSpace(s))
	}
	return out
}

// Revision is one entry of a revision log. Only ID and Parents take part in
// lane layout; the remaining fields are carried for display.
type Revision struct {
	ID      ID
	Parents []ID

	Author         string
	AuthorEmail    string
	AuthorTime     time.Time
	Committer      string
	CommitterEmail string
	CommitTime     time.Time

	Subject string
	Body    string
}

// New creates a revision with the given id and parents.
func New(id string, parents ...string) Revision {
	return Revision{ID: ID(id), Parents: IDs(parents...)}
}

// IsRoot reports whether the revision has no parents.
func (r Revision) IsRoot() bool { return len(r.Parents) == 0 }

// IsMerge reports whether the revision has two or more parents.
func (r Revision) IsMerge() bool { return len(r.Parents) > 1 }

// FirstParent returns the first parent, or the zero ID for a root.
func (r Revision) FirstParent() ID {
	if len(r.Parents) == 0 {
		return ""
	}
	return r.Parents[0]
}

// String returns "<short id>:<subject>".
func (r Revision) String() string {
	return r.ID.Short() + ":" + r.Subject
}
