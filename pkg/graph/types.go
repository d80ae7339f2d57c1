package graph

import (
	"errors"
	"fmt"
	"time"

	"github.com/matzehuels/revgraph/pkg/lanes"
	"github.com/matzehuels/revgraph/pkg/revision"
)

// FormatVersion is the version written by this package. Documents without
// a version are read as version 1.
const FormatVersion = 1

var (
	// ErrInvalid is returned for documents that decode but are not usable.
	ErrInvalid = errors.New("invalid document")

	// ErrVersion is returned for documents newer than [FormatVersion].
	ErrVersion = errors.New("unsupported format version")
)

// =============================================================================
// History
// =============================================================================

// History is the serialization format of a revision log.
type History struct {
	Version    int        `json:"version" bson:"version"`
	Repository string     `json:"repository,omitempty" bson:"repository,omitempty"`
	Tips       []string   `json:"tips,omitempty" bson:"tips,omitempty"`
	Revisions  []Revision `json:"revisions" bson:"revisions"`
}

// Revision is one serialized log entry.
type Revision struct {
	ID             string    `json:"id" bson:"id"`
	Parents        []string  `json:"parents,omitempty" bson:"parents,omitempty"`
	Author         string    `json:"author,omitempty" bson:"author,omitempty"`
	AuthorEmail    string    `json:"author_email,omitempty" bson:"author_email,omitempty"`
	AuthorTime     time.Time `json:"author_time,omitzero" bson:"author_time,omitempty"`
	Committer      string    `json:"committer,omitempty" bson:"committer,omitempty"`
	CommitterEmail string    `json:"committer_email,omitempty" bson:"committer_email,omitempty"`
	CommitTime     time.Time `json:"commit_time,omitzero" bson:"commit_time,omitempty"`
	Subject        string    `json:"subject,omitempty" bson:"subject,omitempty"`
	Body           string    `json:"body,omitempty" bson:"body,omitempty"`
}

// FromRevisions converts a revision log to its serialization format.
func FromRevisions(revs []revision.Revision) History {
	h := History{Version: FormatVersion, Revisions: make([]Revision, len(revs))}
	for i, r := range revs {
		h.Revisions[i] = Revision{
			ID:             string(r.ID),
			Parents:        idStrings(r.Parents),
			Author:         r.Author,
			AuthorEmail:    r.AuthorEmail,
			AuthorTime:     r.AuthorTime,
			Committer:      r.Committer,
			CommitterEmail: r.CommitterEmail,
			CommitTime:     r.CommitTime,
			Subject:        r.Subject,
			Body:           r.Body,
		}
	}
	return h
}

// ToRevisions converts h back to revisions. Empty ids and parent ids are
// rejected; ordering and parent consistency are left to the lane builder.
func (h History) ToRevisions() ([]revision.Revision, error) {
	if err := checkVersion(h.Version); err != nil {
		return nil, err
	}
	out := make([]revision.Revision, len(h.Revisions))
	for i, r := range h.Revisions {
		if r.ID == "" {
			return nil, fmt.Errorf("%w: revision %d has no id", ErrInvalid, i)
		}
		parents := revision.IDs(r.Parents...)
		for _, p := range parents {
			if p.IsZero() {
				return nil, fmt.Errorf("%w: revision %s has an empty parent", ErrInvalid, r.ID)
			}
		}
		out[i] = revision.Revision{
			ID:             revision.ID(r.ID),
			Parents:        parents,
			Author:         r.Author,
			AuthorEmail:    r.AuthorEmail,
			AuthorTime:     r.AuthorTime,
			Committer:      r.Committer,
			CommitterEmail: r.CommitterEmail,
			CommitTime:     r.CommitTime,
			Subject:        r.Subject,
			Body:           r.Body,
		}
	}
	return out, nil
}

// =============================================================================
// Layout
// =============================================================================

// Layout is the serialization format of a computed lane layout.
type Layout struct {
	Version     int      `json:"version" bson:"version"`
	ColorPolicy string   `json:"color_policy" bson:"color_policy"`
	Stats       Stats    `json:"stats" bson:"stats"`
	Rows        []Row    `json:"rows" bson:"rows"`
	Dangling    []string `json:"dangling,omitempty" bson:"dangling,omitempty"`
}

// Stats mirrors [lanes.Stats].
type Stats struct {
	Rows     int `json:"rows" bson:"rows"`
	MaxWidth int `json:"max_width" bson:"max_width"`
	Colors   int `json:"colors" bson:"colors"`
	Merges   int `json:"merges" bson:"merges"`
}

// Row is the placement of one revision.
type Row struct {
	ID          string       `json:"id" bson:"id"`
	Lane        int          `json:"lane" bson:"lane"`
	Color       int          `json:"color" bson:"color"`
	Width       int          `json:"width" bson:"width"`
	Connections []Connection `json:"connections,omitempty" bson:"connections,omitempty"`
}

// Connection is one connector half.
type Connection struct {
	Lane      int             `json:"lane" bson:"lane"`
	Delta     int             `json:"delta" bson:"delta"`
	Direction lanes.Direction `json:"direction" bson:"direction"`
	Color     int             `json:"color" bson:"color"`
}

// FromLayouts converts computed layouts to their serialization format.
// dangling lists parent ids that never appeared as rows.
func FromLayouts(layouts []lanes.RevisionLayout, policy lanes.ColorPolicy, dangling []revision.ID) Layout {
	s := lanes.Summarize(layouts)
	out := Layout{
		Version:     FormatVersion,
		ColorPolicy: policy.String(),
		Stats:       Stats{Rows: s.Rows, MaxWidth: s.MaxWidth, Colors: s.Colors, Merges: s.Merges},
		Rows:        make([]Row, len(layouts)),
		Dangling:    idStrings(dangling),
	}
	for i, l := range layouts {
		row := Row{ID: string(l.ID), Lane: l.Lane, Color: l.Color, Width: l.Width}
		for _, c := range l.Connections {
			row.Connections = append(row.Connections, Connection(c))
		}
		out.Rows[i] = row
	}
	return out
}

// ToLayouts converts l back to lane layouts.
func (l Layout) ToLayouts() ([]lanes.RevisionLayout, error) {
	if err := checkVersion(l.Version); err != nil {
		return nil, err
	}
	out := make([]lanes.RevisionLayout, len(l.Rows))
	for i, r := range l.Rows {
		if r.ID == "" {
			return nil, fmt.Errorf("%w: row %d has no id", ErrInvalid, i)
		}
		rl := lanes.RevisionLayout{ID: revision.ID(r.ID), Lane: r.Lane, Color: r.Color, Width: r.Width}
		for _, c := range r.Connections {
			rl.Connections = append(rl.Connections, lanes.Connection(c))
		}
		out[i] = rl
	}
	return out, nil
}

func checkVersion(v int) error {
	if v > FormatVersion {
		return fmt.Errorf("%w: %d (newest supported is %d)", ErrVersion, v, FormatVersion)
	}
	return nil
}

func idStrings(ids []revision.ID) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
