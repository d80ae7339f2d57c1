package graph

import (
	"bytes"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/revgraph/pkg/lanes"
	"github.com/matzehuels/revgraph/pkg/revision"
)

func sampleRevisions() []revision.Revision {
	revs := []revision.Revision{
		revision.New("m", "c3", "c2"),
		revision.New("c3", "c1"),
		revision.New("c2", "c1"),
		revision.New("c1"),
	}
	revs[0].Subject = "Merge topic"
	revs[0].Body = "Merge topic\n\nDetails."
	revs[0].Author = "Ada"
	revs[0].AuthorTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	revs[0].CommitTime = revs[0].AuthorTime
	return revs
}

func TestHistoryRoundTrip(t *testing.T) {
	revs := sampleRevisions()

	data, err := MarshalHistory(FromRevisions(revs))
	if err != nil {
		t.Fatalf("MarshalHistory: %v", err)
	}
	h, err := UnmarshalHistory(data)
	if err != nil {
		t.Fatalf("UnmarshalHistory: %v", err)
	}
	got, err := h.ToRevisions()
	if err != nil {
		t.Fatalf("ToRevisions: %v", err)
	}
	if !reflect.DeepEqual(got, revs) {
		t.Errorf("round trip changed revisions:\n got %+v\nwant %+v", got, revs)
	}
}

func TestHistoryOmitsEmptyFields(t *testing.T) {
	data, err := MarshalHistory(FromRevisions([]revision.Revision{revision.New("c1")}))
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	for _, field := range []string{"parents", "author_time", "subject", "body"} {
		if strings.Contains(s, field) {
			t.Errorf("empty field %q written:\n%s", field, s)
		}
	}
	if !strings.Contains(s, `"version": 1`) {
		t.Errorf("version missing:\n%s", s)
	}
}

func TestReadHistory(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
		wantLen int
	}{
		{"minimal", `{"revisions":[{"id":"b","parents":["a"]},{"id":"a"}]}`, nil, 2},
		{"explicit version", `{"version":1,"revisions":[]}`, nil, 0},
		{"future version", `{"version":2,"revisions":[]}`, ErrVersion, 0},
		{"missing id", `{"revisions":[{"parents":["a"]}]}`, ErrInvalid, 0},
		{"empty parent", `{"revisions":[{"id":"b","parents":[""]}]}`, ErrInvalid, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := ReadHistory(strings.NewReader(tt.input))
			var revs []revision.Revision
			if err == nil {
				revs, err = h.ToRevisions()
			}
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(revs) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(revs), tt.wantLen)
			}
		})
	}
}

func TestReadHistoryMalformed(t *testing.T) {
	if _, err := ReadHistory(strings.NewReader("{")); err == nil {
		t.Error("expected decode error")
	}
}

func TestHistoryFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	want := FromRevisions(sampleRevisions())
	want.Repository = "/src/project"
	want.Tips = []string{"m"}

	if err := WriteHistoryFile(want, path); err != nil {
		t.Fatalf("WriteHistoryFile: %v", err)
	}
	got, err := ReadHistoryFile(path)
	if err != nil {
		t.Fatalf("ReadHistoryFile: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReadHistoryFile() = %+v, want %+v", got, want)
	}

	if _, err := ReadHistoryFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLayoutRoundTrip(t *testing.T) {
	revs := sampleRevisions()
	layouts, err := lanes.Compute(revs, lanes.WithColorPolicy(lanes.ColorFreshOnMerge))
	if err != nil {
		t.Fatal(err)
	}

	doc := FromLayouts(layouts, lanes.ColorFreshOnMerge, revision.IDs("gone"))
	if doc.ColorPolicy != "fresh-on-merge" {
		t.Errorf("ColorPolicy = %q", doc.ColorPolicy)
	}
	if doc.Stats.Rows != 4 || doc.Stats.MaxWidth != 2 || doc.Stats.Merges != 1 {
		t.Errorf("Stats = %+v", doc.Stats)
	}

	data, err := MarshalLayout(doc)
	if err != nil {
		t.Fatalf("MarshalLayout: %v", err)
	}
	if !bytes.Contains(data, []byte(`"direction": "down"`)) {
		t.Errorf("directions should be written by name:\n%s", data)
	}

	back, err := UnmarshalLayout(data)
	if err != nil {
		t.Fatalf("UnmarshalLayout: %v", err)
	}
	got, err := back.ToLayouts()
	if err != nil {
		t.Fatalf("ToLayouts: %v", err)
	}
	if !reflect.DeepEqual(got, layouts) {
		t.Errorf("round trip changed layouts:\n got %+v\nwant %+v", got, layouts)
	}
	if !reflect.DeepEqual(back.Dangling, []string{"gone"}) {
		t.Errorf("Dangling = %v", back.Dangling)
	}
}

func TestUnmarshalLayoutErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"malformed", `{"rows":`},
		{"future version", `{"version":9,"rows":[]}`},
		{"stats mismatch", `{"stats":{"rows":2},"rows":[{"id":"a"}]}`},
		{"bad direction", `{"stats":{"rows":1},"rows":[{"id":"a","connections":[{"direction":"sideways"}]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := UnmarshalLayout([]byte(tt.input)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLayoutFile(t *testing.T) {
	layouts, err := lanes.Compute(sampleRevisions())
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "layout.json")
	if err := WriteLayoutFile(FromLayouts(layouts, lanes.ColorFreshOnMerge, nil), path); err != nil {
		t.Fatalf("WriteLayoutFile: %v", err)
	}
	l, err := ReadLayoutFile(path)
	if err != nil {
		t.Fatalf("ReadLayoutFile: %v", err)
	}
	if len(l.Rows) != 4 || l.Rows[0].ID != "m" {
		t.Errorf("rows = %+v", l.Rows)
	}
	if l.Dangling != nil {
		t.Errorf("Dangling = %v, want nil", l.Dangling)
	}
}
