package lanes

import (
	"encoding/json"
	"slices"
	"testing"

	"github.com/matzehuels/revgraph/pkg/revision"
)

func TestDirectionText(t *testing.T) {
	b, err := json.Marshal([]Direction{Up, Down})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `["up","down"]` {
		t.Errorf("Marshal = %s", b)
	}

	var got []Direction
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []Direction{Up, Down}) {
		t.Errorf("Unmarshal = %v", got)
	}

	if _, err := Direction(0).MarshalText(); err == nil {
		t.Error("zero Direction should not marshal")
	}
	var d Direction
	if err := d.UnmarshalText([]byte("sideways")); err == nil {
		t.Error("expected error for unknown direction")
	}
}

func TestConnectionMirror(t *testing.T) {
	c := Connection{Lane: 2, Delta: -2, Direction: Down, Color: 5}
	m := c.Mirror()
	want := Connection{Lane: 0, Delta: 2, Direction: Up, Color: 5}
	if m != want {
		t.Errorf("Mirror() = %+v, want %+v", m, want)
	}
	if m.Mirror() != c {
		t.Error("Mirror is not an involution")
	}
	if c.Target() != 0 {
		t.Errorf("Target() = %d, want 0", c.Target())
	}
}

func TestAdvance(t *testing.T) {
	tests := []struct {
		name  string
		upper Sequence
		u, d  revision.Revision
		want  Sequence
	}{
		{"chain", Sequence{"a"}, revision.New("a", "b"), revision.New("b"), Sequence{"b"}},
		{"merge next is parent", Sequence{"a"}, revision.New("a", "b", "c"), revision.New("c"), Sequence{"c", "b"}},
		{"merge keeps order", Sequence{"x", "a", "y"}, revision.New("a", "b", "c", "d"), revision.New("z"), Sequence{"x", "b", "c", "d", "y", "z"}},
		{"parent in transit", Sequence{"a", "b"}, revision.New("a", "b"), revision.New("b"), Sequence{"b"}},
		{"root consumed", Sequence{"x", "a"}, revision.New("a"), revision.New("x"), Sequence{"x"}},
		{"new tip", Sequence{"a"}, revision.New("a", "b"), revision.New("t"), Sequence{"b", "t"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := tt.upper.Clone()
			got := advance(tt.upper, tt.upper.Index(tt.u.ID), tt.u, tt.d)
			if !slices.Equal(got, tt.want) {
				t.Errorf("advance() = %v, want %v", got, tt.want)
			}
			if !slices.Equal(tt.upper, orig) {
				t.Errorf("advance modified upper sequence: %v", tt.upper)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	got := mustCompute(t, revs("R1:R2", "R2:R3,R4", "R3", "R4"))
	s := Summarize(got)
	want := Stats{Rows: 4, MaxWidth: 2, Colors: 3, Merges: 1}
	if s != want {
		t.Errorf("Summarize() = %+v, want %+v", s, want)
	}
}
