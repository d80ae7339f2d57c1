package lanes

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/revgraph/pkg/revision"
)

// revs parses "id:parent,parent" specs.
func revs(specs ...string) []revision.Revision {
	out := make([]revision.Revision, 0, len(specs))
	for _, s := range specs {
		f := strings.FieldsFunc(s, func(r rune) bool { return r == ':' || r == ',' })
		out = append(out, revision.New(f[0], f[1:]...))
	}
	return out
}

func mustCompute(t *testing.T, in []revision.Revision, opts ...Option) []RevisionLayout {
	t.Helper()
	got, err := Compute(in, opts...)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	return got
}

// The lane, width and connection geometry below follows the worked
// R1..R4 merge example. Its colors assume R3 continues R2's color; under
// the default fresh-on-merge rule both merge parents get new colors
// instead (R3=1, R4=2), and the rule wins. TestColorPolicyFirstParent
// covers the example's coloring.
func TestComputeMergeScenario(t *testing.T) {
	got := mustCompute(t, revs("R1:R2", "R2:R3,R4", "R3", "R4"))

	want := []RevisionLayout{
		{ID: "R1", Lane: 0, Color: 0, Width: 1, Connections: []Connection{
			{Lane: 0, Delta: 0, Direction: Down, Color: 0},
		}},
		{ID: "R2", Lane: 0, Color: 0, Width: 1, Connections: []Connection{
			{Lane: 0, Delta: 0, Direction: Up, Color: 0},
			{Lane: 0, Delta: 0, Direction: Down, Color: 1},
			{Lane: 0, Delta: 1, Direction: Down, Color: 2},
		}},
		{ID: "R3", Lane: 0, Color: 1, Width: 2, Connections: []Connection{
			{Lane: 0, Delta: 0, Direction: Up, Color: 1},
			{Lane: 1, Delta: -1, Direction: Up, Color: 2},
			{Lane: 1, Delta: -1, Direction: Down, Color: 2},
		}},
		{ID: "R4", Lane: 0, Color: 2, Width: 1, Connections: []Connection{
			{Lane: 0, Delta: 1, Direction: Up, Color: 2},
		}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Compute() =\n%+v\nwant\n%+v", got, want)
	}
}

func TestComputeLinear(t *testing.T) {
	got := mustCompute(t, revs("a:b", "b:c", "c:d", "d"))
	for i, l := range got {
		if l.Lane != 0 || l.Color != 0 || l.Width != 1 {
			t.Errorf("row %d = %+v, want lane 0 color 0 width 1", i, l)
		}
		for _, c := range l.Connections {
			if c.Delta != 0 {
				t.Errorf("row %d has bent connection %+v", i, c)
			}
		}
	}
	if n := len(got[0].Ups()); n != 0 {
		t.Errorf("first row has %d Up connections, want 0", n)
	}
	if n := len(got[len(got)-1].Downs()); n != 0 {
		t.Errorf("last row has %d Down connections, want 0", n)
	}
}

func TestComputeEmpty(t *testing.T) {
	got, err := Compute(nil)
	if err != nil {
		t.Fatalf("Compute(nil) error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Compute(nil) = %v, want empty", got)
	}
}

func TestComputeSingle(t *testing.T) {
	got := mustCompute(t, revs("a"))
	want := []RevisionLayout{{ID: "a", Lane: 0, Color: 0, Width: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Compute() = %+v, want %+v", got, want)
	}
}

func TestComputeBranchAndMerge(t *testing.T) {
	// m merges feature branch f into main; both fork from base.
	got := mustCompute(t, revs("m:a,f", "f:base", "a:base", "base"))

	lanesOf := func(id revision.ID) RevisionLayout {
		for _, l := range got {
			if l.ID == id {
				return l
			}
		}
		t.Fatalf("no layout for %s", id)
		return RevisionLayout{}
	}

	if l := lanesOf("m"); l.Lane != 0 || l.Color != 0 {
		t.Errorf("m = %+v, want lane 0 color 0", l)
	}
	// Both merge parents get fresh colors in parent order. f is the next
	// row, so it takes over m's lane.
	if l := lanesOf("f"); l.Lane != 0 || l.Color != 2 || l.Width != 2 {
		t.Errorf("f = %+v, want lane 0 color 2 width 2", l)
	}
	if l := lanesOf("a"); l.Lane != 1 || l.Color != 1 || l.Width != 2 {
		t.Errorf("a = %+v, want lane 1 color 1 width 2", l)
	}
	// base is reached from both lanes, which converge; f colors it first.
	if l := lanesOf("base"); l.Lane != 0 || l.Color != 2 || l.Width != 1 {
		t.Errorf("base = %+v, want lane 0 color 2 width 1", l)
	}
	if n := len(lanesOf("base").Ups()); n != 2 {
		t.Errorf("base has %d Up connections, want 2", n)
	}
}

func TestComputeUnrelatedTips(t *testing.T) {
	// Two independent histories interleaved; y is not referenced by x.
	got := mustCompute(t, revs("x", "y"))
	if got[1].Lane != 0 || got[1].Width != 1 {
		t.Errorf("y = %+v, want lane 0 width 1", got[1])
	}
	if got[1].Color != 1 {
		t.Errorf("y color = %d, want 1", got[1].Color)
	}
	if len(got[0].Connections) != 0 || len(got[1].Connections) != 0 {
		t.Errorf("unrelated rows should not connect: %+v", got)
	}

	// Tip appears while another lane is still in transit.
	got = mustCompute(t, revs("a:c", "b:c", "c"))
	if got[1].Lane != 1 || got[1].Width != 2 {
		t.Errorf("b = %+v, want lane 1 width 2", got[1])
	}
	if got[2].Lane != 0 || len(got[2].Ups()) != 2 {
		t.Errorf("c = %+v, want lane 0 with 2 Up connections", got[2])
	}
}

func TestColorPolicyFirstParent(t *testing.T) {
	got := mustCompute(t, revs("R1:R2", "R2:R3,R4", "R3", "R4"), WithColorPolicy(ColorFirstParent))
	wantColors := []int{0, 0, 0, 1}
	for i, l := range got {
		if l.Color != wantColors[i] {
			t.Errorf("%s color = %d, want %d", l.ID, l.Color, wantColors[i])
		}
	}
}

func TestComputeErrors(t *testing.T) {
	tests := []struct {
		name string
		in   []revision.Revision
		want error
	}{
		{"empty id", []revision.Revision{revision.New("")}, ErrInvalidID},
		{"empty parent", []revision.Revision{{ID: "a", Parents: []revision.ID{""}}}, ErrInvalidID},
		{"duplicate", revs("a:b", "b", "a"), ErrDuplicateRevision},
		{"self parent", revs("a:a"), ErrOutOfOrder},
		{"parent emitted first", revs("b", "a:b"), ErrOutOfOrder},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compute(tt.in)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Compute() error = %v, want %v", err, tt.want)
			}
			if got != nil {
				t.Errorf("Compute() returned partial layout %+v", got)
			}
		})
	}
}

func TestBuilderStickyError(t *testing.T) {
	b := NewBuilder()
	if err := b.Append(revision.New("a", "b")); err != nil {
		t.Fatal(err)
	}
	if err := b.Append(revision.New("a")); !errors.Is(err, ErrDuplicateRevision) {
		t.Fatalf("Append(duplicate) = %v, want ErrDuplicateRevision", err)
	}
	if err := b.Append(revision.New("b")); !errors.Is(err, ErrDuplicateRevision) {
		t.Errorf("Append after failure = %v, want sticky ErrDuplicateRevision", err)
	}
	if b.Len() != 1 {
		t.Errorf("Len() = %d, want 1", b.Len())
	}
	if !errors.Is(b.Err(), ErrDuplicateRevision) {
		t.Errorf("Err() = %v", b.Err())
	}
}

func TestBuilderLaneInvariant(t *testing.T) {
	b := NewBuilder()
	if err := b.Append(revision.New("a", "b")); err != nil {
		t.Fatal(err)
	}
	// The bottom row no longer holds a's lane.
	b.lanes = Sequence{"x"}

	err := b.Append(revision.New("b"))
	if !errors.Is(err, ErrLaneInvariant) {
		t.Fatalf("Append() = %v, want ErrLaneInvariant", err)
	}
	if b.Err() != err {
		t.Errorf("Err() = %v, want %v", b.Err(), err)
	}
	if again := b.Append(revision.New("c")); again != err {
		t.Errorf("Append after failure = %v, want sticky %v", again, err)
	}
	if b.Len() != 1 {
		t.Errorf("Len() = %d, want 1", b.Len())
	}
}

func TestBuilderDuplicateParents(t *testing.T) {
	got := mustCompute(t, revs("a:b,b", "b"))
	if n := len(got[0].Downs()); n != 1 {
		t.Errorf("a has %d Down connections, want 1", n)
	}
	if got[1].Width != 1 {
		t.Errorf("b width = %d, want 1", got[1].Width)
	}
}

func TestBuilderPending(t *testing.T) {
	// c is never listed: a truncated history.
	b := NewBuilder()
	for _, r := range revs("a:b,c", "b:d") {
		if err := b.Append(r); err != nil {
			t.Fatal(err)
		}
	}
	if got, want := b.Pending(), []revision.ID{"c", "d"}; !slices.Equal(got, want) {
		t.Errorf("Pending() = %v, want %v", got, want)
	}
	if got, want := b.Lanes(), (Sequence{"b", "c"}); !slices.Equal(got, want) {
		t.Errorf("Lanes() = %v, want %v", got, want)
	}

	// The dangling parent keeps its transit lane next to the tip.
	l := b.Layouts()
	if l[1].Width != 2 {
		t.Errorf("b width = %d, want 2", l[1].Width)
	}
}

func TestBuilderLayoutsIsCopy(t *testing.T) {
	b := NewBuilder()
	for _, r := range revs("a:b", "b") {
		if err := b.Append(r); err != nil {
			t.Fatal(err)
		}
	}
	snap := b.Layouts()
	snap[0].Connections[0].Color = 99
	if b.Layouts()[0].Connections[0].Color == 99 {
		t.Error("Layouts() shares connection storage with the builder")
	}
}

func TestBuilderMatchesCompute(t *testing.T) {
	in := randomHistory(rand.New(rand.NewPCG(7, 11)), 60)
	want := mustCompute(t, in)

	b := NewBuilder()
	for _, r := range in {
		if err := b.Append(r); err != nil {
			t.Fatal(err)
		}
	}
	if got := b.Layouts(); !reflect.DeepEqual(got, want) {
		t.Error("incremental Append differs from Compute")
	}
}

func TestComputeIdempotent(t *testing.T) {
	in := randomHistory(rand.New(rand.NewPCG(1, 2)), 80)
	first := mustCompute(t, in)
	second := mustCompute(t, in)
	if !reflect.DeepEqual(first, second) {
		t.Error("two passes over the same input differ")
	}
}

func TestComputeProperties(t *testing.T) {
	for seed := uint64(0); seed < 25; seed++ {
		t.Run(fmt.Sprintf("seed=%d", seed), func(t *testing.T) {
			in := randomHistory(rand.New(rand.NewPCG(seed, seed*31+1)), 40)
			got := mustCompute(t, in)
			checkLayout(t, in, got)
		})
	}
}

// TestBuilderWidthTransitions checks each row against the lane sequence
// it was laid out from: the row's lane is its id's position, and the width
// changes only by the consumed lane, the missing parents and a new tip.
func TestBuilderWidthTransitions(t *testing.T) {
	for seed := uint64(0); seed < 25; seed++ {
		t.Run(fmt.Sprintf("seed=%d", seed), func(t *testing.T) {
			in := randomHistory(rand.New(rand.NewPCG(seed, seed*17+3)), 40)
			b := NewBuilder()
			for i, rev := range in {
				var (
					prev    Sequence
					missing []revision.ID
					unseen  = true
				)
				if i > 0 {
					u := in[i-1]
					prev = b.Lanes()
					rest := slices.DeleteFunc(prev.Clone(), func(id revision.ID) bool { return id == u.ID })
					for _, id := range u.Parents {
						if !rest.Contains(id) && !slices.Contains(missing, id) {
							missing = append(missing, id)
						}
					}
					unseen = !rest.Contains(rev.ID) && !slices.Contains(missing, rev.ID)
				}

				if err := b.Append(rev); err != nil {
					t.Fatalf("Append(%s): %v", rev.ID, err)
				}
				got := b.Layouts()[i]
				seq := b.Lanes()
				if got.Lane != seq.Index(rev.ID) {
					t.Errorf("row %d lane = %d, want index %d in %v", i, got.Lane, seq.Index(rev.ID), seq)
				}
				if got.Width != len(seq) {
					t.Errorf("row %d width = %d, want %d", i, got.Width, len(seq))
				}
				if i == 0 {
					if got.Width != 1 {
						t.Errorf("first row width = %d, want 1", got.Width)
					}
					continue
				}
				want := len(prev) - 1 + len(missing)
				if unseen {
					want++
				}
				if got.Width != want {
					t.Errorf("row %d (%s) width = %d, want %d (upper %v, missing %v, new tip %v)",
						i, rev.ID, got.Width, want, prev, missing, unseen)
				}
			}
		})
	}
}

// checkLayout asserts the structural guarantees every layout must meet.
func checkLayout(t *testing.T, in []revision.Revision, got []RevisionLayout) {
	t.Helper()
	if len(got) != len(in) {
		t.Fatalf("got %d rows, want %d", len(got), len(in))
	}
	for i, l := range got {
		if l.ID != in[i].ID {
			t.Fatalf("row %d id = %s, want %s", i, l.ID, in[i].ID)
		}
		if l.Lane < 0 || l.Lane >= l.Width {
			t.Errorf("row %d lane %d outside width %d", i, l.Lane, l.Width)
		}

		for _, c := range l.Connections {
			if c.Lane < 0 || c.Lane >= l.Width {
				t.Errorf("row %d connection %+v outside width %d", i, c, l.Width)
			}
			switch c.Direction {
			case Up:
				if i == 0 || c.Target() < 0 || c.Target() >= got[i-1].Width {
					t.Errorf("row %d Up connection %+v has no target row", i, c)
				}
			case Down:
				if i == len(got)-1 || c.Target() < 0 || c.Target() >= got[i+1].Width {
					t.Errorf("row %d Down connection %+v has no target row", i, c)
				}
			default:
				t.Errorf("row %d has connection with direction %v", i, c.Direction)
			}
		}

		if i == 0 {
			continue
		}
		downs := got[i-1].Downs()
		ups := l.Ups()
		if len(downs) != len(ups) {
			t.Fatalf("rows %d/%d: %d Down vs %d Up halves", i-1, i, len(downs), len(ups))
		}
		for k := range downs {
			if downs[k].Mirror() != ups[k] {
				t.Errorf("rows %d/%d: Down %+v does not mirror Up %+v", i-1, i, downs[k], ups[k])
			}
		}
	}
}

// randomHistory builds n revisions in child-before-parent order. Parents
// are chosen among later revisions, with the occasional merge and the
// occasional parent outside the log.
func randomHistory(r *rand.Rand, n int) []revision.Revision {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("c%03d", i)
	}
	out := make([]revision.Revision, n)
	for i := range ids {
		var parents []string
		if i < n-1 {
			k := 1
			switch x := r.IntN(10); {
			case x == 0:
				k = 0
			case x >= 8:
				k = 2 + r.IntN(2)
			}
			for range k {
				j := i + 1 + r.IntN(min(5, n-i-1))
				parents = append(parents, ids[j])
			}
		}
		if r.IntN(15) == 0 {
			parents = append(parents, fmt.Sprintf("outside%03d", i))
		}
		out[i] = revision.New(ids[i], parents...)
	}
	return out
}
