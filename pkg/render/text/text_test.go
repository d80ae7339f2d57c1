package text

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/matzehuels/revgraph/pkg/lanes"
	"github.com/matzehuels/revgraph/pkg/revision"
)

func history(subjects map[string]string, specs ...string) []revision.Revision {
	var revs []revision.Revision
	for _, s := range specs {
		id, parents, _ := strings.Cut(s, ":")
		var ps []string
		if parents != "" {
			ps = strings.Split(parents, ",")
		}
		r := revision.New(id, ps...)
		r.Subject = subjects[id]
		revs = append(revs, r)
	}
	return revs
}

func render(t *testing.T, revs []revision.Revision, opts Options) string {
	t.Helper()
	layouts, err := lanes.Compute(revs)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	var buf bytes.Buffer
	if err := Render(&buf, revs, layouts, opts); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return buf.String()
}

func TestRenderMerge(t *testing.T) {
	revs := history(map[string]string{
		"m": "Merge branch 'topic'", "c3": "main work", "c2": "topic work", "c1": "initial commit",
	}, "m:c3,c2", "c3:c1", "c2:c1", "c1")

	tests := []struct {
		charset string
		want    string
	}{
		{CharsetUnicode, `● m Merge branch 'topic'
│╲
● │ c3 main work
│ ● c2 topic work
│╱
● c1 initial commit
`},
		{CharsetASCII, `* m Merge branch 'topic'
|\
* | c3 main work
| * c2 topic work
|/
* c1 initial commit
`},
	}
	for _, tt := range tests {
		t.Run(tt.charset, func(t *testing.T) {
			if got := render(t, revs, Options{Charset: tt.charset}); got != tt.want {
				t.Errorf("Render() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestRenderOctopus(t *testing.T) {
	revs := history(nil, "a:b,c,d", "b", "c", "d")
	want := `● a
├╲──╮
● │ │ b
 ╱ ╱
● │ c
 ╱
● d
`
	if got := render(t, revs, Options{}); got != want {
		t.Errorf("Render() =\n%s\nwant\n%s", got, want)
	}
}

func TestRenderLinear(t *testing.T) {
	revs := history(nil, "c:b", "b:a", "a")
	want := "* c\n* b\n* a\n"
	if got := render(t, revs, Options{Charset: CharsetASCII}); got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRenderArtificial(t *testing.T) {
	wt := revision.Revision{ID: revision.WorkTree, Parents: []revision.ID{"a"}, Subject: "Uncommitted changes"}
	revs := []revision.Revision{wt, revision.New("a")}
	got := render(t, revs, Options{Charset: CharsetASCII})
	if !strings.HasPrefix(got, "o ") {
		t.Errorf("work tree should use the artificial glyph, got %q", got)
	}
}

func TestRenderBody(t *testing.T) {
	revs := history(nil, "b:a", "a")
	revs[0].Subject = "subject"
	revs[0].Body = "subject\n\ndetails"
	got := render(t, revs, Options{Charset: CharsetASCII, Body: true})
	want := "* b subject\n|     \n|     details\n* a\n"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestLinesRows(t *testing.T) {
	revs := history(nil, "m:c3,c2", "c3:c1", "c2:c1", "c1")
	layouts, err := lanes.Compute(revs)
	if err != nil {
		t.Fatal(err)
	}
	lines, err := Lines(revs, layouts, Options{})
	if err != nil {
		t.Fatal(err)
	}
	var rows []int
	for _, l := range lines {
		rows = append(rows, l.Row)
	}
	want := []int{0, -1, 1, 2, -1, 3}
	if len(rows) != len(want) {
		t.Fatalf("rows = %v, want %v", rows, want)
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Errorf("rows = %v, want %v", rows, want)
			break
		}
	}
}

func TestRenderErrors(t *testing.T) {
	revs := history(nil, "b:a", "a")
	layouts, err := lanes.Compute(revs)
	if err != nil {
		t.Fatal(err)
	}

	if err := Render(&bytes.Buffer{}, revs[:1], layouts, Options{}); !errors.Is(err, ErrMismatch) {
		t.Errorf("length mismatch: got %v, want ErrMismatch", err)
	}
	swapped := []revision.Revision{revs[1], revs[0]}
	if err := Render(&bytes.Buffer{}, swapped, layouts, Options{}); !errors.Is(err, ErrMismatch) {
		t.Errorf("id mismatch: got %v, want ErrMismatch", err)
	}
	if err := Render(&bytes.Buffer{}, revs, layouts, Options{Charset: "ebcdic"}); err == nil {
		t.Error("unknown charset should fail")
	}
}

func TestParseCharset(t *testing.T) {
	for _, name := range []string{"", CharsetUnicode, CharsetASCII} {
		g, err := ParseCharset(name)
		if err != nil {
			t.Errorf("ParseCharset(%q) error: %v", name, err)
			continue
		}
		if name != "" && g.Name != name {
			t.Errorf("ParseCharset(%q).Name = %q", name, g.Name)
		}
	}
}

func TestJoin(t *testing.T) {
	g, _ := ParseCharset(CharsetUnicode)
	tests := []struct {
		prev, next, want rune
	}{
		{' ', '│', '│'},
		{'│', '─', '┼'},
		{'─', '│', '┼'},
		{'│', '╰', '├'},
		{'╮', '│', '┤'},
		{'─', '╮', '╮'},
		{'╲', '─', '╲'},
	}
	for _, tt := range tests {
		if got := g.join(tt.prev, tt.next); got != tt.want {
			t.Errorf("join(%q, %q) = %q, want %q", tt.prev, tt.next, got, tt.want)
		}
	}
}
