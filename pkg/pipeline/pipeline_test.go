package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/revgraph/pkg/cache"
	errs "github.com/matzehuels/revgraph/pkg/errors"
	"github.com/matzehuels/revgraph/pkg/gitlog"
	"github.com/matzehuels/revgraph/pkg/lanes"
	"github.com/matzehuels/revgraph/pkg/observability"
	"github.com/matzehuels/revgraph/pkg/revision"
)

// fakeReader serves a fixed history and counts reads.
type fakeReader struct {
	mu    sync.Mutex
	revs  []revision.Revision
	tips  []revision.ID
	reads int
	err   error
}

func (f *fakeReader) Tips(context.Context, gitlog.Query) ([]revision.ID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tips, f.err
}

func (f *fakeReader) Read(_ context.Context, q gitlog.Query) ([]revision.Revision, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.err != nil {
		return nil, f.err
	}
	revs := f.revs
	if q.WorkTree {
		wt := revision.Revision{ID: revision.WorkTree, Parents: []revision.ID{revs[0].ID}, Subject: gitlog.WorkTreeSubject}
		revs = append([]revision.Revision{wt}, revs...)
	}
	return revs, nil
}

func mergeHistory() []revision.Revision {
	revs := []revision.Revision{
		revision.New("m", "c3", "c2"),
		revision.New("c3", "c1"),
		revision.New("c2", "c1"),
		revision.New("c1"),
	}
	for i, s := range []string{"Merge topic", "main work", "topic work", "initial commit"} {
		revs[i].Subject = s
	}
	return revs
}

func newTestRunner(t *testing.T, reader *fakeReader) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, log.New(os.Stderr))
	r.Logger.SetLevel(log.ErrorLevel)
	r.OpenReader = func(name, path string) (gitlog.Reader, error) { return reader, nil }
	return r
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"text", false},
		{"json", false},
		{"dot", false},
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errs.Is(err, errs.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %q", tt.format, errs.GetCode(err))
		}
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	opts := Options{Repo: "."}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if opts.Reader != gitlog.ReaderGoGit {
		t.Errorf("Reader = %q", opts.Reader)
	}
	if opts.ColorPolicy != lanes.PolicyFreshOnMerge {
		t.Errorf("ColorPolicy = %q", opts.ColorPolicy)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatText {
		t.Errorf("Formats = %v", opts.Formats)
	}
	if opts.Charset != "unicode" || opts.Scale != DefaultScale || opts.Logger == nil {
		t.Errorf("render defaults not applied: %+v", opts)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errs.Code
	}{
		{"no source", Options{}, errs.ErrCodeInvalidInput},
		{"two sources", Options{Repo: ".", HistoryFile: "h.json"}, errs.ErrCodeInvalidInput},
		{"bad ref", Options{Repo: ".", Ref: "--all"}, errs.ErrCodeInvalidRef},
		{"negative max", Options{Repo: ".", MaxCount: -1}, errs.ErrCodeInvalidInput},
		{"bad reader", Options{Repo: ".", Reader: "libgit2"}, errs.ErrCodeInvalidInput},
		{"bad policy", Options{Repo: ".", ColorPolicy: "rainbow"}, errs.ErrCodeInvalidInput},
		{"bad format", Options{Repo: ".", Formats: []string{"gif"}}, errs.ErrCodeInvalidFormat},
		{"bad charset", Options{Repo: ".", Charset: "ebcdic"}, errs.ErrCodeInvalidInput},
		{"bad scale", Options{Repo: ".", Scale: -1}, errs.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errs.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestLoadCaches(t *testing.T) {
	reader := &fakeReader{revs: mergeHistory(), tips: revision.IDs("m")}
	r := newTestRunner(t, reader)
	ctx := context.Background()
	opts := Options{Repo: "/src/project"}

	revs, info, err := r.Load(ctx, opts)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if info.LoadHit || info.Key == "" || len(revs) != 4 {
		t.Fatalf("first load: hit=%v key=%q revs=%d", info.LoadHit, info.Key, len(revs))
	}

	again, info2, err := r.Load(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !info2.LoadHit || info2.Key != info.Key {
		t.Errorf("second load should hit the same key: %+v", info2)
	}
	if reader.reads != 1 {
		t.Errorf("reads = %d, want 1", reader.reads)
	}
	if again[0].Subject != "Merge topic" || len(again[0].Parents) != 2 {
		t.Errorf("cached history lost data: %+v", again[0])
	}

	// A moved tip is a different history.
	reader.tips = revision.IDs("newer")
	if _, info3, _ := r.Load(ctx, opts); info3.LoadHit || info3.Key == info.Key {
		t.Errorf("moved tip should miss: %+v", info3)
	}

	opts.Refresh = true
	reader.tips = revision.IDs("m")
	if _, info4, _ := r.Load(ctx, opts); info4.LoadHit {
		t.Error("refresh should skip the cache")
	}
	if reader.reads != 3 {
		t.Errorf("reads = %d, want 3", reader.reads)
	}
}

func TestLoadWorkTreeBypassesCache(t *testing.T) {
	reader := &fakeReader{revs: mergeHistory(), tips: revision.IDs("m")}
	r := newTestRunner(t, reader)
	opts := Options{Repo: ".", WorkTree: true}

	for i := 0; i < 2; i++ {
		revs, info, err := r.Load(context.Background(), opts)
		if err != nil {
			t.Fatal(err)
		}
		if info.Key != "" || info.LoadHit {
			t.Errorf("work tree load used the cache: %+v", info)
		}
		if revs[0].ID != revision.WorkTree {
			t.Errorf("first revision = %s", revs[0].ID)
		}
	}
	if reader.reads != 2 {
		t.Errorf("reads = %d, want 2", reader.reads)
	}
}

func TestLoadHistoryFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.txt")
	if err := os.WriteFile(path, []byte("b a\na\n"), 0644); err != nil {
		t.Fatal(err)
	}
	r := NewRunner(nil, nil, nil)
	revs, info, err := r.Load(context.Background(), Options{HistoryFile: path})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(revs) != 2 || info.Key != "" {
		t.Errorf("revs = %v info = %+v", revs, info)
	}

	_, _, err = r.Load(context.Background(), Options{HistoryFile: filepath.Join(t.TempDir(), "none.json")})
	if !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("missing file: error = %v", err)
	}
}

func TestLoadReaderErrors(t *testing.T) {
	reader := &fakeReader{err: gitlog.ErrNotRepository}
	r := newTestRunner(t, reader)
	_, _, err := r.Load(context.Background(), Options{Repo: "/tmp"})
	if !errs.Is(err, errs.ErrCodeRepositoryNotFound) {
		t.Errorf("error = %v, want REPOSITORY_NOT_FOUND", err)
	}
	if !errors.Is(err, gitlog.ErrNotRepository) {
		t.Error("classified error should keep its cause")
	}
}

func TestLayoutErrors(t *testing.T) {
	revs := []revision.Revision{revision.New("a"), revision.New("b", "a")}
	_, _, err := Layout(revs, Options{})
	if !errs.Is(err, errs.ErrCodeOutOfOrder) {
		t.Errorf("error = %v, want OUT_OF_ORDER", err)
	}
	if errs.GetCode(err).HTTPStatus() != 422 {
		t.Errorf("status = %d", errs.GetCode(err).HTTPStatus())
	}
}

func TestLayoutDangling(t *testing.T) {
	layouts, dangling, err := Layout([]revision.Revision{revision.New("b", "a")}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(layouts) != 1 || len(dangling) != 1 || dangling[0] != "a" {
		t.Errorf("layouts = %v dangling = %v", layouts, dangling)
	}
}

func TestExecute(t *testing.T) {
	reader := &fakeReader{revs: mergeHistory(), tips: revision.IDs("m")}
	r := newTestRunner(t, reader)

	result, err := r.Execute(context.Background(), Options{
		Repo:    ".",
		Formats: []string{FormatText, FormatJSON, FormatDOT},
		Charset: "ascii",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	wantText := `* m Merge topic
|\
* | c3 main work
| * c2 topic work
|/
* c1 initial commit
`
	if got := string(result.Artifacts[FormatText]); got != wantText {
		t.Errorf("text =\n%s\nwant\n%s", got, wantText)
	}

	var doc struct {
		ColorPolicy string `json:"color_policy"`
		Rows        []struct {
			ID   string `json:"id"`
			Lane int    `json:"lane"`
		} `json:"rows"`
	}
	if err := json.Unmarshal(result.Artifacts[FormatJSON], &doc); err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if doc.ColorPolicy != "fresh-on-merge" || len(doc.Rows) != 4 || doc.Rows[2].Lane != 1 {
		t.Errorf("json artifact = %+v", doc)
	}

	if !strings.Contains(string(result.Artifacts[FormatDOT]), `"m" -> "c3"`) {
		t.Errorf("dot artifact missing edge:\n%s", result.Artifacts[FormatDOT])
	}

	if result.Stats.Layout.Rows != 4 || result.Stats.Layout.MaxWidth != 2 {
		t.Errorf("Stats = %+v", result.Stats.Layout)
	}
	if len(result.Dangling) != 0 {
		t.Errorf("Dangling = %v", result.Dangling)
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu     sync.Mutex
	events []string
}

func (h *recordingHooks) record(e string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
}

func (h *recordingHooks) OnLoadStart(context.Context, string) { h.record("load") }
func (h *recordingHooks) OnLoadComplete(context.Context, string, int, bool, time.Duration, error) {
	h.record("loaded")
}
func (h *recordingHooks) OnLayoutStart(context.Context, int) { h.record("layout") }
func (h *recordingHooks) OnLayoutComplete(context.Context, int, time.Duration, error) {
	h.record("laid out")
}
func (h *recordingHooks) OnRenderStart(context.Context, []string) { h.record("render") }
func (h *recordingHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {
	h.record("rendered")
}

func TestExecuteHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	r := newTestRunner(t, &fakeReader{revs: mergeHistory(), tips: revision.IDs("m")})
	if _, err := r.Execute(context.Background(), Options{Repo: "."}); err != nil {
		t.Fatal(err)
	}
	want := "load,loaded,layout,laid out,render,rendered"
	if got := strings.Join(hooks.events, ","); got != want {
		t.Errorf("events = %s, want %s", got, want)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		code errs.Code
	}{
		{lanes.ErrDuplicateRevision, errs.ErrCodeDuplicateRevision},
		{lanes.ErrInvalidID, errs.ErrCodeInvalidRevision},
		{gitlog.ErrUnknownRef, errs.ErrCodeRefNotFound},
		{gitlog.ErrCycle, errs.ErrCodeInvalidHistory},
		{cache.ErrUnavailable, errs.ErrCodeCacheUnavailable},
		{os.ErrNotExist, errs.ErrCodeFileNotFound},
		{context.DeadlineExceeded, errs.ErrCodeTimeout},
		{errors.New("boom"), errs.ErrCodeInternal},
		{errs.New(errs.ErrCodeInvalidRef, "kept"), errs.ErrCodeInvalidRef},
	}
	for _, tt := range tests {
		if got := errs.GetCode(Classify(tt.err)); got != tt.code {
			t.Errorf("Classify(%v) code = %s, want %s", tt.err, got, tt.code)
		}
	}

	if Classify(nil) != nil {
		t.Error("Classify(nil) should be nil")
	}
	if err := Classify(context.Canceled); err != context.Canceled {
		t.Errorf("Classify(Canceled) = %v, want unchanged", err)
	}
}
