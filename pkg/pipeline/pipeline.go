// Package pipeline provides the load → layout → render pipeline shared by
// the CLI and the HTTP API.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: read a revision log from a repository (go-git or the git
//     binary) or from a history file. Repository logs are cached, keyed by
//     the resolved tip commits.
//  2. Layout: assign lanes, colors and connections with [lanes.Builder].
//     Layouts are never cached; they are cheap to recompute.
//  3. Render: produce text, JSON, DOT, SVG, PNG or PDF artifacts.
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Repo:    ".",
//	    Formats: []string{"text", "svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.Stdout.Write(result.Artifacts["text"])
//
// Errors returned by the runner carry a [errs.Code] (see [Classify]) so
// that callers can map them to exit codes or HTTP statuses.
//
// [errs.Code]: github.com/matzehuels/revgraph/pkg/errors.Code
package pipeline

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/revgraph/pkg/cache"
	errs "github.com/matzehuels/revgraph/pkg/errors"
	"github.com/matzehuels/revgraph/pkg/gitlog"
	"github.com/matzehuels/revgraph/pkg/lanes"
	"github.com/matzehuels/revgraph/pkg/render/text"
	"github.com/matzehuels/revgraph/pkg/revision"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultScale is the PNG scale factor.
	DefaultScale = 2.0

	// DefaultReader is the log reader used when none is named.
	DefaultReader = gitlog.ReaderGoGit
)

// Format constants for output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatText: true,
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
}

// FormatExtensions maps formats to output file extensions.
var FormatExtensions = map[string]string{
	FormatText: ".txt",
	FormatJSON: ".json",
	FormatDOT:  ".dot",
	FormatSVG:  ".svg",
	FormatPNG:  ".png",
	FormatPDF:  ".pdf",
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options. Exactly one of Repo and HistoryFile is set.
	Repo        string `json:"repo,omitempty"`
	HistoryFile string `json:"history_file,omitempty"`
	Ref         string `json:"ref,omitempty"`
	All         bool   `json:"all,omitempty"`
	FirstParent bool   `json:"first_parent,omitempty"`
	MaxCount    int    `json:"max_count,omitempty"`
	WorkTree    bool   `json:"worktree,omitempty"`
	Reader      string `json:"reader,omitempty"`
	Refresh     bool   `json:"refresh,omitempty"`

	// Layout options
	ColorPolicy string `json:"color_policy,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Charset string   `json:"charset,omitempty"`
	Color   bool     `json:"color,omitempty"`
	Palette []string `json:"palette,omitempty"`
	Body    bool     `json:"body,omitempty"`
	Labels  bool     `json:"labels,omitempty"`
	Scale   float64  `json:"scale,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Revisions is the loaded log, children first.
	Revisions []revision.Revision

	// Layouts holds one entry per revision.
	Layouts []lanes.RevisionLayout

	// Dangling lists parents that never appeared as rows.
	Dangling []revision.ID

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo describes the history cache lookup.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Layout     lanes.Stats
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo describes how the history was obtained.
type CacheInfo struct {
	Key     string        // empty when the cache was not consulted
	Tips    []revision.ID // resolved starting commits
	LoadHit bool          // history came from the cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errs.New(errs.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", format, strings.Join(formatNames(), ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateReader checks that a reader name is valid.
func ValidateReader(name string) error {
	if name != gitlog.ReaderGoGit && name != gitlog.ReaderExec {
		return errs.New(errs.ErrCodeInvalidInput, "invalid reader: %q (must be one of: %s, %s)", name, gitlog.ReaderGoGit, gitlog.ReaderExec)
	}
	return nil
}

func formatNames() []string {
	names := make([]string, 0, len(ValidFormats))
	for f := range ValidFormats {
		names = append(names, f)
	}
	sort.Strings(names)
	return names
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. Calling it more than once has the same effect as calling it
// once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks the load options and applies their defaults.
func (o *Options) ValidateForLoad() error {
	switch {
	case o.Repo == "" && o.HistoryFile == "":
		return errs.New(errs.ErrCodeInvalidInput, "a repository or a history file is required")
	case o.Repo != "" && o.HistoryFile != "":
		return errs.New(errs.ErrCodeInvalidInput, "repository and history file are mutually exclusive")
	}
	if o.Repo != "" {
		if err := errs.ValidateRepoPath(o.Repo); err != nil {
			return err
		}
	} else if err := errs.ValidateRepoPath(o.HistoryFile); err != nil {
		return err
	}
	if o.Ref != "" {
		if err := errs.ValidateRef(o.Ref); err != nil {
			return err
		}
	}
	if o.MaxCount < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "max count must not be negative: %d", o.MaxCount)
	}
	if o.Reader == "" {
		o.Reader = DefaultReader
	}
	if err := ValidateReader(o.Reader); err != nil {
		return err
	}
	o.setLogger()
	return nil
}

// ValidateForLayout checks the layout options and applies their defaults.
func (o *Options) ValidateForLayout() error {
	if o.ColorPolicy == "" {
		o.ColorPolicy = lanes.PolicyFreshOnMerge
	}
	if _, err := lanes.ParseColorPolicy(o.ColorPolicy); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid color policy")
	}
	o.setLogger()
	return nil
}

// ValidateForRender checks the render options and applies their defaults.
func (o *Options) ValidateForRender() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatText}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Charset == "" {
		o.Charset = text.CharsetUnicode
	}
	if _, err := text.ParseCharset(o.Charset); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid charset")
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Scale < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "scale must be positive: %g", o.Scale)
	}
	o.setLogger()
	return nil
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Policy returns the parsed color policy. Call after validation.
func (o *Options) Policy() lanes.ColorPolicy {
	p, _ := lanes.ParseColorPolicy(o.ColorPolicy)
	return p
}

// Query returns the revision query described by the load options.
func (o *Options) Query() gitlog.Query {
	return gitlog.Query{
		Ref:         o.Ref,
		All:         o.All,
		FirstParent: o.FirstParent,
		MaxCount:    o.MaxCount,
		WorkTree:    o.WorkTree,
	}
}

// HistoryKeyOpts returns cache key options for the loaded history.
func (o *Options) HistoryKeyOpts() cache.HistoryKeyOpts {
	return cache.HistoryKeyOpts{
		Ref:         o.Ref,
		All:         o.All,
		FirstParent: o.FirstParent,
		MaxCount:    o.MaxCount,
		Reader:      o.Reader,
	}
}

// Source names where the history comes from, for logs and hooks.
func (o *Options) Source() string {
	if o.HistoryFile != "" {
		return o.HistoryFile
	}
	return o.Repo
}

// String summarizes the options for debug logs.
func (o *Options) String() string {
	return fmt.Sprintf("source=%s ref=%s all=%t first_parent=%t max=%d policy=%s formats=%v",
		o.Source(), o.Ref, o.All, o.FirstParent, o.MaxCount, o.ColorPolicy, o.Formats)
}
