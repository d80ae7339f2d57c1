package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	errs "github.com/matzehuels/revgraph/pkg/errors"
	"github.com/matzehuels/revgraph/pkg/graph"
	"github.com/matzehuels/revgraph/pkg/pipeline"
	"github.com/matzehuels/revgraph/pkg/revision"
)

// LayoutRequest is the body of POST /api/v1/layout.
type LayoutRequest struct {
	Revisions   []graph.Revision `json:"revisions"`
	ColorPolicy string           `json:"color_policy,omitempty"`
}

// LayoutResponse is returned by POST /api/v1/layout.
type LayoutResponse struct {
	ColorPolicy string      `json:"color_policy"`
	Stats       graph.Stats `json:"stats"`
	Layouts     []graph.Row `json:"layouts"`
	Dangling    []string    `json:"dangling"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Code      errs.Code `json:"code"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req LayoutRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		msg := "malformed request body"
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			msg = "request body too large"
		}
		s.writeError(w, r, errs.Wrap(errs.ErrCodeInvalidInput, err, "%s", msg))
		return
	}
	if len(req.Revisions) > s.opts.MaxRevisions {
		s.writeError(w, r, errs.New(errs.ErrCodeInvalidInput,
			"too many revisions: %d (limit %d)", len(req.Revisions), s.opts.MaxRevisions))
		return
	}

	revs, err := graph.History{Version: graph.FormatVersion, Revisions: req.Revisions}.ToRevisions()
	if err == nil {
		err = validateIDs(revs)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts := pipeline.Options{ColorPolicy: req.ColorPolicy, Logger: s.logger}
	layouts, dangling, err := s.runner.Layout(r.Context(), revs, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := graph.FromLayouts(layouts, opts.Policy(), dangling)
	resp := LayoutResponse{
		ColorPolicy: out.ColorPolicy,
		Stats:       out.Stats,
		Layouts:     out.Rows,
		Dangling:    out.Dangling,
	}
	if resp.Dangling == nil {
		resp.Dangling = []string{}
	}
	writeJSON(w, http.StatusOK, resp)
}

// validateIDs rejects ids that could not have come from a repository.
func validateIDs(revs []revision.Revision) error {
	for _, rev := range revs {
		if err := errs.ValidateRevisionID(string(rev.ID)); err != nil {
			return err
		}
		for _, p := range rev.Parents {
			if err := errs.ValidateRevisionID(string(p)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	result, ok := s.graph(w, r, pipeline.FormatJSON)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[pipeline.FormatJSON])
}

func (s *Server) handleGraphText(w http.ResponseWriter, r *http.Request) {
	result, ok := s.graph(w, r, pipeline.FormatText)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[pipeline.FormatText])
}

// graph runs the pipeline for the served repository. On failure it writes
// the error reply and returns false.
func (s *Server) graph(w http.ResponseWriter, r *http.Request, format string) (*pipeline.Result, bool) {
	if s.opts.Repo == "" {
		s.writeError(w, r, errs.New(errs.ErrCodeNotFound, "server has no repository"))
		return nil, false
	}
	opts, err := s.graphOptions(r, format)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return result, true
}

// graphOptions applies the query parameters limit, all, ref, first_parent,
// color_policy and charset to the server defaults.
func (s *Server) graphOptions(r *http.Request, format string) (pipeline.Options, error) {
	opts := s.opts.Defaults
	opts.Repo = s.opts.Repo
	opts.HistoryFile = ""
	opts.Formats = []string{format}
	opts.Color = false
	opts.Logger = s.logger

	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, errs.New(errs.ErrCodeInvalidInput, "invalid limit: %q", v)
		}
		opts.MaxCount = n
	}
	if opts.MaxCount == 0 || opts.MaxCount > s.opts.MaxRevisions {
		opts.MaxCount = s.opts.MaxRevisions
	}
	for name, dst := range map[string]*bool{"all": &opts.All, "first_parent": &opts.FirstParent} {
		if v := q.Get(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return opts, errs.New(errs.ErrCodeInvalidInput, "invalid %s: %q", name, v)
			}
			*dst = b
		}
	}
	if v := q.Get("ref"); v != "" {
		opts.Ref = v
	}
	if v := q.Get("color_policy"); v != "" {
		opts.ColorPolicy = v
	}
	if v := q.Get("charset"); v != "" {
		opts.Charset = v
	}
	return opts, nil
}

// =============================================================================
// Responses
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	err = pipeline.Classify(err)
	code := errs.GetCode(err)
	if code == "" {
		// Context cancellation keeps its own identity through Classify.
		code = errs.ErrCodeTimeout
	}
	status := code.HTTPStatus()
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err, "request_id", RequestID(r.Context()))
	}
	writeJSON(w, status, ErrorResponse{
		Code:      code,
		Message:   errs.UserMessage(err),
		RequestID: RequestID(r.Context()),
	})
}
