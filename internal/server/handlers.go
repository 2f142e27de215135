package server

import (
	stderrors "errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/lineage/pkg/buildinfo"
	"github.com/matzehuels/lineage/pkg/entity"
	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/graph"
	"github.com/matzehuels/lineage/pkg/joins"
	"github.com/matzehuels/lineage/pkg/lineage"
	"github.com/matzehuels/lineage/pkg/pipeline"
	"github.com/matzehuels/lineage/pkg/session"
	"github.com/matzehuels/lineage/pkg/store"
)

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatJSON: "application/json",
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// =============================================================================
// Layouts and rendering
// =============================================================================

func (s *Server) readRecord(r *http.Request) (lineage.Record, error) {
	rec, err := graph.ReadRecord(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return lineage.Record{}, errors.Wrap(errors.ErrCodeInvalidRecord, err, "invalid record: %v", err)
	}
	if err := errors.ValidateEntityID(rec.Entity.ID); err != nil {
		return lineage.Record{}, err
	}
	return rec, nil
}

// options reads render options from the query string on top of the server's
// layout settings.
func (s *Server) options(r *http.Request) pipeline.Options {
	opts := s.cfg.Layout
	q := r.URL.Query()
	opts.Refresh, _ = strconv.ParseBool(q.Get("refresh"))
	opts.Detailed, _ = strconv.ParseBool(q.Get("detailed"))
	opts.Selected = q.Get("select")
	if f := q.Get("format"); f != "" {
		opts.Formats = []string{f}
	}
	return opts
}

func setCacheHeader(w http.ResponseWriter, hit bool) {
	if hit {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
}

func (s *Server) handleCreateLayout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rec, err := s.readRecord(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	l, hit, err := s.cfg.Runner.LayoutWithCacheInfo(ctx, rec, s.options(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.cfg.Store.SaveRecord(ctx, rec); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.cfg.Store.SaveLayout(ctx, l); err != nil {
		s.writeError(w, r, err)
		return
	}

	setCacheHeader(w, hit)
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) loadLayout(r *http.Request, entityID string) (graph.Layout, error) {
	if err := errors.ValidateEntityID(entityID); err != nil {
		return graph.Layout{}, err
	}
	l, err := s.cfg.Store.Layout(r.Context(), entityID)
	if stderrors.Is(err, store.ErrNotFound) {
		return graph.Layout{}, errors.New(errors.ErrCodeNotFound, "no layout for entity %s", entityID)
	}
	return l, err
}

func (s *Server) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	l, err := s.loadLayout(r, chi.URLParam(r, "entityID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleRenderStored(w http.ResponseWriter, r *http.Request) {
	l, err := s.loadLayout(r, chi.URLParam(r, "entityID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts := s.options(r)
	if id := r.URL.Query().Get("session"); id != "" && opts.Selected == "" {
		sess, err := s.loadSession(r, id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if sess.EntityID == l.EntityID {
			if err := s.reconcile(r, sess, &l); err != nil {
				s.writeError(w, r, err)
				return
			}
			if sess.Selected != nil {
				opts.Selected = sess.Selected.ID
			}
		}
	}
	s.renderOne(w, r, l, opts)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	rec, err := s.readRecord(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts := s.options(r)
	l, hit, err := s.cfg.Runner.LayoutWithCacheInfo(r.Context(), rec, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	setCacheHeader(w, hit)
	s.renderOne(w, r, l, opts)
}

// renderOne renders exactly one format and writes it as the response body.
func (s *Server) renderOne(w http.ResponseWriter, r *http.Request, l graph.Layout, opts pipeline.Options) {
	if len(opts.Formats) == 0 {
		opts.Formats = []string{pipeline.FormatSVG}
	}
	if len(opts.Formats) != 1 {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidFormat, "exactly one format is required"))
		return
	}
	format := opts.Formats[0]

	artifacts, err := s.cfg.Runner.Render(r.Context(), l, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

// =============================================================================
// Sessions
// =============================================================================

type createSessionRequest struct {
	EntityID string `json:"entity_id"`
}

type selectRequest struct {
	NodeID string `json:"node_id"`
}

type sessionResponse struct {
	*session.Session
	MainNode bool `json:"main_node"`
}

func (s *Server) loadSession(r *http.Request, id string) (*session.Session, error) {
	if err := errors.ValidateSessionID(id); err != nil {
		return nil, err
	}
	sess, err := s.cfg.Sessions.Get(r.Context(), id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load session")
	}
	if sess == nil {
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %s not found", id)
	}
	return sess, nil
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := errors.ValidateEntityID(req.EntityID); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess := session.New(req.EntityID, s.cfg.SessionTTL)
	if err := s.cfg.Sessions.Set(r.Context(), sess); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "save session"))
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{Session: sess})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.loadSession(r, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	l, err := s.storedLayout(r, sess.EntityID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.reconcile(r, sess, l); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, describe(sess, l))
}

// storedLayout returns the entity's stored layout, or nil if there is none.
func (s *Server) storedLayout(r *http.Request, entityID string) (*graph.Layout, error) {
	l, err := s.cfg.Store.Layout(r.Context(), entityID)
	switch {
	case stderrors.Is(err, store.ErrNotFound):
		return nil, nil
	case err != nil:
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load layout for %s", entityID)
	}
	return &l, nil
}

// reconcile resets a selection made on an earlier layout of the session's
// entity and saves the session. A replaced record, a removed layout and a
// node that is gone all leave the session unselected.
func (s *Server) reconcile(r *http.Request, sess *session.Session, l *graph.Layout) error {
	if sess.Selected == nil {
		return nil
	}
	if l != nil && sess.Current(l.Revision) {
		if _, ok := l.Node(sess.Selected.ID); ok {
			return nil
		}
	}
	s.logger.Debug("resetting stale selection", "session", sess.ID, "entity", sess.EntityID, "node", sess.Selected.ID)
	sess.Clear()
	if err := s.cfg.Sessions.Set(r.Context(), sess); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "save session")
	}
	return nil
}

// describe adds whether the selection is the focal entity.
func describe(sess *session.Session, l *graph.Layout) sessionResponse {
	resp := sessionResponse{Session: sess}
	if sess.Selected == nil || l == nil {
		return resp
	}
	sel := lineage.NewSelection(l.ToGraph(), nil)
	if _, err := sel.Select(sess.Selected.ID); err == nil {
		resp.MainNode = sel.IsMainNode()
	}
	return resp
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	sess, err := s.loadSession(r, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req selectRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := errors.ValidateNodeID(req.NodeID); err != nil {
		s.writeError(w, r, err)
		return
	}

	l, err := s.loadLayout(r, sess.EntityID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sel := lineage.NewSelection(l.ToGraph(), sess.Apply)
	if _, err := sel.Select(req.NodeID); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeNotFound, err, "node %s not in layout for %s", req.NodeID, sess.EntityID))
		return
	}
	sess.Revision = l.Revision

	if err := s.cfg.Sessions.Set(r.Context(), sess); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "save session"))
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Session: sess, MainNode: sel.IsMainNode()})
}

func (s *Server) handleCloseSelection(w http.ResponseWriter, r *http.Request) {
	sess, err := s.loadSession(r, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess.Clear()
	if err := s.cfg.Sessions.Set(r.Context(), sess); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "save session"))
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Session: sess})
}

// =============================================================================
// Detail panel
// =============================================================================

type joinsResponse struct {
	Tables []joins.JoinedTable `json:"tables"`
	Layout *graph.Layout       `json:"layout,omitempty"`
}

// handleJoins ranks joined tables. With ?table=<fqn> the response also
// carries the join neighborhood laid out as a lineage graph.
func (s *Server) handleJoins(w http.ResponseWriter, r *http.Request) {
	var req joins.TableJoins
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := joinsResponse{Tables: joins.FrequentlyJoined(req.ColumnJoins)}
	if resp.Tables == nil {
		resp.Tables = []joins.JoinedTable{}
	}

	if table := r.URL.Query().Get("table"); table != "" {
		if err := errors.ValidateEntityID(table); err != nil {
			s.writeError(w, r, err)
			return
		}
		ref := lineage.EntityReference{ID: table, Name: table, Type: entity.TypeTable, FullyQualifiedName: table}
		l, err := s.cfg.Runner.Layout(r.Context(), joins.ToRecord(ref, req.ColumnJoins), s.options(r))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		resp.Layout = &l
	}
	writeJSON(w, http.StatusOK, resp)
}

type infoResponse struct {
	Rows    []entity.InfoRow `json:"rows"`
	Icon    string           `json:"icon"`
	Link    string           `json:"link"`
	Tags    []string         `json:"tags"`
	CanEdit bool             `json:"can_edit"`
}

// handleInfo builds the detail panel. ?user=<id> names the viewer for the
// edit check.
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	var d entity.Details
	if err := decodeJSON(r, &d); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, infoResponse{
		Rows:    entity.Panel(d, s.cfg.Directory),
		Icon:    entity.Icon(d.Type),
		Link:    entity.Link(d.Type, d.FullyQualifiedName),
		Tags:    entity.TagsWithoutTier(d.Tags),
		CanEdit: entity.CanEdit(s.cfg.Directory, d.OwnerID, r.URL.Query().Get("user")),
	})
}
