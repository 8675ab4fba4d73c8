// Package server exposes the layout pipeline over HTTP for browser
// rendering surfaces.
//
// The server never draws: it hands positioned node/edge lists to the client
// and accepts edit events and view-state updates back. The layout engine's
// single-invocation rule is upheld by the pipeline Runner, which serializes
// passes internally, so concurrent HTTP requests are safe.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/netscale-tools/bgpmap/pkg/observability"
	"github.com/netscale-tools/bgpmap/pkg/pipeline"
	"github.com/netscale-tools/bgpmap/pkg/state"
	"github.com/netscale-tools/bgpmap/pkg/topology"
)

// Server wires the pipeline runner and the view-state store into a chi
// router.
type Server struct {
	runner   *pipeline.Runner
	store    state.Store
	stateKey string
	backend  string
	logger   *log.Logger
	metrics  *Metrics
}

// New creates a server. stateKey names the topology in the view-state store;
// backend is the store's name for metrics labels ("file", "redis").
func New(runner *pipeline.Runner, store state.Store, stateKey, backend string, logger *log.Logger) *Server {
	s := &Server{
		runner:   runner,
		store:    store,
		stateKey: stateKey,
		backend:  backend,
		logger:   logger,
		metrics:  NewMetrics(),
	}
	observability.SetPipelineHooks(s.metrics)
	observability.SetStoreHooks(s.metrics)
	return s
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/api/topology", s.handleTopology)
	r.Get("/api/layout", s.handleLayout)
	r.Get("/api/events", s.handleEvents)
	r.Post("/api/edits", s.handleEdit)
	r.Get("/api/replay/{n}", s.handleReplay)
	r.Get("/api/state", s.handleGetState)
	r.Put("/api/state", s.handlePutState)
	r.Handle("/metrics", s.metrics.Handler())

	return r
}

// handleTopology returns the current raw document (base plus applied edits).
func (s *Server) handleTopology(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, s.runner.Document())
}

// handleLayout runs a full-budget pass, seeded from stored view state.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	saved, err := s.store.Load(ctx, s.stateKey)
	found := err == nil
	observability.Store().OnLoad(ctx, s.backend, found)
	if err != nil && !errors.Is(err, state.ErrNotFound) {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}

	res, err := s.runner.Run(ctx, saved.SavedNodes())
	if err != nil {
		s.failLayout(w, err)
		return
	}
	s.respond(w, http.StatusOK, res.Layout)
}

// handleEvents returns the applied edit log.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, s.runner.Events())
}

// editRequest is the wire form of an incremental edit.
type editRequest struct {
	Kind   pipeline.EventKind     `json:"kind"`
	Node   *topology.DocumentNode `json:"node,omitempty"`
	Edge   *topology.DocumentEdge `json:"edge,omitempty"`
	EdgeID string                 `json:"edgeId,omitempty"`
}

// handleEdit applies one AddNode or RemoveEdge event and returns the
// re-laid-out graph.
func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}

	var ev pipeline.Event
	switch req.Kind {
	case pipeline.EventAddNode:
		if req.Node == nil {
			s.fail(w, http.StatusBadRequest, errors.New("add-node requires a node"))
			return
		}
		ev = pipeline.NewAddNode(*req.Node, req.Edge)
	case pipeline.EventRemoveEdge:
		if req.EdgeID == "" {
			s.fail(w, http.StatusBadRequest, errors.New("remove-edge requires an edgeId"))
			return
		}
		ev = pipeline.NewRemoveEdge(req.EdgeID)
	default:
		s.fail(w, http.StatusBadRequest, errors.New("unknown edit kind"))
		return
	}

	res, err := s.runner.ApplyEdit(r.Context(), ev)
	if err != nil {
		if errors.Is(err, pipeline.ErrEdgeNotFound) {
			s.fail(w, http.StatusNotFound, err)
			return
		}
		s.failLayout(w, err)
		return
	}
	s.respond(w, http.StatusOK, res.Layout)
}

// handleReplay lays out the topology as of the first n events.
func (s *Server) handleReplay(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}

	res, err := s.runner.Replay(r.Context(), n)
	if err != nil {
		s.failLayout(w, err)
		return
	}
	s.respond(w, http.StatusOK, res.Layout)
}

// handleGetState returns the stored view state, or an empty one.
func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	v, err := s.store.Load(ctx, s.stateKey)
	observability.Store().OnLoad(ctx, s.backend, err == nil)
	if errors.Is(err, state.ErrNotFound) {
		s.respond(w, http.StatusOK, state.New())
		return
	}
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	s.respond(w, http.StatusOK, v)
}

// handlePutState validates and stores a view-state document.
func (s *Server) handlePutState(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	v := state.New()
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}
	if err := v.Validate(); err != nil {
		s.fail(w, http.StatusUnprocessableEntity, err)
		return
	}

	err := s.store.Save(ctx, s.stateKey, v)
	observability.Store().OnSave(ctx, s.backend, err)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// failLayout maps pipeline errors: validation rejections are the client's
// data problem, everything else is internal.
func (s *Server) failLayout(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, topology.ErrDuplicateNodeID),
		errors.Is(err, topology.ErrMissingNodeID),
		errors.Is(err, topology.ErrUnknownEndpoint),
		errors.Is(err, topology.ErrUnknownInterface),
		errors.Is(err, topology.ErrUnknownParent),
		errors.Is(err, topology.ErrInvalidCIDR):
		s.fail(w, http.StatusUnprocessableEntity, err)
	default:
		s.fail(w, http.StatusInternalServerError, err)
	}
}

func (s *Server) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) fail(w http.ResponseWriter, status int, err error) {
	s.logger.Warn("request failed", "status", status, "err", err)
	s.respond(w, status, errorBody{Error: err.Error()})
}
