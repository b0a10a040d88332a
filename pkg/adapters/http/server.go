// Package http exposes the wizard as a JSON API with server-sent events for
// generation progress and state diffs.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/agentforge"
	"github.com/aretw0/agentforge/internal/logging"
	"github.com/aretw0/agentforge/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// maxBodySize bounds request bodies. The largest legitimate body is one step of answers.
const maxBodySize = 1 << 20

// Server holds the handlers of the API.
type Server struct {
	Wizard  *agentforge.Wizard
	Streams *StreamManager

	logger  *slog.Logger
	metrics http.Handler
}

// ServerOption configures the Server.
type ServerOption func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetricsHandler mounts h at GET /metrics.
func WithMetricsHandler(h http.Handler) ServerOption {
	return func(s *Server) {
		s.metrics = h
	}
}

// SessionResponse is returned by every session endpoint.
type SessionResponse struct {
	State *domain.State     `json:"state"`
	View  domain.View       `json:"view"`
	Diff  *domain.StateDiff `json:"diff,omitempty"`
	Exit  bool              `json:"exit,omitempty"`
}

// AdvanceRequest is the body of POST /sessions/{id}/advance.
type AdvanceRequest struct {
	Values map[string]string `json:"values"`
}

// StartRequest is the optional body of POST /sessions.
type StartRequest struct {
	SessionID string `json:"session_id,omitempty"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// NewHandler creates the HTTP handler for wiz.
func NewHandler(wiz *agentforge.Wizard, opts ...ServerOption) http.Handler {
	s := &Server{
		Wizard: wiz,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/steps", s.ListSteps)
	r.Get("/options", s.ListOptions)
	r.Get("/schema", s.DeriveSchema)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Post("/", s.StartSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Post("/advance", s.Advance)
			r.Post("/retreat", s.Retreat)
			r.Post("/generate", s.Generate)
			r.Post("/actions/{action}", s.Act)
			r.Get("/events", s.SubscribeEvents)
		})
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"app":        "agentforge-http",
		"version":    strings.TrimSpace(agentforge.Version),
		"step_count": s.Wizard.Registry().StepCount(),
	})
}

// ListSteps handles GET /steps.
func (s *Server) ListSteps(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Wizard.Registry().Steps())
}

// ListOptions handles GET /options.
func (s *Server) ListOptions(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Wizard.Catalog())
}

// DeriveSchema handles GET /schema?input=&output=.
func (s *Server) DeriveSchema(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.writeJSON(w, http.StatusOK, s.Wizard.Derive(q.Get("input"), q.Get("output")))
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Wizard.ListSessions(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, ids)
}

// StartSession handles POST /sessions. An existing session id resumes that session.
func (s *Server) StartSession(w http.ResponseWriter, r *http.Request) {
	var body StartRequest
	if err := decode(w, r, &body); err != nil && !errors.Is(err, io.EOF) {
		s.badRequest(w, err)
		return
	}

	state, err := s.Wizard.StartSession(r.Context(), body.SessionID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusCreated, nil, state, false)
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	state, err := s.Wizard.LoadSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, nil, state, false)
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Wizard.DeleteSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Advance handles POST /sessions/{id}/advance.
func (s *Server) Advance(w http.ResponseWriter, r *http.Request) {
	var body AdvanceRequest
	if err := decode(w, r, &body); err != nil {
		s.badRequest(w, err)
		return
	}

	t, err := s.Wizard.AdvanceSession(r.Context(), chi.URLParam(r, "id"), body.Values)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, t.Before, t.After, false)
}

// Retreat handles POST /sessions/{id}/retreat.
// Going back from the first step is not an error: the response has exit set.
func (s *Server) Retreat(w http.ResponseWriter, r *http.Request) {
	t, err := s.Wizard.RetreatSession(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, domain.ErrExitFlow) {
		s.respond(w, r, http.StatusOK, t.Before, t.After, true)
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, t.Before, t.After, false)
}

// Generate handles POST /sessions/{id}/generate as an SSE stream of
// "progress" events followed by one "complete" (or "error") event.
func (s *Server) Generate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "streaming not supported"})
		return
	}

	// Refuse before the stream starts so the status code still carries the error.
	state, err := s.Wizard.LoadSession(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	switch state.Status {
	case domain.StatusActive:
		s.writeError(w, r, domain.ErrNotReady)
		return
	case domain.StatusGenerated:
		s.writeError(w, r, domain.ErrFlowComplete)
		return
	}
	if masked := state.Draft.Masked(); len(masked) > 0 {
		s.writeError(w, r, fmt.Errorf("%w: %s", domain.ErrSecretsMasked, strings.Join(masked, ", ")))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	total := len(s.Wizard.Sequencer().Phases())
	completed := 0
	t, err := s.Wizard.GenerateSession(r.Context(), id, func(label string, percent float64) {
		completed++
		writeEvent(w, "progress", domain.Progress{Label: label, Completed: completed, Total: total, Percent: percent})
		flusher.Flush()
	})
	if err != nil {
		s.logger.Warn("generation failed", "session_id", id, "err", err)
		writeEvent(w, "error", ErrorResponse{Error: err.Error()})
		flusher.Flush()
		return
	}

	s.broadcast(id, t.Before, t.After)
	writeEvent(w, "complete", t.After.Configuration)
	flusher.Flush()
}

// Act handles POST /sessions/{id}/actions/{action}.
func (s *Server) Act(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "action")
	action, ok := domain.ParseCompletionAction(name)
	if !ok {
		s.badRequest(w, fmt.Errorf("unknown completion action '%s'", name))
		return
	}
	if err := s.Wizard.ActSession(r.Context(), chi.URLParam(r, "id"), action); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, map[string]string{"action": string(action)})
}

// SubscribeEvents handles GET /sessions/{id}/events (SSE of state diffs).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "streaming not supported"})
		return
	}
	sessionID := chi.URLParam(r, "id")

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()
	s.logger.Debug("SSE: subscribed", "session_id", sessionID)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE: client disconnected", "session_id", sessionID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: diff\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// -- Helpers --

func (s *Server) respond(w http.ResponseWriter, r *http.Request, status int, before, after *domain.State, exit bool) {
	view, err := s.Wizard.Render(r.Context(), after)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := SessionResponse{State: after, View: view, Exit: exit}
	if before != nil {
		resp.Diff = domain.Diff(before, after)
		s.broadcast(after.SessionID, before, after)
	}
	s.writeJSON(w, status, resp)
}

func (s *Server) broadcast(sessionID string, before, after *domain.State) {
	diff := domain.Diff(before, after)
	if diff == nil {
		return
	}
	if b, err := json.Marshal(diff); err == nil {
		s.Streams.Broadcast(sessionID, string(b))
	}
}

// statusOf maps wizard errors to HTTP status codes.
func statusOf(err error) int {
	if _, ok := domain.AsValidationFailure(err); ok {
		return http.StatusUnprocessableEntity
	}
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrFlowComplete), errors.Is(err, domain.ErrNotReady), errors.Is(err, domain.ErrSecretsMasked):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	resp := ErrorResponse{Error: err.Error()}
	if vf, ok := domain.AsValidationFailure(err); ok {
		resp.Fields = vf.Errors
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "err", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	}
	s.writeJSON(w, status, resp)
}

func (s *Server) badRequest(w http.ResponseWriter, err error) {
	s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeEvent(w http.ResponseWriter, name string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		b, _ = json.Marshal(ErrorResponse{Error: err.Error()})
		name = "error"
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, b)
}
