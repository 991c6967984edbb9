package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/maitre"
	"github.com/aretw0/maitre/internal/logging"
	"github.com/aretw0/maitre/internal/sanitize"
	"github.com/aretw0/maitre/pkg/domain"
	"github.com/aretw0/maitre/pkg/ports"
	"github.com/aretw0/maitre/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server exposes booking conversations over HTTP.
type Server struct {
	Engine   ports.ConversationEngine
	Sessions *session.Manager
	Streams  *StreamManager

	metrics    http.Handler
	onComplete func(*domain.Session)
	logger     *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithMetricsHandler serves h on GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithOnComplete registers a callback run once a session reaches a terminal outcome.
func WithOnComplete(fn func(*domain.Session)) Option {
	return func(s *Server) { s.onComplete = fn }
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// StartRequest is the optional body of POST /sessions.
type StartRequest struct {
	SessionID string `json:"session_id,omitempty"`
}

// MessageRequest is the body of POST /sessions/{id}/messages.
type MessageRequest struct {
	Message string `json:"message"`
}

// SessionResponse is returned by session creation and lookup.
type SessionResponse struct {
	Reply   string          `json:"reply"`
	Status  string          `json:"status"`
	Session *domain.Session `json:"session"`
}

// TurnResponse is returned for every processed message.
type TurnResponse struct {
	Reply   string              `json:"reply"`
	Path    []domain.StateName  `json:"path"`
	Session *domain.Session     `json:"session"`
	Diff    *domain.SessionDiff `json:"diff"`
}

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine ports.ConversationEngine, sessions *session.Manager, opts ...Option) http.Handler {
	s := &Server{
		Engine:   engine,
		Sessions: sessions,
		Streams:  NewStreamManager(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/graph", s.GetGraph)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Post("/", s.CreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Post("/messages", s.PostMessage)
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
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CreateSession handles POST /sessions.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	var body StartRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	sess, err := s.Engine.Start(r.Context(), body.SessionID)
	if err != nil {
		s.fail(w, r, "start", err)
		return
	}
	if err := s.Sessions.Create(r.Context(), sess); err != nil {
		s.writeError(w, http.StatusConflict, err.Error())
		return
	}
	s.logger.Info("session created", "session_id", sess.ID)

	s.writeJSON(w, http.StatusCreated, SessionResponse{
		Reply:   sess.LastReply(),
		Status:  sess.Details.Status(),
		Session: sess,
	})
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.fail(w, r, "list", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Sessions.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, "load", err)
		return
	}
	s.writeJSON(w, http.StatusOK, SessionResponse{
		Reply:   sess.LastReply(),
		Status:  sess.Details.Status(),
		Session: sess,
	})
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.Sessions.Load(r.Context(), id); err != nil {
		s.fail(w, r, "delete", err)
		return
	}
	if err := s.Sessions.Delete(r.Context(), id); err != nil {
		s.fail(w, r, "delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PostMessage handles POST /sessions/{id}/messages.
func (s *Server) PostMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	input, err := sanitize.Input(body.Message)
	if err != nil {
		s.logger.Warn("input rejected", "session_id", id, "err", err, "size", len(body.Message))
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid input: %v", err))
		return
	}

	var res *domain.TurnResult
	var diff *domain.SessionDiff
	_, err = s.Sessions.Update(r.Context(), id, func(current *domain.Session) (*domain.Session, error) {
		out, err := s.Engine.Turn(r.Context(), current, input)
		if err != nil {
			return nil, err
		}
		res = out
		diff = domain.Diff(current, out.Session)
		return out.Session, nil
	})
	if err != nil {
		s.fail(w, r, "turn", err)
		return
	}

	if diff != nil {
		if data, err := json.Marshal(diff); err == nil {
			s.Streams.Broadcast(id, string(data))
		}
	}
	if res.Session.ConversationComplete && s.onComplete != nil {
		s.onComplete(res.Session)
	}

	s.writeJSON(w, http.StatusOK, TurnResponse{
		Reply:   res.Reply,
		Path:    res.Path,
		Session: res.Session,
		Diff:    diff,
	})
}

// GetGraph handles GET /graph. An optional comma separated "path" query
// highlights states.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	var path []domain.StateName
	if raw := r.URL.Query().Get("path"); raw != "" {
		for _, p := range strings.Split(raw, ",") {
			path = append(path, domain.StateName(strings.TrimSpace(p)))
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, maitre.Diagram(s.Engine.Inspect(), path))
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "maitre-http",
		"version": maitre.Version,
	})
}

// StatusFor maps engine and store errors to HTTP status codes.
func StatusFor(err error) int {
	var extraction *maitre.ExtractionError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConversationComplete):
		return http.StatusConflict
	case errors.Is(err, domain.ErrEmptyInput):
		return http.StatusBadRequest
	case errors.As(err, &extraction):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := StatusFor(err)
	attrs := []any{"op", op, "session_id", chi.URLParam(r, "id"), "err", err, "request_id", middleware.GetReqID(r.Context())}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", attrs...)
	} else {
		s.logger.Warn("request rejected", attrs...)
	}
	s.writeError(w, status, err.Error())
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, ErrorResponse{Error: msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}
