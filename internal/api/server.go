// Package api exposes the practice, archive and knowledge endpoints over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/doorstep/internal/domain"
)

// Coach runs conversations for a client session.
type Coach interface {
	Chat(ctx context.Context, sessionID, message string) (string, error)
	Scorecard(ctx context.Context, sessionID string) (string, error)
	Analyze(ctx context.Context, sessionID string) (domain.AnalysisRecord, error)
	Reset(sessionID string)
}

// Archive stores finished sessions and serves the history views.
type Archive interface {
	Save(ctx context.Context, repName string, durationSeconds, repMessageCount int, analysis *domain.AnalysisRecord) (uuid.UUID, error)
	ListByRep(ctx context.Context, repName string, limit int) ([]domain.SessionSummary, error)
	ListForRepWindowed(ctx context.Context, repName string, sinceDays *int) ([]domain.SessionSummary, error)
	AggregateByRep(ctx context.Context, sinceDays *int) ([]domain.RepStats, error)
}

// Knowledge manages the uploaded reference documents.
type Knowledge interface {
	Add(ctx context.Context, filename, content string) (uuid.UUID, error)
	List(ctx context.Context) ([]domain.KnowledgeFile, error)
	Delete(ctx context.Context, id string) error
}

// Deps are the collaborators behind the routes. Static and Sessions may be nil.
type Deps struct {
	Coach      Coach
	Archive    Archive
	Knowledge  Knowledge
	ManagerPIN string
	Model      string
	Sessions   interface{ Len() int }
	Static     http.Handler
	Logger     *slog.Logger
}

type Server struct {
	router *chi.Mux
	deps   Deps
	logger *slog.Logger
}

func NewServer(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router: router,
		deps:   deps,
		logger: logger,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/doorstep/status", s.status)

	router.Group(func(r chi.Router) {
		r.Use(sessionID)
		r.Post("/chat", s.chat)
		r.Post("/scorecard", s.scorecard)
		r.Post("/analyze", s.analyze)
		r.Post("/reset", s.reset)
	})

	router.Post("/save-session", s.saveSession)
	router.Get("/sessions", s.listSessions)

	router.Route("/manager", func(r chi.Router) {
		r.Use(requirePIN(deps.ManagerPIN))
		r.Get("/reps", s.managerReps)
		r.Get("/sessions", s.managerSessions)
	})

	router.Post("/knowledge-file", s.addKnowledgeFile)
	router.Get("/knowledge-files", s.listKnowledgeFiles)
	router.Delete("/knowledge-file/{id}", s.deleteKnowledgeFile)

	if deps.Static != nil {
		router.Handle("/*", deps.Static)
	}

	return s
}

// Handler returns the routed handler for an http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"agent":  "doorstep",
		"status": "ok",
		"model":  s.deps.Model,
	}
	if s.deps.Sessions != nil {
		body["activeSessions"] = s.deps.Sessions.Len()
	}
	JSON(w, http.StatusOK, body)
}
