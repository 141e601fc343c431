package api

import (
	"math"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/doorstep/internal/domain"
)

type chatRequest struct {
	Message string `json:"message"`
}

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	reply, err := s.deps.Coach.Chat(r.Context(), SessionIDFromContext(r.Context()), req.Message)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]string{"response": reply})
}

func (s *Server) scorecard(w http.ResponseWriter, r *http.Request) {
	card, err := s.deps.Coach.Scorecard(r.Context(), SessionIDFromContext(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]string{"scorecard": card})
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	analysis, err := s.deps.Coach.Analyze(r.Context(), SessionIDFromContext(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{"analysis": analysis})
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	s.deps.Coach.Reset(SessionIDFromContext(r.Context()))
	JSON(w, http.StatusOK, map[string]bool{"success": true})
}

type saveSessionRequest struct {
	RepName     string                 `json:"repName"`
	Duration    float64                `json:"duration"`
	RepMessages float64                `json:"repMessages"`
	Analysis    *domain.AnalysisRecord `json:"analysis"`
}

func (s *Server) saveSession(w http.ResponseWriter, r *http.Request) {
	var req saveSessionRequest
	if err := decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	id, err := s.deps.Archive.Save(r.Context(), req.RepName,
		storedCount(req.Duration), storedCount(req.RepMessages), req.Analysis)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{"success": true, "id": id})
}

// storedCount rounds a client-supplied count into the range of the INTEGER
// columns it is stored in. Negatives become 0.
func storedCount(v float64) int {
	return domain.RoundHalfUp(min(max(v, 0), math.MaxInt32))
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if err := required("name", name); err != nil {
		s.fail(w, r, err)
		return
	}

	sessions, err := s.deps.Archive.ListByRep(r.Context(), name, 0)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

func (s *Server) managerReps(w http.ResponseWriter, r *http.Request) {
	reps, err := s.deps.Archive.AggregateByRep(r.Context(), days(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{"reps": reps})
}

func (s *Server) managerSessions(w http.ResponseWriter, r *http.Request) {
	rep := strings.TrimSpace(r.URL.Query().Get("rep"))
	if err := required("rep", rep); err != nil {
		s.fail(w, r, err)
		return
	}

	sessions, err := s.deps.Archive.ListForRepWindowed(r.Context(), rep, days(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

type knowledgeFileRequest struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

func (s *Server) addKnowledgeFile(w http.ResponseWriter, r *http.Request) {
	var req knowledgeFileRequest
	if err := decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	id, err := s.deps.Knowledge.Add(r.Context(), req.Filename, req.Content)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{"success": true, "id": id})
}

func (s *Server) listKnowledgeFiles(w http.ResponseWriter, r *http.Request) {
	files, err := s.deps.Knowledge.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{"files": files})
}

func (s *Server) deleteKnowledgeFile(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Knowledge.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]bool{"success": true})
}
