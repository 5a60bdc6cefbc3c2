package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gatzby-git/shuowenjiezi/internal/knowledge"
	"github.com/gatzby-git/shuowenjiezi/internal/model"
)

func (s *Server) handleCharacter(w http.ResponseWriter, r *http.Request) {
	res, err := s.Knowledge.Character(r.Context(), r.PathValue("char"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, res)
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	res, err := s.Knowledge.Analysis(r.Context(), r.PathValue("char"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, res)
}

func (s *Server) handleEvolution(w http.ResponseWriter, r *http.Request) {
	res, err := s.Knowledge.Evolution(r.Context(), r.PathValue("char"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, res)
}

func (s *Server) handleRelated(w http.ResponseWriter, r *http.Request) {
	p := s.Profiles.Get(r.Context())
	res, err := s.Knowledge.Related(r.Context(), r.PathValue("char"), p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, res)
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	p := s.Profiles.Get(r.Context())
	res, err := s.Knowledge.Lookup(r.Context(), r.PathValue("char"), p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, res)
}

// handleRecommendations uses the learner profile unless level or interest
// is given explicitly.
func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := s.Profiles.Get(r.Context())

	count, err := intParam(q.Get("count"), knowledge.DefaultCount)
	if err != nil {
		http.Error(w, "invalid 'count' parameter", http.StatusBadRequest)
		return
	}
	level, err := intParam(q.Get("level"), p.Grade)
	if err != nil {
		http.Error(w, "invalid 'level' parameter", http.StatusBadRequest)
		return
	}

	switch {
	case q.Has("interest"):
		writeJSON(w, s.Knowledge.RecommendByInterest(r.Context(), q.Get("interest"), level, count))
	case q.Has("level"):
		writeJSON(w, s.Knowledge.RecommendByLevel(r.Context(), level, count))
	default:
		writeJSON(w, s.Knowledge.Recommend(r.Context(), p, count))
	}
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Profiles.Get(r.Context()))
}

type profileUpdate struct {
	Grade     *int      `json:"grade"`
	Interests *[]string `json:"interests"`
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.Grade != nil {
		if *req.Grade < model.MinLevel || *req.Grade > model.MaxLevel {
			http.Error(w, "grade must be between 1 and 6", http.StatusBadRequest)
			return
		}
		s.Profiles.SetGrade(r.Context(), *req.Grade)
	}
	if req.Interests != nil {
		s.Profiles.UpdateInterests(r.Context(), *req.Interests)
	}
	writeJSON(w, s.Profiles.Get(r.Context()))
}

type learnedRequest struct {
	Character   string `json:"character"`
	Proficiency int    `json:"proficiency"`
}

func (s *Server) handleLearned(w http.ResponseWriter, r *http.Request) {
	var req learnedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	c, err := knowledge.NormalizeCharacter(req.Character)
	if err != nil {
		writeError(w, err)
		return
	}
	if req.Proficiency == 0 {
		req.Proficiency = 1
	}
	writeJSON(w, s.Profiles.MarkLearned(r.Context(), c, req.Proficiency))
}

func intParam(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, knowledge.ErrInvalidCharacter) {
		status = http.StatusBadRequest
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
