package server

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"frontdesk/store"

	"github.com/bytedance/sonic"
)

// registerAPIRoutes wires the JSON endpoints used by the web front-end:
// consult scheduling, FAQ search, and call summary retrieval.
func (s *Server) registerAPIRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/consults", s.handleConsults)
	mux.HandleFunc("/api/consults/", s.handleConsultByID)
	mux.HandleFunc("/api/faq/search", s.handleFAQSearch)
	mux.HandleFunc("/api/summaries", s.handleSummaries)
	mux.HandleFunc("/api/summaries/", s.handleSummaryByID)
}

func (s *Server) handleConsults(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createConsult(w, r)
	case http.MethodGet:
		consults, err := s.store.ListConsults()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to list consults")
			return
		}
		writeJSON(w, http.StatusOK, consults)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) createConsult(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 64*1024))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	var consult store.Consult
	if err := sonic.Unmarshal(body, &consult); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	switch err := s.store.CreateConsult(&consult); {
	case errors.Is(err, store.ErrConsultInvalid):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, store.ErrConsultConflict):
		writeError(w, http.StatusConflict, "requested slot overlaps an existing booking")
	case err != nil:
		log.Printf("❌ Failed to create consult: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create consult")
	default:
		log.Printf("📅 Consult scheduled: %s at %s", consult.Name, consult.ScheduledAt.Format("2006-01-02 15:04"))
		writeJSON(w, http.StatusCreated, consult)
	}
}

func (s *Server) handleConsultByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/consults/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		consult, err := s.store.GetConsult(id)
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "consult not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load consult")
			return
		}
		writeJSON(w, http.StatusOK, consult)

	case http.MethodPatch:
		s.updateConsultStatus(w, r, id)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) updateConsultStatus(w http.ResponseWriter, r *http.Request, id string) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 4*1024))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := sonic.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Status != store.ConsultConfirmed && req.Status != store.ConsultCancelled {
		writeError(w, http.StatusUnprocessableEntity, "status must be confirmed or cancelled")
		return
	}

	if err := s.store.UpdateConsultStatus(id, req.Status); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "consult not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update consult")
		return
	}

	consult, err := s.store.GetConsult(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load consult")
		return
	}
	writeJSON(w, http.StatusOK, consult)
}

func (s *Server) handleFAQSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "q query parameter is required")
		return
	}

	hits := s.matcher.Search(q)
	type result struct {
		Question string `json:"question"`
		Answer   string `json:"answer"`
	}
	results := make([]result, 0, len(hits))
	for _, hit := range hits {
		results = append(results, result{Question: hit.Question, Answer: hit.Answer})
	}
	writeJSON(w, http.StatusOK, map[string]any{"query": q, "results": results})
}

func (s *Server) handleSummaries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	records, err := s.store.ListSummaries()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list summaries")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleSummaryByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/summaries/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	rec, err := s.store.GetSummary(id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "summary not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load summary")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"encoding failed"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
