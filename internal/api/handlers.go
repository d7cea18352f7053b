package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/copextract/internal/record"
)

func (s *Server) handleListDetails(w http.ResponseWriter, r *http.Request) {
	details := s.catalog.FilterDetails(r.URL.Query().Get("category"))
	writeJSON(w, http.StatusOK, map[string]any{
		"details": details,
		"count":   len(details),
	})
}

func (s *Server) handleGetDetail(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	d, ok := s.catalog.Detail(code)
	if !ok {
		jsonError(w, "detail not found: "+code, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"detail":   d,
		"warnings": s.catalog.FilterWarnings(code, ""),
	})
}

func (s *Server) handleListStandards(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"standards": s.catalog.Standards,
		"count":     len(s.catalog.Standards),
	})
}

func (s *Server) handleListWarnings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var level record.Level
	if raw := q.Get("level"); raw != "" {
		lvl, ok := record.ParseLevel(raw)
		if !ok {
			jsonError(w, "level must be caution, warning or failure", http.StatusBadRequest)
			return
		}
		level = lvl
	}
	warnings := s.catalog.FilterWarnings(q.Get("detail_code"), level)
	writeJSON(w, http.StatusOK, map[string]any{
		"warnings": warnings,
		"count":    len(warnings),
	})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if s.catalog.Run == nil {
		jsonError(w, "no run manifest in output directory", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(s.catalog.Run)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
