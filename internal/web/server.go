// Package web exposes the HTTP surface: lead CRUD, table upload, and
// the sentiment stats endpoint.
package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/leadflow/internal/ingest"
	"github.com/sells-group/leadflow/internal/leads"
	"github.com/sells-group/leadflow/internal/stats"
	"github.com/sells-group/leadflow/internal/store"
)

// Server holds the handlers' collaborators.
type Server struct {
	leads    *leads.Service
	pipeline *ingest.Pipeline
	stats    *stats.Aggregator
}

func NewServer(svc *leads.Service, pipeline *ingest.Pipeline, aggregator *stats.Aggregator) *Server {
	return &Server{leads: svc, pipeline: pipeline, stats: aggregator}
}

// Router builds the chi router for the whole HTTP surface.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/", s.handleListLeads)
	r.Post("/upload", s.handleUpload)
	r.Post("/lead/add", s.handleAddLead)
	r.Post("/lead/edit/{id}", s.handleEditLead)
	r.Get("/lead/delete/{id}", s.handleDeleteLead)
	r.Get("/api/leads", s.handleListLeads)
	r.Get("/api/lead/{id}", s.handleGetLead)
	r.Get("/api/sentiment-stats", s.handleSentimentStats)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListLeads(w http.ResponseWriter, r *http.Request) {
	all, err := s.leads.List(r.Context())
	if err != nil {
		zap.L().Error("web: list leads", zap.Error(err))
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, all)
}

// handleUpload imports a lead table. The user is redirected to the
// index whether or not the import succeeded; failures are logged only.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	defer file.Close()

	if header.Filename == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if _, err := s.pipeline.Import(r.Context(), file, header.Filename); err != nil {
		zap.L().Error("web: import failed", zap.String("filename", header.Filename), zap.Error(err))
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleAddLead(w http.ResponseWriter, r *http.Request) {
	if _, err := s.leads.Add(r.Context(), formInput(r)); err != nil {
		zap.L().Error("web: add lead", zap.Error(err))
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleEditLead(w http.ResponseWriter, r *http.Request) {
	id, ok := leadID(w, r)
	if !ok {
		return
	}

	if _, err := s.leads.Edit(r.Context(), id, formInput(r)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		zap.L().Error("web: edit lead", zap.Int64("id", id), zap.Error(err))
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleDeleteLead(w http.ResponseWriter, r *http.Request) {
	id, ok := leadID(w, r)
	if !ok {
		return
	}

	if err := s.leads.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		zap.L().Error("web: delete lead", zap.Int64("id", id), zap.Error(err))
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleGetLead(w http.ResponseWriter, r *http.Request) {
	id, ok := leadID(w, r)
	if !ok {
		return
	}

	lead, err := s.leads.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		zap.L().Error("web: get lead", zap.Int64("id", id), zap.Error(err))
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":     lead.ID,
		"name":   lead.Name,
		"email":  lead.Email,
		"phone":  lead.Phone,
		"status": lead.Status,
		"notes":  lead.Notes,
	})
}

func (s *Server) handleSentimentStats(w http.ResponseWriter, r *http.Request) {
	dist, err := s.stats.Aggregate(r.Context(), r.URL.Query().Get("start"), r.URL.Query().Get("end"))
	if err != nil {
		if errors.Is(err, stats.ErrInvalidDateFormat) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Incorrect date format. Use YYYY-MM-DD"})
			return
		}
		zap.L().Error("web: sentiment stats", zap.Error(err))
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, dist)
}

// helpers

func formInput(r *http.Request) leads.Input {
	return leads.Input{
		Name:   r.FormValue("name"),
		Email:  r.FormValue("email"),
		Phone:  r.FormValue("phone"),
		Status: r.FormValue("status"),
		Notes:  r.FormValue("notes"),
	}
}

func leadID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, `{"error":"invalid lead id"}`, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
