package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ldi/focusbloom/internal/db"
	"github.com/ldi/focusbloom/internal/schedule"
	"github.com/ldi/focusbloom/pkg/models"
)

type Server struct {
	db     *db.DB
	server *http.Server
}

func NewServer(database *db.DB) *Server {
	return &Server{db: database}
}

func (s *Server) Start(addr string) error {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/templates", s.handleTemplates)
	mux.HandleFunc("/api/tasks", s.handleTasks)
	mux.HandleFunc("/api/schedule", s.handleSchedule)
	mux.HandleFunc("/api/config", s.handleConfig)

	s.server = &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	slog.Info("http server listening", "addr", addr)
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		templates, err := s.db.ListTemplates(r.Context())
		s.respond(w, templates, err)

	case http.MethodPost:
		var tpl models.TaskTemplate
		if err := json.NewDecoder(r.Body).Decode(&tpl); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := s.db.CreateTemplate(r.Context(), &tpl); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
		s.respond(w, &tpl, nil)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	var status *models.TaskStatus
	if v := r.URL.Query().Get("status"); v != "" {
		st := models.TaskStatus(v)
		status = &st
	}

	var templateName *string
	if v := r.URL.Query().Get("template"); v != "" {
		templateName = &v
	}

	tasks, err := s.db.ListTasks(r.Context(), status, templateName)
	s.respond(w, tasks, err)
}

type schedulePreview struct {
	Start        time.Time             `json:"start"`
	End          time.Time             `json:"end"`
	TotalMinutes int                   `json:"total_minutes"`
	Phases       []models.SessionPhase `json:"phases"`
}

// handleSchedule previews a schedule without persisting anything:
// GET /api/schedule?start=RFC3339&sessions=N
func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
	if err != nil {
		http.Error(w, "invalid start: "+err.Error(), http.StatusBadRequest)
		return
	}

	sessions, err := strconv.Atoi(r.URL.Query().Get("sessions"))
	if err != nil || sessions < 0 {
		http.Error(w, "sessions must be a non-negative integer", http.StatusBadRequest)
		return
	}

	cfg, err := s.db.GetSessionConfig(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.respond(w, schedulePreview{
		Start:        start,
		End:          schedule.EndTime(start, sessions, cfg),
		TotalMinutes: schedule.TotalMinutes(sessions, cfg),
		Phases:       schedule.Plan(sessions, cfg),
	}, nil)
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		cfg, err := s.db.GetSessionConfig(r.Context())
		s.respond(w, cfg, err)

	case http.MethodPut:
		var cfg models.SessionConfig
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := s.db.SaveSessionConfig(r.Context(), cfg); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.respond(w, cfg, nil)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) respond(w http.ResponseWriter, data any, err error) {
	if err != nil {
		slog.Error("request failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}
