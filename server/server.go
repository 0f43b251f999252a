// Package server exposes the assistant over HTTP: chat, session reset, lead
// listing and export, feature toggles, stats, health, and metrics.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/vitalmech/assistant/agent/chatbot"
	contractx "github.com/vitalmech/assistant/agent/contract"
	leadx "github.com/vitalmech/assistant/agent/lead"
	statex "github.com/vitalmech/assistant/agent/state"
	toolx "github.com/vitalmech/assistant/agent/tool"
)

const serviceName = "vital-mechanical-assistant"

type Server struct {
	bot      *chatbot.Service
	ledger   contractx.Ledger
	sessions *statex.Registry
	metrics  *metrics
}

// NewHandler wires the HTTP surface around the dialogue core.
func NewHandler(bot *chatbot.Service, ledger contractx.Ledger, sessions *statex.Registry) http.Handler {
	s := &Server{
		bot:      bot,
		ledger:   ledger,
		sessions: sessions,
		metrics:  newMetrics(func() float64 { return float64(sessions.Len()) }),
	}

	r := chi.NewRouter()
	r.Use(requestLogger)

	r.Get("/", s.serviceInfo)
	r.Get("/health", s.health)
	r.Handle("/metrics", s.metrics.handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", s.chat)
		r.Post("/reset", s.reset)
		r.Get("/leads", s.listLeads)
		r.Get("/leads/export", s.exportLeads)
		r.Get("/features", s.getFeatures)
		r.Post("/features/{name}", s.toggleFeature)
		r.Get("/stats", s.stats)
	})

	return r
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	Response  string                   `json:"response"`
	Actions   []contractx.ActionRecord `json:"actions"`
	SessionID string                   `json:"session_id"`
	Timestamp time.Time                `json:"timestamp"`
}

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, sessionID, err := s.bot.HandleMessage(r.Context(), req.SessionID, req.Message)
	switch {
	case errors.Is(err, contractx.ErrEmptyMessage):
		s.metrics.turns.WithLabelValues("rejected").Inc()
		writeError(w, http.StatusBadRequest, "missing 'message' in request body")
		return
	case errors.Is(err, contractx.ErrCompletion):
		s.metrics.turns.WithLabelValues("failed").Inc()
		writeError(w, http.StatusBadGateway, "completion service unavailable, retry shortly")
		return
	case err != nil:
		s.metrics.turns.WithLabelValues("failed").Inc()
		log.Error().Err(err).Msg("chat turn failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.metrics.turns.WithLabelValues("ok").Inc()
	for _, action := range result.Actions {
		s.metrics.toolCalls.WithLabelValues(action.Tool, strconv.FormatBool(action.Result.Success)).Inc()
		if action.Tool == toolx.ToolCaptureLead && action.Result.Success {
			s.metrics.leads.Inc()
		}
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Response:  result.Reply,
		Actions:   result.Actions,
		SessionID: sessionID,
		Timestamp: time.Now().UTC(),
	})
}

type resetRequest struct {
	SessionID string `json:"session_id"`
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !s.bot.Reset(req.SessionID) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Session not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Session reset successfully"})
}

func (s *Server) listLeads(w http.ResponseWriter, r *http.Request) {
	leads, err := s.ledger.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list leads failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"leads": leads,
		"count": len(leads),
	})
}

func (s *Server) exportLeads(w http.ResponseWriter, r *http.Request) {
	leads, err := s.ledger.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("export leads failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	csvBytes, err := leadx.ExportCSV(leads)
	if errors.Is(err, contractx.ErrNoLeads) {
		writeError(w, http.StatusNotFound, "no leads to export")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("encode leads csv failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="leads.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(csvBytes)
}

func (s *Server) getFeatures(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sessions.DefaultFlags().Map())
}

type toggleRequest struct {
	Enabled *bool `json:"enabled"`
}

func (s *Server) toggleFeature(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	flag, err := statex.ParseFlag(name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	s.sessions.SetDefaultFlag(flag, enabled)
	verb := "disabled"
	if enabled {
		verb = "enabled"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"feature": string(flag),
		"enabled": enabled,
		"message": "Feature " + string(flag) + " " + verb,
	})
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	leads, err := s.ledger.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("stats failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	summary := leadx.Summarize(leads)
	writeJSON(w, http.StatusOK, map[string]any{
		"active_sessions":  s.sessions.Len(),
		"total_leads":      summary.TotalLeads,
		"leads_by_urgency": summary.ByUrgency,
		"leads_by_service": summary.ByService,
		"recent_activity":  summary.RecentActivity,
	})
}

func (s *Server) serviceInfo(w http.ResponseWriter, r *http.Request) {
	flags := s.sessions.DefaultFlags()
	writeJSON(w, http.StatusOK, map[string]any{
		"service": serviceName,
		"version": "2.0",
		"features": map[string]bool{
			"chat":         true,
			"lead_capture": true,
			"booking":      flags.Booking,
			"quotes":       flags.Quotes,
		},
		"endpoints": map[string]string{
			"chat":    "/api/chat",
			"leads":   "/api/leads",
			"health":  "/health",
			"metrics": "/metrics",
		},
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"service":   serviceName,
		"timestamp": time.Now().UTC(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode response failed")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
