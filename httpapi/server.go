// Package httpapi is the thin HTTP wrapper around the orchestration engine.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/skosovsky/tutorsy"
	"go.uber.org/zap"
)

// ChatRequest is the wire shape of one incoming turn. user_info is accepted
// loosely typed because callers send both plain and "*_summary" profile
// fields.
type ChatRequest struct {
	UserInfo      map[string]any    `json:"user_info"`
	ChatHistory   []tutorsy.Message `json:"chat_history"`
	LatestMessage string            `json:"latest_message"`
}

// ErrorResponse is the structured internal-failure shape, distinguishable
// from a normal clarify response by its error_code.
type ErrorResponse struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

// Server exposes the engine over HTTP.
type Server struct {
	engine *tutorsy.Engine
	log    *zap.Logger
	router chi.Router
}

// New builds the HTTP server around engine. A nil logger falls back to no-op.
func New(engine *tutorsy.Engine, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{engine: engine, log: log}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.logMiddleware)
	r.Use(chiMiddleware.Recoverer)
	r.Post("/orchestrate", s.handleOrchestrate)
	r.Post("/mock/{tool}", s.handleMockTool)
	r.Get("/healthz", s.handleHealth)
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// handleOrchestrate runs one turn through the engine. A clarify outcome is a
// normal 200 response; only internal failures produce the 500 error shape.
func (s *Server) handleOrchestrate(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			ErrorCode: "BAD_REQUEST",
			Message:   "invalid request body: " + err.Error(),
		})
		return
	}

	turn := tutorsy.Turn{
		UserInfo:      tutorsy.ProfileFromMap(req.UserInfo),
		ChatHistory:   req.ChatHistory,
		LatestMessage: req.LatestMessage,
	}
	result, err := s.engine.HandleTurn(r.Context(), turn)
	if err != nil {
		s.log.Error("orchestration failed",
			zap.String("request_id", requestID(r.Context())),
			zap.String("user_id", turn.UserInfo.UserID),
			zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			ErrorCode: "ORCHESTRATOR_FAILURE",
			Message:   err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleMockTool echoes the payload back; exposed for manual testing.
func (s *Server) handleMockTool(w http.ResponseWriter, r *http.Request) {
	tool := chi.URLParam(r, "tool")
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			ErrorCode: "BAD_REQUEST",
			Message:   "invalid request body: " + err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tool":   tool,
		"status": "ok",
		"echo":   payload,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
