package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"supportbot/internal/domain"
	"supportbot/internal/service"
)

const maxBodyBytes = 1 << 20

type chatRequest struct {
	SessionID string        `json:"session_id"`
	Message   string        `json:"message"`
	History   []domain.Turn `json:"history"`
}

type chatResponse struct {
	SessionID string        `json:"session_id"`
	History   []domain.Turn `json:"history"`
	domain.Reply
}

type sessionRequest struct {
	SessionID string `json:"session_id"`
}

type metricsResponse struct {
	service.MetricsView
	Markdown string `json:"markdown"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}
	history := s.trimHistory(req.History)

	reply, err := s.svc.Chat(r.Context(), req.SessionID, req.Message, history)
	if err != nil {
		s.log.WithError(err).Error("chat failed", map[string]interface{}{"session_id": req.SessionID})
		writeError(w, http.StatusInternalServerError, "chat failed")
		return
	}

	history = append(history,
		domain.Turn{Role: domain.RoleUser, Content: req.Message},
		domain.Turn{Role: domain.RoleAssistant, Content: reply.Text},
	)
	writeJSON(w, http.StatusOK, chatResponse{
		SessionID: req.SessionID,
		History:   s.trimHistory(history),
		Reply:     reply,
	})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	if err := s.svc.Clear(r.Context(), req.SessionID); err != nil {
		s.log.WithError(err).Error("clear failed", map[string]interface{}{"session_id": req.SessionID})
		writeError(w, http.StatusInternalServerError, "clear failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) handleOverview(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"overview": s.svc.Overview()})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	view, err := s.svc.Metrics(r.Context(), r.URL.Query().Get("session_id"))
	if err != nil {
		s.log.WithError(err).Error("metrics failed", nil)
		writeError(w, http.StatusInternalServerError, "metrics unavailable")
		return
	}
	writeJSON(w, http.StatusOK, metricsResponse{MetricsView: view, Markdown: view.Markdown()})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// trimHistory keeps the last maxHistory exchanges, two turns each.
func (s *Server) trimHistory(h []domain.Turn) []domain.Turn {
	if s.maxHistory <= 0 {
		return h
	}
	if n := s.maxHistory * 2; len(h) > n {
		h = h[len(h)-n:]
	}
	return h
}

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty request body")
		}
		return errors.New("invalid JSON body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
