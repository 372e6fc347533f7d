package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/alexanderramin/spotsurfer/internal/assistant"
	"github.com/alexanderramin/spotsurfer/internal/push"
)

const (
	maxBodyBytes = 1 << 20

	errorResponse     = "An error occurred while processing your request."
	badRequestMessage = "Invalid request body."
)

type askResponse struct {
	Response string `json:"response"`
	HTML     string `json:"html,omitempty"`
	Status   string `json:"status"`
}

type statusResponse struct {
	Status string `json:"status"`
	ID     string `json:"id,omitempty"`
	Error  string `json:"error,omitempty"`
}

type notifyResponse struct {
	Status string `json:"status"`
	Sent   int    `json:"sent"`
	Failed int    `json:"failed"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req assistant.AskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, askResponse{Response: badRequestMessage, Status: "error"})
		return
	}

	resp, err := s.Assistant.Ask(r.Context(), req)
	switch {
	case errors.Is(err, assistant.ErrEmptyMessage), errors.Is(err, assistant.ErrMissingCoordinates):
		writeJSON(w, http.StatusBadRequest, askResponse{Response: err.Error(), Status: "error"})
		return
	case err != nil:
		s.logger().Error("ask failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, askResponse{Response: errorResponse, Status: "error"})
		return
	}

	writeJSON(w, http.StatusOK, askResponse{Response: resp.Response, HTML: resp.HTML, Status: "success"})
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	if !s.pushEnabled(w) {
		return
	}
	var sub push.Subscription
	if err := decodeJSON(w, r, &sub); err != nil {
		writeJSON(w, http.StatusBadRequest, statusResponse{Status: "error", Error: badRequestMessage})
		return
	}

	stored, err := s.Push.Subscribe(r.Context(), sub)
	switch {
	case errors.Is(err, push.ErrInvalidSubscription):
		writeJSON(w, http.StatusBadRequest, statusResponse{Status: "error", Error: err.Error()})
		return
	case err != nil:
		s.logger().Error("subscribe failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, statusResponse{Status: "error", Error: errorResponse})
		return
	}

	writeJSON(w, http.StatusCreated, statusResponse{Status: "subscribed", ID: stored.ID})
}

func (s *Server) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	if !s.pushEnabled(w) {
		return
	}
	var body struct {
		Endpoint string `json:"endpoint"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, statusResponse{Status: "error", Error: badRequestMessage})
		return
	}

	err := s.Push.Unsubscribe(r.Context(), body.Endpoint)
	switch {
	case errors.Is(err, push.ErrInvalidSubscription):
		writeJSON(w, http.StatusBadRequest, statusResponse{Status: "error", Error: err.Error()})
		return
	case errors.Is(err, push.ErrNotFound):
		writeJSON(w, http.StatusNotFound, statusResponse{Status: "error", Error: err.Error()})
		return
	case err != nil:
		s.logger().Error("unsubscribe failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, statusResponse{Status: "error", Error: errorResponse})
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{Status: "unsubscribed"})
}

func (s *Server) handleNotify(w http.ResponseWriter, r *http.Request) {
	if !s.pushEnabled(w) {
		return
	}
	var n push.Notification
	if err := decodeJSON(w, r, &n); err != nil {
		writeJSON(w, http.StatusBadRequest, statusResponse{Status: "error", Error: badRequestMessage})
		return
	}
	if strings.TrimSpace(n.Title) == "" && strings.TrimSpace(n.Body) == "" {
		writeJSON(w, http.StatusBadRequest, statusResponse{Status: "error", Error: "title or body is required"})
		return
	}

	res, err := s.Push.Broadcast(r.Context(), n)
	if err != nil {
		s.logger().Error("broadcast failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, statusResponse{Status: "error", Error: errorResponse})
		return
	}

	writeJSON(w, http.StatusOK, notifyResponse{Status: "sent", Sent: res.Sent, Failed: res.Failed})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

func (s *Server) pushEnabled(w http.ResponseWriter) bool {
	if s.Push != nil {
		return true
	}
	writeJSON(w, http.StatusServiceUnavailable, statusResponse{Status: "error", Error: "push notifications are not configured"})
	return false
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
