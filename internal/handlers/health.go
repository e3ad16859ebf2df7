package handlers

import (
	"context"
	"net/http"
	"time"

	"SpeakShift/internal/apperr"
	"SpeakShift/internal/response"
)

type HealthHandler struct {
	ready ReadinessChecker
}

func NewHealthHandler(ready ReadinessChecker) *HealthHandler {
	return &HealthHandler{ready: ready}
}

// Welcome корневой маршрут
func (h *HealthHandler) Welcome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Welcome to SpeakShift API"))
}

// Live процесс жив
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, "ok", nil)
}

// Ready зависимости доступны
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.ready(ctx); err != nil {
			response.Error(w, r, apperr.Wrap(err, http.StatusServiceUnavailable, "Service unavailable"))
			return
		}
	}
	response.JSON(w, r, http.StatusOK, "ready", nil)
}
