package handlers

import (
	"net/http"

	"tiktask/internal/logger"
)

type HealthHandler struct {
	checker HealthChecker
}

func NewHealthHandler(checker HealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.checker.HealthCheck(r.Context()); err != nil {
		logger.Error("HTTP: Health check провален", err)
		responseWithJSON(w, http.StatusServiceUnavailable,
			toPayload("status", "error"),
			toPayload("message", "Database unavailable"),
		)
		return
	}

	responseWithJSON(w, http.StatusOK,
		toPayload("status", "ok"),
		toPayload("message", "Server is running"),
	)
}
