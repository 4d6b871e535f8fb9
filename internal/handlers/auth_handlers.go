package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"tiktask/internal/handlers/dto"
	"tiktask/internal/logger"

	"go.uber.org/zap"
)

type AuthHandler struct {
	service AuthService
}

func NewAuthHandler(service AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: Ошибка чтения JSON", zap.Error(err))
		responseWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, u, err := h.service.Register(r.Context(), request.Username, request.Email, request.Password)
	if err != nil {
		respondServiceError(w, err, "register")
		return
	}

	logger.Info("HTTP_OUT: Пользователь зарегистрирован",
		zap.Int64("user_id", u.ID),
		zap.Duration("ms", time.Since(start)))

	responseWithJSON(w, http.StatusCreated,
		toPayload("message", "User registered successfully"),
		toPayload("token", token),
		toPayload("user", dto.FromUser(u)),
	)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: Ошибка чтения JSON", zap.Error(err))
		responseWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, u, err := h.service.Login(r.Context(), request.Username, request.Password)
	if err != nil {
		respondServiceError(w, err, "login")
		return
	}

	logger.Info("HTTP_OUT: Успешный вход",
		zap.Int64("user_id", u.ID),
		zap.Duration("ms", time.Since(start)))

	responseWithJSON(w, http.StatusOK,
		toPayload("message", "Login successful"),
		toPayload("token", token),
		toPayload("user", dto.FromUser(u)),
	)
}
