package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"tiktask/internal/handlers/dto"
	"tiktask/internal/logger"
	"tiktask/internal/middleware"
	"tiktask/internal/models/user"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// UserHandler обслуживает админку пользователей, маршруты закрыты
// middleware.AdminOnly
type UserHandler struct {
	service UserService
}

func NewUserHandler(service UserService) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	users, err := h.service.Users(r.Context())
	if err != nil {
		respondServiceError(w, err, "get_users")
		return
	}

	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		responseWithError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	var request dto.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: Ошибка чтения JSON", zap.Error(err))
		responseWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updates := user.Updates{}
	provided := map[string]bool{}
	if request.Username != nil {
		updates.Username = *request.Username
		provided["username"] = true
	}
	if request.Email != nil {
		updates.Email = *request.Email
		provided["email"] = true
	}
	if request.Role != nil {
		updates.Role = *request.Role
		provided["role"] = true
	}

	updated, err := h.service.UpdateUser(r.Context(), id, updates, provided)
	if err != nil {
		respondServiceError(w, err, "update_user")
		return
	}

	logger.Info("HTTP_OUT: Пользователь обновлён",
		zap.Int64("user_id", id),
		zap.Duration("ms", time.Since(start)))

	responseWithJSON(w, http.StatusOK,
		toPayload("message", "User updated successfully"),
		toPayload("user", updated),
	)
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		responseWithError(w, http.StatusUnauthorized, "No token provided")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		responseWithError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	if err := h.service.DeleteUser(r.Context(), claims.UserID, id); err != nil {
		respondServiceError(w, err, "delete_user")
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("message", "User deleted successfully"))
}
