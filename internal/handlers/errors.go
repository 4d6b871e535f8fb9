package handlers

import (
	"errors"
	"net/http"

	"tiktask/internal/logger"
	"tiktask/internal/service"

	"go.uber.org/zap"
)

// handleBusinessError переводит ошибку бизнес-логики в HTTP-ответ.
// Возвращает false, если ошибка не бизнесовая — тогда это 500 на
// стороне вызывающего.
func handleBusinessError(w http.ResponseWriter, err error) bool {
	var businessErr *service.BusinessError
	if !errors.As(err, &businessErr) {
		return false
	}

	statusCode := mapBusinessErrorToHTTP(businessErr.Code)

	logger.Warn("HTTP: Бизнес-ошибка",
		zap.String("error_code", businessErr.Code),
		zap.Int("http_status", statusCode))

	responseWithJSON(w, statusCode,
		toPayload("error", businessErr.Code),
		toPayload("message", businessErr.Message),
	)
	return true
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeValidation, service.CodeAlreadyExists:
		return http.StatusBadRequest
	case service.CodeForbidden:
		return http.StatusForbidden
	case service.CodeInvalidCredentials:
		return http.StatusUnauthorized
	default:
		return http.StatusBadRequest
	}
}

// respondServiceError — общий выход для ошибок сервиса: бизнесовые
// уходят со своим статусом, остальные прячутся за generic 500
func respondServiceError(w http.ResponseWriter, err error, operation string) {
	if handleBusinessError(w, err) {
		return
	}

	logger.Error("HTTP: Ошибка Service", err, zap.String("operation", operation))
	responseWithError(w, http.StatusInternalServerError, "Internal server error")
}
