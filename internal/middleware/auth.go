package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"tiktask/internal/auth"
	"tiktask/internal/logger"
	"tiktask/internal/models/user"

	"go.uber.org/zap"
)

const ClaimsKey contextKey = "claims"

// Authenticate проверяет bearer-токен и кладёт claims в контекст
func Authenticate(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenString == "" {
				unauthorized(w, r, "No token provided")
				return
			}

			claims, err := tokens.Parse(tokenString)
			if err != nil {
				unauthorized(w, r, "Invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminOnly пускает дальше только администраторов, вешается после Authenticate
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			unauthorized(w, r, "No token provided")
			return
		}

		if claims.Role != user.RoleAdmin {
			logger.Warn("HTTP: Доступ запрещён",
				zap.String("request_id", GetRequestID(r.Context())),
				zap.Int64("user_id", claims.UserID),
				zap.String("path", r.URL.Path))

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(map[string]any{"message": "Admin access required"})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*auth.Claims)
	return claims, ok
}

func unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	logger.Warn("HTTP: Запрос без валидного токена",
		zap.String("request_id", GetRequestID(r.Context())),
		zap.String("path", r.URL.Path))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{"message": message})
}
