package auth

import (
	"fmt"
	"time"

	"tiktask/internal/models/user"

	"github.com/golang-jwt/jwt/v5"
)

type TokenError string

func (e TokenError) Error() string { return string(e) }

const (
	ErrEmptySecret  = TokenError("не задан секрет подписи токена")
	ErrInvalidToken = TokenError("невалидный токен")
)

// Claims — полезная нагрузка токена: кто и с какой ролью
type Claims struct {
	UserID   int64
	Username string
	Role     user.Role
}

// TokenManager подписывает и проверяет HS256-токены
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if ttl == 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl}, nil
}

func (tm *TokenManager) Sign(u *user.User) (string, error) {
	claims := jwt.MapClaims{
		"id":       u.ID,
		"username": u.Username,
		"role":     string(u.Role),
		"exp":      time.Now().Add(tm.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("подпись токена: %w", err)
	}
	return signed, nil
}

func (tm *TokenManager) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный метод подписи: %v", t.Header["alg"])
		}
		return tm.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	id, ok := mapClaims["id"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}
	username, _ := mapClaims["username"].(string)
	role, _ := mapClaims["role"].(string)

	return &Claims{
		UserID:   int64(id),
		Username: username,
		Role:     user.Role(role),
	}, nil
}
