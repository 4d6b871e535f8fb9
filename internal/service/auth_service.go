package service

import (
	"context"
	"errors"
	"fmt"

	"tiktask/internal/auth"
	"tiktask/internal/logger"
	"tiktask/internal/models/user"
	rep "tiktask/internal/repository"

	"go.uber.org/zap"
)

const minPasswordLen = 6

// параметры учётки администратора, создаваемой при первом старте
const seedAdminUsername = "admin"
const seedAdminEmail = "admin@tiktask.com"
const seedAdminPassword = "Admin123!"

type AuthService struct {
	users  UserRepository
	tokens *auth.TokenManager
}

func NewAuthService(users UserRepository, tokens *auth.TokenManager) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

func (s *AuthService) Register(ctx context.Context, username, email, password string) (string, *user.User, error) {
	if username == "" || email == "" || password == "" {
		return "", nil, NewValidationError("All fields are required")
	}

	if len(password) < minPasswordLen {
		return "", nil, NewValidationError("Password must be at least 6 characters")
	}

	if _, err := s.users.UserByUsername(ctx, username); err == nil {
		return "", nil, NewAlreadyExists("username", "Username already exists")
	} else if !errors.Is(err, rep.ErrNotFound) {
		return "", nil, fmt.Errorf("проверка имени пользователя: %w", err)
	}

	if _, err := s.users.UserByEmail(ctx, email); err == nil {
		return "", nil, NewAlreadyExists("email", "Email already exists")
	} else if !errors.Is(err, rep.ErrNotFound) {
		return "", nil, fmt.Errorf("проверка email: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", nil, err
	}

	u := &user.User{
		Username: username,
		Email:    email,
		Password: hash,
		Role:     user.RoleUser,
	}

	if err := s.users.CreateUser(ctx, u); err != nil {
		// два одновременных register могут проскочить предварительную
		// проверку, уникальность добивает БД
		if dup, ok := rep.IsDuplicate(err); ok {
			return "", nil, NewAlreadyExists(dup.Field, dup.Field+" already exists")
		}
		return "", nil, fmt.Errorf("регистрация: %w", err)
	}

	token, err := s.tokens.Sign(u)
	if err != nil {
		return "", nil, err
	}

	logger.Info("Service: Новый пользователь зарегистрирован",
		zap.Int64("user_id", u.ID),
		zap.String("username", u.Username))
	return token, u, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (string, *user.User, error) {
	if username == "" || password == "" {
		return "", nil, NewValidationError("Username and password are required")
	}

	u, err := s.users.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return "", nil, NewInvalidCredentials()
		}
		return "", nil, fmt.Errorf("поиск пользователя: %w", err)
	}

	if !auth.CheckPassword(u.Password, password) {
		logger.Warn("Service: Неверный пароль", zap.String("username", username))
		return "", nil, NewInvalidCredentials()
	}

	token, err := s.tokens.Sign(u)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// SeedAdmin создаёт администратора по умолчанию, если его ещё нет
func (s *AuthService) SeedAdmin(ctx context.Context) error {
	_, err := s.users.UserByUsername(ctx, seedAdminUsername)
	if err == nil {
		logger.Info("Service: Администратор уже существует")
		return nil
	}
	if !errors.Is(err, rep.ErrNotFound) {
		return fmt.Errorf("проверка администратора: %w", err)
	}

	hash, err := auth.HashPassword(seedAdminPassword)
	if err != nil {
		return err
	}

	admin := &user.User{
		Username: seedAdminUsername,
		Email:    seedAdminEmail,
		Password: hash,
		Role:     user.RoleAdmin,
	}

	if err := s.users.CreateUser(ctx, admin); err != nil {
		return fmt.Errorf("создание администратора: %w", err)
	}

	logger.Info("Service: Создан администратор по умолчанию",
		zap.String("username", seedAdminUsername))
	return nil
}
