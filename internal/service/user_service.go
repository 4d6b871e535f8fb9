package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tiktask/internal/logger"
	"tiktask/internal/models/user"
	rep "tiktask/internal/repository"

	"go.uber.org/zap"
)

type UserService struct {
	users UserRepository
	tasks TaskRepository
	store FileStore
}

func NewUserService(users UserRepository, tasks TaskRepository, store FileStore) *UserService {
	return &UserService{users: users, tasks: tasks, store: store}
}

func (s *UserService) Users(ctx context.Context) ([]*user.User, error) {
	users, err := s.users.Users(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение пользователей: %w", err)
	}
	return users, nil
}

// UpdateUser — частичное обновление: пустое после trim значение поля,
// если оно было прислано, отклоняется; невалидная роль отклоняется;
// запрос без единого поля отклоняется
func (s *UserService) UpdateUser(ctx context.Context, id int64, updates user.Updates, provided map[string]bool) (*user.User, error) {
	if id <= 0 {
		return nil, NewValidationError("Invalid user id")
	}

	if provided["username"] && strings.TrimSpace(updates.Username) == "" {
		return nil, NewValidationError("Username cannot be empty")
	}
	if provided["email"] && strings.TrimSpace(updates.Email) == "" {
		return nil, NewValidationError("Email cannot be empty")
	}
	if !provided["username"] && !provided["email"] && !provided["role"] {
		return nil, NewValidationError("No fields to update")
	}
	if provided["role"] && !user.ValidRole(user.Role(strings.TrimSpace(updates.Role))) {
		return nil, NewValidationError("Invalid role")
	}

	updated, err := s.users.UpdateUser(ctx, id, updates)
	if err != nil {
		switch {
		case errors.Is(err, rep.ErrNotFound):
			return nil, NewNotFound("User")
		case errors.Is(err, rep.ErrNothingToUpdate):
			return nil, NewValidationError("No fields to update")
		default:
			if dup, ok := rep.IsDuplicate(err); ok {
				return nil, NewAlreadyExists(dup.Field, duplicateMessage(dup.Field))
			}
			return nil, fmt.Errorf("обновление пользователя: %w", err)
		}
	}

	return updated, nil
}

// DeleteUser удаляет учётку: строки задач и вложений уходят каскадом в БД,
// после чего файлы вложений подчищаются с диска по заранее собранным путям
func (s *UserService) DeleteUser(ctx context.Context, actorID, id int64) error {
	if id <= 0 {
		return NewValidationError("Invalid user id")
	}

	if id == actorID {
		return NewValidationError("You cannot delete your own account")
	}

	// пути собираем до удаления — каскад снесёт строки вложений
	paths, err := s.tasks.AttachmentPathsByUser(ctx, id)
	if err != nil {
		return fmt.Errorf("сбор путей вложений: %w", err)
	}

	rows, err := s.users.DeleteUser(ctx, id)
	if err != nil {
		return fmt.Errorf("удаление пользователя: %w", err)
	}
	if rows == 0 {
		return NewNotFound("User")
	}

	if failed := s.store.RemoveAll(paths); len(failed) > 0 {
		logger.Warn("Service: Часть файлов вложений не удалена",
			zap.Int64("user_id", id),
			zap.Strings("paths", failed))
	}

	logger.Info("Service: Пользователь удалён",
		zap.Int64("user_id", id),
		zap.Int("attachment_files", len(paths)))
	return nil
}

func duplicateMessage(field string) string {
	switch field {
	case "username":
		return "Username is already in use"
	case "email":
		return "Email is already in use"
	default:
		return "Provided data is already in use by another user"
	}
}
