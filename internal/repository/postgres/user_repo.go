package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tiktask/internal/logger"
	"tiktask/internal/models/user"
	repo "tiktask/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

const uniqueViolation = "23505"

// duplicateField разбирает нарушение уникальности в структурный признак
// поля, без сопоставления текста ошибки
func duplicateField(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return nil
	}

	switch {
	case strings.Contains(pgErr.ConstraintName, "username"):
		return &repo.DuplicateError{Field: "username"}
	case strings.Contains(pgErr.ConstraintName, "email"):
		return &repo.DuplicateError{Field: "email"}
	default:
		return &repo.DuplicateError{Field: pgErr.ConstraintName}
	}
}

func (s *Storage) CreateUser(ctx context.Context, u *user.User) error {
	start := time.Now()

	query := `INSERT INTO users (username, email, password, role)
				VALUES ($1, $2, $3, $4)
				RETURNING id, created_at`

	err := s.pool.QueryRow(ctx, query,
		u.Username,
		u.Email,
		u.Password,
		u.Role,
	).Scan(&u.ID, &u.CreatedAt)

	if err != nil {
		if dup := duplicateField(err); dup != nil {
			return dup
		}
		logger.Error("Repository: Не удалось создать пользователя", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("создание пользователя: %w", err)
	}

	if time.Since(start) > slowQuery {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

// UserByUsername возвращает полную строку вместе с хэшем пароля,
// нужна для проверки входа
func (s *Storage) UserByUsername(ctx context.Context, username string) (*user.User, error) {
	return s.userByField(ctx, "username", username)
}

func (s *Storage) UserByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.userByField(ctx, "email", email)
}

func (s *Storage) userByField(ctx context.Context, field, value string) (*user.User, error) {
	query := fmt.Sprintf(`SELECT id, username, email, password, role, created_at
				FROM users WHERE %s = $1`, field)

	u := &user.User{}
	err := s.pool.QueryRow(ctx, query, value).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.Password,
		&u.Role,
		&u.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить пользователя", err, zap.String("field", field))
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}
	return u, nil
}

// UserByID отдаёт запись без пароля — поле исключено проекцией,
// а не фильтрацией после чтения
func (s *Storage) UserByID(ctx context.Context, id int64) (*user.User, error) {
	query := `SELECT id, username, email, role, created_at
				FROM users WHERE id = $1`

	u := &user.User{}
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.Role,
		&u.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить пользователя", err, zap.Int64("user_id", id))
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}
	return u, nil
}

func (s *Storage) Users(ctx context.Context) ([]*user.User, error) {
	start := time.Now()

	query := `SELECT id, username, email, role, created_at
				FROM users
				ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		logger.Error("Repository: Не удалось получить пользователей", err)
		return nil, fmt.Errorf("получение пользователей: %w", err)
	}
	defer rows.Close()

	users := []*user.User{}
	for rows.Next() {
		u := &user.User{}
		err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Role, &u.CreatedAt)
		if err != nil {
			logger.Warn("Repository: Ошибка сканирования пользователя", zap.Error(err))
			continue
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	if time.Since(start) > slowQuery {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return users, nil
}

// UpdateUser обновляет только непустые после trim поля. Невалидная роль
// молча отбрасывается. Если не осталось ни одного поля — возвращает
// ErrNothingToUpdate, не трогая БД.
func (s *Storage) UpdateUser(ctx context.Context, id int64, updates user.Updates) (*user.User, error) {
	fields := []string{}
	args := []any{}
	idx := 1

	if username := strings.TrimSpace(updates.Username); username != "" {
		fields = append(fields, fmt.Sprintf("username = $%d", idx))
		args = append(args, username)
		idx++
	}

	if email := strings.TrimSpace(updates.Email); email != "" {
		fields = append(fields, fmt.Sprintf("email = $%d", idx))
		args = append(args, email)
		idx++
	}

	if role := strings.TrimSpace(updates.Role); role != "" && user.ValidRole(user.Role(role)) {
		fields = append(fields, fmt.Sprintf("role = $%d", idx))
		args = append(args, role)
		idx++
	}

	if len(fields) == 0 {
		return nil, repo.ErrNothingToUpdate
	}

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d`, strings.Join(fields, ", "), idx)
	args = append(args, id)

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		if dup := duplicateField(err); dup != nil {
			return nil, dup
		}
		logger.Error("Repository: Не удалось обновить пользователя", err, zap.Int64("user_id", id))
		return nil, fmt.Errorf("обновление пользователя: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return nil, repo.ErrNotFound
	}

	return s.UserByID(ctx, id)
}

func (s *Storage) DeleteUser(ctx context.Context, id int64) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		logger.Error("Repository: Не удалось удалить пользователя", err, zap.Int64("user_id", id))
		return 0, fmt.Errorf("удаление пользователя: %w", err)
	}
	return tag.RowsAffected(), nil
}
