package postgres

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"tiktask/internal/logger"
	"tiktask/internal/models/task"
	repo "tiktask/internal/repository"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const slowQuery = 100 * time.Millisecond

func (s *Storage) CreateTask(ctx context.Context, t *task.Task) error {
	start := time.Now()

	query := `INSERT INTO tasks (title, description, due_date, user_id)
				VALUES ($1, $2, $3, $4)
				RETURNING id, completed, created_at, updated_at`

	err := s.pool.QueryRow(ctx, query,
		t.Title,
		t.Description,
		t.DueDate,
		t.UserID,
	).Scan(&t.ID, &t.Completed, &t.CreatedAt, &t.UpdatedAt)

	if err != nil {
		logger.Error("Repository: Не удалось создать задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("создание задачи: %w", err)
	}

	t.Attachments = []task.Attachment{}

	if time.Since(start) > slowQuery {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

// TasksByOwner возвращает задачи владельца, новые первыми,
// с подгруженными вложениями
func (s *Storage) TasksByOwner(ctx context.Context, ownerID int64, filters task.Filters) ([]*task.Task, error) {
	start := time.Now()

	query := `SELECT
				t.id, t.title, t.description, t.due_date, t.completed,
				t.user_id, t.created_at, t.updated_at
				FROM tasks t
				WHERE t.user_id = $1`

	args := []any{ownerID}
	clauses, filterArgs := buildFilterClauses(filters, "t", 2)
	if len(clauses) > 0 {
		query += " AND " + strings.Join(clauses, " AND ")
		args = append(args, filterArgs...)
	}
	query += " ORDER BY t.created_at DESC, t.id DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задач: %w", err)
	}

	tasks, err := scanTasks(rows, false)
	if err != nil {
		return nil, err
	}

	if err := s.includeAttachments(ctx, tasks); err != nil {
		return nil, err
	}

	if time.Since(start) > slowQuery {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return tasks, nil
}

// AllTasks возвращает все задачи с именем владельца, для админки
func (s *Storage) AllTasks(ctx context.Context, filters task.Filters) ([]*task.Task, error) {
	start := time.Now()

	query := `SELECT
				t.id, t.title, t.description, t.due_date, t.completed,
				t.user_id, t.created_at, t.updated_at, u.username
				FROM tasks t
				JOIN users u ON t.user_id = u.id`

	args := []any{}
	clauses, filterArgs := buildFilterClauses(filters, "t", 1)
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
		args = append(args, filterArgs...)
	}
	query += " ORDER BY t.created_at DESC, t.id DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задач: %w", err)
	}

	tasks, err := scanTasks(rows, true)
	if err != nil {
		return nil, err
	}

	if err := s.includeAttachments(ctx, tasks); err != nil {
		return nil, err
	}

	if time.Since(start) > slowQuery {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return tasks, nil
}

// Stats считает агрегаты по задачам: по одному владельцу, если
// ownerID задан, иначе по всем
func (s *Storage) Stats(ctx context.Context, ownerID *int64, filters task.Filters) (task.Stats, error) {
	start := time.Now()

	query := `SELECT COUNT(*), COUNT(*) FILTER (WHERE t.completed) FROM tasks t`

	conditions := []string{}
	args := []any{}
	idx := 1

	if ownerID != nil {
		conditions = append(conditions, fmt.Sprintf("t.user_id = $%d", idx))
		args = append(args, *ownerID)
		idx++
	}

	clauses, filterArgs := buildFilterClauses(filters, "t", idx)
	conditions = append(conditions, clauses...)
	args = append(args, filterArgs...)

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	var stats task.Stats
	err := s.pool.QueryRow(ctx, query, args...).Scan(&stats.Total, &stats.Completed)
	if err != nil {
		logger.Error("Repository: Не удалось посчитать статистику", err, zap.Duration("ms", time.Since(start)))
		return task.Stats{}, fmt.Errorf("подсчёт статистики: %w", err)
	}

	stats.Pending = stats.Total - stats.Completed
	if stats.Total > 0 {
		stats.Progress = int(math.Round(float64(stats.Completed) / float64(stats.Total) * 100))
	}

	if time.Since(start) > slowQuery {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return stats, nil
}

func (s *Storage) TaskByID(ctx context.Context, id int64) (*task.Task, error) {
	start := time.Now()

	query := `SELECT
				t.id, t.title, t.description, t.due_date, t.completed,
				t.user_id, t.created_at, t.updated_at
				FROM tasks t
				WHERE t.id = $1`

	t := &task.Task{}
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.DueDate,
		&t.Completed,
		&t.UserID,
		&t.CreatedAt,
		&t.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	if err := s.includeAttachments(ctx, []*task.Task{t}); err != nil {
		return nil, err
	}

	if time.Since(start) > slowQuery {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return t, nil
}

// UpdateTask переписывает три поля и обновляет updated_at.
// completed и владельца не трогает. 0 строк — задачи нет.
func (s *Storage) UpdateTask(ctx context.Context, id int64, title, description string, dueDate *time.Time) (int64, error) {
	start := time.Now()

	query := `UPDATE tasks
			SET title = $1,
				description = $2,
				due_date = $3,
				updated_at = NOW()
			WHERE id = $4`

	tag, err := s.pool.Exec(ctx, query, title, description, dueDate, id)
	if err != nil {
		logger.Error("Repository: Не удалось обновить задачу", err, zap.Duration("ms", time.Since(start)))
		return 0, fmt.Errorf("обновление задачи: %w", err)
	}

	if time.Since(start) > slowQuery {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return tag.RowsAffected(), nil
}

// ToggleComplete инвертирует флаг на стороне БД, а не через
// чтение-изменение-запись, чтобы быстрый двойной клик не терял обновление
func (s *Storage) ToggleComplete(ctx context.Context, id int64) (int64, error) {
	start := time.Now()

	query := `UPDATE tasks
			SET completed = NOT completed,
				updated_at = NOW()
			WHERE id = $1`

	tag, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		logger.Error("Repository: Не удалось переключить выполнение", err, zap.Duration("ms", time.Since(start)))
		return 0, fmt.Errorf("переключение выполнения: %w", err)
	}

	if time.Since(start) > slowQuery {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return tag.RowsAffected(), nil
}

// DeleteTask удаляет строку задачи, строки вложений уходят каскадом.
// Файлы на диске чистит сервисный слой.
func (s *Storage) DeleteTask(ctx context.Context, id int64) (int64, error) {
	start := time.Now()

	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		logger.Error("Repository: Не удалось удалить задачу", err, zap.Duration("ms", time.Since(start)))
		return 0, fmt.Errorf("удаление задачи: %w", err)
	}

	if time.Since(start) > slowQuery {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return tag.RowsAffected(), nil
}

func scanTasks(rows pgx.Rows, withUsername bool) ([]*task.Task, error) {
	defer rows.Close()

	tasks := []*task.Task{}
	for rows.Next() {
		t := &task.Task{}

		dest := []any{
			&t.ID,
			&t.Title,
			&t.Description,
			&t.DueDate,
			&t.Completed,
			&t.UserID,
			&t.CreatedAt,
			&t.UpdatedAt,
		}
		if withUsername {
			dest = append(dest, &t.Username)
		}

		if err := rows.Scan(dest...); err != nil {
			logger.Warn("Repository: Ошибка сканирования задачи", zap.Error(err))
			continue
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}
	return tasks, nil
}
