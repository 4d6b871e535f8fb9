package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tiktask/internal/logger"
	"tiktask/internal/models/task"
	repo "tiktask/internal/repository"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// publicPath нормализует относительный путь хранения в публичный URL.
// Наружу никогда не уходит оригинальное имя файла.
func publicPath(filePath string) string {
	if filePath == "" {
		return ""
	}
	normalized := strings.TrimLeft(strings.ReplaceAll(filePath, "\\", "/"), "/")
	return "/" + normalized
}

// AddAttachments вставляет метаданные файлов по одной строке на файл.
// Частичная вставка при сбое в середине пачки не откатывается —
// осиротевшие файлы подбирает фоновая чистка.
func (s *Storage) AddAttachments(ctx context.Context, taskID int64, files []task.Attachment) error {
	start := time.Now()

	query := `INSERT INTO task_attachments
				(task_id, original_name, file_name, file_path, mime_type, size)
				VALUES ($1, $2, $3, $4, $5, $6)`

	for _, f := range files {
		_, err := s.pool.Exec(ctx, query,
			taskID,
			f.Name,
			f.FileName,
			f.FilePath,
			f.MimeType,
			f.Size,
		)
		if err != nil {
			logger.Error("Repository: Не удалось сохранить вложение", err,
				zap.Int64("task_id", taskID),
				zap.String("file_name", f.FileName))
			return fmt.Errorf("сохранение вложения: %w", err)
		}
	}

	if time.Since(start) > slowQuery {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (s *Storage) AttachmentsByTask(ctx context.Context, taskID int64) ([]task.Attachment, error) {
	m, err := s.attachmentsForTasks(ctx, []int64{taskID})
	if err != nil {
		return nil, err
	}
	attachments, ok := m[taskID]
	if !ok {
		return []task.Attachment{}, nil
	}
	return attachments, nil
}

// AttachmentByID возвращает одно вложение. При includeInternal = false
// внутренние поля хранения не выбираются вовсе.
func (s *Storage) AttachmentByID(ctx context.Context, id int64, includeInternal bool) (*task.Attachment, error) {
	columns := "id, task_id, original_name, mime_type, size, file_path"
	if includeInternal {
		columns += ", file_name"
	}
	query := fmt.Sprintf(`SELECT %s FROM task_attachments WHERE id = $1`, columns)

	a := &task.Attachment{}
	dest := []any{&a.ID, &a.TaskID, &a.Name, &a.MimeType, &a.Size, &a.FilePath}
	if includeInternal {
		dest = append(dest, &a.FileName)
	}

	err := s.pool.QueryRow(ctx, query, id).Scan(dest...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить вложение", err, zap.Int64("attachment_id", id))
		return nil, fmt.Errorf("получение вложения: %w", err)
	}

	a.URL = publicPath(a.FilePath)
	if !includeInternal {
		a.FilePath = ""
	}
	return a, nil
}

func (s *Storage) DeleteAttachment(ctx context.Context, id int64) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM task_attachments WHERE id = $1`, id)
	if err != nil {
		logger.Error("Repository: Не удалось удалить вложение", err, zap.Int64("attachment_id", id))
		return 0, fmt.Errorf("удаление вложения: %w", err)
	}
	return tag.RowsAffected(), nil
}

// AttachmentPathsByUser собирает пути всех файлов, транзитивно
// принадлежащих пользователю, до каскадного удаления его строк
func (s *Storage) AttachmentPathsByUser(ctx context.Context, userID int64) ([]string, error) {
	query := `SELECT ta.file_path
				FROM task_attachments ta
				INNER JOIN tasks t ON ta.task_id = t.id
				WHERE t.user_id = $1`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		logger.Error("Repository: Не удалось получить пути вложений", err, zap.Int64("user_id", userID))
		return nil, fmt.Errorf("получение путей вложений: %w", err)
	}
	return scanPaths(rows)
}

// AllAttachmentPaths нужен фоновой чистке осиротевших файлов
func (s *Storage) AllAttachmentPaths(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT file_path FROM task_attachments`)
	if err != nil {
		logger.Error("Repository: Не удалось получить пути вложений", err)
		return nil, fmt.Errorf("получение путей вложений: %w", err)
	}
	return scanPaths(rows)
}

func scanPaths(rows pgx.Rows) ([]string, error) {
	defer rows.Close()

	paths := []string{}
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			logger.Warn("Repository: Ошибка сканирования пути", zap.Error(err))
			continue
		}
		if p != "" {
			paths = append(paths, p)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}
	return paths, nil
}

// includeAttachments подгружает вложения одним запросом на весь список задач
func (s *Storage) includeAttachments(ctx context.Context, tasks []*task.Task) error {
	ids := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}

	m, err := s.attachmentsForTasks(ctx, ids)
	if err != nil {
		return err
	}

	for _, t := range tasks {
		if attachments, ok := m[t.ID]; ok {
			t.Attachments = attachments
		} else {
			t.Attachments = []task.Attachment{}
		}
	}
	return nil
}

func (s *Storage) attachmentsForTasks(ctx context.Context, taskIDs []int64) (map[int64][]task.Attachment, error) {
	if len(taskIDs) == 0 {
		return map[int64][]task.Attachment{}, nil
	}

	query := `SELECT id, task_id, original_name, file_name, file_path, mime_type, size, created_at
				FROM task_attachments
				WHERE task_id = ANY($1)
				ORDER BY created_at ASC, id ASC`

	rows, err := s.pool.Query(ctx, query, taskIDs)
	if err != nil {
		logger.Error("Repository: Не удалось получить вложения", err)
		return nil, fmt.Errorf("получение вложений: %w", err)
	}
	defer rows.Close()

	result := map[int64][]task.Attachment{}
	for rows.Next() {
		a := task.Attachment{}
		err := rows.Scan(
			&a.ID,
			&a.TaskID,
			&a.Name,
			&a.FileName,
			&a.FilePath,
			&a.MimeType,
			&a.Size,
			&a.CreatedAt,
		)
		if err != nil {
			logger.Warn("Repository: Ошибка сканирования вложения", zap.Error(err))
			continue
		}
		a.URL = publicPath(a.FilePath)
		result[a.TaskID] = append(result[a.TaskID], a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}
	return result, nil
}
