package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"tiktask/internal/auth"
	"tiktask/internal/logger"
	"tiktask/internal/models/task"
	"tiktask/internal/models/user"
	rep "tiktask/internal/repository"

	"go.uber.org/zap"
)

const dueDateLayout = "2006-01-02"

type TaskService struct {
	repo  TaskRepository
	store FileStore
}

func NewTaskService(repo TaskRepository, store FileStore) *TaskService {
	return &TaskService{repo: repo, store: store}
}

// CreateTask создаёт задачу и сохраняет приложенные файлы.
// Лимиты на количество и размер файлов проверяет handler.
func (s *TaskService) CreateTask(ctx context.Context, ownerID int64, title, description, dueDate string, uploads []*multipart.FileHeader) (*task.Task, error) {
	if title == "" {
		return nil, NewValidationError("Title is required")
	}

	due, err := parseDueDate(dueDate)
	if err != nil {
		return nil, err
	}

	t := &task.Task{
		Title:       title,
		Description: description,
		DueDate:     due,
		UserID:      ownerID,
	}

	if err := s.repo.CreateTask(ctx, t); err != nil {
		return nil, err
	}

	if len(uploads) > 0 {
		if err := s.storeAttachments(ctx, t.ID, uploads); err != nil {
			return nil, err
		}
	}

	return s.repo.TaskByID(ctx, t.ID)
}

func (s *TaskService) Tasks(ctx context.Context, ownerID int64, filters task.Filters) ([]*task.Task, error) {
	tasks, err := s.repo.TasksByOwner(ctx, ownerID, filters)
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	return tasks, nil
}

// AllTasks — админский список всех задач с именами владельцев
func (s *TaskService) AllTasks(ctx context.Context, filters task.Filters) ([]*task.Task, error) {
	tasks, err := s.repo.AllTasks(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("получение всех задач: %w", err)
	}
	return tasks, nil
}

// Stats считает агрегаты. view=all расширяет область до всех задач,
// но только для администратора — для остальных параметр игнорируется.
func (s *TaskService) Stats(ctx context.Context, actor *auth.Claims, view string, filters task.Filters) (task.Stats, error) {
	var ownerID *int64
	if actor.Role != user.RoleAdmin || view != "all" {
		ownerID = &actor.UserID
	}

	stats, err := s.repo.Stats(ctx, ownerID, filters)
	if err != nil {
		return task.Stats{}, fmt.Errorf("подсчёт статистики: %w", err)
	}
	return stats, nil
}

// UpdateTask переписывает title/description/due_date и дописывает новые
// вложения. Выполненность и владельца не трогает.
func (s *TaskService) UpdateTask(ctx context.Context, actor *auth.Claims, id int64, title, description, dueDate string, uploads []*multipart.FileHeader) (*task.Task, error) {
	if title == "" {
		return nil, NewValidationError("Title is required")
	}

	due, err := parseDueDate(dueDate)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeOwner(ctx, actor, id, "You can only edit your own tasks"); err != nil {
		return nil, err
	}

	rows, err := s.repo.UpdateTask(ctx, id, title, description, due)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		// задача исчезла между проверкой и обновлением
		return nil, NewNotFound("Task")
	}

	if len(uploads) > 0 {
		if err := s.storeAttachments(ctx, id, uploads); err != nil {
			return nil, err
		}
	}

	return s.repo.TaskByID(ctx, id)
}

func (s *TaskService) ToggleComplete(ctx context.Context, actor *auth.Claims, id int64) (*task.Task, error) {
	if err := s.authorizeOwner(ctx, actor, id, "You can only complete your own tasks"); err != nil {
		return nil, err
	}

	rows, err := s.repo.ToggleComplete(ctx, id)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, NewNotFound("Task")
	}

	return s.repo.TaskByID(ctx, id)
}

// DeleteTask удаляет строку задачи (вложения каскадом) и затем подчищает
// файлы на диске. Сбой удаления файлов не влияет на результат запроса.
func (s *TaskService) DeleteTask(ctx context.Context, actor *auth.Claims, id int64) error {
	t, err := s.getOwnTask(ctx, actor, id, "You can only delete your own tasks")
	if err != nil {
		return err
	}

	paths := make([]string, 0, len(t.Attachments))
	for _, a := range t.Attachments {
		paths = append(paths, a.FilePath)
	}

	rows, err := s.repo.DeleteTask(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return NewNotFound("Task")
	}

	if failed := s.store.RemoveAll(paths); len(failed) > 0 {
		logger.Warn("Service: Часть файлов вложений не удалена",
			zap.Int64("task_id", id),
			zap.Strings("paths", failed))
	}
	return nil
}

// DeleteAttachment удаляет одно вложение и возвращает оставшиеся
func (s *TaskService) DeleteAttachment(ctx context.Context, actor *auth.Claims, taskID, attachmentID int64) ([]task.Attachment, error) {
	if err := s.authorizeOwner(ctx, actor, taskID, "You can only edit your own tasks"); err != nil {
		return nil, err
	}

	attachment, err := s.repo.AttachmentByID(ctx, attachmentID, true)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return nil, NewNotFound("Attachment")
		}
		return nil, err
	}
	if attachment.TaskID != taskID {
		return nil, NewNotFound("Attachment")
	}

	if _, err := s.repo.DeleteAttachment(ctx, attachmentID); err != nil {
		return nil, err
	}

	if err := s.store.Remove(attachment.FilePath); err != nil {
		logger.Warn("Service: Файл вложения не удалён",
			zap.String("path", attachment.FilePath),
			zap.Error(err))
	}

	return s.repo.AttachmentsByTask(ctx, taskID)
}

func (s *TaskService) getOwnTask(ctx context.Context, actor *auth.Claims, id int64, forbiddenMsg string) (*task.Task, error) {
	t, err := s.repo.TaskByID(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return nil, NewNotFound("Task")
		}
		return nil, err
	}

	if t.UserID != actor.UserID {
		return nil, NewForbidden(forbiddenMsg)
	}
	return t, nil
}

func (s *TaskService) authorizeOwner(ctx context.Context, actor *auth.Claims, id int64, forbiddenMsg string) error {
	_, err := s.getOwnTask(ctx, actor, id, forbiddenMsg)
	return err
}

func (s *TaskService) storeAttachments(ctx context.Context, taskID int64, uploads []*multipart.FileHeader) error {
	stored := make([]task.Attachment, 0, len(uploads))
	for _, fh := range uploads {
		f, err := s.store.Save(fh)
		if err != nil {
			return fmt.Errorf("сохранение файла %s: %w", fh.Filename, err)
		}
		stored = append(stored, task.Attachment{
			TaskID:   taskID,
			Name:     f.OriginalName,
			FileName: f.FileName,
			FilePath: f.Path,
			MimeType: f.MimeType,
			Size:     f.Size,
		})
	}
	return s.repo.AddAttachments(ctx, taskID, stored)
}

// parseDueDate принимает дату без времени, пустая строка — нет дедлайна
func parseDueDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}

	due, err := time.Parse(dueDateLayout, value)
	if err != nil {
		return nil, NewValidationError("Invalid due date, expected YYYY-MM-DD")
	}
	return &due, nil
}
