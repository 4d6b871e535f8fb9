package service

import (
	"context"
	"mime/multipart"
	"time"

	"tiktask/internal/files"
	"tiktask/internal/models/task"
	"tiktask/internal/models/user"
)

type TaskRepository interface {
	CreateTask(ctx context.Context, t *task.Task) error
	TasksByOwner(ctx context.Context, ownerID int64, filters task.Filters) ([]*task.Task, error)
	AllTasks(ctx context.Context, filters task.Filters) ([]*task.Task, error)
	Stats(ctx context.Context, ownerID *int64, filters task.Filters) (task.Stats, error)
	TaskByID(ctx context.Context, id int64) (*task.Task, error)
	UpdateTask(ctx context.Context, id int64, title, description string, dueDate *time.Time) (int64, error)
	ToggleComplete(ctx context.Context, id int64) (int64, error)
	DeleteTask(ctx context.Context, id int64) (int64, error)
	AddAttachments(ctx context.Context, taskID int64, attachments []task.Attachment) error
	AttachmentsByTask(ctx context.Context, taskID int64) ([]task.Attachment, error)
	AttachmentByID(ctx context.Context, id int64, includeInternal bool) (*task.Attachment, error)
	DeleteAttachment(ctx context.Context, id int64) (int64, error)
	AttachmentPathsByUser(ctx context.Context, userID int64) ([]string, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, u *user.User) error
	UserByUsername(ctx context.Context, username string) (*user.User, error)
	UserByEmail(ctx context.Context, email string) (*user.User, error)
	UserByID(ctx context.Context, id int64) (*user.User, error)
	Users(ctx context.Context) ([]*user.User, error)
	UpdateUser(ctx context.Context, id int64, updates user.Updates) (*user.User, error)
	DeleteUser(ctx context.Context, id int64) (int64, error)
}

type FileStore interface {
	Save(fh *multipart.FileHeader) (files.StoredFile, error)
	Remove(storedPath string) error
	RemoveAll(storedPaths []string) []string
}
