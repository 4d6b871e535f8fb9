package handlers

import (
	"context"
	"mime/multipart"

	"tiktask/internal/auth"
	"tiktask/internal/models/task"
	"tiktask/internal/models/user"
)

type AuthService interface {
	Register(ctx context.Context, username, email, password string) (string, *user.User, error)
	Login(ctx context.Context, username, password string) (string, *user.User, error)
}

type TaskService interface {
	CreateTask(ctx context.Context, ownerID int64, title, description, dueDate string, uploads []*multipart.FileHeader) (*task.Task, error)
	Tasks(ctx context.Context, ownerID int64, filters task.Filters) ([]*task.Task, error)
	AllTasks(ctx context.Context, filters task.Filters) ([]*task.Task, error)
	Stats(ctx context.Context, actor *auth.Claims, view string, filters task.Filters) (task.Stats, error)
	UpdateTask(ctx context.Context, actor *auth.Claims, id int64, title, description, dueDate string, uploads []*multipart.FileHeader) (*task.Task, error)
	ToggleComplete(ctx context.Context, actor *auth.Claims, id int64) (*task.Task, error)
	DeleteTask(ctx context.Context, actor *auth.Claims, id int64) error
	DeleteAttachment(ctx context.Context, actor *auth.Claims, taskID, attachmentID int64) ([]task.Attachment, error)
}

type UserService interface {
	Users(ctx context.Context) ([]*user.User, error)
	UpdateUser(ctx context.Context, id int64, updates user.Updates, provided map[string]bool) (*user.User, error)
	DeleteUser(ctx context.Context, actorID, id int64) error
}

type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
