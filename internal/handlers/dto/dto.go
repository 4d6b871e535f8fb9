package dto

import (
	"time"

	"tiktask/internal/models/task"
	"tiktask/internal/models/user"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID       int64     `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Role     user.Role `json:"role"`
}

func FromUser(u *user.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	}
}

type TaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
}

// UpdateUserRequest различает непереданное поле и пустую строку
type UpdateUserRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Role     *string `json:"role"`
}

type TaskResponse struct {
	ID          int64             `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	DueDate     *string           `json:"due_date"`
	Completed   bool              `json:"completed"`
	UserID      int64             `json:"user_id"`
	Username    string            `json:"username,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	Attachments []task.Attachment `json:"attachments"`
}

func FromTask(t *task.Task) TaskResponse {
	var due *string
	if t.DueDate != nil {
		formatted := t.DueDate.Format("2006-01-02")
		due = &formatted
	}

	attachments := t.Attachments
	if attachments == nil {
		attachments = []task.Attachment{}
	}

	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     due,
		Completed:   t.Completed,
		UserID:      t.UserID,
		Username:    t.Username,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		Attachments: attachments,
	}
}

func FromTaskList(tasks []*task.Task) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t)
	}
	return result
}
