package service_test

import (
	"context"
	"mime/multipart"
	"time"

	"tiktask/internal/files"
	"tiktask/internal/models/task"
	"tiktask/internal/models/user"

	"github.com/stretchr/testify/mock"
)

// MockTaskRepository - мок репозитория задач
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) CreateTask(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTaskRepository) TasksByOwner(ctx context.Context, ownerID int64, filters task.Filters) ([]*task.Task, error) {
	args := m.Called(ctx, ownerID, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskRepository) AllTasks(ctx context.Context, filters task.Filters) ([]*task.Task, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskRepository) Stats(ctx context.Context, ownerID *int64, filters task.Filters) (task.Stats, error) {
	args := m.Called(ctx, ownerID, filters)
	return args.Get(0).(task.Stats), args.Error(1)
}

func (m *MockTaskRepository) TaskByID(ctx context.Context, id int64) (*task.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskRepository) UpdateTask(ctx context.Context, id int64, title, description string, dueDate *time.Time) (int64, error) {
	args := m.Called(ctx, id, title, description, dueDate)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTaskRepository) ToggleComplete(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTaskRepository) DeleteTask(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTaskRepository) AddAttachments(ctx context.Context, taskID int64, attachments []task.Attachment) error {
	args := m.Called(ctx, taskID, attachments)
	return args.Error(0)
}

func (m *MockTaskRepository) AttachmentsByTask(ctx context.Context, taskID int64) ([]task.Attachment, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]task.Attachment), args.Error(1)
}

func (m *MockTaskRepository) AttachmentByID(ctx context.Context, id int64, includeInternal bool) (*task.Attachment, error) {
	args := m.Called(ctx, id, includeInternal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Attachment), args.Error(1)
}

func (m *MockTaskRepository) DeleteAttachment(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTaskRepository) AttachmentPathsByUser(ctx context.Context, userID int64) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockUserRepository - мок репозитория пользователей
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) UserByUsername(ctx context.Context, username string) (*user.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) UserByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) UserByID(ctx context.Context, id int64) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) Users(ctx context.Context) ([]*user.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*user.User), args.Error(1)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, id int64, updates user.Updates) (*user.User, error) {
	args := m.Called(ctx, id, updates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) DeleteUser(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

// MockFileStore - мок файлового хранилища
type MockFileStore struct {
	mock.Mock
}

func (m *MockFileStore) Save(fh *multipart.FileHeader) (files.StoredFile, error) {
	args := m.Called(fh)
	return args.Get(0).(files.StoredFile), args.Error(1)
}

func (m *MockFileStore) Remove(storedPath string) error {
	args := m.Called(storedPath)
	return args.Error(0)
}

func (m *MockFileStore) RemoveAll(storedPaths []string) []string {
	args := m.Called(storedPaths)
	return args.Get(0).([]string)
}
