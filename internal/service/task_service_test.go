package service_test

import (
	"context"
	"errors"
	"testing"

	"tiktask/internal/auth"
	"tiktask/internal/models/task"
	"tiktask/internal/models/user"
	rep "tiktask/internal/repository"
	"tiktask/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func ownerClaims(id int64) *auth.Claims {
	return &auth.Claims{UserID: id, Username: "alice", Role: user.RoleUser}
}

func adminClaims(id int64) *auth.Claims {
	return &auth.Claims{UserID: id, Username: "admin", Role: user.RoleAdmin}
}

func businessCode(t *testing.T, err error) string {
	t.Helper()
	var be *service.BusinessError
	require.ErrorAs(t, err, &be)
	return be.Code
}

func TestCreateTaskRequiresTitle(t *testing.T) {
	repo := new(MockTaskRepository)
	svc := service.NewTaskService(repo, new(MockFileStore))

	_, err := svc.CreateTask(context.Background(), 1, "", "desc", "", nil)

	assert.Equal(t, service.CodeValidation, businessCode(t, err))
	repo.AssertNotCalled(t, "CreateTask")
}

func TestCreateTaskRejectsBadDueDate(t *testing.T) {
	repo := new(MockTaskRepository)
	svc := service.NewTaskService(repo, new(MockFileStore))

	_, err := svc.CreateTask(context.Background(), 1, "title", "", "01-02-2030", nil)

	var be *service.BusinessError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, service.CodeValidation, be.Code)
	assert.Equal(t, "Invalid due date, expected YYYY-MM-DD", be.Message)
}

func TestCreateTaskReturnsFreshCopy(t *testing.T) {
	repo := new(MockTaskRepository)
	svc := service.NewTaskService(repo, new(MockFileStore))

	repo.On("CreateTask", mock.Anything, mock.MatchedBy(func(tk *task.Task) bool {
		return tk.Title == "Buy milk" && tk.UserID == int64(7)
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*task.Task).ID = 42
	}).Return(nil)
	repo.On("TaskByID", mock.Anything, int64(42)).
		Return(&task.Task{ID: 42, Title: "Buy milk", UserID: 7, Attachments: []task.Attachment{}}, nil)

	created, err := svc.CreateTask(context.Background(), 7, "Buy milk", "", "2030-01-01", nil)

	require.NoError(t, err)
	assert.Equal(t, int64(42), created.ID)
	repo.AssertExpectations(t)
}

func TestStatsScopedToActor(t *testing.T) {
	repo := new(MockTaskRepository)
	svc := service.NewTaskService(repo, new(MockFileStore))

	repo.On("Stats", mock.Anything, mock.MatchedBy(func(ownerID *int64) bool {
		return ownerID != nil && *ownerID == int64(5)
	}), task.Filters{}).Return(task.Stats{Total: 2, Completed: 1, Pending: 1, Progress: 50}, nil)

	stats, err := svc.Stats(context.Background(), ownerClaims(5), "all", task.Filters{})

	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	repo.AssertExpectations(t)
}

func TestStatsAdminViewAll(t *testing.T) {
	repo := new(MockTaskRepository)
	svc := service.NewTaskService(repo, new(MockFileStore))

	repo.On("Stats", mock.Anything, (*int64)(nil), task.Filters{}).
		Return(task.Stats{Total: 10, Completed: 4, Pending: 6, Progress: 40}, nil)

	stats, err := svc.Stats(context.Background(), adminClaims(1), "all", task.Filters{})

	require.NoError(t, err)
	assert.Equal(t, 10, stats.Total)
	repo.AssertExpectations(t)
}

func TestUpdateTaskForbiddenForStranger(t *testing.T) {
	repo := new(MockTaskRepository)
	svc := service.NewTaskService(repo, new(MockFileStore))

	repo.On("TaskByID", mock.Anything, int64(3)).
		Return(&task.Task{ID: 3, Title: "not yours", UserID: 99}, nil)

	_, err := svc.UpdateTask(context.Background(), ownerClaims(5), 3, "new", "", "", nil)

	var be *service.BusinessError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, service.CodeForbidden, be.Code)
	assert.Equal(t, "You can only edit your own tasks", be.Message)
	repo.AssertNotCalled(t, "UpdateTask")
}

func TestUpdateTaskNotFound(t *testing.T) {
	repo := new(MockTaskRepository)
	svc := service.NewTaskService(repo, new(MockFileStore))

	repo.On("TaskByID", mock.Anything, int64(3)).Return(nil, rep.ErrNotFound)

	_, err := svc.UpdateTask(context.Background(), ownerClaims(5), 3, "new", "", "", nil)

	assert.Equal(t, service.CodeNotFound, businessCode(t, err))
}

func TestToggleComplete(t *testing.T) {
	repo := new(MockTaskRepository)
	svc := service.NewTaskService(repo, new(MockFileStore))

	repo.On("TaskByID", mock.Anything, int64(3)).
		Return(&task.Task{ID: 3, UserID: 5}, nil).Once()
	repo.On("ToggleComplete", mock.Anything, int64(3)).Return(int64(1), nil)
	repo.On("TaskByID", mock.Anything, int64(3)).
		Return(&task.Task{ID: 3, UserID: 5, Completed: true}, nil).Once()

	got, err := svc.ToggleComplete(context.Background(), ownerClaims(5), 3)

	require.NoError(t, err)
	assert.True(t, got.Completed)
	repo.AssertExpectations(t)
}

func TestDeleteTaskCleansUpFiles(t *testing.T) {
	repo := new(MockTaskRepository)
	store := new(MockFileStore)
	svc := service.NewTaskService(repo, store)

	repo.On("TaskByID", mock.Anything, int64(3)).Return(&task.Task{
		ID:     3,
		UserID: 5,
		Attachments: []task.Attachment{
			{ID: 1, FilePath: "uploads/a.pdf"},
			{ID: 2, FilePath: "uploads/b.png"},
		},
	}, nil)
	repo.On("DeleteTask", mock.Anything, int64(3)).Return(int64(1), nil)
	store.On("RemoveAll", []string{"uploads/a.pdf", "uploads/b.png"}).Return([]string{})

	require.NoError(t, svc.DeleteTask(context.Background(), ownerClaims(5), 3))
	repo.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestDeleteTaskSurvivesFileFailures(t *testing.T) {
	repo := new(MockTaskRepository)
	store := new(MockFileStore)
	svc := service.NewTaskService(repo, store)

	repo.On("TaskByID", mock.Anything, int64(3)).Return(&task.Task{
		ID:          3,
		UserID:      5,
		Attachments: []task.Attachment{{ID: 1, FilePath: "uploads/a.pdf"}},
	}, nil)
	repo.On("DeleteTask", mock.Anything, int64(3)).Return(int64(1), nil)
	store.On("RemoveAll", []string{"uploads/a.pdf"}).Return([]string{"uploads/a.pdf"})

	// сбой удаления файла не должен превращаться в ошибку запроса
	assert.NoError(t, svc.DeleteTask(context.Background(), ownerClaims(5), 3))
}

func TestDeleteAttachment(t *testing.T) {
	repo := new(MockTaskRepository)
	store := new(MockFileStore)
	svc := service.NewTaskService(repo, store)

	repo.On("TaskByID", mock.Anything, int64(3)).Return(&task.Task{ID: 3, UserID: 5}, nil)
	repo.On("AttachmentByID", mock.Anything, int64(9), true).
		Return(&task.Attachment{ID: 9, TaskID: 3, FilePath: "uploads/a.pdf"}, nil)
	repo.On("DeleteAttachment", mock.Anything, int64(9)).Return(int64(1), nil)
	store.On("Remove", "uploads/a.pdf").Return(nil)
	repo.On("AttachmentsByTask", mock.Anything, int64(3)).Return([]task.Attachment{}, nil)

	remaining, err := svc.DeleteAttachment(context.Background(), ownerClaims(5), 3, 9)

	require.NoError(t, err)
	assert.Empty(t, remaining)
	repo.AssertExpectations(t)
}

func TestDeleteAttachmentWrongTask(t *testing.T) {
	repo := new(MockTaskRepository)
	svc := service.NewTaskService(repo, new(MockFileStore))

	repo.On("TaskByID", mock.Anything, int64(3)).Return(&task.Task{ID: 3, UserID: 5}, nil)
	// вложение существует, но висит на чужой задаче
	repo.On("AttachmentByID", mock.Anything, int64(9), true).
		Return(&task.Attachment{ID: 9, TaskID: 77}, nil)

	_, err := svc.DeleteAttachment(context.Background(), ownerClaims(5), 3, 9)

	assert.Equal(t, service.CodeNotFound, businessCode(t, err))
	repo.AssertNotCalled(t, "DeleteAttachment")
}

func TestTasksPassesFilters(t *testing.T) {
	repo := new(MockTaskRepository)
	svc := service.NewTaskService(repo, new(MockFileStore))

	filters := task.Filters{Status: task.StatusDone, Search: "milk"}
	repo.On("TasksByOwner", mock.Anything, int64(5), filters).Return([]*task.Task{}, nil)

	_, err := svc.Tasks(context.Background(), 5, filters)

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestTasksWrapsRepositoryError(t *testing.T) {
	repo := new(MockTaskRepository)
	svc := service.NewTaskService(repo, new(MockFileStore))

	boom := errors.New("connection reset")
	repo.On("TasksByOwner", mock.Anything, int64(5), task.Filters{}).Return(nil, boom)

	_, err := svc.Tasks(context.Background(), 5, task.Filters{})

	assert.ErrorIs(t, err, boom)
}
